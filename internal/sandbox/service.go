package sandbox

import (
	"context"       // Request-scoped cancellation
	"encoding/json" // Idempotent result replay
	"errors"        // Error matching
	"fmt"           // Error wrapping
	"strings"       // ID formatting
	"sync"          // Idempotency serialisation
	"sync/atomic"   // Request counter
	"time"          // Clock

	"github.com/google/uuid"     // Random identifiers
	"github.com/sirupsen/logrus" // Structured logging

	"payportal/internal/domain" // Domain models
)

// DefaultTokenTTL is the lifetime of sandbox access tokens
const DefaultTokenTTL = 24 * time.Hour

// FraudThreshold is the amount above which a payment is flagged for review
const FraudThreshold = 10000.0

// Actor is the authenticated caller of a service method
type Actor struct {
	UserID  string
	Role    string
	TokenID string
}

// IsAdmin reports whether the actor may use admin operations
func (a Actor) IsAdmin() bool { return a.Role == domain.RoleAdmin }

// Service holds the sandbox business rules shared by REST and /mcp
type Service struct {
	store    Store
	secret   string
	tokenTTL time.Duration
	now      func() time.Time
	started  time.Time
	requests atomic.Int64
	idemMu   sync.Mutex
}

// NewService creates the sandbox service over store, signing tokens with secret
func NewService(store Store, secret string) *Service {
	return &Service{
		store:    store,
		secret:   secret,
		tokenTTL: DefaultTokenTTL,
		now:      time.Now,
		started:  time.Now(),
	}
}

// Store exposes the underlying store
func (s *Service) Store() Store { return s.store }

// newID builds a prefixed random identifier, e.g. pay_3f2a9c0d1e4b5a6f
func newID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// audit records a mutation; failures are logged and never fail the request
func (s *Service) audit(ctx context.Context, actor Actor, action, resource, resourceID, status, msg string) {
	entry := &domain.AuditLog{
		ID:         newID("audit"),
		ActorID:    actor.UserID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Status:     status,
		Message:    msg,
		CreatedAt:  s.now(),
	}
	if err := s.store.AppendAudit(ctx, entry); err != nil {
		logrus.WithFields(logrus.Fields{
			"action": action, // Audited action
			"error":  err.Error(),
		}).Error("Failed to write audit log")
	}
}

// once runs fn at most once per idempotency key and replays the stored
// result for repeated keys from the same actor. An empty key disables replay.
func once[T any](ctx context.Context, s *Service, actor Actor, key, tool string, fn func() (*T, error)) (*T, error) {
	if key == "" {
		return fn()
	}
	s.idemMu.Lock()
	defer s.idemMu.Unlock()
	rec, err := s.store.Idempotent(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		if rec.ActorID != actor.UserID {
			return nil, fmt.Errorf("%w: idempotency_key belongs to another user", ErrConflict)
		}
		if rec.Tool != tool {
			return nil, invalid("idempotency_key was already used by " + rec.Tool)
		}
		var out T
		if err := json.Unmarshal(rec.Result, &out); err != nil {
			return nil, err
		}
		logrus.WithFields(logrus.Fields{"key": key, "tool": tool}).Info("Replayed idempotent request")
		return &out, nil
	}
	out, err := fn()
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	err = s.store.SaveIdempotent(ctx, &domain.IdempotencyRecord{Key: key, ActorID: actor.UserID, Tool: tool, Result: raw, CreatedAt: s.now()})
	if err != nil && !errors.Is(err, ErrConflict) {
		logrus.WithError(err).Warn("Failed to store idempotent result")
	}
	return out, nil
}

// since converts an analytics period into the start of its window
func (s *Service) since(period string) time.Time {
	now := s.now()
	switch period {
	case "day":
		return now.Add(-24 * time.Hour)
	case "week":
		return now.AddDate(0, 0, -7)
	case "month":
		return now.AddDate(0, -1, 0)
	case "year":
		return now.AddDate(-1, 0, 0)
	default:
		return time.Time{}
	}
}

// CountRequest is called once per served request
func (s *Service) CountRequest() { s.requests.Add(1) }
