package sandbox

import (
	"context" // Request-scoped cancellation
	"slices"  // Sorting and filtering
	"strings" // Case-insensitive email lookup
	"sync"    // Store locking
	"time"    // Time windows

	"github.com/shopspring/decimal" // Exact balance arithmetic

	"payportal/internal/domain" // Domain models
)

// MemoryStore keeps all sandbox state in process memory
type MemoryStore struct {
	mu          sync.RWMutex
	users       map[string]*domain.User
	attempts    []domain.LoginAttempt
	tokens      map[string]*domain.IssuedToken
	wallets     map[string]*domain.Wallet
	txs         []domain.Transaction
	payments    map[string]*domain.Payment
	idempotency map[string]*domain.IdempotencyRecord
	audit       []domain.AuditLog
	alerts      map[string]*domain.Alert
	reports     []domain.ComplianceReport
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       map[string]*domain.User{},
		tokens:      map[string]*domain.IssuedToken{},
		wallets:     map[string]*domain.Wallet{},
		payments:    map[string]*domain.Payment{},
		idempotency: map[string]*domain.IdempotencyRecord{},
		alerts:      map[string]*domain.Alert{},
	}
}

// paginate returns one page of items, newest first ordering is the caller's
func paginate[T any](items []T, q domain.PageQuery) ([]T, int64) {
	total := int64(len(items))
	q = q.Normalize()
	start := q.Offset()
	if start >= len(items) {
		return []T{}, total
	}
	end := min(start+q.Limit, len(items))
	return append([]T(nil), items[start:end]...), total
}

func newestFirst[T any](items []T, at func(T) time.Time) {
	slices.SortStableFunc(items, func(a, b T) int { return at(b).Compare(at(a)) })
}

func (s *MemoryStore) CreateUser(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrConflict
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *MemoryStore) UserByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) UserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateUser(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return ErrNotFound
	}
	for id, existing := range s.users {
		if id != u.ID && strings.EqualFold(existing.Email, u.Email) {
			return ErrConflict
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *MemoryStore) ListUsers(_ context.Context, q domain.PageQuery) ([]domain.User, int64, error) {
	s.mu.RLock()
	all := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, *u)
	}
	s.mu.RUnlock()
	newestFirst(all, func(u domain.User) time.Time { return u.CreatedAt })
	page, total := paginate(all, q)
	return page, total, nil
}

func (s *MemoryStore) UserStats(_ context.Context, since time.Time) (UserStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var st UserStats
	for _, u := range s.users {
		st.Total++
		if u.IsAdmin() {
			st.Admins++
		}
		if !u.CreatedAt.Before(since) {
			st.New++
		}
	}
	return st, nil
}

func (s *MemoryStore) RecordLoginAttempt(_ context.Context, a *domain.LoginAttempt) error {
	s.mu.Lock()
	s.attempts = append(s.attempts, *a)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ListLoginAttempts(_ context.Context, q domain.PageQuery) ([]domain.LoginAttempt, int64, error) {
	s.mu.RLock()
	all := slices.Clone(s.attempts)
	s.mu.RUnlock()
	newestFirst(all, func(a domain.LoginAttempt) time.Time { return a.CreatedAt })
	page, total := paginate(all, q)
	return page, total, nil
}

func (s *MemoryStore) SaveToken(_ context.Context, t *domain.IssuedToken) error {
	s.mu.Lock()
	cp := *t
	s.tokens[t.ID] = &cp
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) RevokeToken(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[id]
	if !ok {
		return ErrNotFound
	}
	if t.RevokedAt == nil {
		t.RevokedAt = &at
	}
	return nil
}

func (s *MemoryStore) TokenRevoked(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[id]
	return ok && t.RevokedAt != nil, nil
}

func (s *MemoryStore) TokenStats(_ context.Context, now time.Time) (domain.TokenStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var st domain.TokenStats
	for _, t := range s.tokens {
		st.Issued++
		switch {
		case t.RevokedAt != nil:
			st.Revoked++
		case now.Before(t.ExpiresAt):
			st.Active++
		}
	}
	return st, nil
}

func (s *MemoryStore) CreateWallet(_ context.Context, w *domain.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.wallets[w.ID]; ok {
		return ErrConflict
	}
	cp := *w
	s.wallets[w.ID] = &cp
	return nil
}

func (s *MemoryStore) Wallet(_ context.Context, id string) (*domain.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (s *MemoryStore) ListWallets(_ context.Context, customerID string) ([]domain.Wallet, error) {
	s.mu.RLock()
	out := []domain.Wallet{}
	for _, w := range s.wallets {
		if customerID == "" || w.CustomerID == customerID {
			out = append(out, *w)
		}
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b domain.Wallet) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// adjust applies delta to a wallet's ledger and available balances
func adjust(w *domain.Wallet, delta decimal.Decimal, now time.Time) {
	w.Balance = decimal.NewFromFloat(w.Balance).Add(delta).Round(2).InexactFloat64()
	w.AvailableBalance = decimal.NewFromFloat(w.AvailableBalance).Add(delta).Round(2).InexactFloat64()
	w.UpdatedAt = now
}

func (s *MemoryStore) Transfer(_ context.Context, fromID, toID string, amount decimal.Decimal, tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	from, ok := s.wallets[fromID]
	if !ok {
		return ErrNotFound
	}
	to, ok := s.wallets[toID]
	if !ok {
		return ErrNotFound
	}
	if from.Status != domain.WalletActive || to.Status != domain.WalletActive {
		return ErrWalletInactive
	}
	if decimal.NewFromFloat(from.AvailableBalance).LessThan(amount) {
		return ErrInsufficientFunds
	}
	adjust(from, amount.Neg(), tx.CreatedAt)
	adjust(to, amount, tx.CreatedAt)
	s.txs = append(s.txs, *tx)
	return nil
}

func (s *MemoryStore) Credit(_ context.Context, walletID string, amount decimal.Decimal, tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[walletID]
	if !ok {
		return ErrNotFound
	}
	if w.Status != domain.WalletActive {
		return ErrWalletInactive
	}
	adjust(w, amount, tx.CreatedAt)
	s.txs = append(s.txs, *tx)
	return nil
}

func (s *MemoryStore) ListTransactions(_ context.Context, walletID string, q domain.PageQuery) ([]domain.Transaction, int64, error) {
	s.mu.RLock()
	if _, ok := s.wallets[walletID]; !ok {
		s.mu.RUnlock()
		return nil, 0, ErrNotFound
	}
	var all []domain.Transaction
	for _, t := range s.txs {
		if t.FromWalletID == walletID || t.ToWalletID == walletID {
			all = append(all, t)
		}
	}
	s.mu.RUnlock()
	newestFirst(all, func(t domain.Transaction) time.Time { return t.CreatedAt })
	page, total := paginate(all, q)
	return page, total, nil
}

func (s *MemoryStore) CreatePayment(_ context.Context, p *domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[p.ID]; ok {
		return ErrConflict
	}
	cp := *p
	s.payments[p.ID] = &cp
	return nil
}

func (s *MemoryStore) Payment(_ context.Context, id string) (*domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) UpdatePayment(_ context.Context, p *domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	s.payments[p.ID] = &cp
	return nil
}

func (s *MemoryStore) ListPayments(_ context.Context, f domain.PaymentFilter) ([]domain.Payment, int64, error) {
	s.mu.RLock()
	var all []domain.Payment
	for _, p := range s.payments {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.CustomerID != "" && p.CustomerID != f.CustomerID {
			continue
		}
		if f.Method != "" && p.Method != f.Method {
			continue
		}
		all = append(all, *p)
	}
	s.mu.RUnlock()
	newestFirst(all, func(p domain.Payment) time.Time { return p.CreatedAt })
	page, total := paginate(all, f.PageQuery)
	return page, total, nil
}

func (s *MemoryStore) PaymentsSince(_ context.Context, since time.Time) ([]domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Payment
	for _, p := range s.payments {
		if !p.CreatedAt.Before(since) {
			out = append(out, *p)
		}
	}
	newestFirst(out, func(p domain.Payment) time.Time { return p.CreatedAt })
	return out, nil
}

func (s *MemoryStore) Idempotent(_ context.Context, key string) (*domain.IdempotencyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.idempotency[key]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) SaveIdempotent(_ context.Context, r *domain.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.idempotency[r.Key]; ok {
		return ErrConflict
	}
	cp := *r
	s.idempotency[r.Key] = &cp
	return nil
}

func (s *MemoryStore) AppendAudit(_ context.Context, l *domain.AuditLog) error {
	s.mu.Lock()
	s.audit = append(s.audit, *l)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ListAudit(_ context.Context, f domain.AuditFilter) ([]domain.AuditLog, int64, error) {
	s.mu.RLock()
	var all []domain.AuditLog
	for _, l := range s.audit {
		if f.Action != "" && l.Action != f.Action {
			continue
		}
		if f.Resource != "" && l.Resource != f.Resource {
			continue
		}
		if f.ActorID != "" && l.ActorID != f.ActorID {
			continue
		}
		if !f.From.IsZero() && l.CreatedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && l.CreatedAt.After(f.To) {
			continue
		}
		all = append(all, l)
	}
	s.mu.RUnlock()
	newestFirst(all, func(l domain.AuditLog) time.Time { return l.CreatedAt })
	page, total := paginate(all, f.PageQuery)
	return page, total, nil
}

func (s *MemoryStore) CreateAlert(_ context.Context, a *domain.Alert) error {
	s.mu.Lock()
	cp := *a
	s.alerts[a.ID] = &cp
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Alert(_ context.Context, id string) (*domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.alerts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *MemoryStore) UpdateAlert(_ context.Context, a *domain.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.alerts[a.ID]; !ok {
		return ErrNotFound
	}
	cp := *a
	s.alerts[a.ID] = &cp
	return nil
}

func (s *MemoryStore) ListAlerts(_ context.Context, status string, q domain.PageQuery) ([]domain.Alert, int64, error) {
	s.mu.RLock()
	var all []domain.Alert
	for _, a := range s.alerts {
		if status == "" || a.Status == status {
			all = append(all, *a)
		}
	}
	s.mu.RUnlock()
	newestFirst(all, func(a domain.Alert) time.Time { return a.CreatedAt })
	page, total := paginate(all, q)
	return page, total, nil
}

func (s *MemoryStore) CreateReport(_ context.Context, r *domain.ComplianceReport) error {
	s.mu.Lock()
	s.reports = append(s.reports, *r)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ListReports(_ context.Context, q domain.PageQuery) ([]domain.ComplianceReport, int64, error) {
	s.mu.RLock()
	all := slices.Clone(s.reports)
	s.mu.RUnlock()
	newestFirst(all, func(r domain.ComplianceReport) time.Time { return r.GeneratedAt })
	page, total := paginate(all, q)
	return page, total, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }
