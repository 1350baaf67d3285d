// Package credential persists the bearer token between runs. Every part of
// the client reads and writes the token through a Store, so there is exactly
// one credential mechanism per process.
package credential

import (
	"context" // Request contexts
	"time"    // Timeouts and clocks
)

const secondsPerDay = 86400

// SameSiteStrict blocks the credential from being sent cross-site
const SameSiteStrict = "strict"

// Credential is the stored bearer token and its cookie-style attributes
type Credential struct {
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at,omitempty"`
	ExpiryDays float64   `json:"expiry_days,omitempty"` // Lifetime in days, the cookie expiry unit
	Secure     bool      `json:"secure"`                // Only sent over HTTPS
	SameSite   string    `json:"same_site"`
}

// New builds a credential from a token and its lifetime in seconds. A
// non-positive lifetime yields a session credential with no expiry.
func New(token string, expiresIn int64, secure bool, now time.Time) Credential {
	c := Credential{Token: token, Secure: secure, SameSite: SameSiteStrict}
	if expiresIn > 0 {
		c.ExpiryDays = float64(expiresIn) / secondsPerDay
		c.ExpiresAt = now.Add(time.Duration(expiresIn) * time.Second)
	}
	return c
}

// Expired reports whether the credential is past its expiry
func (c Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// TTL is the remaining lifetime, zero for session credentials
func (c Credential) TTL(now time.Time) time.Duration {
	if c.ExpiresAt.IsZero() {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}

// Store persists one credential. Load returns nil without error when no
// usable credential is stored.
type Store interface {
	Load(ctx context.Context) (*Credential, error)
	Save(ctx context.Context, c Credential) error
	Clear(ctx context.Context) error
}
