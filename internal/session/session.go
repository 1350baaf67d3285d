// Package session holds the authenticated user for the life of the app and
// funnels every login, logout and profile change through one place.
package session

import (
	"context" // Request contexts
	"sync"    // Locking
	"time"    // Timeouts and clocks

	"github.com/sirupsen/logrus" // Logrus for structured logging

	"payportal/internal/credential" // Credential stores
	"payportal/internal/domain"     // Domain models
	"payportal/internal/httpclient" // HTTP wrapper
	"payportal/internal/notify"     // Notifications
	"payportal/internal/utils"      // JWT helpers
	"payportal/internal/validation" // Input validation
)

// AuthAPI is the slice of the REST client the session needs
type AuthAPI interface {
	Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error)
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*domain.User, error)
	UpdateProfile(ctx context.Context, req domain.ProfileUpdate) (*domain.User, error)
}

// Session is the single writer of the current user
type Session struct {
	api      AuthAPI
	store    credential.Store
	notifier notify.Notifier
	secure   bool
	now      func() time.Time
	log      *logrus.Entry

	mu      sync.RWMutex
	user    *domain.User
	loading bool
}

// Option customises a Session
type Option func(*Session)

// WithSecure marks stored credentials HTTPS-only
func WithSecure(secure bool) Option {
	return func(s *Session) { s.secure = secure }
}

// WithClock overrides the clock used for credential expiry
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates a Session. The credential store must be the same one the
// HTTP client reads tokens from.
func New(api AuthAPI, store credential.Store, notifier notify.Notifier, opts ...Option) *Session {
	if notifier == nil {
		notifier = notify.Discard
	}
	s := &Session{
		api:      api,
		store:    store,
		notifier: notifier,
		now:      time.Now,
		log:      logrus.WithField("component", "session"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// User returns a copy of the current user, nil when unauthenticated
func (s *Session) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated reports whether a user is signed in
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Loading reports whether a session operation is in flight
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Session) setUser(u *domain.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

// Invalidate forgets the current user without touching the backend or the
// store. The HTTP client calls it after a 401 has already cleared the
// credential.
func (s *Session) Invalidate() {
	s.setUser(nil)
	s.log.Debug("Session invalidated by rejected credential")
}

// Restore brings back a session from a stored credential by fetching the
// profile. Any failure clears the credential and leaves the session
// unauthenticated; nothing is surfaced to the user.
func (s *Session) Restore(ctx context.Context) bool {
	s.setLoading(true)
	defer s.setLoading(false)

	cred, err := s.store.Load(ctx)
	if err != nil || cred == nil {
		if err != nil {
			s.log.WithError(err).Debug("No usable stored credential")
			s.clearCredential(ctx)
		}
		return false
	}
	if exp, ok := utils.PeekExpiry(cred.Token); ok && !s.now().Before(exp) {
		s.clearCredential(ctx)
		return false
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		s.log.WithError(err).Debug("Stored session rejected")
		s.clearCredential(ctx)
		s.setUser(nil)
		return false
	}
	s.setUser(user)
	return true
}

// Login authenticates and stores the returned token
func (s *Session) Login(ctx context.Context, email, password string) (*domain.User, error) {
	req := domain.LoginRequest{Email: email, Password: password}
	if err := validation.Struct(req); err != nil {
		s.notifier.Error(err.Error())
		return nil, err
	}

	s.setLoading(true)
	defer s.setLoading(false)

	resp, err := s.api.Login(ctx, req) // Authenticate
	if err != nil {
		s.notifier.Error(httpclient.UserMessage(err))
		return nil, err
	}
	user, err := s.establish(ctx, resp)
	if err != nil {
		s.notifier.Error(httpclient.UserMessage(err))
		return nil, err
	}
	s.notifier.Success("Welcome back, " + displayName(user) + "!")
	return user, nil
}

// Register creates an account and signs in with it
func (s *Session) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	if err := validation.Struct(req); err != nil {
		s.notifier.Error(err.Error())
		return nil, err
	}

	s.setLoading(true)
	defer s.setLoading(false)

	resp, err := s.api.Register(ctx, req) // Create account
	if err != nil {
		s.notifier.Error(httpclient.UserMessage(err))
		return nil, err
	}
	user, err := s.establish(ctx, resp)
	if err != nil {
		s.notifier.Error(httpclient.UserMessage(err))
		return nil, err
	}
	s.notifier.Success("Account created successfully!")
	return user, nil
}

// establish stores the token and sets the user. When the auth response has
// no user embedded, the profile is fetched with the new token.
func (s *Session) establish(ctx context.Context, resp *domain.AuthResponse) (*domain.User, error) {
	cred := credential.New(resp.AccessToken, resp.ExpiresIn, s.secure, s.now())
	if err := s.store.Save(ctx, cred); err != nil { // Persist token
		return nil, err
	}
	user := resp.User
	if user == nil {
		me, err := s.api.Me(ctx)
		if err != nil {
			s.clearCredential(ctx)
			return nil, err
		}
		user = me
	}
	s.setUser(user)
	return s.User(), nil
}

// Logout tells the backend (best effort) and then always clears local state
func (s *Session) Logout(ctx context.Context) {
	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.api.Logout(ctx); err != nil {
		s.log.WithError(err).Warn("Server-side logout failed")
	}
	s.clearCredential(ctx) // Always drop the token
	s.setUser(nil)
	s.notifier.Info("Logged out successfully")
}

// UpdateUser applies a profile update and replaces the cached user
func (s *Session) UpdateUser(ctx context.Context, req domain.ProfileUpdate) (*domain.User, error) {
	if err := validation.Struct(req); err != nil {
		s.notifier.Error(err.Error())
		return nil, err
	}

	s.setLoading(true)
	defer s.setLoading(false)

	user, err := s.api.UpdateProfile(ctx, req)
	if err != nil {
		s.notifier.Error(httpclient.UserMessage(err))
		return nil, err
	}
	s.setUser(user)
	s.notifier.Success("Profile updated successfully")
	return s.User(), nil
}

func (s *Session) clearCredential(ctx context.Context) {
	if err := s.store.Clear(ctx); err != nil {
		s.log.WithError(err).Error("Failed to clear credential")
	}
}

func displayName(u *domain.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
