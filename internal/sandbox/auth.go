package sandbox

import (
	"context" // Request-scoped cancellation
	"errors"  // Error matching
	"strings" // Email normalisation

	"github.com/sirupsen/logrus" // Structured logging
	"golang.org/x/crypto/bcrypt" // Password hashing

	"payportal/internal/domain" // Domain models
	"payportal/internal/utils"  // JWT helpers
)

// DefaultCurrency of the wallet opened at registration
const DefaultCurrency = "USD"

// RegisterBody is the registration payload accepted by the backend
type RegisterBody struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
}

// issue signs a token for user and records its jti
func (s *Service) issue(ctx context.Context, user *domain.User) (*domain.AuthResponse, error) {
	token, claims, err := utils.GenerateJWT(user.ID, user.Role, s.secret, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	err = s.store.SaveToken(ctx, &domain.IssuedToken{
		ID:        claims.ID,
		UserID:    user.ID,
		ExpiresAt: claims.ExpiresAt.Time,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, err
	}
	return &domain.AuthResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
		User:        user,
	}, nil
}

// Register creates a user with a hashed password and an empty wallet
func (s *Service) Register(ctx context.Context, body RegisterBody) (*domain.AuthResponse, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost) // Hash the password
	if err != nil {
		return nil, err
	}
	now := s.now()
	user := &domain.User{
		ID:        newID("usr"),
		Name:      strings.TrimSpace(body.Name),
		Email:     strings.ToLower(strings.TrimSpace(body.Email)),
		Phone:     body.Phone,
		Role:      domain.RoleUser,
		Password:  string(hashed),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, invalid("Email already registered")
		}
		return nil, err
	}
	wallet := &domain.Wallet{
		ID:         newID("wal"),
		CustomerID: user.ID,
		Currency:   DefaultCurrency,
		Status:     domain.WalletActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateWallet(ctx, wallet); err != nil {
		return nil, err
	}
	actor := Actor{UserID: user.ID, Role: user.Role}
	s.audit(ctx, actor, "register", "user", user.ID, "success", "")
	logrus.WithFields(logrus.Fields{
		"user_id":   user.ID,   // New user ID
		"wallet_id": wallet.ID, // Wallet opened at registration
	}).Info("User registered")
	return s.issue(ctx, user)
}

// Login checks credentials and records the attempt either way
func (s *Service) Login(ctx context.Context, req domain.LoginRequest, ip string) (*domain.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.store.UserByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	ok := user != nil && bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) == nil
	attempt := &domain.LoginAttempt{ID: newID("att"), Email: email, Success: ok, IP: ip, CreatedAt: s.now()}
	if err := s.store.RecordLoginAttempt(ctx, attempt); err != nil {
		logrus.WithError(err).Warn("Failed to record login attempt")
	}
	if !ok {
		logrus.WithFields(logrus.Fields{"email": email, "ip": ip}).Warn("Failed login")
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, user)
}

// Logout revokes the caller's token
func (s *Service) Logout(ctx context.Context, actor Actor) error {
	if err := s.store.RevokeToken(ctx, actor.TokenID, s.now()); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	s.audit(ctx, actor, "logout", "user", actor.UserID, "success", "")
	return nil
}

// Refresh revokes the caller's token and issues a new one
func (s *Service) Refresh(ctx context.Context, actor Actor) (*domain.AuthResponse, error) {
	user, err := s.store.UserByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.store.RevokeToken(ctx, actor.TokenID, s.now()); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.issue(ctx, user)
}

// TokenRevoked reports whether a token id was revoked
func (s *Service) TokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	return s.store.TokenRevoked(ctx, tokenID)
}

// Me returns the caller's profile
func (s *Service) Me(ctx context.Context, actor Actor) (*domain.User, error) {
	return s.store.UserByID(ctx, actor.UserID)
}

// UpdateProfile applies the non-empty fields of upd
func (s *Service) UpdateProfile(ctx context.Context, actor Actor, upd domain.ProfileUpdate) (*domain.User, error) {
	user, err := s.store.UserByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if upd.Name != "" {
		user.Name = strings.TrimSpace(upd.Name)
	}
	if upd.Email != "" {
		user.Email = strings.ToLower(strings.TrimSpace(upd.Email))
	}
	if upd.Phone != "" {
		user.Phone = upd.Phone
	}
	user.UpdatedAt = s.now()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, invalid("Email already registered")
		}
		return nil, err
	}
	s.audit(ctx, actor, "update_profile", "user", user.ID, "success", "")
	return user, nil
}

// ListUsers pages through all users
func (s *Service) ListUsers(ctx context.Context, q domain.PageQuery) (*domain.Page[domain.User], error) {
	users, total, err := s.store.ListUsers(ctx, q)
	if err != nil {
		return nil, err
	}
	return &domain.Page[domain.User]{Data: users, Total: total}, nil
}

// LoginAttempts pages through recorded login attempts
func (s *Service) LoginAttempts(ctx context.Context, q domain.PageQuery) (*domain.Page[domain.LoginAttempt], error) {
	items, total, err := s.store.ListLoginAttempts(ctx, q)
	if err != nil {
		return nil, err
	}
	return &domain.Page[domain.LoginAttempt]{Data: items, Total: total}, nil
}

// TokenStats summarises issued tokens
func (s *Service) TokenStats(ctx context.Context) (*domain.TokenStats, error) {
	st, err := s.store.TokenStats(ctx, s.now())
	if err != nil {
		return nil, err
	}
	return &st, nil
}
