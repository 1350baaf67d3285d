// Package sandbox is a development backend serving the same REST and /mcp
// surface as the production payments backend, over an in-memory or
// gorm/mysql store.
package sandbox

import (
	"context" // Request-scoped cancellation
	"errors"  // Sentinel errors
	"time"    // Time windows for queries

	"github.com/shopspring/decimal" // Exact balance arithmetic

	"payportal/internal/domain" // Domain models
)

// Store errors, mapped to HTTP and JSON-RPC codes by the handlers
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("already exists")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrWalletInactive    = errors.New("wallet is not active")
)

// UserStats counts users for analytics
type UserStats struct {
	Total  int64
	Admins int64
	New    int64 // Registered since the query window start
}

// Store persists everything the sandbox serves
type Store interface {
	CreateUser(ctx context.Context, u *domain.User) error
	UserByID(ctx context.Context, id string) (*domain.User, error)
	UserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, u *domain.User) error
	ListUsers(ctx context.Context, q domain.PageQuery) ([]domain.User, int64, error)
	UserStats(ctx context.Context, since time.Time) (UserStats, error)

	RecordLoginAttempt(ctx context.Context, a *domain.LoginAttempt) error
	ListLoginAttempts(ctx context.Context, q domain.PageQuery) ([]domain.LoginAttempt, int64, error)

	SaveToken(ctx context.Context, t *domain.IssuedToken) error
	RevokeToken(ctx context.Context, id string, at time.Time) error
	TokenRevoked(ctx context.Context, id string) (bool, error)
	TokenStats(ctx context.Context, now time.Time) (domain.TokenStats, error)

	CreateWallet(ctx context.Context, w *domain.Wallet) error
	Wallet(ctx context.Context, id string) (*domain.Wallet, error)
	ListWallets(ctx context.Context, customerID string) ([]domain.Wallet, error) // All wallets when customerID is empty
	Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal, tx *domain.Transaction) error
	Credit(ctx context.Context, walletID string, amount decimal.Decimal, tx *domain.Transaction) error
	ListTransactions(ctx context.Context, walletID string, q domain.PageQuery) ([]domain.Transaction, int64, error)

	CreatePayment(ctx context.Context, p *domain.Payment) error
	Payment(ctx context.Context, id string) (*domain.Payment, error)
	UpdatePayment(ctx context.Context, p *domain.Payment) error
	ListPayments(ctx context.Context, f domain.PaymentFilter) ([]domain.Payment, int64, error)
	PaymentsSince(ctx context.Context, since time.Time) ([]domain.Payment, error)

	Idempotent(ctx context.Context, key string) (*domain.IdempotencyRecord, error) // nil when the key is unseen
	SaveIdempotent(ctx context.Context, r *domain.IdempotencyRecord) error

	AppendAudit(ctx context.Context, l *domain.AuditLog) error
	ListAudit(ctx context.Context, f domain.AuditFilter) ([]domain.AuditLog, int64, error)

	CreateAlert(ctx context.Context, a *domain.Alert) error
	Alert(ctx context.Context, id string) (*domain.Alert, error)
	UpdateAlert(ctx context.Context, a *domain.Alert) error
	ListAlerts(ctx context.Context, status string, q domain.PageQuery) ([]domain.Alert, int64, error)

	CreateReport(ctx context.Context, r *domain.ComplianceReport) error
	ListReports(ctx context.Context, q domain.PageQuery) ([]domain.ComplianceReport, int64, error)

	Ping(ctx context.Context) error
}
