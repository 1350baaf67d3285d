package sandbox

import (
	"context" // Request-scoped cancellation
	"errors"  // Error matching
	"strings" // Duplicate-key detection
	"time"    // Time windows

	"github.com/shopspring/decimal" // Exact balance arithmetic
	"gorm.io/gorm"                  // GORM ORM library
	"gorm.io/gorm/clause"           // Row locking

	"payportal/internal/domain" // Domain models
)

// GormStore persists sandbox state through GORM (MySQL in practice)
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open GORM connection. The schema is created by
// db.Migrate.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// translate maps GORM errors onto store sentinels
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), strings.Contains(err.Error(), "Duplicate entry"):
		return ErrConflict
	default:
		return err
	}
}

// page applies limit/offset and counts the full result set
func page[T any](q *gorm.DB, pq domain.PageQuery, order string) ([]T, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	pq = pq.Normalize()
	out := []T{}
	err := q.Session(&gorm.Session{}).Order(order).Limit(pq.Limit).Offset(pq.Offset()).Find(&out).Error
	return out, total, err
}

func (s *GormStore) CreateUser(ctx context.Context, u *domain.User) error {
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

func (s *GormStore) UserByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *GormStore) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *GormStore) UpdateUser(ctx context.Context, u *domain.User) error {
	res := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", u.ID).Updates(map[string]any{
		"name":       u.Name,
		"email":      u.Email,
		"phone":      u.Phone,
		"updated_at": u.UpdatedAt,
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ListUsers(ctx context.Context, q domain.PageQuery) ([]domain.User, int64, error) {
	return page[domain.User](s.db.WithContext(ctx).Model(&domain.User{}), q, "created_at DESC")
}

func (s *GormStore) UserStats(ctx context.Context, since time.Time) (UserStats, error) {
	var st UserStats
	db := s.db.WithContext(ctx).Model(&domain.User{})
	if err := db.Count(&st.Total).Error; err != nil {
		return st, err
	}
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("role = ?", domain.RoleAdmin).Count(&st.Admins).Error; err != nil {
		return st, err
	}
	err := s.db.WithContext(ctx).Model(&domain.User{}).Where("created_at >= ?", since).Count(&st.New).Error
	return st, err
}

func (s *GormStore) RecordLoginAttempt(ctx context.Context, a *domain.LoginAttempt) error {
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *GormStore) ListLoginAttempts(ctx context.Context, q domain.PageQuery) ([]domain.LoginAttempt, int64, error) {
	return page[domain.LoginAttempt](s.db.WithContext(ctx).Model(&domain.LoginAttempt{}), q, "created_at DESC")
}

func (s *GormStore) SaveToken(ctx context.Context, t *domain.IssuedToken) error {
	return translate(s.db.WithContext(ctx).Create(t).Error)
}

func (s *GormStore) RevokeToken(ctx context.Context, id string, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&domain.IssuedToken{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		s.db.WithContext(ctx).Model(&domain.IssuedToken{}).Where("id = ?", id).Count(&n)
		if n == 0 {
			return ErrNotFound
		}
	}
	return nil
}

func (s *GormStore) TokenRevoked(ctx context.Context, id string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&domain.IssuedToken{}).
		Where("id = ? AND revoked_at IS NOT NULL", id).Count(&n).Error
	return n > 0, err
}

func (s *GormStore) TokenStats(ctx context.Context, now time.Time) (domain.TokenStats, error) {
	var st domain.TokenStats
	db := s.db.WithContext(ctx)
	if err := db.Model(&domain.IssuedToken{}).Count(&st.Issued).Error; err != nil {
		return st, err
	}
	if err := db.Model(&domain.IssuedToken{}).Where("revoked_at IS NOT NULL").Count(&st.Revoked).Error; err != nil {
		return st, err
	}
	err := db.Model(&domain.IssuedToken{}).Where("revoked_at IS NULL AND expires_at > ?", now).Count(&st.Active).Error
	return st, err
}

func (s *GormStore) CreateWallet(ctx context.Context, w *domain.Wallet) error {
	return translate(s.db.WithContext(ctx).Create(w).Error)
}

func (s *GormStore) Wallet(ctx context.Context, id string) (*domain.Wallet, error) {
	var w domain.Wallet
	if err := s.db.WithContext(ctx).First(&w, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (s *GormStore) ListWallets(ctx context.Context, customerID string) ([]domain.Wallet, error) {
	q := s.db.WithContext(ctx).Model(&domain.Wallet{})
	if customerID != "" {
		q = q.Where("customer_id = ?", customerID)
	}
	out := []domain.Wallet{}
	err := q.Order("created_at ASC, id ASC").Find(&out).Error
	return out, err
}

// move applies delta to both balances of a wallet inside tx
func move(tx *gorm.DB, walletID string, delta decimal.Decimal, now time.Time) error {
	return tx.Model(&domain.Wallet{}).Where("id = ?", walletID).Updates(map[string]any{
		"balance":           gorm.Expr("balance + ?", delta.InexactFloat64()),
		"available_balance": gorm.Expr("available_balance + ?", delta.InexactFloat64()),
		"updated_at":        now,
	}).Error
}

// lockOrder returns the two wallet ids in the order their rows are locked.
// Every transfer locks the smaller id first, so opposite transfers between
// the same wallets queue instead of deadlocking.
func lockOrder(a, b string) (first, second string) {
	if b < a {
		return b, a
	}
	return a, b
}

// lockPair locks both wallets in lockOrder and returns them as (from, to)
func lockPair(tx *gorm.DB, fromID, toID string) (*domain.Wallet, *domain.Wallet, error) {
	firstID, secondID := lockOrder(fromID, toID)
	first, err := lockWallet(tx, firstID)
	if err != nil {
		return nil, nil, err
	}
	second, err := lockWallet(tx, secondID)
	if err != nil {
		return nil, nil, err
	}
	if firstID == fromID {
		return first, second, nil
	}
	return second, first, nil
}

// lockWallet loads a wallet for update within tx
func lockWallet(tx *gorm.DB, id string) (*domain.Wallet, error) {
	var w domain.Wallet
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&w, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (s *GormStore) Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal, rec *domain.Transaction) error {
	// Atomic transfer
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		from, to, err := lockPair(tx, fromID, toID)
		if err != nil {
			return err
		}
		if from.Status != domain.WalletActive || to.Status != domain.WalletActive {
			return ErrWalletInactive
		}
		// Check sufficient funds
		if decimal.NewFromFloat(from.AvailableBalance).LessThan(amount) {
			return ErrInsufficientFunds
		}
		// Deduct from sender
		if err := move(tx, fromID, amount.Neg(), rec.CreatedAt); err != nil {
			return err // Return error to rollback
		}
		// Add to recipient
		if err := move(tx, toID, amount, rec.CreatedAt); err != nil {
			return err // Return error to rollback
		}
		return tx.Create(rec).Error // Commit with the transaction record
	})
}

func (s *GormStore) Credit(ctx context.Context, walletID string, amount decimal.Decimal, rec *domain.Transaction) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		w, err := lockWallet(tx, walletID)
		if err != nil {
			return err
		}
		if w.Status != domain.WalletActive {
			return ErrWalletInactive
		}
		if err := move(tx, walletID, amount, rec.CreatedAt); err != nil {
			return err
		}
		return tx.Create(rec).Error
	})
}

func (s *GormStore) ListTransactions(ctx context.Context, walletID string, q domain.PageQuery) ([]domain.Transaction, int64, error) {
	if _, err := s.Wallet(ctx, walletID); err != nil {
		return nil, 0, err
	}
	db := s.db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("from_wallet_id = ? OR to_wallet_id = ?", walletID, walletID)
	return page[domain.Transaction](db, q, "created_at DESC")
}

func (s *GormStore) CreatePayment(ctx context.Context, p *domain.Payment) error {
	return translate(s.db.WithContext(ctx).Create(p).Error)
}

func (s *GormStore) Payment(ctx context.Context, id string) (*domain.Payment, error) {
	var p domain.Payment
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *GormStore) UpdatePayment(ctx context.Context, p *domain.Payment) error {
	return translate(s.db.WithContext(ctx).Save(p).Error)
}

func (s *GormStore) ListPayments(ctx context.Context, f domain.PaymentFilter) ([]domain.Payment, int64, error) {
	db := s.db.WithContext(ctx).Model(&domain.Payment{})
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.CustomerID != "" {
		db = db.Where("customer_id = ?", f.CustomerID)
	}
	if f.Method != "" {
		db = db.Where("method = ?", f.Method)
	}
	return page[domain.Payment](db, f.PageQuery, "created_at DESC")
}

func (s *GormStore) PaymentsSince(ctx context.Context, since time.Time) ([]domain.Payment, error) {
	var out []domain.Payment
	err := s.db.WithContext(ctx).Where("created_at >= ?", since).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (s *GormStore) Idempotent(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	var r domain.IdempotencyRecord
	err := s.db.WithContext(ctx).First(&r, "`key` = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *GormStore) SaveIdempotent(ctx context.Context, r *domain.IdempotencyRecord) error {
	return translate(s.db.WithContext(ctx).Create(r).Error)
}

func (s *GormStore) AppendAudit(ctx context.Context, l *domain.AuditLog) error {
	return s.db.WithContext(ctx).Create(l).Error
}

func (s *GormStore) ListAudit(ctx context.Context, f domain.AuditFilter) ([]domain.AuditLog, int64, error) {
	db := s.db.WithContext(ctx).Model(&domain.AuditLog{})
	if f.Action != "" {
		db = db.Where("action = ?", f.Action)
	}
	if f.Resource != "" {
		db = db.Where("resource = ?", f.Resource)
	}
	if f.ActorID != "" {
		db = db.Where("actor_id = ?", f.ActorID)
	}
	if !f.From.IsZero() {
		db = db.Where("created_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		db = db.Where("created_at <= ?", f.To)
	}
	return page[domain.AuditLog](db, f.PageQuery, "created_at DESC")
}

func (s *GormStore) CreateAlert(ctx context.Context, a *domain.Alert) error {
	return translate(s.db.WithContext(ctx).Create(a).Error)
}

func (s *GormStore) Alert(ctx context.Context, id string) (*domain.Alert, error) {
	var a domain.Alert
	if err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *GormStore) UpdateAlert(ctx context.Context, a *domain.Alert) error {
	return translate(s.db.WithContext(ctx).Save(a).Error)
}

func (s *GormStore) ListAlerts(ctx context.Context, status string, q domain.PageQuery) ([]domain.Alert, int64, error) {
	db := s.db.WithContext(ctx).Model(&domain.Alert{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	return page[domain.Alert](db, q, "created_at DESC")
}

func (s *GormStore) CreateReport(ctx context.Context, r *domain.ComplianceReport) error {
	return translate(s.db.WithContext(ctx).Create(r).Error)
}

func (s *GormStore) ListReports(ctx context.Context, q domain.PageQuery) ([]domain.ComplianceReport, int64, error) {
	return page[domain.ComplianceReport](s.db.WithContext(ctx).Model(&domain.ComplianceReport{}), q, "generated_at DESC")
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
