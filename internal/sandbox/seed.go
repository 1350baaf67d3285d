package sandbox

import (
	"context" // Request-scoped cancellation
	"errors"  // Error matching
	"strconv" // Wallet ids
	"time"    // Wallet ordering

	"github.com/shopspring/decimal" // Opening balances
	"golang.org/x/crypto/bcrypt"    // Password hashing

	"payportal/internal/domain" // Domain models
)

// Demo accounts created by Seed
const (
	DemoAdminEmail    = "admin@payportal.test"
	DemoAdminPassword = "admin-password"
	DemoUserEmail     = "demo@payportal.test"
	DemoUserPassword  = "demo-password"
)

// SeedData identifies what Seed created
type SeedData struct {
	AdminID      string
	UserID       string
	UserWallets  []string // Two USD wallets owned by the demo user
	AdminWallets []string // One USD wallet owned by the admin
}

// Seed creates the demo admin and user with funded wallets. Running it
// against an already seeded store is a no-op that returns the existing ids.
func Seed(ctx context.Context, svc *Service) (*SeedData, error) {
	store := svc.store
	out := &SeedData{}
	accounts := []struct {
		id, name, email, password, role string
		balances                        []float64
	}{
		{"usr_admin", "Sandbox Admin", DemoAdminEmail, DemoAdminPassword, domain.RoleAdmin, []float64{5000}},
		{"usr_demo", "Demo User", DemoUserEmail, DemoUserPassword, domain.RoleUser, []float64{1000, 250}},
	}
	for _, acct := range accounts {
		user, err := store.UserByEmail(ctx, acct.email)
		switch {
		case err == nil:
		case errors.Is(err, ErrNotFound):
			hashed, err := bcrypt.GenerateFromPassword([]byte(acct.password), bcrypt.DefaultCost)
			if err != nil {
				return nil, err
			}
			now := svc.now()
			user = &domain.User{ID: acct.id, Name: acct.name, Email: acct.email, Role: acct.role, Password: string(hashed), CreatedAt: now, UpdatedAt: now}
			if err := store.CreateUser(ctx, user); err != nil {
				return nil, err
			}
			for i, bal := range acct.balances {
				amount := decimal.NewFromFloat(bal)
				w := &domain.Wallet{
					ID:               acct.id + "_wal" + strconv.Itoa(i+1),
					CustomerID:       user.ID,
					Currency:         DefaultCurrency,
					Balance:          amount.InexactFloat64(),
					AvailableBalance: amount.InexactFloat64(),
					Status:           domain.WalletActive,
					CreatedAt:        now.Add(time.Duration(i) * time.Millisecond),
					UpdatedAt:        now,
				}
				if err := store.CreateWallet(ctx, w); err != nil {
					return nil, err
				}
			}
		default:
			return nil, err
		}
		wallets, err := store.ListWallets(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(wallets))
		for _, w := range wallets {
			ids = append(ids, w.ID)
		}
		if user.IsAdmin() {
			out.AdminID, out.AdminWallets = user.ID, ids
		} else {
			out.UserID, out.UserWallets = user.ID, ids
		}
	}
	return out, nil
}
