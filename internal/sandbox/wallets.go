package sandbox

import (
	"context" // Request-scoped cancellation
	"strings" // Currency normalisation

	"github.com/shopspring/decimal" // Exact balance arithmetic
	"github.com/sirupsen/logrus"    // Structured logging

	"payportal/internal/domain" // Domain models
)

// amountOf validates a positive amount with at most two decimal places
func amountOf(v float64) (decimal.Decimal, error) {
	d := decimal.NewFromFloat(v)
	if !d.IsPositive() {
		return decimal.Zero, invalid("Amount must be greater than 0")
	}
	if !d.Equal(d.Round(2)) {
		return decimal.Zero, invalid("Amount must have at most 2 decimal places")
	}
	return d, nil
}

// ownedWallet loads a wallet the actor may act on
func (s *Service) ownedWallet(ctx context.Context, actor Actor, id string) (*domain.Wallet, error) {
	w, err := s.store.Wallet(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && w.CustomerID != actor.UserID {
		return nil, ErrForbidden
	}
	return w, nil
}

// ListWallets returns the actor's wallets, or every wallet for admins
func (s *Service) ListWallets(ctx context.Context, actor Actor) ([]domain.Wallet, error) {
	if actor.IsAdmin() {
		return s.store.ListWallets(ctx, "")
	}
	return s.store.ListWallets(ctx, actor.UserID)
}

// GetWallet returns one wallet
func (s *Service) GetWallet(ctx context.Context, actor Actor, id string) (*domain.Wallet, error) {
	return s.ownedWallet(ctx, actor, id)
}

// Transfer moves funds out of one of the actor's wallets
func (s *Service) Transfer(ctx context.Context, actor Actor, req domain.TransferRequest) (*domain.Transaction, error) {
	return once(ctx, s, actor, req.IdempotencyKey, "transfer_funds", func() (*domain.Transaction, error) {
		if req.FromWalletID == "" || req.ToWalletID == "" {
			return nil, invalid("from_wallet_id and to_wallet_id are required")
		}
		if req.FromWalletID == req.ToWalletID {
			return nil, invalid("Cannot transfer to the same wallet")
		}
		amount, err := amountOf(req.Amount)
		if err != nil {
			return nil, err
		}
		from, err := s.ownedWallet(ctx, actor, req.FromWalletID)
		if err != nil {
			return nil, err
		}
		to, err := s.store.Wallet(ctx, req.ToWalletID)
		if err != nil {
			return nil, err
		}
		if from.Currency != to.Currency {
			return nil, invalid("Wallet currencies differ")
		}
		if req.Currency != "" && !strings.EqualFold(req.Currency, from.Currency) {
			return nil, invalid("Currency does not match the source wallet")
		}
		tx := &domain.Transaction{
			ID:           newID("txn"),
			Type:         domain.TxTransfer,
			Amount:       amount.InexactFloat64(),
			Currency:     from.Currency,
			Description:  req.Description,
			Status:       domain.PaymentCompleted,
			FromWalletID: from.ID,
			ToWalletID:   to.ID,
			CreatedAt:    s.now(),
		}
		if err := s.store.Transfer(ctx, from.ID, to.ID, amount, tx); err != nil {
			s.audit(ctx, actor, "transfer", "wallet", from.ID, "failed", err.Error())
			logrus.WithFields(logrus.Fields{
				"from_wallet_id": from.ID,     // Sender wallet
				"to_wallet_id":   to.ID,       // Recipient wallet
				"amount":         tx.Amount,   // Transfer amount
				"error":          err.Error(), // Error message
			}).Error("Transfer failed")
			return nil, err
		}
		s.audit(ctx, actor, "transfer", "wallet", from.ID, "success", "")
		logrus.WithFields(logrus.Fields{
			"from_wallet_id": from.ID,   // Sender wallet
			"to_wallet_id":   to.ID,     // Recipient wallet
			"amount":         tx.Amount, // Transfer amount
			"type":           tx.Type,   // Transaction type
		}).Info("Transfer transaction")
		return tx, nil
	})
}

// TopUp credits one of the actor's wallets
func (s *Service) TopUp(ctx context.Context, actor Actor, req domain.TopUpRequest) (*domain.Transaction, error) {
	return once(ctx, s, actor, req.IdempotencyKey, "top_up_wallet", func() (*domain.Transaction, error) {
		amount, err := amountOf(req.Amount)
		if err != nil {
			return nil, err
		}
		w, err := s.ownedWallet(ctx, actor, req.WalletID)
		if err != nil {
			return nil, err
		}
		desc := "Wallet top-up"
		if req.Method != "" {
			desc += " via " + req.Method
		}
		tx := &domain.Transaction{
			ID:          newID("txn"),
			Type:        domain.TxTopUp,
			Amount:      amount.InexactFloat64(),
			Currency:    w.Currency,
			Description: desc,
			Status:      domain.PaymentCompleted,
			ToWalletID:  w.ID,
			CreatedAt:   s.now(),
		}
		if err := s.store.Credit(ctx, w.ID, amount, tx); err != nil {
			s.audit(ctx, actor, "top_up", "wallet", w.ID, "failed", err.Error())
			return nil, err
		}
		s.audit(ctx, actor, "top_up", "wallet", w.ID, "success", "")
		logrus.WithFields(logrus.Fields{
			"wallet_id": w.ID,      // Credited wallet
			"amount":    tx.Amount, // Top-up amount
			"type":      tx.Type,   // Transaction type
		}).Info("Top-up transaction")
		return tx, nil
	})
}

// WalletTransactions pages through a wallet's history
func (s *Service) WalletTransactions(ctx context.Context, actor Actor, walletID string, q domain.PageQuery) (*domain.Page[domain.Transaction], error) {
	if _, err := s.ownedWallet(ctx, actor, walletID); err != nil {
		return nil, err
	}
	items, total, err := s.store.ListTransactions(ctx, walletID, q)
	if err != nil {
		return nil, err
	}
	return &domain.Page[domain.Transaction]{Data: items, Total: total}, nil
}
