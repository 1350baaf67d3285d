package domain

import "time" // Timestamps

// Wallet statuses
const (
	WalletActive = "active"
	WalletFrozen = "frozen"
	WalletClosed = "closed"
)

// Wallet Model
type Wallet struct {
	ID               string    `json:"id" gorm:"primaryKey;size:64"`           // Primary key
	CustomerID       string    `json:"customer_id" gorm:"index;size:64"`       // Owning user
	Currency         string    `json:"currency" gorm:"size:3;not null"`        // ISO 4217 code
	Balance          float64   `json:"balance" gorm:"not null;default:0"`      // Ledger balance
	AvailableBalance float64   `json:"available_balance" gorm:"not null;default:0"`
	PendingBalance   float64   `json:"pending_balance" gorm:"not null;default:0"`
	Status           string    `json:"status" gorm:"size:16;default:active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TransferRequest moves funds between two wallets
type TransferRequest struct {
	FromWalletID   string  `json:"from_wallet_id" binding:"required" validate:"required"`
	ToWalletID     string  `json:"to_wallet_id" binding:"required" validate:"required,nefield=FromWalletID"`
	Amount         float64 `json:"amount" binding:"required,gt=0" validate:"gt=0"`
	Currency       string  `json:"currency,omitempty" validate:"omitempty,len=3"`
	Description    string  `json:"description,omitempty"`
	IdempotencyKey string  `json:"idempotency_key,omitempty"`
}

// TopUpRequest adds funds to a wallet
type TopUpRequest struct {
	WalletID       string  `json:"wallet_id" validate:"required"`
	Amount         float64 `json:"amount" binding:"required,gt=0" validate:"gt=0"`
	Method         string  `json:"payment_method,omitempty"`
	IdempotencyKey string  `json:"idempotency_key,omitempty"`
}
