package domain

import "time" // Timestamps

// Transaction types
const (
	TxTransfer = "transfer"
	TxTopUp    = "top_up"
	TxPayment  = "payment"
	TxRefund   = "refund"
)

// Transaction Model, read-only from the client's side
type Transaction struct {
	ID           string    `json:"id" gorm:"primaryKey;size:64"`             // Primary key
	Type         string    `json:"type" gorm:"size:16"`                      // transfer, top_up, payment, refund
	Amount       float64   `json:"amount"`                                   // Amount moved
	Currency     string    `json:"currency" gorm:"size:3"`                   // ISO 4217 code
	Description  string    `json:"description,omitempty" gorm:"size:255"`    // Free text
	Status       string    `json:"status" gorm:"size:16"`                    // completed, failed
	FromWalletID string    `json:"from_wallet_id,omitempty" gorm:"index;size:64"`
	ToWalletID   string    `json:"to_wallet_id,omitempty" gorm:"index;size:64"`
	CreatedAt    time.Time `json:"created_at"`
}
