package domain

import "time" // Timestamps

// Payment statuses
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentCancelled = "cancelled"
	PaymentRefunded  = "refunded"
)

// Payment Model
type Payment struct {
	ID             string            `json:"id" gorm:"primaryKey;size:64"`
	Amount         float64           `json:"amount"`
	Currency       string            `json:"currency" gorm:"size:3"`
	Method         string            `json:"payment_method" gorm:"size:32"`
	Status         string            `json:"status" gorm:"index;size:16"`
	CustomerID     string            `json:"customer_id" gorm:"index;size:64"`
	Description    string            `json:"description,omitempty" gorm:"size:255"`
	IdempotencyKey string            `json:"idempotency_key,omitempty" gorm:"size:128"`
	Metadata       map[string]string `json:"metadata,omitempty" gorm:"serializer:json"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// PaymentRequest creates a payment. Optimize only changes client-side messaging.
type PaymentRequest struct {
	Amount         float64           `json:"amount" validate:"gt=0"`
	Currency       string            `json:"currency" validate:"required,len=3"`
	Method         string            `json:"payment_method" validate:"required"`
	CustomerID     string            `json:"customer_id,omitempty"`
	Description    string            `json:"description,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
	Optimize       bool              `json:"-"`
}

// RefundRequest refunds a payment in full, or partially when Amount is set
type RefundRequest struct {
	PaymentID      string  `json:"payment_id" validate:"required"`
	Amount         float64 `json:"amount,omitempty" validate:"gte=0"`
	Reason         string  `json:"reason,omitempty"`
	IdempotencyKey string  `json:"idempotency_key,omitempty"`
}

// PaymentVerification is the backend's view of a payment's settlement
type PaymentVerification struct {
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
	Verified  bool   `json:"verified"`
	Message   string `json:"message,omitempty"`
}

// RoutingRequest asks for the cheapest/most reliable way to process a payment
type RoutingRequest struct {
	Amount     float64 `json:"amount" validate:"gt=0"`
	Currency   string  `json:"currency" validate:"required,len=3"`
	Method     string  `json:"payment_method,omitempty"`
	CustomerID string  `json:"customer_id,omitempty"`
}

// RoutingRecommendation is the backend's routing suggestion
type RoutingRecommendation struct {
	RecommendedMethod  string  `json:"recommended_method"`
	Processor          string  `json:"processor"`
	EstimatedFee       float64 `json:"estimated_fee"`
	SuccessProbability float64 `json:"success_probability"`
	Reason             string  `json:"reason,omitempty"`
}
