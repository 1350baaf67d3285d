package payments

import (
	"strings" // String helpers

	"payportal/internal/domain"     // Domain models
	"payportal/internal/validation" // Input validation
)

// PaymentForm is payment input as typed by a user
type PaymentForm struct {
	Amount      string
	Currency    string
	Method      string
	CustomerID  string
	Description string
	Optimize    bool
}

// Request converts the form into a PaymentRequest; the amount is parsed
// exactly, so "49.99" becomes 49.99
func (f PaymentForm) Request() (domain.PaymentRequest, error) {
	amount, err := validation.ParseAmount(f.Amount)
	if err != nil {
		return domain.PaymentRequest{}, err
	}
	req := domain.PaymentRequest{
		Amount:      amount,
		Currency:    strings.ToUpper(strings.TrimSpace(f.Currency)),
		Method:      strings.TrimSpace(f.Method),
		CustomerID:  strings.TrimSpace(f.CustomerID),
		Description: strings.TrimSpace(f.Description),
		Optimize:    f.Optimize,
	}
	if err := validation.Struct(req); err != nil {
		return domain.PaymentRequest{}, err
	}
	return req, nil
}
