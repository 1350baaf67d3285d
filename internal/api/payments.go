package api

import (
	"context" // Request contexts

	"payportal/internal/domain" // Domain models
)

// ListPayments lists payments matching f
func (c *Client) ListPayments(ctx context.Context, f domain.PaymentFilter) (*domain.Page[domain.Payment], error) {
	q := pageValues(f.PageQuery)
	setIf(q, "status", f.Status)
	setIf(q, "customer_id", f.CustomerID)
	setIf(q, "payment_method", f.Method)
	var out domain.Page[domain.Payment]
	if err := c.http.Get(ctx, "/payments", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPayment fetches one payment
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	var out domain.Payment
	if err := c.http.Get(ctx, "/payments/"+id(paymentID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePayment creates a payment through the REST surface
func (c *Client) CreatePayment(ctx context.Context, req domain.PaymentRequest) (*domain.Payment, error) {
	var out domain.Payment
	if err := c.http.Post(ctx, "/payments", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefundPayment refunds a payment
func (c *Client) RefundPayment(ctx context.Context, req domain.RefundRequest) (*domain.Payment, error) {
	var out domain.Payment
	if err := c.http.Post(ctx, "/payments/"+id(req.PaymentID)+"/refund", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
