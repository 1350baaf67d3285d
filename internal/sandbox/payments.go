package sandbox

import (
	"context" // Request-scoped cancellation
	"strings" // Currency normalisation

	"github.com/shopspring/decimal" // Exact refund arithmetic
	"github.com/sirupsen/logrus"    // Structured logging

	"payportal/internal/domain" // Domain models
)

// Payment methods the sandbox accepts
var paymentMethods = map[string]bool{
	"card":          true,
	"bank_transfer": true,
	"wallet":        true,
	"crypto":        true,
}

// Routing table used by optimize_payment_routing: fee rate and success rate
var processors = map[string]struct {
	Processor string
	FeeRate   float64
	Success   float64
}{
	"card":          {"stripe", 0.029, 0.97},
	"bank_transfer": {"plaid", 0.008, 0.99},
	"wallet":        {"internal", 0.0, 0.995},
	"crypto":        {"coinbase", 0.015, 0.93},
}

// ownedPayment loads a payment the actor may see
func (s *Service) ownedPayment(ctx context.Context, actor Actor, id string) (*domain.Payment, error) {
	p, err := s.store.Payment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && p.CustomerID != actor.UserID {
		return nil, ErrForbidden
	}
	return p, nil
}

// CreatePayment records a payment. Bank transfers stay pending until
// verified; other methods settle immediately.
func (s *Service) CreatePayment(ctx context.Context, actor Actor, req domain.PaymentRequest) (*domain.Payment, error) {
	return once(ctx, s, actor, req.IdempotencyKey, "create_payment", func() (*domain.Payment, error) {
		amount, err := amountOf(req.Amount)
		if err != nil {
			return nil, err
		}
		if len(req.Currency) != 3 {
			return nil, invalid("Currency must be a 3-letter code")
		}
		if !paymentMethods[req.Method] {
			return nil, invalid("Unsupported payment method: " + req.Method)
		}
		customer := req.CustomerID
		if customer == "" || !actor.IsAdmin() {
			customer = actor.UserID
		}
		status := domain.PaymentCompleted
		if req.Method == "bank_transfer" {
			status = domain.PaymentPending
		}
		now := s.now()
		p := &domain.Payment{
			ID:             newID("pay"),
			Amount:         amount.InexactFloat64(),
			Currency:       strings.ToUpper(req.Currency),
			Method:         req.Method,
			Status:         status,
			CustomerID:     customer,
			Description:    req.Description,
			IdempotencyKey: req.IdempotencyKey,
			Metadata:       req.Metadata,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.store.CreatePayment(ctx, p); err != nil {
			return nil, err
		}
		s.audit(ctx, actor, "create_payment", "payment", p.ID, "success", "")
		logrus.WithFields(logrus.Fields{
			"payment_id": p.ID,     // Payment ID
			"amount":     p.Amount, // Payment amount
			"method":     p.Method, // Payment method
			"status":     p.Status, // Initial status
		}).Info("Payment created")
		if p.Amount > FraudThreshold {
			s.raise(ctx, domain.SeverityWarning, "Large payment", "Payment "+p.ID+" exceeds the review threshold", "payment")
		}
		return p, nil
	})
}

// GetPayment returns one payment
func (s *Service) GetPayment(ctx context.Context, actor Actor, id string) (*domain.Payment, error) {
	return s.ownedPayment(ctx, actor, id)
}

// ListPayments pages through payments; non-admins only see their own
func (s *Service) ListPayments(ctx context.Context, actor Actor, f domain.PaymentFilter) (*domain.Page[domain.Payment], error) {
	if !actor.IsAdmin() {
		f.CustomerID = actor.UserID
	}
	items, total, err := s.store.ListPayments(ctx, f)
	if err != nil {
		return nil, err
	}
	return &domain.Page[domain.Payment]{Data: items, Total: total}, nil
}

// VerifyPayment settles a pending payment and reports its state
func (s *Service) VerifyPayment(ctx context.Context, actor Actor, id string) (*domain.PaymentVerification, error) {
	p, err := s.ownedPayment(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if p.Status == domain.PaymentPending {
		p.Status = domain.PaymentCompleted
		p.UpdatedAt = s.now()
		if err := s.store.UpdatePayment(ctx, p); err != nil {
			return nil, err
		}
		s.audit(ctx, actor, "verify_payment", "payment", p.ID, "success", "")
	}
	v := &domain.PaymentVerification{
		PaymentID: p.ID,
		Status:    p.Status,
		Verified:  p.Status == domain.PaymentCompleted || p.Status == domain.PaymentRefunded,
	}
	if !v.Verified {
		v.Message = "Payment is " + p.Status
	}
	return v, nil
}

// RefundPayment refunds a completed payment, in full when Amount is zero
func (s *Service) RefundPayment(ctx context.Context, actor Actor, req domain.RefundRequest) (*domain.Payment, error) {
	return once(ctx, s, actor, req.IdempotencyKey, "refund_payment", func() (*domain.Payment, error) {
		p, err := s.ownedPayment(ctx, actor, req.PaymentID)
		if err != nil {
			return nil, err
		}
		if p.Status != domain.PaymentCompleted {
			return nil, invalid("Only completed payments can be refunded")
		}
		refund := decimal.NewFromFloat(p.Amount)
		if req.Amount > 0 {
			requested := decimal.NewFromFloat(req.Amount)
			if requested.GreaterThan(refund) {
				return nil, invalid("Refund exceeds the payment amount")
			}
			refund = requested
		}
		p.Status = domain.PaymentRefunded
		p.UpdatedAt = s.now()
		if p.Metadata == nil {
			p.Metadata = map[string]string{}
		}
		p.Metadata["refunded_amount"] = refund.StringFixed(2)
		if req.Reason != "" {
			p.Metadata["refund_reason"] = req.Reason
		}
		if err := s.store.UpdatePayment(ctx, p); err != nil {
			return nil, err
		}
		s.audit(ctx, actor, "refund_payment", "payment", p.ID, "success", req.Reason)
		logrus.WithFields(logrus.Fields{
			"payment_id": p.ID,                  // Refunded payment
			"amount":     refund.StringFixed(2), // Refunded amount
		}).Info("Payment refunded")
		return p, nil
	})
}

// OptimizeRouting recommends the cheapest processor that is likely to
// succeed for the request
func (s *Service) OptimizeRouting(_ context.Context, req domain.RoutingRequest) (*domain.RoutingRecommendation, error) {
	amount, err := amountOf(req.Amount)
	if err != nil {
		return nil, err
	}
	method := req.Method
	reason := "Requested method"
	if _, ok := processors[method]; !ok {
		method = ""
	}
	if method == "" {
		reason = "Lowest fee among processors with at least 95% success"
		best := ""
		for m, p := range processors {
			if p.Success < 0.95 {
				continue
			}
			if best == "" || p.FeeRate < processors[best].FeeRate || (p.FeeRate == processors[best].FeeRate && m < best) {
				best = m
			}
		}
		method = best
	}
	p := processors[method]
	fee := amount.Mul(decimal.NewFromFloat(p.FeeRate)).Round(2)
	return &domain.RoutingRecommendation{
		RecommendedMethod:  method,
		Processor:          p.Processor,
		EstimatedFee:       fee.InexactFloat64(),
		SuccessProbability: p.Success,
		Reason:             reason,
	}, nil
}
