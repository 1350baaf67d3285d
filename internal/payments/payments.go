// Package payments holds the current payment and the wallet list, and runs
// every payment and wallet mutation the portal issues.
package payments

import (
	"context" // Request contexts
	"sync"    // Locking

	"github.com/sirupsen/logrus" // Logrus for structured logging

	"payportal/internal/domain"     // Domain models
	"payportal/internal/httpclient" // HTTP wrapper
	"payportal/internal/notify"     // Notifications
	"payportal/internal/validation" // Input validation
)

// Notification texts
const (
	MsgPaymentCreated   = "Payment created successfully"
	MsgOptimizedPayment = "AI-optimized payment created successfully"
	MsgTransferDone     = "Funds transferred successfully"
	MsgTopUpDone        = "Wallet topped up successfully"
	MsgRefundDone       = "Payment refunded successfully"
	MsgPaymentVerified  = "Payment verified"
)

// Tools is the slice of the tool-call client the container needs
type Tools interface {
	CreatePayment(ctx context.Context, req domain.PaymentRequest) (*domain.Payment, error)
	VerifyPayment(ctx context.Context, paymentID string) (*domain.PaymentVerification, error)
	RefundPayment(ctx context.Context, req domain.RefundRequest) (*domain.Payment, error)
	GetPaymentStatus(ctx context.Context, paymentID string) (*domain.Payment, error)
	TransferFunds(ctx context.Context, req domain.TransferRequest) (*domain.Transaction, error)
	TopUpWallet(ctx context.Context, req domain.TopUpRequest) (*domain.Transaction, error)
	OptimizeRouting(ctx context.Context, req domain.RoutingRequest) (*domain.RoutingRecommendation, error)
}

// WalletAPI is the slice of the REST client used to refresh wallets
type WalletAPI interface {
	ListWallets(ctx context.Context) (*domain.Page[domain.Wallet], error)
}

// Container is the single writer of payment and wallet state
type Container struct {
	tools    Tools
	wallets  WalletAPI
	notifier notify.Notifier
	log      *logrus.Entry

	mu         sync.RWMutex
	current    *domain.Payment
	walletList []domain.Wallet
	inFlight   int // Mutations currently running
}

// New creates a payments container
func New(tools Tools, wallets WalletAPI, notifier notify.Notifier) *Container {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Container{
		tools:    tools,
		wallets:  wallets,
		notifier: notifier,
		log:      logrus.WithField("component", "payments"),
	}
}

// CurrentPayment returns a copy of the last payment created or fetched
func (c *Container) CurrentPayment() *domain.Payment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return nil
	}
	p := *c.current
	return &p
}

// Wallets returns a copy of the cached wallet list
func (c *Container) Wallets() []domain.Wallet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Wallet(nil), c.walletList...)
}

// Processing reports whether a mutation is in flight
func (c *Container) Processing() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inFlight > 0
}

func (c *Container) begin() func() {
	c.mu.Lock()
	c.inFlight++
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		c.inFlight--
		c.mu.Unlock()
	}
}

func (c *Container) setCurrent(p *domain.Payment) {
	c.mu.Lock()
	c.current = p
	c.mu.Unlock()
}

func (c *Container) fail(err error) error {
	c.notifier.Error(httpclient.UserMessage(err))
	return err
}

// CreatePayment creates a payment. Optimize only selects the notification.
func (c *Container) CreatePayment(ctx context.Context, req domain.PaymentRequest) (*domain.Payment, error) {
	if err := validation.Struct(req); err != nil {
		return nil, c.fail(err)
	}
	defer c.begin()()

	p, err := c.tools.CreatePayment(ctx, req) // Create via tool call
	if err != nil {
		return nil, c.fail(err)
	}
	c.setCurrent(p) // Remember the payment
	if req.Optimize {
		c.notifier.Success(MsgOptimizedPayment)
	} else {
		c.notifier.Success(MsgPaymentCreated)
	}
	c.log.WithFields(logrus.Fields{
		"payment_id": p.ID,
		"amount":     p.Amount,
		"currency":   p.Currency,
		"optimized":  req.Optimize,
	}).Info("Payment created")
	return p, nil
}

// SubmitPaymentForm converts form input and creates the payment
func (c *Container) SubmitPaymentForm(ctx context.Context, form PaymentForm) (*domain.Payment, error) {
	req, err := form.Request()
	if err != nil {
		return nil, c.fail(err)
	}
	return c.CreatePayment(ctx, req)
}

// OptimizeRouting looks up the recommended route for a payment
func (c *Container) OptimizeRouting(ctx context.Context, req domain.RoutingRequest) (*domain.RoutingRecommendation, error) {
	if err := validation.Struct(req); err != nil {
		return nil, c.fail(err)
	}
	defer c.begin()()

	rec, err := c.tools.OptimizeRouting(ctx, req)
	if err != nil {
		return nil, c.fail(err)
	}
	return rec, nil
}

// VerifyPayment confirms settlement and refreshes the current payment
func (c *Container) VerifyPayment(ctx context.Context, paymentID string) (*domain.PaymentVerification, error) {
	if paymentID == "" {
		return nil, c.fail(&validation.Error{Field: "payment_id", Message: "is required"})
	}
	defer c.begin()()

	v, err := c.tools.VerifyPayment(ctx, paymentID)
	if err != nil {
		return nil, c.fail(err)
	}
	if p, err := c.tools.GetPaymentStatus(ctx, paymentID); err == nil {
		c.setCurrent(p)
	} else {
		c.log.WithError(err).Warn("Failed to refresh payment after verification")
	}
	c.notifier.Success(MsgPaymentVerified)
	return v, nil
}

// RefundPayment refunds a payment and replaces the current payment
func (c *Container) RefundPayment(ctx context.Context, req domain.RefundRequest) (*domain.Payment, error) {
	if err := validation.Struct(req); err != nil {
		return nil, c.fail(err)
	}
	defer c.begin()()

	p, err := c.tools.RefundPayment(ctx, req)
	if err != nil {
		return nil, c.fail(err)
	}
	c.setCurrent(p)
	c.notifier.Success(MsgRefundDone)
	return p, nil
}

// RefreshWallets refetches the wallet list from the backend
func (c *Container) RefreshWallets(ctx context.Context) ([]domain.Wallet, error) {
	page, err := c.wallets.ListWallets(ctx)
	if err != nil {
		c.log.WithError(err).Warn("Failed to refresh wallets")
		return nil, err
	}
	c.mu.Lock()
	c.walletList = append([]domain.Wallet(nil), page.Data...)
	c.mu.Unlock()
	return c.Wallets(), nil
}

// TransferFunds moves funds and then refetches wallets so balances are the
// backend's values
func (c *Container) TransferFunds(ctx context.Context, req domain.TransferRequest) (*domain.Transaction, error) {
	if err := validation.Struct(req); err != nil {
		return nil, c.fail(err)
	}
	defer c.begin()()

	tx, err := c.tools.TransferFunds(ctx, req) // Move funds via tool call
	if err != nil {
		return nil, c.fail(err)
	}
	if _, err := c.RefreshWallets(ctx); err != nil { // Show post-transfer balances
		c.notifier.Error("Transfer completed but balances could not be refreshed")
	}
	c.notifier.Success(MsgTransferDone)
	return tx, nil
}

// TopUpWallet adds funds and then refetches wallets
func (c *Container) TopUpWallet(ctx context.Context, req domain.TopUpRequest) (*domain.Transaction, error) {
	if err := validation.Struct(req); err != nil {
		return nil, c.fail(err)
	}
	defer c.begin()()

	tx, err := c.tools.TopUpWallet(ctx, req)
	if err != nil {
		return nil, c.fail(err)
	}
	if _, err := c.RefreshWallets(ctx); err != nil {
		c.notifier.Error("Top-up completed but balances could not be refreshed")
	}
	c.notifier.Success(MsgTopUpDone)
	return tx, nil
}
