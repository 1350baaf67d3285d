package payments

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payportal/internal/api"
	"payportal/internal/credential"
	"payportal/internal/domain"
	"payportal/internal/httpclient"
	"payportal/internal/mcp"
	"payportal/internal/notify"
	"payportal/internal/sandbox"
	"payportal/internal/session"
	"payportal/internal/validation"
)

type fakeTools struct {
	created   []domain.PaymentRequest
	transfers int
	err       error
	busy      func() bool
}

func (f *fakeTools) CreatePayment(_ context.Context, req domain.PaymentRequest) (*domain.Payment, error) {
	if f.busy != nil && !f.busy() {
		return nil, errors.New("processing flag not set")
	}
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, req)
	return &domain.Payment{ID: "pay_1", Amount: req.Amount, Currency: req.Currency, Status: domain.PaymentCompleted}, nil
}

func (f *fakeTools) VerifyPayment(_ context.Context, id string) (*domain.PaymentVerification, error) {
	return &domain.PaymentVerification{PaymentID: id, Status: domain.PaymentCompleted, Verified: true}, nil
}

func (f *fakeTools) RefundPayment(_ context.Context, req domain.RefundRequest) (*domain.Payment, error) {
	return &domain.Payment{ID: req.PaymentID, Status: domain.PaymentRefunded}, nil
}

func (f *fakeTools) GetPaymentStatus(_ context.Context, id string) (*domain.Payment, error) {
	return &domain.Payment{ID: id, Status: domain.PaymentCompleted}, nil
}

func (f *fakeTools) TransferFunds(_ context.Context, req domain.TransferRequest) (*domain.Transaction, error) {
	f.transfers++
	return &domain.Transaction{ID: "txn_1", Type: domain.TxTransfer, Amount: req.Amount}, nil
}

func (f *fakeTools) TopUpWallet(_ context.Context, req domain.TopUpRequest) (*domain.Transaction, error) {
	return &domain.Transaction{ID: "txn_2", Type: domain.TxTopUp, Amount: req.Amount}, nil
}

func (f *fakeTools) OptimizeRouting(_ context.Context, req domain.RoutingRequest) (*domain.RoutingRecommendation, error) {
	return &domain.RoutingRecommendation{RecommendedMethod: "wallet"}, nil
}

type fakeWallets struct {
	wallets []domain.Wallet
	calls   int
}

func (f *fakeWallets) ListWallets(context.Context) (*domain.Page[domain.Wallet], error) {
	f.calls++
	return &domain.Page[domain.Wallet]{Data: f.wallets, Total: int64(len(f.wallets))}, nil
}

func TestOptimizeSelectsNotificationText(t *testing.T) {
	tests := []struct {
		name     string
		optimize bool
		want     string
	}{
		{"optimized", true, "AI-optimized payment created successfully"},
		{"plain", false, "Payment created successfully"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &notify.Recorder{}
			c := New(&fakeTools{}, &fakeWallets{}, rec)
			_, err := c.CreatePayment(context.Background(), domain.PaymentRequest{
				Amount: 10, Currency: "USD", Method: "card", Optimize: tt.optimize,
			})
			require.NoError(t, err)
			last, ok := rec.Last()
			require.True(t, ok)
			assert.Equal(t, notify.LevelSuccess, last.Level)
			assert.Equal(t, tt.want, last.Message)
		})
	}
}

func TestFormAmountSentAsNumber(t *testing.T) {
	tools := &fakeTools{}
	c := New(tools, &fakeWallets{}, nil)

	p, err := c.SubmitPaymentForm(context.Background(), PaymentForm{Amount: "49.99", Currency: "usd", Method: "card"})
	require.NoError(t, err)
	require.Len(t, tools.created, 1)
	assert.Equal(t, 49.99, tools.created[0].Amount)
	assert.Equal(t, "USD", tools.created[0].Currency)
	assert.Equal(t, "pay_1", c.CurrentPayment().ID)
	assert.Equal(t, p.ID, c.CurrentPayment().ID)
}

func TestValidationRunsBeforeAnyCall(t *testing.T) {
	tools := &fakeTools{}
	rec := &notify.Recorder{}
	c := New(tools, &fakeWallets{}, rec)
	ctx := context.Background()

	_, err := c.SubmitPaymentForm(ctx, PaymentForm{Amount: "-5", Currency: "USD", Method: "card"})
	require.Error(t, err)
	assert.True(t, validation.IsValidation(err))

	_, err = c.CreatePayment(ctx, domain.PaymentRequest{Amount: 10, Currency: "US", Method: "card"})
	require.Error(t, err)

	_, err = c.TransferFunds(ctx, domain.TransferRequest{FromWalletID: "w1", ToWalletID: "w1", Amount: 5})
	require.Error(t, err)

	assert.Empty(t, tools.created)
	assert.Zero(t, tools.transfers)
	last, _ := rec.Last()
	assert.Equal(t, notify.LevelError, last.Level)
}

func TestOversizedAmountIsFieldError(t *testing.T) {
	tools := &fakeTools{}
	rec := &notify.Recorder{}
	c := New(tools, &fakeWallets{}, rec)

	_, err := c.SubmitPaymentForm(context.Background(), PaymentForm{Amount: "1e400", Currency: "USD", Method: "card"})

	require.Error(t, err)
	assert.True(t, validation.IsValidation(err))
	assert.Empty(t, tools.created)
	last, _ := rec.Last()
	assert.Equal(t, "amount: is too large", last.Message)
}

func TestProcessingFlagClearedOnError(t *testing.T) {
	tools := &fakeTools{err: &httpclient.APIError{StatusCode: 500, Message: "Gateway down"}}
	rec := &notify.Recorder{}
	c := New(tools, &fakeWallets{}, rec)
	tools.busy = c.Processing

	_, err := c.CreatePayment(context.Background(), domain.PaymentRequest{Amount: 10, Currency: "USD", Method: "card"})
	require.Error(t, err)
	assert.False(t, c.Processing())
	assert.Nil(t, c.CurrentPayment())
	last, _ := rec.Last()
	assert.Equal(t, "Gateway down", last.Message)
}

// gatedTools holds CreatePayment until release is signalled
type gatedTools struct {
	fakeTools
	entered chan struct{}
	release chan struct{}
}

func (g *gatedTools) CreatePayment(_ context.Context, req domain.PaymentRequest) (*domain.Payment, error) {
	g.entered <- struct{}{}
	<-g.release
	return &domain.Payment{ID: "pay_gated", Amount: req.Amount, Currency: req.Currency}, nil
}

func TestProcessingStaysSetWhileCallsOverlap(t *testing.T) {
	tools := &gatedTools{entered: make(chan struct{}), release: make(chan struct{})}
	c := New(tools, &fakeWallets{}, nil)
	req := domain.PaymentRequest{Amount: 10, Currency: "USD", Method: "card"}

	done := make(chan struct{})
	for i := 0; i < 2; i++ {
		go func() {
			_, _ = c.CreatePayment(context.Background(), req)
			done <- struct{}{}
		}()
	}
	<-tools.entered
	<-tools.entered
	assert.True(t, c.Processing())

	tools.release <- struct{}{}
	<-done
	assert.True(t, c.Processing(), "second call still running")

	tools.release <- struct{}{}
	<-done
	assert.False(t, c.Processing())
}

func TestTransferRefreshesWallets(t *testing.T) {
	wallets := &fakeWallets{wallets: []domain.Wallet{{ID: "w1", Balance: 90}, {ID: "w2", Balance: 10}}}
	c := New(&fakeTools{}, wallets, nil)

	_, err := c.TransferFunds(context.Background(), domain.TransferRequest{FromWalletID: "w1", ToWalletID: "w2", Amount: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, wallets.calls)
	assert.Len(t, c.Wallets(), 2)
}

// stack wires the real client packages to a seeded sandbox backend
type stack struct {
	session  *session.Session
	payments *Container
	api      *api.Client
	seed     *sandbox.SeedData
	notes    *notify.Recorder
}

func newStack(t *testing.T) *stack {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := sandbox.NewService(sandbox.NewMemoryStore(), "test-secret")
	seed, err := sandbox.Seed(context.Background(), svc)
	require.NoError(t, err)
	srv := httptest.NewServer(sandbox.NewRouter(svc))
	t.Cleanup(srv.Close)

	store := credential.NewMemoryStore()
	h, err := httpclient.New(httpclient.Options{BaseURL: srv.URL, Store: store})
	require.NoError(t, err)
	rest := api.New(h)
	notes := &notify.Recorder{}
	sess := session.New(rest, store, notes, session.WithSecure(h.Secure()))
	h.OnUnauthorized(sess.Invalidate)
	return &stack{
		session:  sess,
		payments: New(mcp.New(h), rest, notes),
		api:      rest,
		seed:     seed,
		notes:    notes,
	}
}

func TestTransferThenRefreshShowsNewBalances(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	_, err := s.session.Login(ctx, sandbox.DemoUserEmail, sandbox.DemoUserPassword)
	require.NoError(t, err)

	before, err := s.payments.RefreshWallets(ctx)
	require.NoError(t, err)
	require.Len(t, before, 2)

	from, to := s.seed.UserWallets[0], s.seed.UserWallets[1]
	_, err = s.payments.TransferFunds(ctx, domain.TransferRequest{FromWalletID: from, ToWalletID: to, Amount: 25.5})
	require.NoError(t, err)

	balances := map[string]float64{}
	for _, w := range s.payments.Wallets() {
		balances[w.ID] = w.Balance
	}
	assert.Equal(t, 974.5, balances[from])
	assert.Equal(t, 275.5, balances[to])
	last, _ := s.notes.Last()
	assert.Equal(t, MsgTransferDone, last.Message)
}

func TestCreatePaymentAgainstSandbox(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	_, err := s.session.Login(ctx, sandbox.DemoUserEmail, sandbox.DemoUserPassword)
	require.NoError(t, err)

	p, err := s.payments.SubmitPaymentForm(ctx, PaymentForm{Amount: "49.99", Currency: "USD", Method: "card", Optimize: true})
	require.NoError(t, err)
	assert.Equal(t, 49.99, p.Amount)
	assert.NotEmpty(t, p.IdempotencyKey)

	got, err := s.api.GetPayment(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 49.99, got.Amount)
	last, _ := s.notes.Last()
	assert.Equal(t, MsgOptimizedPayment, last.Message)

	refunded, err := s.payments.RefundPayment(ctx, domain.RefundRequest{PaymentID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentRefunded, refunded.Status)
	assert.Equal(t, domain.PaymentRefunded, s.payments.CurrentPayment().Status)
}

func TestLogoutThenCallsAreUnauthorized(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	user, err := s.session.Login(ctx, sandbox.DemoUserEmail, sandbox.DemoUserPassword)
	require.NoError(t, err)

	me, err := s.api.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.ID, me.ID)

	s.session.Logout(ctx)
	assert.False(t, s.session.IsAuthenticated())
	_, err = s.payments.RefreshWallets(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, httpclient.ErrUnauthorized)
}

func TestRevokedTokenSignsSessionOut(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	_, err := s.session.Login(ctx, sandbox.DemoUserEmail, sandbox.DemoUserPassword)
	require.NoError(t, err)
	require.True(t, s.session.IsAuthenticated())

	// Revoke on the server only; the client still holds the token
	require.NoError(t, s.api.Logout(ctx))

	_, err = s.payments.RefreshWallets(ctx)
	assert.ErrorIs(t, err, httpclient.ErrUnauthorized)
	assert.False(t, s.session.IsAuthenticated())
	assert.Nil(t, s.session.User())
}
