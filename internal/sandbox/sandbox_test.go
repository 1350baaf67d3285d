package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payportal/internal/domain"
	"payportal/internal/mcp"
)

type fixture struct {
	t      *testing.T
	svc    *Service
	router *gin.Engine
	seed   *SeedData
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := NewService(NewMemoryStore(), "test-secret")
	seed, err := Seed(context.Background(), svc)
	require.NoError(t, err)
	return &fixture{t: t, svc: svc, router: NewRouter(svc), seed: seed}
}

func (f *fixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	f.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(f.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) login(email, password string) string {
	f.t.Helper()
	w := f.do(http.MethodPost, "/auth/login", "", domain.LoginRequest{Email: email, Password: password})
	require.Equal(f.t, http.StatusOK, w.Code, w.Body.String())
	var resp domain.AuthResponse
	require.NoError(f.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (f *fixture) tool(token, name string, args any) mcp.Response {
	f.t.Helper()
	w := f.do(http.MethodPost, mcp.Endpoint, token, mcp.Request{
		JSONRPC: mcp.JSONRPCVersion,
		ID:      1,
		Method:  mcp.MethodToolsCall,
		Params:  mcp.ToolCallParams{Name: name, Arguments: toMap(f.t, args)},
	})
	require.Equal(f.t, http.StatusOK, w.Code)
	return decodeBody[mcp.Response](f.t, w)
}

func toMap(t *testing.T, v any) map[string]any {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestLoginAndMe(t *testing.T) {
	f := newFixture(t)
	token := f.login(DemoUserEmail, DemoUserPassword)

	w := f.do(http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decodeBody[domain.User](t, w)
	assert.Equal(t, f.seed.UserID, me.ID)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestLoginFailureIsRecorded(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodPost, "/auth/login", "", domain.LoginRequest{Email: DemoUserEmail, Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid email or password"}`, w.Body.String())

	admin := f.login(DemoAdminEmail, DemoAdminPassword)
	w = f.do(http.MethodGet, "/auth/login-attempts", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decodeBody[domain.Page[domain.LoginAttempt]](t, w)
	require.EqualValues(t, 2, page.Total)
	assert.True(t, page.Data[0].Success)
	assert.False(t, page.Data[1].Success)
}

func TestRegisterOpensWallet(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodPost, "/auth/register", "", RegisterBody{Name: "New", Email: "new@example.com", Password: "password1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeBody[domain.AuthResponse](t, w)
	assert.Equal(t, domain.RoleUser, resp.User.Role)

	w = f.do(http.MethodGet, "/wallets", resp.AccessToken, nil)
	wallets := decodeBody[[]domain.Wallet](t, w)
	require.Len(t, wallets, 1)
	assert.Equal(t, DefaultCurrency, wallets[0].Currency)

	w = f.do(http.MethodPost, "/auth/register", "", RegisterBody{Name: "Dup", Email: "NEW@example.com", Password: "password1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	token := f.login(DemoUserEmail, DemoUserPassword)

	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/auth/logout", token, nil).Code)
	w := f.do(http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWalletsIsBareArray(t *testing.T) {
	f := newFixture(t)
	token := f.login(DemoUserEmail, DemoUserPassword)
	w := f.do(http.MethodGet, "/wallets", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, byte('['), bytes.TrimSpace(w.Body.Bytes())[0])
	wallets := decodeBody[[]domain.Wallet](t, w)
	assert.Len(t, wallets, 2)
}

func TestTransferMovesFunds(t *testing.T) {
	f := newFixture(t)
	token := f.login(DemoUserEmail, DemoUserPassword)
	from, to := f.seed.UserWallets[0], f.seed.UserWallets[1]

	w := f.do(http.MethodPost, "/wallets/transfer", token, domain.TransferRequest{FromWalletID: from, ToWalletID: to, Amount: 100.10})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	tx := decodeBody[domain.Transaction](t, w)
	assert.Equal(t, domain.TxTransfer, tx.Type)

	src := decodeBody[domain.Wallet](t, f.do(http.MethodGet, "/wallets/"+from, token, nil))
	dst := decodeBody[domain.Wallet](t, f.do(http.MethodGet, "/wallets/"+to, token, nil))
	assert.Equal(t, 899.90, src.Balance)
	assert.Equal(t, 350.10, dst.Balance)

	hist := decodeBody[domain.Page[domain.Transaction]](t, f.do(http.MethodGet, "/wallets/"+to+"/transactions", token, nil))
	assert.EqualValues(t, 1, hist.Total)
}

func TestTransferRejections(t *testing.T) {
	f := newFixture(t)
	token := f.login(DemoUserEmail, DemoUserPassword)
	from, to := f.seed.UserWallets[0], f.seed.UserWallets[1]

	w := f.do(http.MethodPost, "/wallets/transfer", token, domain.TransferRequest{FromWalletID: from, ToWalletID: to, Amount: 1e6})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "insufficient funds")

	w = f.do(http.MethodPost, "/wallets/transfer", token, domain.TransferRequest{FromWalletID: f.seed.AdminWallets[0], ToWalletID: to, Amount: 1})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodPost, "/wallets/transfer", token, domain.TransferRequest{FromWalletID: from, ToWalletID: to, Amount: 1.234})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIdempotentTopUpReplays(t *testing.T) {
	f := newFixture(t)
	token := f.login(DemoUserEmail, DemoUserPassword)
	wallet := f.seed.UserWallets[1]
	req := domain.TopUpRequest{WalletID: wallet, Amount: 50, IdempotencyKey: "topup_1_abc"}

	first := f.tool(token, mcp.ToolTopUpWallet, req)
	second := f.tool(token, mcp.ToolTopUpWallet, req)
	require.Nil(t, first.Error)
	require.Nil(t, second.Error)
	assert.JSONEq(t, string(first.Result), string(second.Result))

	w := decodeBody[domain.Wallet](t, f.do(http.MethodGet, "/wallets/"+wallet, token, nil))
	assert.Equal(t, 300.0, w.Balance)
}

func TestIdempotencyKeyIsScopedToActor(t *testing.T) {
	f := newFixture(t)
	user := f.login(DemoUserEmail, DemoUserPassword)
	admin := f.login(DemoAdminEmail, DemoAdminPassword)
	key := "topup_1_shared"

	first := f.tool(user, mcp.ToolTopUpWallet, domain.TopUpRequest{WalletID: f.seed.UserWallets[1], Amount: 50, IdempotencyKey: key})
	require.Nil(t, first.Error)

	other := f.tool(admin, mcp.ToolTopUpWallet, domain.TopUpRequest{WalletID: f.seed.AdminWallets[0], Amount: 50, IdempotencyKey: key})
	require.NotNil(t, other.Error)
	assert.Equal(t, CodeServerError, other.Error.Code)
	assert.Empty(t, other.Result)

	w := decodeBody[domain.Wallet](t, f.do(http.MethodGet, "/wallets/"+f.seed.AdminWallets[0], admin, nil))
	assert.Equal(t, 5000.0, w.Balance)
}

func TestLockOrderIsStable(t *testing.T) {
	a, b := lockOrder("wal_b", "wal_a")
	c, d := lockOrder("wal_a", "wal_b")
	assert.Equal(t, []string{"wal_a", "wal_b"}, []string{a, b})
	assert.Equal(t, []string{a, b}, []string{c, d})
}

func TestPaymentLifecycle(t *testing.T) {
	f := newFixture(t)
	token := f.login(DemoUserEmail, DemoUserPassword)

	resp := f.tool(token, mcp.ToolCreatePayment, domain.PaymentRequest{Amount: 49.99, Currency: "usd", Method: "bank_transfer"})
	require.Nil(t, resp.Error)
	var p domain.Payment
	require.NoError(t, json.Unmarshal(resp.Result, &p))
	assert.Equal(t, domain.PaymentPending, p.Status)
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, f.seed.UserID, p.CustomerID)

	resp = f.tool(token, mcp.ToolRefundPayment, domain.RefundRequest{PaymentID: p.ID})
	require.NotNil(t, resp.Error)
	assert.Equal(t, mcp.CodeInvalidParams, resp.Error.Code)

	resp = f.tool(token, mcp.ToolVerifyPayment, map[string]any{"payment_id": p.ID})
	require.Nil(t, resp.Error)
	var v domain.PaymentVerification
	require.NoError(t, json.Unmarshal(resp.Result, &v))
	assert.True(t, v.Verified)

	w := f.do(http.MethodPost, "/payments/"+p.ID+"/refund", token, domain.RefundRequest{Reason: "duplicate"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	refunded := decodeBody[domain.Payment](t, w)
	assert.Equal(t, domain.PaymentRefunded, refunded.Status)
	assert.Equal(t, "49.99", refunded.Metadata["refunded_amount"])

	list := decodeBody[domain.Page[domain.Payment]](t, f.do(http.MethodGet, "/payments?status=refunded", token, nil))
	assert.EqualValues(t, 1, list.Total)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	f := newFixture(t)
	user := f.login(DemoUserEmail, DemoUserPassword)
	admin := f.login(DemoAdminEmail, DemoAdminPassword)

	for _, path := range []string{"/analytics/revenue", "/audit/logs", "/system/alerts", "/auth/users", "/compliance/reports"} {
		assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, path, user, nil).Code, path)
		assert.Equal(t, http.StatusOK, f.do(http.MethodGet, path, admin, nil).Code, path)
	}

	resp := f.tool(user, mcp.ToolDetectFraud, domain.AnalyticsQuery{})
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Access denied", resp.Error.Message)
}

func TestAlertsAndAudit(t *testing.T) {
	f := newFixture(t)
	admin := f.login(DemoAdminEmail, DemoAdminPassword)

	w := f.do(http.MethodPost, "/system/alerts", admin, domain.CreateAlertRequest{Severity: domain.SeverityCritical, Title: "Processor down"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	alert := decodeBody[domain.Alert](t, w)

	w = f.do(http.MethodPost, "/system/alerts/"+alert.ID+"/resolve", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resolved := decodeBody[domain.Alert](t, w)
	assert.Equal(t, domain.AlertResolved, resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)

	active := decodeBody[domain.Page[domain.Alert]](t, f.do(http.MethodGet, "/system/alerts?status=active", admin, nil))
	assert.Zero(t, active.Total)

	logs := decodeBody[domain.Page[domain.AuditLog]](t, f.do(http.MethodGet, "/audit/logs?resource=alert", admin, nil))
	assert.EqualValues(t, 2, logs.Total)
}

func TestComplianceAndAnalytics(t *testing.T) {
	f := newFixture(t)
	user := f.login(DemoUserEmail, DemoUserPassword)
	admin := f.login(DemoAdminEmail, DemoAdminPassword)

	require.Nil(t, f.tool(user, mcp.ToolCreatePayment, domain.PaymentRequest{Amount: 20000, Currency: "USD", Method: "card"}).Error)
	require.Nil(t, f.tool(user, mcp.ToolCreatePayment, domain.PaymentRequest{Amount: 10, Currency: "USD", Method: "card"}).Error)

	rev := decodeBody[domain.RevenueAnalytics](t, f.do(http.MethodGet, "/analytics/revenue?period=day", admin, nil))
	assert.Equal(t, 20010.0, rev.TotalRevenue)
	assert.EqualValues(t, 2, rev.PaymentCount)

	resp := f.tool(admin, mcp.ToolDetectFraud, domain.AnalyticsQuery{})
	require.Nil(t, resp.Error)
	var fraud domain.FraudAnalytics
	require.NoError(t, json.Unmarshal(resp.Result, &fraud))
	assert.EqualValues(t, 1, fraud.FlaggedPayments)

	// The large payment raised an alert
	alerts := decodeBody[domain.Page[domain.Alert]](t, f.do(http.MethodGet, "/system/alerts?status=active", admin, nil))
	assert.EqualValues(t, 1, alerts.Total)

	w := f.do(http.MethodPost, "/compliance/reports", admin, map[string]any{"report_type": "aml"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	report := decodeBody[domain.ComplianceReport](t, w)
	assert.EqualValues(t, 1, report.Summary["flagged"])
	assert.EqualValues(t, 2, report.Summary["payments"])
}

func TestMCPEnvelopeErrors(t *testing.T) {
	f := newFixture(t)
	token := f.login(DemoUserEmail, DemoUserPassword)

	resp := f.tool(token, "no_such_tool", nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, mcp.CodeMethodNotFound, resp.Error.Code)

	w := f.do(http.MethodPost, mcp.Endpoint, token, mcp.Request{JSONRPC: mcp.JSONRPCVersion, ID: 7, Method: mcp.MethodToolsList})
	list := decodeBody[mcp.Response](t, w)
	require.Nil(t, list.Error)
	assert.JSONEq(t, "7", string(list.ID))
	assert.Contains(t, string(list.Result), mcp.ToolTransferFunds)

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodPost, mcp.Endpoint, "", nil).Code)
}

func TestOptimizeRouting(t *testing.T) {
	svc := NewService(NewMemoryStore(), "k")
	rec, err := svc.OptimizeRouting(context.Background(), domain.RoutingRequest{Amount: 100, Currency: "USD"})
	require.NoError(t, err)
	assert.Equal(t, "wallet", rec.RecommendedMethod)
	assert.Zero(t, rec.EstimatedFee)

	rec, err = svc.OptimizeRouting(context.Background(), domain.RoutingRequest{Amount: 100, Currency: "USD", Method: "card"})
	require.NoError(t, err)
	assert.Equal(t, "stripe", rec.Processor)
	assert.Equal(t, 2.9, rec.EstimatedFee)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	page, total := paginate(items, domain.PageQuery{Page: 2, Limit: 2})
	assert.Equal(t, []int{3, 4}, page)
	assert.EqualValues(t, 5, total)

	page, _ = paginate(items, domain.PageQuery{Page: 9, Limit: 2})
	assert.Empty(t, page)
}
