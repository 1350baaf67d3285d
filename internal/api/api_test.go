package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payportal/internal/domain"
	"payportal/internal/httpclient"
)

type recorded struct {
	method string
	path   string
	query  map[string]string
	body   map[string]any
}

func newClient(t *testing.T, reply string) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = map[string]string{}
		for k := range r.URL.Query() {
			rec.query[k] = r.URL.Query().Get(k)
		}
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			rec.body = map[string]any{}
			_ = json.Unmarshal(b, &rec.body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	h, err := httpclient.New(httpclient.Options{BaseURL: srv.URL})
	require.NoError(t, err)
	return New(h), rec
}

func TestLogin(t *testing.T) {
	c, rec := newClient(t, `{"access_token":"tok","token_type":"bearer","expires_in":3600,"user":{"id":"u1","email":"good@x.com","role":"user"}}`)

	resp, err := c.Login(context.Background(), domain.LoginRequest{Email: "good@x.com", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/auth/login", rec.path)
	assert.Equal(t, "good@x.com", rec.body["email"])
	assert.Equal(t, "tok", resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "u1", resp.User.ID)
}

func TestRegisterDoesNotSendConfirmation(t *testing.T) {
	c, rec := newClient(t, `{"access_token":"tok"}`)

	_, err := c.Register(context.Background(), domain.RegisterRequest{
		Name: "Ada", Email: "ada@x.com", Password: "longenough", ConfirmPassword: "longenough",
	})

	require.NoError(t, err)
	assert.Equal(t, "/auth/register", rec.path)
	assert.NotContains(t, rec.body, "confirm_password")
	assert.NotContains(t, rec.body, "ConfirmPassword")
}

func TestListPaymentsQuery(t *testing.T) {
	c, rec := newClient(t, `{"data":[{"id":"p1","amount":10,"status":"completed"}],"total":31}`)

	page, err := c.ListPayments(context.Background(), domain.PaymentFilter{
		PageQuery: domain.PageQuery{Page: 2, Limit: 10},
		Status:    domain.PaymentCompleted,
	})

	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/payments", rec.path)
	assert.Equal(t, map[string]string{"page": "2", "limit": "10", "status": "completed"}, rec.query)
	assert.Equal(t, int64(31), page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "p1", page.Data[0].ID)
}

func TestListWalletsNormalisesBareArray(t *testing.T) {
	c, rec := newClient(t, `[{"id":"w1","balance":100},{"id":"w2","balance":5.5}]`)

	page, err := c.ListWallets(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "/wallets", rec.path)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 5.5, page.Data[1].Balance)
}

func TestPathIDsAreEscaped(t *testing.T) {
	c, rec := newClient(t, `{"id":"a/b","status":"refunded"}`)

	_, err := c.RefundPayment(context.Background(), domain.RefundRequest{PaymentID: "a/b", Reason: "dup"})

	require.NoError(t, err)
	assert.Equal(t, "/payments/a/b/refund", rec.path, "server sees decoded path")
	assert.Equal(t, "dup", rec.body["reason"])
}

func TestTopUpAndTransferPaths(t *testing.T) {
	c, rec := newClient(t, `{"id":"t1","type":"top_up","amount":20}`)

	tx, err := c.TopUp(context.Background(), domain.TopUpRequest{WalletID: "w1", Amount: 20})
	require.NoError(t, err)
	assert.Equal(t, "/wallets/w1/topup", rec.path)
	assert.Equal(t, "t1", tx.ID)

	_, err = c.Transfer(context.Background(), domain.TransferRequest{FromWalletID: "w1", ToWalletID: "w2", Amount: 3})
	require.NoError(t, err)
	assert.Equal(t, "/wallets/transfer", rec.path)
	assert.Equal(t, 3.0, rec.body["amount"])
}

func TestAuditLogsQuery(t *testing.T) {
	c, rec := newClient(t, `{"data":[],"total":0}`)
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	page, err := c.AuditLogs(context.Background(), domain.AuditFilter{Action: "transfer", From: from})

	require.NoError(t, err)
	assert.Equal(t, "/audit/logs", rec.path)
	assert.Equal(t, "transfer", rec.query["action"])
	assert.Equal(t, "2026-03-01T00:00:00Z", rec.query["from"])
	assert.NotContains(t, rec.query, "to")
	assert.Empty(t, page.Data)
}

func TestSystemAlertsAndResolve(t *testing.T) {
	c, rec := newClient(t, `{"data":[{"id":"a1","status":"active"}],"total":1}`)

	page, err := c.SystemAlerts(context.Background(), domain.AlertActive, domain.PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, "/system/alerts", rec.path)
	assert.Equal(t, "active", rec.query["status"])
	assert.Len(t, page.Data, 1)

	c2, rec2 := newClient(t, `{"id":"a1","status":"resolved"}`)
	alert, err := c2.ResolveAlert(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "/system/alerts/a1/resolve", rec2.path)
	assert.Equal(t, domain.AlertResolved, alert.Status)
}

func TestErrorsPropagateUnchanged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Payment not found"}`))
	}))
	defer srv.Close()
	h, err := httpclient.New(httpclient.Options{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = New(h).GetPayment(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, httpclient.IsStatus(err, http.StatusNotFound))
	assert.Equal(t, "Payment not found", httpclient.UserMessage(err))
}
