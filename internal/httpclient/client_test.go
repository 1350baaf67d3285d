package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payportal/internal/credential"
	"payportal/internal/validation"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, redirects *int32) (*Client, *credential.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store := credential.NewMemoryStore()
	c, err := New(Options{
		BaseURL: srv.URL + "/api",
		Store:   store,
		Redirector: RedirectFunc(func(route string) {
			assert.Equal(t, "/auth/login", route)
			if redirects != nil {
				atomic.AddInt32(redirects, 1)
			}
		}),
	})
	require.NoError(t, err)
	return c, store
}

func TestDoAttachesBearerAndDecodes(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/payments", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": true}`))
	}, nil)
	require.NoError(t, store.Save(context.Background(), credential.New("tok-1", 60, false, time.Now())))

	var out struct {
		OK bool `json:"ok"`
	}
	err := c.Get(context.Background(), "/payments", url.Values{"page": {"2"}}, &out)

	require.NoError(t, err)
	assert.True(t, out.OK)
}

func TestDoWithoutCredentialSendsNoAuthorization(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusNoContent)
	}, nil)

	require.NoError(t, c.Post(context.Background(), "/auth/login", map[string]string{"email": "a@b.c"}, nil))
}

func TestUnauthorizedRedirectsExactlyOnce(t *testing.T) {
	var redirects int32
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "Token expired"}`))
	}, &redirects)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, credential.New("stale", 60, false, time.Now())))

	for i := 0; i < 3; i++ {
		err := c.Get(ctx, "/auth/me", nil, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnauthorized))
	}

	cred, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, cred, "credential cleared")
	assert.Equal(t, int32(1), atomic.LoadInt32(&redirects))
}

func TestUnauthorizedNotifiesListenersBeforeRedirect(t *testing.T) {
	var order []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)
	store := credential.NewMemoryStore()
	c, err := New(Options{
		BaseURL:    srv.URL,
		Store:      store,
		Redirector: RedirectFunc(func(string) { order = append(order, "redirect") }),
	})
	require.NoError(t, err)
	c.OnUnauthorized(func() { order = append(order, "listener") })
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, credential.New("stale", 60, false, time.Now())))

	_ = c.Get(ctx, "/wallets", nil, nil)
	_ = c.Get(ctx, "/wallets", nil, nil)

	assert.Equal(t, []string{"listener", "redirect"}, order)
}

func TestConcurrentUnauthorizedRedirectsOnce(t *testing.T) {
	var redirects int32
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, &redirects)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, credential.New("stale", 60, false, time.Now())))

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_ = c.Get(ctx, "/wallets", nil, nil)
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&redirects))
}

func TestUnauthorizedWithoutCredentialDoesNotRedirect(t *testing.T) {
	var redirects int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "Invalid credentials"}`))
	}, &redirects)

	err := c.Post(context.Background(), "/auth/login", map[string]string{}, nil)

	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", UserMessage(err))
	assert.Zero(t, atomic.LoadInt32(&redirects))
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
		code   string
	}{
		{name: "detail string", status: 400, body: `{"detail": "Amount must be positive"}`, want: "Amount must be positive"},
		{name: "detail list", status: 422, body: `{"detail": [{"msg": "field required"}]}`, want: "field required"},
		{name: "message", status: 409, body: `{"message": "Duplicate payment", "code": "DUPLICATE"}`, want: "Duplicate payment", code: "DUPLICATE"},
		{name: "error string", status: 404, body: `{"error": "Wallet not found"}`, want: "Wallet not found"},
		{name: "error object", status: 402, body: `{"error": {"code": "FUNDS", "message": "Insufficient funds"}}`, want: "Insufficient funds", code: "FUNDS"},
		{name: "html body", status: 502, body: `<html>bad gateway</html>`, want: "Request failed with status 502"},
		{name: "empty body", status: 500, body: ``, want: "Request failed with status 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, nil)

			err := c.Get(context.Background(), "/x", nil, nil)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.want, apiErr.Message)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, tt.want, UserMessage(err))
			assert.True(t, IsStatus(err, tt.status))
		})
	}
}

func TestNetworkErrorUsesGenericMessage(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()
	c, err := New(Options{BaseURL: base})
	require.NoError(t, err)

	err = c.Get(context.Background(), "/health", nil, nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Zero(t, apiErr.StatusCode)
	assert.Equal(t, NetworkMessage, UserMessage(err))
	assert.NotNil(t, apiErr.Unwrap())
}

func TestUndecodableBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}, nil)

	var out map[string]any
	err := c.Get(context.Background(), "/x", nil, &out)

	require.Error(t, err)
	assert.Equal(t, UnexpectedResponse, UserMessage(err))
}

func TestNewValidatesBaseURL(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)

	_, err = New(Options{BaseURL: "ftp://example.com"})
	assert.Error(t, err)

	c, err := New(Options{BaseURL: "https://api.example.com/v1/"})
	require.NoError(t, err)
	assert.True(t, c.Secure())
	assert.Equal(t, "https://api.example.com/v1", c.BaseURL())
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, GenericMessage, UserMessage(errors.New("boom")))
	assert.Equal(t, TimeoutMessage, UserMessage(context.DeadlineExceeded))
	assert.Equal(t, "amount: is required", UserMessage(&validation.Error{Field: "amount", Message: "is required"}))
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/payments", routeLabel("/payments/abc/refund"))
	assert.Equal(t, "/health", routeLabel("health"))
	assert.Equal(t, "/", routeLabel("/"))
}
