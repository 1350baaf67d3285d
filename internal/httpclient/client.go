// Package httpclient is the single configured HTTP client for the backend.
// It attaches the stored bearer token, normalises errors and, on a 401,
// clears the credential and sends the user back to the auth route.
package httpclient

import (
	"bytes"         // Body buffers
	"context"       // Request contexts
	"encoding/json" // JSON codec
	"errors"        // Error matching
	"fmt"           // Error wrapping
	"io"            // Body reads
	"net/http"      // HTTP transport
	"net/url"       // URL building
	"strings"       // String helpers
	"sync"          // Locking
	"time"          // Timeouts and clocks

	"github.com/sirupsen/logrus" // Logrus for structured logging

	"payportal/internal/credential" // Credential stores
)

const maxBodyBytes = 10 << 20

// Redirector sends the user to the login/auth route
type Redirector interface {
	RedirectToAuth(route string)
}

// RedirectFunc adapts a function to Redirector
type RedirectFunc func(route string)

func (f RedirectFunc) RedirectToAuth(route string) { f(route) }

// Options configures a Client
type Options struct {
	BaseURL    string            // Backend base URL, e.g. https://api.example.com/v1
	Timeout    time.Duration     // Per-request timeout, 30s when zero
	Store      credential.Store  // Where the bearer token lives
	Redirector Redirector        // Called once per cleared credential on 401
	AuthRoute  string            // Route passed to the Redirector, /auth/login when empty
	HTTPClient *http.Client      // Optional transport override
}

// Client wraps net/http with the backend's conventions
type Client struct {
	baseURL    *url.URL
	http       *http.Client
	store      credential.Store
	redirector Redirector
	authRoute  string
	authMu     sync.Mutex // Serialises 401 handling
	onUnauth   []func()   // Listeners told when a credential is rejected
	log        *logrus.Entry
}

// New builds a Client from opts
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("httpclient: base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("httpclient: parse base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("httpclient: unsupported scheme %q", base.Scheme)
	}
	if opts.Store == nil {
		opts.Store = credential.NewMemoryStore()
	}
	if opts.AuthRoute == "" {
		opts.AuthRoute = "/auth/login"
	}
	if opts.Redirector == nil {
		opts.Redirector = RedirectFunc(func(route string) {
			logrus.WithField("route", route).Info("Redirecting to login")
		})
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    base,
		http:       hc,
		store:      opts.Store,
		redirector: opts.Redirector,
		authRoute:  opts.AuthRoute,
		log:        logrus.WithField("component", "httpclient"),
	}, nil
}

// BaseURL returns the configured backend URL
func (c *Client) BaseURL() string { return c.baseURL.String() }

// Secure reports whether the backend is reached over HTTPS
func (c *Client) Secure() bool { return c.baseURL.Scheme == "https" }

// Store returns the credential store the client reads tokens from
func (c *Client) Store() credential.Store { return c.store }

// OnUnauthorized registers fn to run whenever a 401 clears the stored
// credential, before the redirect. fn must not call back into the client.
func (c *Client) OnUnauthorized(fn func()) {
	c.authMu.Lock()
	c.onUnauth = append(c.onUnauth, fn)
	c.authMu.Unlock()
}

// Get issues a GET with optional query parameters
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST with a JSON body
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Put issues a PUT with a JSON body
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

// Delete issues a DELETE
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

// Do sends one request and decodes a JSON response into out (when non-nil).
// Failures come back as *APIError; nothing is retried.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body) // Encode request body
		if err != nil {
			return fmt.Errorf("httpclient: encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("httpclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token := c.token(ctx) // Current bearer token, empty when signed out
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req) // Send request
	if err != nil {
		observe(method, path, 0, start)
		c.log.WithFields(logrus.Fields{"method": method, "path": path, "error": err.Error()}).Debug("Request failed")
		return &APIError{Message: NetworkMessage, Err: err}
	}
	defer resp.Body.Close() // Ensure body is closed
	observe(method, path, resp.StatusCode, start)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: NetworkMessage, Err: err}
	}

	c.log.WithFields(logrus.Fields{"method": method, "path": path, "status": resp.StatusCode}).Debug("Request completed")

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized(ctx, token) // Clear credential and redirect once
		return errorFromResponse(resp.StatusCode, data)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return errorFromResponse(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil { // Decode response
		return &APIError{StatusCode: resp.StatusCode, Message: UnexpectedResponse, Err: err}
	}
	return nil
}

func (c *Client) token(ctx context.Context) string {
	cred, err := c.store.Load(ctx)
	if err != nil {
		c.log.WithError(err).Warn("Failed to load credential")
		return ""
	}
	if cred == nil {
		return ""
	}
	return cred.Token
}

// handleUnauthorized clears the credential that was just rejected and
// redirects. A request sent without a token, or with a token that has
// already been cleared or replaced, does not redirect again.
func (c *Client) handleUnauthorized(ctx context.Context, sent string) {
	if sent == "" {
		return
	}
	c.authMu.Lock()
	defer c.authMu.Unlock()

	if c.token(ctx) != sent {
		return
	}
	if err := c.store.Clear(ctx); err != nil {
		c.log.WithError(err).Error("Failed to clear credential after 401")
	}
	for _, fn := range c.onUnauth {
		fn() // Drop cached state tied to the rejected token
	}
	c.log.WithField("route", c.authRoute).Warn("Session rejected by backend, redirecting to login")
	c.redirector.RedirectToAuth(c.authRoute)
}
