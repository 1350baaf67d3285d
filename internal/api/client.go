// Package api is the typed REST client: one method per backend operation.
// Methods map parameters to requests and responses to domain types and
// return errors unchanged; they never touch shared state.
package api

import (
	"net/url" // URL building
	"strconv" // Number formatting
	"time"    // Timeouts and clocks

	"payportal/internal/domain"     // Domain models
	"payportal/internal/httpclient" // HTTP wrapper
)

// Client calls the backend's REST surface
type Client struct {
	http *httpclient.Client
}

// New creates an API client on top of the shared HTTP client
func New(h *httpclient.Client) *Client {
	return &Client{http: h}
}

// HTTP exposes the underlying HTTP client
func (c *Client) HTTP() *httpclient.Client { return c.http }

func pageValues(q domain.PageQuery) url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

func setIf(v url.Values, key, val string) {
	if val != "" {
		v.Set(key, val)
	}
}

func setTime(v url.Values, key string, t time.Time) {
	if !t.IsZero() {
		v.Set(key, t.UTC().Format(time.RFC3339))
	}
}

func id(s string) string { return url.PathEscape(s) }
