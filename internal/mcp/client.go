// Package mcp calls backend tools through the JSON-RPC "tools/call"
// envelope on /mcp. Mutating tools carry a client-generated idempotency key
// so duplicate submissions are collapsed by the backend.
package mcp

import (
	"context"     // Request contexts
	"errors"      // Error matching
	"fmt"         // Error wrapping
	"sync/atomic" // Request IDs

	"github.com/sirupsen/logrus" // Logrus for structured logging

	"payportal/internal/httpclient" // HTTP wrapper
)

// Client invokes backend tools
type Client struct {
	http   *httpclient.Client
	keys   *KeyGenerator
	nextID atomic.Int64
	log    *logrus.Entry
}

// New creates a tool-call client on top of the shared HTTP client
func New(h *httpclient.Client) *Client {
	return &Client{
		http: h,
		keys: NewKeyGenerator(),
		log:  logrus.WithField("component", "mcp"),
	}
}

// Call invokes tool name with args and decodes the result into out.
// An error envelope comes back as *RPCError.
func (c *Client) Call(ctx context.Context, name string, args any, out any) error {
	arguments, err := toArguments(args)
	if err != nil {
		return err
	}
	return c.call(ctx, name, arguments, out)
}

// callMutating is Call for tools that change state: it attaches an
// idempotency key unless the caller already chose one, and returns it.
func (c *Client) callMutating(ctx context.Context, name, prefix string, args any, out any) (string, error) {
	arguments, err := toArguments(args)
	if err != nil {
		return "", err
	}
	key, _ := arguments["idempotency_key"].(string)
	if key == "" {
		key = c.keys.New(prefix)
		arguments["idempotency_key"] = key
	}
	return key, c.call(ctx, name, arguments, out)
}

func (c *Client) call(ctx context.Context, name string, arguments map[string]any, out any) error {
	req := Request{
		JSONRPC: JSONRPCVersion,
		ID:      c.nextID.Add(1),
		Method:  MethodToolsCall,
		Params:  ToolCallParams{Name: name, Arguments: arguments},
	}
	var resp Response
	if err := c.http.Post(ctx, Endpoint, req, &resp); err != nil {
		return err
	}
	if resp.Error != nil {
		c.log.WithFields(logrus.Fields{"tool": name, "code": resp.Error.Code}).Warn(resp.Error.Message)
		return resp.Error
	}
	if err := decodeResult(resp.Result, out); err != nil {
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) {
			c.log.WithField("tool", name).Warn(rpcErr.Message)
			return err
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// ListTools returns the tools advertised by the backend
func (c *Client) ListTools(ctx context.Context) ([]Tool, error) {
	req := Request{JSONRPC: JSONRPCVersion, ID: c.nextID.Add(1), Method: MethodToolsList}
	var resp Response
	if err := c.http.Post(ctx, Endpoint, req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	var out struct {
		Tools []Tool `json:"tools"`
	}
	if err := decodeResult(resp.Result, &out); err != nil {
		return nil, err
	}
	return out.Tools, nil
}
