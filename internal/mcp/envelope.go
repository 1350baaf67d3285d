package mcp

import (
	"bytes"         // Body buffers
	"encoding/json" // JSON codec
	"fmt"           // Error wrapping
)

// JSON-RPC envelope constants
const (
	JSONRPCVersion  = "2.0"
	MethodToolsCall = "tools/call"
	MethodToolsList = "tools/list"
	Endpoint        = "/mcp"
)

// Standard JSON-RPC error codes
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Request is the envelope POSTed to /mcp
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// ToolCallParams names the tool and carries its arguments
type ToolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Response carries either Result or Error
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is the envelope's error object
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("mcp: %s (code %d)", e.Message, e.Code)
}

// PublicMessage is the backend-supplied message, safe to show to users
func (e *RPCError) PublicMessage() string { return e.Message }

// Tool describes one tool advertised by tools/list
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

// ContentBlock is one item of a content-form result
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type contentResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError"`
}

// decodeResult fills out from a result that is either the payload itself or
// {"content": [{"type": "text", "text": "<json>"}], "isError": bool}.
func decodeResult(raw json.RawMessage, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '{' {
		var cr contentResult
		if json.Unmarshal(trimmed, &cr) == nil && cr.Content != nil {
			text := firstText(cr.Content)
			if cr.IsError {
				return &RPCError{Code: CodeInternalError, Message: text}
			}
			if out == nil || text == "" {
				return nil
			}
			if err := json.Unmarshal([]byte(text), out); err != nil {
				return fmt.Errorf("mcp: decode content result: %w", err)
			}
			return nil
		}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("mcp: decode result: %w", err)
	}
	return nil
}

func firstText(blocks []ContentBlock) string {
	for _, b := range blocks {
		if b.Type == "text" && b.Text != "" {
			return b.Text
		}
	}
	return ""
}

// toArguments flattens a request struct into the arguments object
func toArguments(args any) (map[string]any, error) {
	out := map[string]any{}
	if args == nil {
		return out, nil
	}
	if m, ok := args.(map[string]any); ok {
		for k, v := range m {
			out[k] = v
		}
		return out, nil
	}
	b, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("mcp: encode arguments: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("mcp: arguments must be an object: %w", err)
	}
	return out, nil
}
