package httpclient

import (
	"context"       // Request contexts
	"encoding/json" // JSON codec
	"errors"        // Error matching
	"fmt"           // Error wrapping
	"net/http"      // HTTP transport
	"strings"       // String helpers

	"payportal/internal/validation" // Input validation
)

// User-facing fallbacks when the backend gives no usable message
const (
	GenericMessage      = "Something went wrong. Please try again."
	NetworkMessage      = "Network error: unable to reach the server"
	SessionExpired      = "Your session has expired. Please log in again."
	TimeoutMessage      = "The request timed out. Please try again."
	UnexpectedResponse  = "Unexpected response from the server"
	statusMessageFormat = "Request failed with status %d"
)

// ErrUnauthorized matches any 401 response via errors.Is
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a transport failure (StatusCode 0) or an HTTP error response
type APIError struct {
	StatusCode int
	Message    string // Safe to show to the user
	Code       string // Backend error code, when provided
	Err        error  // Underlying cause
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// PublicMessage returns the message meant for end users
func (e *APIError) PublicMessage() string { return e.Message }

// IsStatus reports whether err is an APIError with the given status
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

type publicMessager interface {
	PublicMessage() string
}

// UserMessage picks the message to show for err: the backend's message when
// there is one, a timeout notice for deadlines, or a generic fallback.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var pm publicMessager
	if errors.As(err, &pm) && pm.PublicMessage() != "" {
		if apiErr, ok := pm.(*APIError); ok && apiErr.StatusCode == 0 && errors.Is(err, context.DeadlineExceeded) {
			return TimeoutMessage
		}
		return pm.PublicMessage()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return TimeoutMessage
	}
	var ve *validation.Error
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return GenericMessage
}

// errorFromResponse builds an APIError from a non-2xx response body
func errorFromResponse(status int, body []byte) *APIError {
	msg, code := extractMessage(body)
	if msg == "" {
		if status == http.StatusUnauthorized {
			msg = SessionExpired
		} else {
			msg = fmt.Sprintf(statusMessageFormat, status)
		}
	}
	return &APIError{StatusCode: status, Message: msg, Code: code}
}

// extractMessage understands {"detail": ...}, {"message": ...} and
// {"error": "..." | {"code", "message"}} bodies.
func extractMessage(body []byte) (string, string) {
	var env struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
		Code    string          `json:"code"`
	}
	if len(body) == 0 || json.Unmarshal(body, &env) != nil {
		return "", ""
	}
	if msg := rawMessage(env.Detail); msg != "" {
		return msg, env.Code
	}
	if env.Message != "" {
		return env.Message, env.Code
	}
	if len(env.Error) > 0 {
		var nested struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(env.Error, &nested) == nil && nested.Message != "" {
			return nested.Message, firstNonEmpty(nested.Code, env.Code)
		}
		if msg := rawMessage(env.Error); msg != "" {
			return msg, env.Code
		}
	}
	return "", env.Code
}

// rawMessage reads a string, or the first msg/message of a list of objects
func rawMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	var items []struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &items) == nil && len(items) > 0 {
		return firstNonEmpty(items[0].Msg, items[0].Message)
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
