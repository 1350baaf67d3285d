package sandbox

import (
	"errors"   // Error matching
	"net/http" // HTTP status codes

	"payportal/internal/mcp" // JSON-RPC error codes
)

// Service errors not raised by the store
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("access denied")
)

// InputError rejects a request the caller must fix
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

func invalid(msg string) error { return &InputError{Message: msg} }

// CodeServerError is the JSON-RPC code for domain failures
const CodeServerError = -32000

// httpStatus maps a service error onto a status code and a message safe to
// return to the caller
func httpStatus(err error) (int, string) {
	var in *InputError
	switch {
	case errors.As(err, &in):
		return http.StatusBadRequest, in.Message
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "Access denied"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, ErrInsufficientFunds), errors.Is(err, ErrWalletInactive):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// rpcError maps a service error onto a JSON-RPC error object
func rpcError(err error) *mcp.RPCError {
	var in *InputError
	if errors.As(err, &in) {
		return &mcp.RPCError{Code: mcp.CodeInvalidParams, Message: in.Message}
	}
	status, msg := httpStatus(err)
	if status == http.StatusInternalServerError {
		return &mcp.RPCError{Code: mcp.CodeInternalError, Message: msg}
	}
	return &mcp.RPCError{Code: CodeServerError, Message: msg}
}
