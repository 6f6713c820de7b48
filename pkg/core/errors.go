package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind categorizes a failed operation for programmatic handling.
type ErrorKind int

const (
	// ErrKindUnknown indicates an unclassified error.
	ErrKindUnknown ErrorKind = iota
	// ErrKindValidation indicates the request was rejected locally before
	// any network call was made.
	ErrKindValidation
	// ErrKindAuth indicates invalid or expired credentials.
	ErrKindAuth
	// ErrKindNotFound indicates the referenced symbol or order does not exist.
	ErrKindNotFound
	// ErrKindNetwork indicates a transport-level failure.
	ErrKindNetwork
	// ErrKindTimeout indicates the request exceeded its deadline.
	ErrKindTimeout
	// ErrKindRateLimit indicates the exchange rate limit was exceeded.
	ErrKindRateLimit
	// ErrKindExchange indicates a well-formed rejection from the exchange,
	// carrying the exchange's machine-readable code verbatim.
	ErrKindExchange
	// ErrKindServer indicates a server-side error at the exchange.
	ErrKindServer
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	return [...]string{
		"UNKNOWN",
		"VALIDATION",
		"AUTH",
		"NOT_FOUND",
		"NETWORK",
		"TIMEOUT",
		"RATE_LIMIT",
		"EXCHANGE",
		"SERVER",
	}[k]
}

// Sentinel errors for client state conditions.
var (
	// ErrClientClosed is returned when attempting to use a closed client.
	ErrClientClosed = errors.New("client is closed")
	// ErrNoCredentials is returned when a signed operation is attempted
	// without configured credentials.
	ErrNoCredentials = errors.New("no credentials configured")
)

// ClientError is the structured error returned by every facade operation.
// Kind drives handling; Code carries the exchange's own error code verbatim
// when the exchange produced one.
type ClientError struct {
	// Kind categorizes the error for programmatic handling.
	Kind ErrorKind `json:"kind"`
	// StatusCode is the HTTP status code, zero for local errors.
	StatusCode int `json:"status_code"`
	// Code is the exchange-specific error code, empty for local errors.
	Code string `json:"code,omitempty"`
	// Message is the human-readable error description.
	Message string `json:"message"`
	// Timestamp is when the error occurred.
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface.
func (e *ClientError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%d/%s): %s", e.Kind, e.StatusCode, e.Code, e.Message)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewClientError creates a ClientError for a remote failure.
// The timestamp is set to the current time.
func NewClientError(kind ErrorKind, statusCode int, message string) *ClientError {
	return &ClientError{
		Kind:       kind,
		StatusCode: statusCode,
		Message:    message,
		Timestamp:  time.Now(),
	}
}

// NewClientErrorWithCode creates a ClientError that carries the exchange's
// machine-readable error code verbatim.
func NewClientErrorWithCode(kind ErrorKind, statusCode int, code, message string) *ClientError {
	return &ClientError{
		Kind:       kind,
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Timestamp:  time.Now(),
	}
}

// NewValidationError creates a ClientError for a request rejected locally.
// No network call has been made when this error is returned.
func NewValidationError(format string, args ...any) *ClientError {
	return &ClientError{
		Kind:      ErrKindValidation,
		Message:   fmt.Sprintf(format, args...),
		Timestamp: time.Now(),
	}
}

func kindOf(err error) (ErrorKind, bool) {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return ErrKindUnknown, false
}

// IsValidation returns true if the error is a local validation failure.
// Validation errors never reach the network.
func IsValidation(err error) bool {
	k, ok := kindOf(err)
	return ok && k == ErrKindValidation
}

// IsAuth returns true if the error is an authentication failure.
// Auth errors require new credentials and are not retryable.
func IsAuth(err error) bool {
	k, ok := kindOf(err)
	return ok && k == ErrKindAuth
}

// IsNotFound returns true if the referenced symbol or order does not exist.
// This is an expected, recoverable outcome for callers.
func IsNotFound(err error) bool {
	k, ok := kindOf(err)
	return ok && k == ErrKindNotFound
}

// IsNetwork returns true for transport-level failures, timeouts included.
func IsNetwork(err error) bool {
	k, ok := kindOf(err)
	return ok && (k == ErrKindNetwork || k == ErrKindTimeout)
}

// IsExchangeRejection returns true if the exchange rejected the request with
// a machine-readable code, such as insufficient margin.
func IsExchangeRejection(err error) bool {
	k, ok := kindOf(err)
	return ok && k == ErrKindExchange
}

// IsRetryable reports whether retrying could succeed. Only transient
// transport and rate-limit failures qualify; callers must still never
// auto-retry order placement.
func IsRetryable(err error) bool {
	k, ok := kindOf(err)
	return ok && (k == ErrKindNetwork || k == ErrKindTimeout || k == ErrKindRateLimit || k == ErrKindServer)
}
