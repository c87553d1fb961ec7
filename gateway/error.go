package gateway

import "fmt"

// ErrorKind classifies a generation failure. Adapters emit the first two
// retryable kinds plus the terminal kinds; the Gateway converts retryable
// kinds into KindTransientExhausted once the attempt ceiling is reached.
type ErrorKind int

const (
	// KindTransient is a retryable network or server-side failure.
	KindTransient ErrorKind = iota
	// KindRateLimited is a retryable rate limit rejection.
	KindRateLimited
	// KindTransientExhausted means retries were exhausted on a retryable
	// failure. Terminal.
	KindTransientExhausted
	// KindSafetyBlocked means the remote refused the content on safety
	// grounds. Never retried.
	KindSafetyBlocked
	// KindInvalidRequest means the request was malformed or rejected by
	// validation. Never retried.
	KindInvalidRequest
	// KindUnavailable means the capability could not be reached or failed in
	// an unclassifiable way. Terminal.
	KindUnavailable
)

// String returns the string representation of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindRateLimited:
		return "rate_limited"
	case KindTransientExhausted:
		return "transient_exhausted"
	case KindSafetyBlocked:
		return "safety_blocked"
	case KindInvalidRequest:
		return "invalid_request"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Error is a classified generation failure. Safety-blocked errors carry any
// partial category metadata the remote provided so guardrail callers can
// surface it diagnostically.
type Error struct {
	Kind             ErrorKind
	Message          string
	SafetyCategories []SafetyCategory
	Err              error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway: %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("gateway: %s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying provider error for errors.Is/As.
func (e *Error) Unwrap() error { return e.Err }

// IsRetryable reports whether the Gateway may retry the call.
func (e *Error) IsRetryable() bool {
	return e.Kind == KindTransient || e.Kind == KindRateLimited
}

// NewError constructs a classified error wrapping an optional cause.
func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}
