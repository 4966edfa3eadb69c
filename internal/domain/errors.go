package domain

import (
	"errors"
	"fmt"
)

// API error codes. These mirror the wire-level failure classes of the
// Robinhood crypto API plus the client-side failure modes of the transport.
const (
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeBadRequest           = "bad_request"
	ErrCodeUnexpectedStatus     = "unexpected_status"
	ErrCodeTimeout              = "timeout"
	ErrCodeRequestFailed        = "request_failed"
	ErrCodeJSONDecodeFailed     = "json_decode_failed"
	ErrCodeMaxRetriesExceeded   = "max_retries_exceeded"
	ErrCodeMissingResults       = "missing_results"
	ErrCodeInvalidOrderSize     = "invalid_order_size"
)

// APIError is the structured result for every expected transport or exchange
// failure. Expected failures are returned as values, never panicked; callers
// must check the error on every call. Raised (fatal) errors are reserved for
// configuration problems at construction time.
type APIError struct {
	Code   string // one of the ErrCode* constants
	Status int    // HTTP status code when applicable, 0 otherwise
	Detail string // response body excerpt or underlying error text
}

func (e *APIError) Error() string {
	switch {
	case e.Status != 0 && e.Detail != "":
		return fmt.Sprintf("%s (HTTP %d): %s", e.Code, e.Status, e.Detail)
	case e.Status != 0:
		return fmt.Sprintf("%s (HTTP %d)", e.Code, e.Status)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Detail)
	default:
		return e.Code
	}
}

// AsAPIError unwraps err into an *APIError if one is in the chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

var (
	ErrNotFound     = errors.New("not found")
	ErrRateLimited  = errors.New("rate limited")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidOrder = errors.New("invalid order parameters")
)
