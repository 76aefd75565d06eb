package usps

import (
	"fmt"
	"net/http"
)

// ErrorClass represents a classification of failed remote calls.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 responses.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents unreadable or malformed response bodies.
	ErrorClassDecode ErrorClass = "decode"
)

// AuthError reports a failed token acquisition. It is fatal: without a
// credential no validation call can be made, so callers abort the run.
type AuthError struct {
	StatusCode int // 0 when the failure happened before an HTTP status was seen
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "token retrieval failed"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("usps auth error (status %d): %s", e.StatusCode, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("usps auth error: %s: %v", msg, e.Err)
	}
	return fmt.Sprintf("usps auth error: %s", msg)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// apiError describes a failed address-verification call. It never escapes
// Validate; it only feeds the Result's error message, logs, and metrics.
type apiError struct {
	StatusCode int
	Class      ErrorClass
	Message    string
	Err        error
}

func (e *apiError) Error() string {
	if e.StatusCode != 0 {
		if e.Err != nil {
			return fmt.Sprintf("usps %s error (status %d): %s: %v", e.Class, e.StatusCode, e.Message, e.Err)
		}
		return fmt.Sprintf("usps %s error (status %d): %s", e.Class, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("usps %s error: %s: %v", e.Class, e.Message, e.Err)
	}
	return fmt.Sprintf("usps %s error: %s", e.Class, e.Message)
}

func (e *apiError) Unwrap() error {
	return e.Err
}

// classifyStatus buckets an HTTP status code for metrics and messages.
func classifyStatus(status int) ErrorClass {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case status >= 500:
		return ErrorClassServer
	case status >= 400:
		return ErrorClassClient
	default:
		return ""
	}
}
