// Package errs defines the error types returned to API clients.
//
// Every failure the service reports ends up as an *HTTPError, rendered by the
// global error handler as:
//
//	{ "error": "<message>", "details": <optional payload> }
//
// - Keep one consistent error shape for callers, whatever the failure.
// - Carry the HTTP status next to the message so handlers only return errors.
// - Keep a machine-friendly Code for logs without leaking it into the body.
package errs

import "strings"

// HTTPError is the main custom error type for API responses.
//
// It implements the `error` interface via Error() and serializes directly to
// the response body. Status and Code stay out of the JSON: the status is the
// HTTP status line, the code is only logged.
type HTTPError struct {
	Code    string `json:"-"`
	Message string `json:"error"`
	Status  int    `json:"-"`

	// Details is an optional payload explaining the failure, e.g. the remote
	// API error body or the decoder message for a malformed request.
	Details any `json:"details,omitempty"`

	// cause is the underlying error, kept for logging and errors.Unwrap.
	cause error
}

// Error makes *HTTPError satisfy the built-in `error` interface.
func (e *HTTPError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *HTTPError) Unwrap() error {
	return e.cause
}

// Is reports whether target is also an *HTTPError.
//
// It does NOT compare Code/Status/etc, only the type.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)

	return ok
}

// WithCause returns a copy of this HTTPError wrapping cause.
func (e *HTTPError) WithCause(cause error) *HTTPError {
	return &HTTPError{
		Code:    e.Code,
		Message: e.Message,
		Status:  e.Status,
		Details: e.Details,
		cause:   cause,
	}
}

// MakeUpperCaseWithUnderscores converts a string into an UPPER_CASE_WITH_UNDERSCORES format.
//
// Example:
//
//	"Bad Request" -> "BAD_REQUEST"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
