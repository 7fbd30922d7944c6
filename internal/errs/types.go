package errs

import (
	"net/http"
)

func newHTTPError(status int, message string) *HTTPError {
	return &HTTPError{
		// http.StatusText(400) => "Bad Request" => "BAD_REQUEST"
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(status)),
		Message: message,
		Status:  status,
	}
}

// NewHTTPError creates an HTTPError for an arbitrary status.
func NewHTTPError(status int, message string) *HTTPError {
	return newHTTPError(status, message)
}

// NewBadRequestError creates a 400 Bad Request HTTPError.
//
// details is optional; pass nil to omit it from the body.
func NewBadRequestError(message string, details any) *HTTPError {
	err := newHTTPError(http.StatusBadRequest, message)
	err.Details = details
	return err
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string) *HTTPError {
	return newHTTPError(http.StatusNotFound, message)
}

// NewMethodNotAllowedError creates a 405 Method Not Allowed HTTPError.
func NewMethodNotAllowedError(message string) *HTTPError {
	return newHTTPError(http.StatusMethodNotAllowed, message)
}

// NewTooManyRequestsError creates a 429 Too Many Requests HTTPError.
func NewTooManyRequestsError(message string) *HTTPError {
	return newHTTPError(http.StatusTooManyRequests, message)
}

// NewInternalServerError creates a 500 Internal Server Error HTTPError.
//
// Unlike a generic 500, the message here is meant for the caller: it names
// the failure category ("Missing OpenAI API key on server.", ...).
func NewInternalServerError(message string, details any) *HTTPError {
	err := newHTTPError(http.StatusInternalServerError, message)
	err.Details = details
	return err
}

// NewGatewayTimeoutError creates a 504 Gateway Timeout HTTPError.
func NewGatewayTimeoutError(message string) *HTTPError {
	return newHTTPError(http.StatusGatewayTimeout, message)
}

// ServerErrorMessage is the message of the catch-all 500.
const ServerErrorMessage = "Server error."

// ServerError converts an unexpected error into the catch-all 500.
//
// The error message is surfaced as details so the caller can report it.
func ServerError(err error) *HTTPError {
	var details any
	if err != nil {
		details = err.Error()
	}
	return NewInternalServerError(ServerErrorMessage, details).WithCause(err)
}
