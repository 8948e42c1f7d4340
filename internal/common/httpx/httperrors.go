package httpx

import (
	"encoding/json"
	"net/http"
)

// Error represents an HTTP error response with status code and detail text.
// It serializes in the API's error shape: {"detail": "..."}.
type Error struct {
	Detail     string `json:"detail"`
	StatusCode int    `json:"-"`
}

// Send writes the error response to the provided ResponseWriter.
// If the writer is nil, no action is taken.
func (e *Error) Send(w http.ResponseWriter) {
	if w != nil {
		rspJson, err := json.Marshal(e)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("unable to encode error"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(e.StatusCode)
		w.Write(rspJson)
	}
}

// Error returns the error detail.
func (e *Error) Error() string {
	return e.Detail
}

// Is reports whether the error matches the target error.
func (current Error) Is(other error) bool {
	return current.Error() == other.Error()
}

// Common Errors

// ErrReqMethodNotSupported returns an error for unsupported HTTP methods.
func ErrReqMethodNotSupported() *Error {
	return &Error{
		Detail:     "request method not supported",
		StatusCode: http.StatusMethodNotAllowed,
	}
}

// ErrUnableToParseReqData returns an error when request data cannot be parsed.
func ErrUnableToParseReqData() *Error {
	return &Error{
		Detail:     "unable to parse request data",
		StatusCode: http.StatusBadRequest,
	}
}

// ErrNotFound returns the API's standard not-found error.
func ErrNotFound() *Error {
	return &Error{
		Detail:     "Not found.",
		StatusCode: http.StatusNotFound,
	}
}

// ErrInvalidRequest returns an error for invalid request data.
// If no message is provided, a default message is used.
func ErrInvalidRequest(str ...string) *Error {
	var s string
	if len(str) > 0 {
		s = str[0]
	} else {
		s = "invalid request data or empty request values"
	}
	return &Error{
		Detail:     s,
		StatusCode: http.StatusBadRequest,
	}
}

// ErrUnAuthorized returns an error for unauthorized requests.
// If no message is provided, a default message is used.
func ErrUnAuthorized(str ...string) *Error {
	var s string
	if len(str) > 0 {
		s = str[0]
	} else {
		s = "Authentication credentials were not provided."
	}
	return &Error{
		Detail:     s,
		StatusCode: http.StatusUnauthorized,
	}
}

// ErrForbidden returns an error for authenticated but disallowed requests.
func ErrForbidden(str ...string) *Error {
	var s string
	if len(str) > 0 {
		s = str[0]
	} else {
		s = "You do not have permission to perform this action."
	}
	return &Error{
		Detail:     s,
		StatusCode: http.StatusForbidden,
	}
}

// ErrApplicationError returns an error for application-level failures.
// If no message is provided, a default message is used.
func ErrApplicationError(err ...string) *Error {
	var s string
	if len(err) > 0 {
		s = err[0]
	} else {
		s = "unable to process request"
	}
	return &Error{
		Detail:     s,
		StatusCode: http.StatusInternalServerError,
	}
}
