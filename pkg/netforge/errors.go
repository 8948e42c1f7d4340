package netforge

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// HTTPError represents a non-success response from the server. It carries the
// HTTP status code, a message extracted from the response, and the raw body
// for callers that need the full error context.
type HTTPError struct {
	StatusCode int    // HTTP status code of the error
	Message    string // Error message extracted from the response
	Body       []byte // Raw response body
}

// Error implements the error interface for HTTPError.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

// newHTTPError builds an HTTPError from a response. NetBox-compatible servers
// report failures as {"detail": "..."}; when no detail field is present the
// trimmed body is used, falling back to the standard status text.
func newHTTPError(statusCode int, body []byte) *HTTPError {
	msg := gjson.GetBytes(body, "detail").String()
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = http.StatusText(statusCode)
	}
	return &HTTPError{
		StatusCode: statusCode,
		Message:    msg,
		Body:       body,
	}
}

// ErrorStatus returns the HTTP status code carried by err, or 0 when err is
// not an HTTPError.
func ErrorStatus(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is an HTTPError with status 404.
func IsNotFound(err error) bool {
	return ErrorStatus(err) == http.StatusNotFound
}

// IsAuthFailure reports whether err is an HTTPError with status 401 or 403.
func IsAuthFailure(err error) bool {
	status := ErrorStatus(err)
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}
