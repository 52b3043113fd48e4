package client

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string

	// rawBody is set when Message is the undecoded response body rather than
	// the API's message field.
	rawBody bool
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// IsUnauthorized reports whether err is a 401-class response: the backend no
// longer accepts the session's access token.
func IsUnauthorized(err error) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	switch httpErr.StatusCode {
	case http.StatusUnauthorized, 419, 440:
		return true
	}
	return false
}

// APIMessage returns the backend-provided message carried by err, if any.
func APIMessage(err error) (string, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" && !httpErr.rawBody {
		return httpErr.Message, true
	}
	return "", false
}
