package auth

import (
	"errors"

	"github.com/bloghub/bloghub/pkg/client"
)

// Kind classifies an auth failure for the user interface.
type Kind int

const (
	// KindValidation is a client-side precondition failure; no request was made.
	KindValidation Kind = iota + 1
	// KindAuthentication means the backend rejected the request.
	KindAuthentication
	// KindTransport means the backend could not be reached.
	KindTransport
)

// Error is a user-presentable auth failure. Error() is the message shown to
// the user; Unwrap exposes the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == KindValidation
}

// Message maps err to a notification string.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	if msg, ok := client.APIMessage(err); ok {
		return msg
	}
	return err.Error()
}

func validationError(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// remoteError wraps a failed backend call. The backend's message wins over
// fallback when present.
func remoteError(err error, fallback string) error {
	var httpErr *client.HTTPError
	if !errors.As(err, &httpErr) {
		return &Error{Kind: KindTransport, Message: fallback, Err: err}
	}
	msg := fallback
	if m, ok := client.APIMessage(err); ok {
		msg = m
	}
	return &Error{Kind: KindAuthentication, Message: msg, Err: err}
}
