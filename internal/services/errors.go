package services

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies upstream failures.
type Kind int

const (
	// KindUnauthorized covers missing credentials, failed refreshes and tokens the provider rejected.
	KindUnauthorized Kind = iota + 1
	// KindGateway covers every other transport or provider failure.
	KindGateway
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindGateway:
		return "gateway error"
	}
	return "unknown"
}

// Error is the tagged error returned by the gateway.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

var (
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrGateway      = &Error{Kind: KindGateway}
)

func (e *Error) Error() string {
	switch {
	case e.Message == "":
		return e.Kind.String()
	case e.Status > 0:
		return fmt.Sprintf("spotify: %s (status %d)", e.Message, e.Status)
	default:
		return "spotify: " + e.Message
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrUnauthorized) works on wrapped values.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Status == 0
}

func unauthorized(msg string, cause error) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg, Err: cause}
}

func gatewayError(status int, msg string, cause error) *Error {
	return &Error{Kind: KindGateway, Status: status, Message: msg, Err: cause}
}

// IsInsufficientScope reports whether the provider refused a call because the granted scopes are too narrow.
func IsInsufficientScope(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return strings.Contains(strings.ToLower(e.Message), "insufficient client scope")
}
