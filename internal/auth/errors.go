package auth

import (
	"errors"
	"fmt"
)

// Kind classifies access-control failures.
type Kind string

const (
	KindBadCredentials Kind = "bad_credentials"
	KindDeactivated    Kind = "deactivated"
	KindNotFound       Kind = "not_found"
	KindExpired        Kind = "expired"
	KindMalformed      Kind = "malformed"
	KindUnauthorized   Kind = "unauthorized"
	KindUnavailable    Kind = "unavailable"
)

// Error is an access-control failure. Message is for logs; callers facing end
// users should use PublicMessage instead.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Kind
	}
	return ""
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsCredentialFailure reports whether err is one of the login rejections that
// must be indistinguishable to the caller.
func IsCredentialFailure(err error) bool {
	switch KindOf(err) {
	case KindBadCredentials, KindDeactivated, KindNotFound:
		return true
	default:
		return false
	}
}

// IsUnauthenticated reports whether err means "no usable session".
func IsUnauthenticated(err error) bool {
	switch KindOf(err) {
	case KindExpired, KindMalformed:
		return true
	default:
		return false
	}
}

// PublicMessage maps err to the message an end user may see.
func PublicMessage(err error) string {
	switch KindOf(err) {
	case KindBadCredentials, KindDeactivated, KindNotFound:
		return "invalid credentials"
	case KindExpired, KindMalformed:
		return "not authenticated"
	case KindUnauthorized:
		return "forbidden"
	default:
		return "service unavailable"
	}
}
