// Package errs carries the error kinds shared by services and handlers.
package errs

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindInvalidOperation
	KindUnauthenticated
	KindAuthorization
	KindNotFound
	KindConflict
	KindExpired
	KindLimitReached
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInvalidOperation:
		return "invalid_operation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindExpired:
		return "expired"
	case KindLimitReached:
		return "limit_reached"
	case KindStorage:
		return "storage"
	default:
		return "internal"
	}
}

// Error is a classified error with a user facing message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Msg == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind so callers can write errors.Is(err, errs.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrValidation       = &Error{Kind: KindValidation}
	ErrInvalidOperation = &Error{Kind: KindInvalidOperation}
	ErrUnauthenticated  = &Error{Kind: KindUnauthenticated}
	ErrAuthorization    = &Error{Kind: KindAuthorization}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrConflict         = &Error{Kind: KindConflict}
	ErrExpired          = &Error{Kind: KindExpired}
	ErrLimitReached     = &Error{Kind: KindLimitReached}
	ErrStorage          = &Error{Kind: KindStorage}
)

func Validation(msg string) error       { return &Error{Kind: KindValidation, Msg: msg} }
func InvalidOperation(msg string) error { return &Error{Kind: KindInvalidOperation, Msg: msg} }
func Unauthenticated(msg string) error  { return &Error{Kind: KindUnauthenticated, Msg: msg} }
func Authorization(msg string) error    { return &Error{Kind: KindAuthorization, Msg: msg} }
func NotFound(msg string) error         { return &Error{Kind: KindNotFound, Msg: msg} }
func Conflict(msg string) error         { return &Error{Kind: KindConflict, Msg: msg} }
func Expired(msg string) error          { return &Error{Kind: KindExpired, Msg: msg} }
func LimitReached(msg string) error     { return &Error{Kind: KindLimitReached, Msg: msg} }

// Storage wraps a blob store failure.
func Storage(msg string, err error) error {
	return &Error{Kind: KindStorage, Msg: msg, Err: err}
}

// Internal wraps an unexpected failure.
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf classifies err. GORM's translated errors are mapped so services
// can return them unwrapped.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return KindNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return KindConflict
	}
	return KindInternal
}

// FromDB converts a database error, using msg for the not found and
// duplicate cases.
func FromDB(err error, msg string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if msg == "" {
			msg = "not found"
		}
		return NotFound(msg)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		if msg == "" {
			msg = "already exists"
		}
		return Conflict(msg)
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Internal("database error", err)
}

// HTTPStatus returns the response status for a kind.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindInvalidOperation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindAuthorization, KindLimitReached:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindExpired:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text safe to show to a client.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == KindInternal || e.Kind == KindStorage {
			if e.Msg != "" {
				return e.Msg
			}
			return "internal error"
		}
		if e.Msg == "" {
			return e.Kind.String()
		}
		return e.Msg
	}
	switch KindOf(err) {
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "already exists"
	}
	return "internal error"
}
