// Package apperr is the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindStorage Kind = iota
	KindValidation
	KindPermission
	KindNotFound
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPermission:
		return "permission"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	}
	return "storage"
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) error { return &Error{Kind: KindValidation, Msg: msg} }

func Permission(msg string) error { return &Error{Kind: KindPermission, Msg: msg} }

func NotFound(msg string) error { return &Error{Kind: KindNotFound, Msg: msg} }

func Unauthorized(msg string) error { return &Error{Kind: KindUnauthorized, Msg: msg} }

// Storage wraps an unexpected database failure. The raw message is kept.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindStorage, Err: err}
}

// KindOf reports the kind of err; unknown errors count as storage failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

func Is(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindPermission:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
