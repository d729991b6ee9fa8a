// Package apperrors defines the error taxonomy shared by the progression
// engine, the stores and the HTTP layer.
package apperrors

import (
	"errors"
	"strings"
)

type Kind string

const (
	KindValidation         Kind = "validation_error"
	KindNotFound           Kind = "not_found"
	KindConflict           Kind = "conflict"
	KindInvariantViolation Kind = "invariant_violation"
	KindStore              Kind = "store_error"
	KindUnauthorized       Kind = "unauthorized"
)

// Sentinels for errors.Is. Any *Error matches the sentinel of its kind.
var (
	ErrValidation         = &Error{Kind: KindValidation}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrConflict           = &Error{Kind: KindConflict}
	ErrInvariantViolation = &Error{Kind: KindInvariantViolation}
	ErrStore              = &Error{Kind: KindStore}
	ErrUnauthorized       = &Error{Kind: KindUnauthorized}
)

type Error struct {
	Kind     Kind
	Messages []string
	Err      error
}

func (e *Error) Error() string {
	msg := strings.Join(e.Messages, "; ")
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && len(t.Messages) == 0 && t.Err == nil
}

func Validation(messages ...string) error {
	return &Error{Kind: KindValidation, Messages: messages}
}

func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Messages: []string{message}}
}

func Conflict(message string) error {
	return &Error{Kind: KindConflict, Messages: []string{message}}
}

func InvariantViolation(message string) error {
	return &Error{Kind: KindInvariantViolation, Messages: []string{message}}
}

func Unauthorized(message string) error {
	return &Error{Kind: KindUnauthorized, Messages: []string{message}}
}

// Store wraps a persistence failure. Errors that already belong to the
// taxonomy are returned unchanged.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return &Error{Kind: KindStore, Messages: []string{op}, Err: err}
}

// KindOf reports the taxonomy kind of err, defaulting to KindStore for
// errors that were never classified.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStore
}

// MessagesOf returns the client-safe messages carried by err.
func MessagesOf(err error) []string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindStore {
		if len(appErr.Messages) > 0 {
			return appErr.Messages
		}
		return []string{string(appErr.Kind)}
	}
	return []string{"error while accessing the database"}
}
