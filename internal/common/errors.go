package common

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures that are surfaced to the client.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindConflict      ErrorKind = "conflict"
	KindNotFound      ErrorKind = "not_found"
	KindAuthorization ErrorKind = "authorization"
)

// Storage sentinels. Repositories translate driver errors into these so the
// services never depend on a particular store.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	// ErrStaleWrite rejects an append whose timestamp is not after every
	// stored one; the caller re-reads and retries.
	ErrStaleWrite = errors.New("stale write")
)

// AppError carries a kind and a stable, machine-readable reason string.
type AppError struct {
	Kind   ErrorKind
	Reason string
	Err    error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func ValidationError(reason string) *AppError {
	return &AppError{Kind: KindValidation, Reason: reason}
}

func ConflictError(reason string) *AppError {
	return &AppError{Kind: KindConflict, Reason: reason}
}

func NotFoundError(reason string) *AppError {
	return &AppError{Kind: KindNotFound, Reason: reason}
}

func AuthorizationError(reason string) *AppError {
	return &AppError{Kind: KindAuthorization, Reason: reason}
}

// IsKind reports whether err (or anything it wraps) is an AppError of kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// Reason returns the client-facing reason of an AppError, or "" for other errors.
func Reason(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return ""
}
