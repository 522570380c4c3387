package common

import (
	"errors"
	"fmt"
)

// Kind classifies an AppError for transport mapping
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// AppError is the error type services return to handlers
type AppError struct {
	Kind    Kind
	Message string
	Details interface{}
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches sentinel AppErrors by kind and message
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// Business logic errors
var (
	// General errors
	ErrNotFound  = &AppError{Kind: KindNotFound, Message: "resource not found"}
	ErrForbidden = &AppError{Kind: KindForbidden, Message: "forbidden"}
	ErrConflict  = &AppError{Kind: KindConflict, Message: "resource already exists"}

	// Auth errors
	ErrUnauthorized       = &AppError{Kind: KindAuth, Message: "unauthorized"}
	ErrInvalidCredentials = &AppError{Kind: KindAuth, Message: "invalid email or password"}
	ErrSiteMismatch       = &AppError{Kind: KindForbidden, Message: "token is not valid for this site"}
	ErrAdminRequired      = &AppError{Kind: KindForbidden, Message: "admin role required"}

	// Content errors
	ErrContentTypeNotFound = &AppError{Kind: KindNotFound, Message: "content type not found"}
	ErrContentNotFound     = &AppError{Kind: KindNotFound, Message: "content not found"}
	ErrRevisionNotFound    = &AppError{Kind: KindNotFound, Message: "revision not found"}
	ErrVersionConflict     = &AppError{Kind: KindConflict, Message: "content was modified by someone else"}
	ErrSystemContentType   = &AppError{Kind: KindForbidden, Message: "system content types cannot be deleted"}

	// Validation errors
	ErrInvalidInput = &AppError{Kind: KindValidation, Message: "invalid input"}
	ErrMissingSite  = &AppError{Kind: KindValidation, Message: "siteId is required"}
	ErrInvalidSite  = &AppError{Kind: KindValidation, Message: "siteId must be lowercase letters, digits, - or _"}
)

// NewValidationError builds a validation error with optional details
func NewValidationError(message string, details interface{}) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Details: details}
}

// NewNotFoundError builds a not found error for the named resource
func NewNotFoundError(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Message: resource + " not found"}
}

// NewConflictError builds a conflict error
func NewConflictError(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

// Internal wraps an unexpected error
func Internal(op string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: op, Err: err}
}

// KindOf returns the kind of err, KindInternal for foreign errors
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
