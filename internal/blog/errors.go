package blog

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error for transport mapping
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindPermissionDenied
	KindNotFound
	KindConflict
)

// Error is a domain error. Validation errors carry per-field messages so a
// single response can report every failed rule.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidation builds a validation error from field violations
func NewValidation(fields map[string][]string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: "validation failed",
		Fields:  fields,
	}
}

// NewUnauthenticated builds an authentication error
func NewUnauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

// NewPermissionDenied builds an authorization error
func NewPermissionDenied(message string) *Error {
	return &Error{Kind: KindPermissionDenied, Message: message}
}

// NewNotFound builds a missing-resource error
func NewNotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

// NewConflict builds a duplicate-resource error
func NewConflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewInternal wraps an unexpected failure
func NewInternal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// KindOf extracts the kind from an error chain, defaulting to internal
func KindOf(err error) Kind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return KindInternal
}
