// Package errors provides standardized error handling for usergraph
// components. It includes error classification, standard error variables,
// and helper functions for consistent error wrapping across the system.
package errors

import (
	"errors"
	"fmt"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorValidation represents referential or invariant violations on
	// mutation input
	ErrorValidation ErrorClass = iota
	// ErrorNotFound represents lookups by id that yield nothing where
	// existence is required
	ErrorNotFound
	// ErrorSyntax represents malformed query documents
	ErrorSyntax
	// ErrorDepth represents query nesting beyond the configured maximum
	ErrorDepth
	// ErrorInternal represents unexpected failures inside the system
	ErrorInternal
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorValidation:
		return "validation"
	case ErrorNotFound:
		return "not_found"
	case ErrorSyntax:
		return "syntax"
	case ErrorDepth:
		return "depth"
	case ErrorInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	// Referential integrity errors
	ErrUserNotFound       = errors.New("user not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrPostNotFound       = errors.New("post not found")
	ErrMemberTypeNotFound = errors.New("member type not found")
	ErrRecordNotFound     = errors.New("record not found")

	// Subscription errors
	ErrSelfSubscription  = errors.New("cannot subscribe to yourself")
	ErrAlreadySubscribed = errors.New("already subscribed")
	ErrNotSubscribed     = errors.New("not subscribed")

	// Profile errors
	ErrProfileExists = errors.New("profile already exists for user")

	// Request errors
	ErrMissingQuery  = errors.New("query is required")
	ErrInvalidBody   = errors.New("invalid request body")
	ErrDepthExceeded = errors.New("maximum query depth exceeded")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")

	// Lifecycle errors
	ErrAlreadyStarted = errors.New("component already started")
)

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// IsValidation checks if an error is a validation failure. An explicit
// classification set by a Wrap* helper wins over sentinel matching, so a
// sentinel wrapped under a different class keeps that class.
func IsValidation(err error) bool {
	if class, ok := explicitClass(err); ok {
		return class == ErrorValidation
	}
	return errors.Is(err, ErrSelfSubscription) ||
		errors.Is(err, ErrAlreadySubscribed) ||
		errors.Is(err, ErrNotSubscribed) ||
		errors.Is(err, ErrProfileExists) ||
		errors.Is(err, ErrMissingQuery) ||
		errors.Is(err, ErrInvalidBody)
}

// IsNotFound checks if an error is a missing-record failure
func IsNotFound(err error) bool {
	if class, ok := explicitClass(err); ok {
		return class == ErrorNotFound
	}
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrProfileNotFound) ||
		errors.Is(err, ErrPostNotFound) ||
		errors.Is(err, ErrMemberTypeNotFound) ||
		errors.Is(err, ErrRecordNotFound)
}

// IsSyntax checks if an error is a malformed-document failure
func IsSyntax(err error) bool {
	class, ok := explicitClass(err)
	return ok && class == ErrorSyntax
}

// IsDepth checks if an error is a depth-limit failure
func IsDepth(err error) bool {
	if class, ok := explicitClass(err); ok {
		return class == ErrorDepth
	}
	return errors.Is(err, ErrDepthExceeded)
}

func explicitClass(err error) (ErrorClass, bool) {
	if err == nil {
		return ErrorInternal, false
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class, true
	}
	return ErrorInternal, false
}

// Classify returns the error class for an error
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorInternal
	}
	if class, ok := explicitClass(err); ok {
		return class
	}
	switch {
	case IsDepth(err):
		return ErrorDepth
	case IsNotFound(err):
		return ErrorNotFound
	case IsValidation(err):
		return ErrorValidation
	default:
		return ErrorInternal
	}
}

// newClassified creates a new classified error.
// Internal helper - use the Wrap* functions instead.
func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapValidation wraps an error as a validation failure with context
func WrapValidation(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorValidation, wrappedErr, component, method, wrappedErr.Error())
}

// WrapNotFound wraps an error as a missing-record failure with context
func WrapNotFound(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorNotFound, wrappedErr, component, method, wrappedErr.Error())
}

// WrapSyntax wraps an error as a malformed-document failure with context
func WrapSyntax(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorSyntax, wrappedErr, component, method, wrappedErr.Error())
}

// WrapInternal wraps an error as an internal failure with context
func WrapInternal(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorInternal, wrappedErr, component, method, wrappedErr.Error())
}
