// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrMarketClosed     = errors.New("market is closed")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrPlanNotFound     = errors.New("daily plan not found")
	ErrStrategyNotFound = errors.New("strategy not found")
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrDataNotFound     = errors.New("data not found")
	ErrNotifyFailed     = errors.New("notification delivery failed")
)

// StoreError represents an error from the persistence layer.
type StoreError struct {
	Operation string
	Entity    string
	Err       error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store error [%s] %s: %v", e.Operation, e.Entity, e.Err)
	}
	return fmt.Sprintf("store error [%s] %s", e.Operation, e.Entity)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(operation, entity string, err error) *StoreError {
	return &StoreError{
		Operation: operation,
		Entity:    entity,
		Err:       err,
	}
}

// NotifyError represents an error from a notification channel.
type NotifyError struct {
	Channel string
	Err     error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("notify error [%s]: %v", e.Channel, e.Err)
}

func (e *NotifyError) Unwrap() error {
	return e.Err
}

// NewNotifyError creates a new NotifyError.
func NewNotifyError(channel string, err error) *NotifyError {
	return &NotifyError{
		Channel: channel,
		Err:     err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
