package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy shared by the transport, services and handlers.

var (
	// ErrInvalidInput indicates a malformed request or form field
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfigured indicates a transport or store is missing required settings
	ErrNotConfigured = errors.New("not configured")

	// ErrDeliveryFailed indicates the mail provider rejected or dropped a message
	ErrDeliveryFailed = errors.New("delivery failed")

	// ErrTimeout indicates a send exceeded its deadline
	ErrTimeout = errors.New("timed out")

	// ErrCaptcha indicates reCAPTCHA verification failed
	ErrCaptcha = errors.New("captcha verification failed")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")
)

// InvalidInputError creates an invalid input error with context
func InvalidInputError(field, reason string) error {
	return fmt.Errorf("%s: %s: %w", field, reason, ErrInvalidInput)
}

// NotConfiguredError lists the settings that are missing for a component
func NotConfiguredError(component string, missing ...string) error {
	if len(missing) == 0 {
		return fmt.Errorf("%s %w", component, ErrNotConfigured)
	}
	return fmt.Errorf("%s %w: missing %s", component, ErrNotConfigured, strings.Join(missing, ", "))
}

// DeliveryError wraps a provider error
func DeliveryError(provider string, err error) error {
	return fmt.Errorf("%s: %w: %w", provider, ErrDeliveryFailed, err)
}

// TimeoutError reports a send that ran past its deadline
func TimeoutError(operation string, after fmt.Stringer) error {
	return fmt.Errorf("%s %w after %s", operation, ErrTimeout, after)
}

// InternalError creates an internal error with context
func InternalError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrInternal)
}

// Is checks if an error matches a target error (works with wrapped errors)
func Is(err, target error) bool {
	return errors.Is(err, target)
}
