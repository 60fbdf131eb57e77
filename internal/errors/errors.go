package errors

import (
	"errors"
	"fmt"
)

// Common error types for the portal session SDK
var (
	// Login errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginInProgress    = errors.New("login already in progress")
	ErrMalformedResponse  = errors.New("malformed login response")

	// Transport errors
	ErrNetworkFailure = errors.New("network failure")

	// Session errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrNoSession    = errors.New("no active session")

	// Storage errors
	ErrKeyNotFound = errors.New("key not found")

	// General errors
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
