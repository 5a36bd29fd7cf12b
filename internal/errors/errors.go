package errors

import (
	"errors"
	"fmt"
)

// Common error types for the console API clients
var (
	// Session errors
	ErrNoAccessToken        = errors.New("no access token found")
	ErrInvalidLoginResponse = errors.New("login response is missing tokens")

	// Request errors
	ErrInvalidID      = errors.New("invalid id")
	ErrInvalidPayload = errors.New("invalid payload")
	ErrEmptyBaseURL   = errors.New("base URL is required")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
