package errors

import (
	"errors"
	"fmt"
)

// Common error types shared by the session core, its client and the development auth server
var (
	// Token errors
	ErrMalformedToken      = errors.New("malformed token")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenRevoked        = errors.New("token revoked")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrNoRefreshToken      = errors.New("no refresh token in session")

	// Account errors
	ErrInvalidCredentials = errors.New("invalid phone number or password")
	ErrPhoneNumberTaken   = errors.New("phone number already registered")
	ErrInvalidPhoneNumber = errors.New("invalid phone number")
	ErrUserNotFound       = errors.New("user not found")

	// Request errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnauthorized   = errors.New("unauthorized")

	// Storage errors
	ErrRecordNotFound = errors.New("session record not found")

	// General errors
	ErrNotFound = errors.New("not found")
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
