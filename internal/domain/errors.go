package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is wrapped by every validation failure.
var ErrInvalidInput = errors.New("invalid input")

// Account errors
var (
	ErrEmailExists    = errors.New("user with that email already exists")
	ErrUsernameExists = errors.New("username already taken")
	ErrUserNotFound   = errors.New("user not found")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrInvalidToken       = errors.New("invalid token")
)

// Collection errors
var (
	ErrItemNotFound = errors.New("item not found")
	ErrLinkNotFound = errors.New("public collection not found")
)

// External service errors
var (
	ErrCatalogUnavailable = errors.New("catalog lookup is not configured")
	ErrCatalogUpstream    = errors.New("catalog service unavailable")
	ErrStorageUnavailable = errors.New("image storage is not configured")
)

// Invalidf returns an error wrapping ErrInvalidInput.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
