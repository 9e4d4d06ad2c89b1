// Package common defines shared constants and sentinel errors used across
// the taskhub services. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Auth errors. ErrorUnauthorized deliberately covers unknown email,
	// wrong password, and inactive account so callers cannot tell them apart.
	ErrorUnauthorized = errors.New("invalid credentials")
	ErrorInvalidToken = errors.New("invalid token")

	// Access-control denial for an authenticated identity.
	ErrorForbidden = errors.New("forbidden")
)
