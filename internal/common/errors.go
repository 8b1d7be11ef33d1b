// Package common defines shared constants and sentinel errors used across
// the server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("invalid credentials")
	ErrorForbidden    = errors.New("forbidden")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Password-reset lifecycle errors.
	ErrResetCodeInvalid = errors.New("invalid or expired reset code")

	// Upload payload errors.
	ErrPayloadTooLarge = errors.New("payload too large")

	// Moderation state machine errors.
	ErrInvalidTransition = errors.New("invalid status transition")
)
