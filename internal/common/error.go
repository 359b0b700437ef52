// Package common defines shared constants and sentinel errors used across
// client and server layers of Trasferte. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors.
	ErrorUsernameTaken = errors.New("username already taken")
	ErrorInvalidAmount = errors.New("amount must be positive")
	ErrorInvalidDate   = errors.New("invalid trip date")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Export errors.
	ErrNothingToExport = errors.New("nothing to export")
)
