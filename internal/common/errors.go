// Package common defines shared constants and sentinel errors used across
// the ledger, its transports and the CLI client. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Lookup errors.
	ErrorNotFound = errors.New("not found")

	// Authorization errors (caller is not the required owner).
	ErrorUnauthorized = errors.New("unauthorized")

	// Funds errors.
	ErrorInsufficientBalance   = errors.New("insufficient balance")
	ErrorInsufficientAllowance = errors.New("insufficient allowance")

	// Validation errors. Concrete failures wrap ErrorInvalidInput with detail.
	ErrorInvalidInput = errors.New("invalid input")

	// Jar-specific errors.
	ErrorJarInactive = errors.New("tip jar is inactive")

	// ErrorReserveInvariant means the conservation law between reserve and
	// token supply no longer holds. The ledger stops accepting mutations.
	ErrorReserveInvariant = errors.New("reserve invariant violation")

	// Service-level errors.
	ErrorInternal = errors.New("internal error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
