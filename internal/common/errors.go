// Package common defines shared constants and sentinel errors used across
// the Telebridge server layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Account errors.
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")
	ErrInactiveUser  = errors.New("inactive user")

	// Pairing and binding errors.
	ErrInvalidCode   = errors.New("invalid pairing code")
	ErrAlreadyLinked = errors.New("chat identity linked to another account")
	ErrNotBound      = errors.New("no chat identity linked")

	// Relay errors.
	ErrRecipientNotFound = errors.New("recipient not found")

	// Delivery-layer errors. Non-fatal to callers: the message record is
	// already durable when these occur.
	ErrTransportUnavailable = errors.New("chat transport unavailable")
	ErrInvalidRecipient     = errors.New("invalid chat recipient")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
