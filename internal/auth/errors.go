package auth

import "errors"

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password does not meet policy")
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrLegacyAccount means the account predates password auth and has no
	// hash on file; it must go through the reset flow first.
	ErrLegacyAccount = errors.New("legacy account without password")

	ErrInvalidToken = errors.New("reset token not found")
	ErrTokenUsed    = errors.New("reset token already consumed")
	ErrTokenExpired = errors.New("reset token expired")

	ErrUnauthenticated = errors.New("no valid credential presented")
)
