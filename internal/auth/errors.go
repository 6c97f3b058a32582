// Package auth holds the account lifecycle core: registration, login,
// email verification, password resets and Google sign-in. All expected
// outcomes are sentinel errors matched with errors.Is; anything else
// that bubbles out of here is an infrastructure failure.
package auth

import "errors"

var (
	// Directory errors
	ErrNotFound      = errors.New("account not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")

	ErrUsernameInvalid = errors.New("username must be 3-30 characters (letters, numbers, underscore only)")

	// Deliberately generic. Login must not reveal whether the account
	// exists, token flows must not reveal why a token was rejected.
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")

	// Google sign-in
	ErrEmailNotVerified       = errors.New("google account email is not verified")
	ErrInvalidExternalToken   = errors.New("invalid google token")
	ErrUsernameAllocExhausted = errors.New("unable to generate a unique username")
)
