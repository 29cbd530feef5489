package auth

import "errors"

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// the caller cannot tell which one occurred.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrAccountInactive means the credential record exists but login has
	// been revoked via the isActive flag.
	ErrAccountInactive = errors.New("auth: account is deactivated")
	// ErrInvalidToken indicates a malformed or tampered token.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrTokenExpired is kept distinct from ErrInvalidToken so clients can
	// prompt a re-login instead of treating the caller as anonymous.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrNotFound indicates a missing credential record.
	ErrNotFound = errors.New("auth: not found")
	// ErrAlreadyExists indicates a duplicate email at registration.
	ErrAlreadyExists = errors.New("auth: already exists")
	// ErrInvalidInput indicates missing or malformed input.
	ErrInvalidInput = errors.New("auth: invalid input")
	// ErrDemoDisabled indicates demo login is switched off by configuration.
	ErrDemoDisabled = errors.New("auth: demo login disabled")
)
