package identity

import "errors"

// Sentinel errors for provider operations.
var (
	// ErrUserExists is returned when creating a user that already exists.
	ErrUserExists = errors.New("user already exists")

	// ErrUserNotFound is returned for operations on an unknown user.
	ErrUserNotFound = errors.New("user not found")

	// ErrNotAuthorized is returned for invalid credentials.
	ErrNotAuthorized = errors.New("incorrect username or password")

	// ErrPoolNotFound is returned for operations on an unknown pool.
	ErrPoolNotFound = errors.New("user pool not found")

	// ErrSessionExpired is returned for a challenge response with an
	// unknown or expired session.
	ErrSessionExpired = errors.New("challenge session invalid or expired")
)
