package application

import "errors"

// Authorization failures are terminal 403s with short, machine-ish reasons.
// The HTTP layer maps these sentinels onto status codes and response bodies.
var (
	ErrStoreURLRequired   = errors.New("storeUrl required")
	ErrStoreNotRegistered = errors.New("Store not registered")
	ErrOriginMismatch     = errors.New("Origin mismatch")
	ErrInvalidWidgetToken = errors.New("Invalid widget token")

	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrInvalidRegistrationKey = errors.New("Invalid or expired registration link")
	ErrEmailTaken             = errors.New("an account with this email already exists")

	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)
