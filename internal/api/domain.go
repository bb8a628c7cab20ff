package api

import "errors"

// Shared error taxonomy. Handlers map these to HTTP statuses; services and
// clients wrap the underlying cause with %w so the sentinel survives.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrInvalidToken    = errors.New("identity token is invalid")
	ErrUnauthenticated = errors.New("authentication required")
	ErrNoResults       = errors.New("no geocoding results")
	ErrUploadFailed    = errors.New("image upload failed")
	ErrValidation      = errors.New("validation failed")
	ErrExternalTimeout = errors.New("external service timed out")
)
