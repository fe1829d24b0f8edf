package rental

import "errors"

var (
	// ErrNotFound covers unknown items, users and rentals, and rentals that
	// were already returned.
	ErrNotFound               = errors.New("not found")
	ErrExtensionLimitExceeded = errors.New("extension limit exceeded")
	ErrInvalidInput           = errors.New("invalid input")
	ErrItemCheckedOut         = errors.New("item is checked out")
)
