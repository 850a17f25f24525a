package transfer

import "errors"

var (
	// ErrSourceRequired is returned when no source backend is provided.
	ErrSourceRequired = errors.New("source backend required")

	// ErrDestinationRequired is returned when no destination backend is provided.
	ErrDestinationRequired = errors.New("destination backend required")

	// ErrInvalidAttempts is returned when a retry budget is not positive.
	ErrInvalidAttempts = errors.New("attempts must be positive")
)
