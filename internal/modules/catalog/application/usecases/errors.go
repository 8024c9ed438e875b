package usecases

import "errors"

// Lookup errors. None of them is a fault: each maps to a user-facing reply.
var (
	// ErrMissingQuery is returned when the query normalizes to nothing.
	ErrMissingQuery = errors.New("missing query")

	// ErrNoMatch is returned when no catalog entry matches the query.
	ErrNoMatch = errors.New("no matching entry")

	// ErrEmptyContent is returned when an entry was found but its document
	// holds no usable embeds.
	ErrEmptyContent = errors.New("entry has no content")
)
