package market

import "errors"

// Error kinds shared across the system. Callers classify failures with
// errors.Is; a blocked risk gate is a normal outcome, not one of these.
var (
	// ErrValidation marks bad tick input or malformed configuration,
	// rejected before any state mutation.
	ErrValidation = errors.New("validation")

	// ErrPersistence marks a failed store read/write. A tick whose persist
	// fails must be treated as not applied.
	ErrPersistence = errors.New("persistence")

	// ErrInvariant marks an internal consistency violation (for example a
	// partial close that would drive the open amount below zero). These
	// indicate a bug, never a user error.
	ErrInvariant = errors.New("invariant violation")
)
