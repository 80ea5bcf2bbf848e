package accessory

import "errors"

// Domain errors for the accessory package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, accessory.ErrNotFound) {
//	    // handle not found case
//	}
var (
	// ErrNotFound is returned when an accessory UUID does not exist.
	ErrNotFound = errors.New("accessory: not found")

	// ErrInvalidDevice is returned when a configured device fails validation.
	ErrInvalidDevice = errors.New("accessory: invalid device")
)
