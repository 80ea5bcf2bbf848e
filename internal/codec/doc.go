// Package codec converts between raw device wire values and canonical
// accessory state for Glowbridge Core.
//
// Device firmware disagrees about almost everything: booleans arrive as
// "ON", "1", true, or 1; brightness arrives on a 0-1, 0-100, or 0-255
// scale. This package owns the canonical forms — a plain bool for on/off
// and an integer in [0,100] for brightness — and the lossy conversions
// between them and whatever a device speaks.
//
// All functions are pure: no state, no I/O, never an error. Inputs that
// cannot be interpreted collapse to a caller-supplied fallback.
package codec
