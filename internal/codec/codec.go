package codec

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Scale identifies the numeric convention a device uses for brightness.
type Scale string

// Scale constants.
const (
	// Scale100 is the canonical 0-100 integer scale (identity conversion).
	Scale100 Scale = "0-100"

	// Scale01 is a fractional 0.0-1.0 scale (Hue-style dimmers).
	Scale01 Scale = "0-1"

	// Scale255 is a 0-255 byte scale (Tasmota-style firmware).
	Scale255 Scale = "0-255"
)

// ParseScale converts a configuration string to a Scale.
// Unrecognised or empty values fall back to Scale100.
func ParseScale(s string) Scale {
	switch Scale(strings.TrimSpace(s)) {
	case Scale01:
		return Scale01
	case Scale255:
		return Scale255
	default:
		return Scale100
	}
}

// canonical brightness bounds.
const (
	BrightnessMin = 0
	BrightnessMax = 100
)

// byteMax is the upper bound of the 0-255 wire scale.
const byteMax = 255

// ParseBooleanLoose interprets an arbitrary decoded value as a boolean.
//
// Booleans pass through. Numbers are true when nonzero. Strings are
// trimmed and compared case-insensitively: "true", "on", and "1" are
// true; "false", "off", and "0" are false; any other string is true
// when non-empty. Nil is false. Values of any other type are true,
// matching the truthiness convention of the JSON documents this package
// decodes.
//
// It never fails; every input has a boolean interpretation.
func ParseBooleanLoose(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		s := strings.ToLower(strings.TrimSpace(val))
		switch s {
		case "true", "on", "1":
			return true
		case "false", "off", "0", "":
			return false
		default:
			return true
		}
	default:
		if f, ok := toFloat(v); ok {
			return f != 0 && !math.IsNaN(f)
		}
		return true
	}
}

// ClampInt coerces v to a number, rounds to the nearest integer, and
// clamps the result into [min, max]. Non-numeric and non-finite inputs
// (including strings that fail to parse) return fallback.
func ClampInt(v any, min, max, fallback int) int {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	n := int(math.Round(f))
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// ToCanonicalBrightness converts a raw device value on the given scale
// to the canonical [0,100] integer scale. Inputs that cannot be coerced
// to a finite number return fallback.
func ToCanonicalBrightness(raw any, scale Scale, fallback int) int {
	f, ok := toFloat(raw)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	switch scale {
	case Scale01:
		f *= BrightnessMax
	case Scale255:
		f = f / byteMax * BrightnessMax
	}
	return ClampInt(f, BrightnessMin, BrightnessMax, fallback)
}

// FromCanonicalBrightness converts a canonical [0,100] brightness to the
// device's wire representation. The result is a string because outbound
// values are appended directly to a command URL.
//
// Scale01 produces a 3-decimal fixed-point fraction ("0.750"); Scale255
// produces an integer in [0,255]; Scale100 passes the integer through.
// The 0-255 conversion rounds, so round-trips are not exact in the
// device-to-canonical direction.
func FromCanonicalBrightness(canonical int, scale Scale) string {
	c := ClampInt(canonical, BrightnessMin, BrightnessMax, BrightnessMin)
	switch scale {
	case Scale01:
		return strconv.FormatFloat(float64(c)/BrightnessMax, 'f', 3, 64)
	case Scale255:
		v := ClampInt(float64(c)/BrightnessMax*byteMax, 0, byteMax, 0)
		return strconv.Itoa(v)
	default:
		return strconv.Itoa(c)
	}
}

// toFloat coerces common decoded-JSON and wire types to a float64.
// The second return is false when the value has no numeric reading.
func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
