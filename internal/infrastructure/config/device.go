package config

import "time"

// Device timeout bounds in milliseconds. Values outside the range are
// clamped; zero selects the default.
const (
	defaultTimeoutMs = 4000
	minTimeoutMs     = 500
	maxTimeoutMs     = 20000
)

// Default selectors for status responses.
const (
	defaultOnSelector         = "$.on"
	defaultBrightnessSelector = "$.brightness"
)

// Device describes one HTTP-controlled light.
//
// Only Name, OnURL, and OffURL are required; an entry missing any of
// them is skipped during reconciliation. Identity for reconciliation
// is ID when present, otherwise Name.
//
// URLs are used as-is: on/off/status URLs are requested verbatim, and
// the brightness write URL is a literal prefix onto which the encoded
// wire value is appended — include a trailing separator (e.g. "?b=")
// if the endpoint needs one.
type Device struct {
	ID           string `yaml:"id" json:"id,omitempty"`
	Name         string `yaml:"name" json:"name"`
	Manufacturer string `yaml:"manufacturer" json:"manufacturer,omitempty"`
	Model        string `yaml:"model" json:"model,omitempty"`
	Serial       string `yaml:"serial" json:"serial,omitempty"`

	OnURL            string `yaml:"on_url" json:"on_url"`
	OffURL           string `yaml:"off_url" json:"off_url"`
	StatusURL        string `yaml:"status_url" json:"status_url,omitempty"`
	GetBrightnessURL string `yaml:"get_brightness_url" json:"get_brightness_url,omitempty"`
	SetBrightnessURL string `yaml:"set_brightness_url" json:"set_brightness_url,omitempty"`

	// OnSelector and BrightnessSelector locate values inside JSON
	// status responses: either a "$"-prefixed path query or a dotted
	// property path. Defaults: "$.on" and "$.brightness".
	OnSelector         string `yaml:"on_selector" json:"on_selector,omitempty"`
	BrightnessSelector string `yaml:"brightness_selector" json:"brightness_selector,omitempty"`

	// BrightnessScale names the numeric convention the device reports
	// brightness in ("0-100", "0-1", "0-255"); BrightnessWriteScale
	// overrides it for outbound writes. Defaults: "0-100", and the
	// read scale respectively.
	BrightnessScale      string `yaml:"brightness_scale" json:"brightness_scale,omitempty"`
	BrightnessWriteScale string `yaml:"brightness_write_scale" json:"brightness_write_scale,omitempty"`

	// TimeoutMs bounds each HTTP request to the device in
	// milliseconds. Default 4000, clamped to [500, 20000].
	TimeoutMs int `yaml:"timeout_ms" json:"timeout_ms,omitempty"`
}

// Valid reports whether the entry carries the minimum fields needed to
// register an accessory. Invalid entries are skipped, never fatal.
func (d Device) Valid() bool {
	return d.Name != "" && d.OnURL != "" && d.OffURL != ""
}

// StableKey returns the identity string used for accessory UUID
// derivation: the explicit ID when set, otherwise the display name.
func (d Device) StableKey() string {
	if d.ID != "" {
		return d.ID
	}
	return d.Name
}

// Timeout returns the per-request timeout with default and clamping
// applied.
func (d Device) Timeout() time.Duration {
	ms := d.TimeoutMs
	switch {
	case ms <= 0:
		ms = defaultTimeoutMs
	case ms < minTimeoutMs:
		ms = minTimeoutMs
	case ms > maxTimeoutMs:
		ms = maxTimeoutMs
	}
	return time.Duration(ms) * time.Millisecond
}

// OnPath returns the on-state selector, defaulted.
func (d Device) OnPath() string {
	if d.OnSelector != "" {
		return d.OnSelector
	}
	return defaultOnSelector
}

// BrightnessPath returns the brightness selector, defaulted.
func (d Device) BrightnessPath() string {
	if d.BrightnessSelector != "" {
		return d.BrightnessSelector
	}
	return defaultBrightnessSelector
}

// ReadScaleName returns the configured brightness read scale name.
// Unknown names are resolved by the codec.
func (d Device) ReadScaleName() string {
	return d.BrightnessScale
}

// WriteScaleName returns the brightness write scale name, falling back
// to the read scale when unset.
func (d Device) WriteScaleName() string {
	if d.BrightnessWriteScale != "" {
		return d.BrightnessWriteScale
	}
	return d.BrightnessScale
}
