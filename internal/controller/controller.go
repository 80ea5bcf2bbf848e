package controller

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/glowbridge/glowbridge-core/internal/codec"
	"github.com/glowbridge/glowbridge-core/internal/infrastructure/config"
	"github.com/glowbridge/glowbridge-core/internal/selector"
	"github.com/glowbridge/glowbridge-core/internal/transport"
)

// State change sources recorded against history entries.
const (
	SourceRead  = "read"
	SourceWrite = "write"
)

// Logger defines the logging interface used by the Controller.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// HTTPGetter is the transport dependency of a Controller. The
// production implementation is *transport.Client.
type HTTPGetter interface {
	Get(ctx context.Context, url string, timeout time.Duration) (transport.Response, error)
}

// Recorder receives state transitions after a cache mutation. It must
// not block for long and must not fail; history recording is
// best-effort.
type Recorder interface {
	RecordState(ctx context.Context, accessoryUUID string, on bool, brightness int, source string)
}

// state is the cached device state. Brightness is always canonical
// [0,100] regardless of the device wire scale.
type state struct {
	on         bool
	brightness int
}

// Controller owns the cached state of one HTTP light and performs all
// device I/O for it.
//
// Thread Safety:
//   - All methods are safe for concurrent use. If two invocations for
//     the same characteristic race, last-writer-wins on the cache.
type Controller struct {
	accessoryUUID string
	dev           config.Device
	client        HTTPGetter
	logger        Logger
	recorder      Recorder

	mu    sync.Mutex
	state state
}

// New creates a controller for the given device. State starts as
// {off, 0} until the first successful read or write.
func New(accessoryUUID string, dev config.Device, client HTTPGetter) *Controller {
	return &Controller{
		accessoryUUID: accessoryUUID,
		dev:           dev,
		client:        client,
		logger:        noopLogger{},
	}
}

// SetLogger sets the logger for the controller.
func (c *Controller) SetLogger(logger Logger) {
	c.logger = logger
}

// SetRecorder sets the state transition recorder.
func (c *Controller) SetRecorder(rec Recorder) {
	c.recorder = rec
}

// Device returns the device configuration this controller is bound to.
func (c *Controller) Device() config.Device {
	return c.dev
}

// State returns the cached on/off and brightness values without
// touching the device.
func (c *Controller) State() (on bool, brightness int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.on, c.state.brightness
}

// ReadOn fetches the device's on/off state from its status URL.
//
// Without a status URL the cached value is returned unchanged. Any
// transport failure or non-OK response also returns the cached value
// with no mutation. On success the body is decoded as JSON and the
// on-selector applied; a body that isn't a JSON document is
// interpreted as a loose boolean directly.
func (c *Controller) ReadOn(ctx context.Context) bool {
	if c.dev.StatusURL == "" {
		on, _ := c.State()
		return on
	}

	resp, err := c.client.Get(ctx, c.dev.StatusURL, c.dev.Timeout())
	if err != nil {
		c.logger.Warn("status read failed", "device", c.dev.Name, "error", err)
		on, _ := c.State()
		return on
	}
	if !resp.OK {
		c.logger.Warn("status read rejected", "device", c.dev.Name, "status", resp.Status)
		on, _ := c.State()
		return on
	}

	on := c.interpretOn(resp.Body)
	c.setOn(ctx, on, SourceRead)
	return on
}

// WriteOn commands the device on or off.
//
// The cached value is set before any I/O and stands regardless of the
// transport outcome; a failed command is logged, not retried, and the
// device is not assumed to converge.
func (c *Controller) WriteOn(ctx context.Context, on bool) {
	c.setOn(ctx, on, SourceWrite)

	target := c.dev.OffURL
	if on {
		target = c.dev.OnURL
	}
	if target == "" {
		return
	}

	resp, err := c.client.Get(ctx, target, c.dev.Timeout())
	if err != nil {
		c.logger.Warn("power command failed", "device", c.dev.Name, "on", on, "error", err)
		return
	}
	if !resp.OK {
		c.logger.Warn("power command rejected", "device", c.dev.Name, "on", on, "status", resp.Status)
	}
}

// ReadBrightness fetches the device's brightness from its brightness
// URL, converted to the canonical [0,100] scale.
//
// Symmetric to ReadOn: no URL, transport failure, or non-OK response
// returns the cached value. A JSON body goes through the brightness
// selector and read-scale conversion; a non-JSON body is treated as
// the raw numeric value. A resolved value that is missing or
// non-numeric falls back to the cached value.
func (c *Controller) ReadBrightness(ctx context.Context) int {
	_, cached := c.State()
	if c.dev.GetBrightnessURL == "" {
		return cached
	}

	resp, err := c.client.Get(ctx, c.dev.GetBrightnessURL, c.dev.Timeout())
	if err != nil {
		c.logger.Warn("brightness read failed", "device", c.dev.Name, "error", err)
		return cached
	}
	if !resp.OK {
		c.logger.Warn("brightness read rejected", "device", c.dev.Name, "status", resp.Status)
		return cached
	}

	level := c.interpretBrightness(resp.Body, cached)
	c.setBrightness(ctx, level, SourceRead)
	return level
}

// WriteBrightness commands a new brightness level.
//
// The requested value is clamped to [0,100] and cached before any I/O.
// The wire value is computed on the device's write scale, URL-encoded,
// and appended to the write URL as a literal suffix. The clamped
// canonical value is returned to the caller regardless of the
// transport outcome.
func (c *Controller) WriteBrightness(ctx context.Context, value int) int {
	level := codec.ClampInt(value, codec.BrightnessMin, codec.BrightnessMax, codec.BrightnessMin)
	c.setBrightness(ctx, level, SourceWrite)

	if c.dev.SetBrightnessURL == "" {
		return level
	}

	scale := codec.ParseScale(c.dev.WriteScaleName())
	wire := codec.FromCanonicalBrightness(level, scale)
	target := c.dev.SetBrightnessURL + url.QueryEscape(wire)

	resp, err := c.client.Get(ctx, target, c.dev.Timeout())
	if err != nil {
		c.logger.Warn("brightness command failed", "device", c.dev.Name, "level", level, "error", err)
		return level
	}
	if !resp.OK {
		c.logger.Warn("brightness command rejected", "device", c.dev.Name, "level", level, "status", resp.Status)
	}
	return level
}

// interpretOn converts a status response body to a boolean. JSON
// bodies are navigated with the on-selector; anything else is read as
// a loose boolean ("ON", "1", "true", ...). A selector that matches
// nothing reads as false, matching the loose interpretation of an
// absent value.
func (c *Controller) interpretOn(body string) bool {
	doc, navigable := decodeBody(body)
	if !navigable {
		return codec.ParseBooleanLoose(doc)
	}

	v, _ := selector.Resolve(doc, c.dev.OnPath())
	return codec.ParseBooleanLoose(v)
}

// interpretBrightness converts a brightness response body to canonical
// [0,100]. JSON bodies are navigated with the brightness selector and
// converted on the read scale; anything else is treated as the raw
// numeric value. fallback is returned when no numeric reading exists.
func (c *Controller) interpretBrightness(body string, fallback int) int {
	scale := codec.ParseScale(c.dev.ReadScaleName())

	doc, navigable := decodeBody(body)
	if !navigable {
		return codec.ToCanonicalBrightness(doc, scale, fallback)
	}

	raw, ok := selector.Resolve(doc, c.dev.BrightnessPath())
	if !ok {
		return fallback
	}
	return codec.ToCanonicalBrightness(raw, scale, fallback)
}

// decodeBody decodes a response body as JSON. The second return is
// true only for container documents (object or array) that a selector
// can navigate; scalars and non-JSON bodies come back as the raw value
// itself.
func decodeBody(body string) (any, bool) {
	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return strings.TrimSpace(body), false
	}
	switch doc.(type) {
	case map[string]any, []any:
		return doc, true
	default:
		return doc, false
	}
}

// setOn updates the cached on/off value, notifying the recorder when
// the value actually changed.
func (c *Controller) setOn(ctx context.Context, on bool, source string) {
	c.mu.Lock()
	changed := c.state.on != on
	c.state.on = on
	snap := c.state
	c.mu.Unlock()

	if changed && c.recorder != nil {
		c.recorder.RecordState(ctx, c.accessoryUUID, snap.on, snap.brightness, source)
	}
}

// setBrightness updates the cached brightness, notifying the recorder
// when the value actually changed.
func (c *Controller) setBrightness(ctx context.Context, level int, source string) {
	c.mu.Lock()
	changed := c.state.brightness != level
	c.state.brightness = level
	snap := c.state
	c.mu.Unlock()

	if changed && c.recorder != nil {
		c.recorder.RecordState(ctx, c.accessoryUUID, snap.on, snap.brightness, source)
	}
}
