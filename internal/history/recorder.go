package history

import (
	"context"
)

// Logger defines the logging interface used by the Recorder.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Telemetry mirrors state changes to a time-series store.
// The influxdb client implements this; recording is fire and forget.
type Telemetry interface {
	WriteAccessoryState(accessoryUUID string, on bool, brightness int, source string)
}

// Recorder fans a state change out to the local audit trail and, when
// configured, to telemetry. It is the sink device controllers notify on
// every cached state transition.
//
// Recording never fails the caller: persistence errors are logged and
// swallowed, since a failed history write must not disturb device control.
type Recorder struct {
	repo      Repository
	telemetry Telemetry
	logger    Logger
}

// NewRecorder creates a recorder backed by the given repository.
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{
		repo:   repo,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the recorder.
func (r *Recorder) SetLogger(logger Logger) {
	r.logger = logger
}

// SetTelemetry sets the optional time-series sink.
func (r *Recorder) SetTelemetry(telemetry Telemetry) {
	r.telemetry = telemetry
}

// RecordState persists one accessory state change.
func (r *Recorder) RecordState(ctx context.Context, accessoryUUID string, on bool, brightness int, source string) {
	if err := r.repo.RecordStateChange(ctx, accessoryUUID, on, brightness, source); err != nil {
		r.logger.Warn("recording state history failed", "uuid", accessoryUUID, "error", err)
	}

	if r.telemetry != nil {
		r.telemetry.WriteAccessoryState(accessoryUUID, on, brightness, source)
	}

	r.logger.Debug("state recorded",
		"uuid", accessoryUUID, "on", on, "brightness", brightness, "source", source)
}
