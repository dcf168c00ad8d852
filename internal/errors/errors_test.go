package errors

import (
	"context"
	"errors"
	"log/slog"
	"testing"
)

// recordingHandler captures slog records so tests can assert which
// level the error handler chose.
type recordingHandler struct {
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}
func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func TestHandler_LevelByErrorType(t *testing.T) {
	cause := errors.New("glucose level is not finite at step 17")

	tests := []struct {
		name      string
		err       error
		wantLevel slog.Level
	}{
		{"simulation fallback logs as warning", NewSimulationError(cause), slog.LevelWarn},
		{"validation logs as warning", NewValidationError("carbs out of range"), slog.LevelWarn},
		{"rate limit logs as warning", ErrRateLimitExceeded, slog.LevelWarn},
		{"database logs as error", NewDatabaseError(cause), slog.LevelError},
		{"external api logs as error", NewExternalAPIError(cause, "gemini"), slog.LevelError},
		{"plain error logs as error", cause, slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingHandler{}
			h := NewHandler(slog.New(rec))

			h.Handle(context.Background(), tt.err)

			if len(rec.records) != 1 {
				t.Fatalf("logged %d records, want 1", len(rec.records))
			}
			if got := rec.records[0].Level; got != tt.wantLevel {
				t.Errorf("log level = %v, want %v", got, tt.wantLevel)
			}
		})
	}
}

func TestHandler_NilErrorLogsNothing(t *testing.T) {
	rec := &recordingHandler{}
	h := NewHandler(slog.New(rec))

	h.Handle(context.Background(), nil)

	if len(rec.records) != 0 {
		t.Errorf("logged %d records for nil error, want 0", len(rec.records))
	}
}

func TestNewSimulationError(t *testing.T) {
	cause := errors.New("curve calculation panicked")
	err := NewSimulationError(cause)

	if err.Type != ErrorTypeSimulation {
		t.Errorf("Type = %v, want %v", err.Type, ErrorTypeSimulation)
	}
	if !errors.Is(err, cause) {
		t.Error("simulation error should wrap its cause")
	}
}
