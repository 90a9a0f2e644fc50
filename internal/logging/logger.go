package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Init configures the global slog logger for service. ENVIRONMENT=production
// selects JSON output. LOG_LEVEL (debug, info, warn, error) overrides the
// default level of debug in development and info in production.
func Init(service string) {
	production := strings.ToLower(os.Getenv("ENVIRONMENT")) == "production"

	level := slog.LevelDebug
	if production {
		level = slog.LevelInfo
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		var parsed slog.Level
		if err := parsed.UnmarshalText([]byte(v)); err == nil {
			level = parsed
		}
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if production {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler).With("service", service))
}

// WithMeeting returns a logger with the meeting id attached
func WithMeeting(meetingID string) *slog.Logger {
	return slog.With("meeting_id", meetingID)
}
