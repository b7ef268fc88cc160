package logging

import (
	"io"
	"log/slog"
	"os"
)

// New creates the service logger tagged with the service name. Production
// environments get JSON output for log shipping; development gets a
// human-readable text handler. An invalid level string falls back to info.
func New(level, service string, dev bool) *slog.Logger {
	return slog.New(handler(os.Stdout, level, dev)).With(slog.String("service", service))
}

func handler(w io.Writer, level string, dev bool) slog.Handler {
	lvl := new(slog.LevelVar)
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if dev {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// Discard returns a logger that drops all output. Useful for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}
