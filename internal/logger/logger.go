package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// New builds the process logger. format is "pretty" or "json"; level is one
// of debug, info, warn, error.
func New(w io.Writer, format string, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "pretty":
		return slog.New(NewPrettyHandler(w, lvl, true)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}
