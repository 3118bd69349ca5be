// Package logging wires the process-wide slog logger: a text handler on
// stderr, fanned out to an optional JSON log file.
package logging

import (
	"fmt"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
	"github.com/funvibe/liftc/internal/config"
)

var level = new(slog.LevelVar)

// Setup installs the default logger per the configuration. The returned
// closer flushes the log file, when one is open.
func Setup(cfg config.Config) (func() error, error) {
	if err := SetLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	}

	closer := func() error { return nil }
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
		closer = f.Close
	}

	slog.SetDefault(slog.New(slogmulti.Fanout(handlers...)))
	return closer, nil
}

// SetLevel parses and applies a level name.
func SetLevel(name string) error {
	switch name {
	case "debug":
		level.Set(slog.LevelDebug)
	case "", "info":
		level.Set(slog.LevelInfo)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level %q", name)
	}
	return nil
}

// SetDebug drops the level to debug, for the CLI flag.
func SetDebug() {
	level.Set(slog.LevelDebug)
}
