// Package logging builds the zerolog loggers used by the service, client
// and handler layers.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "invoice-ocr-ar"

var (
	mu   sync.RWMutex
	root = zerolog.New(os.Stdout).With().Timestamp().Str("service", serviceName).Logger()
)

// Config holds logger configuration.
type Config struct {
	Level  string
	Format string // json or console
	Output io.Writer
}

// New creates a logger with the given configuration.
func New(cfg Config) zerolog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	var zl zerolog.Logger
	if strings.EqualFold(cfg.Format, "console") {
		zl = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		})
	} else {
		zl = zerolog.New(output)
	}

	return zl.Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// Init replaces the root logger handed out by Component.
func Init(cfg Config) zerolog.Logger {
	l := New(cfg)
	mu.Lock()
	root = l
	mu.Unlock()
	return l
}

// Root returns the process-wide logger.
func Root() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// Component returns a child of the root logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return Root().With().Str("component", name).Logger()
}

// ParseLevel converts a level name to a zerolog.Level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
