// Package logger provides the process-wide structured logger backed by
// zerolog, plus the two event helpers the storefront core reports through:
// Fallback (a degraded result was served) and Performance (an operation's
// duration).
//
// Initialise once at startup with Init, then retrieve anywhere with Get.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options controls logger behaviour at initialisation time.
type Options struct {
	// Level is the minimum level: trace, debug, info, warn, error.
	// Defaults to "info" when empty or unrecognised.
	Level string
	// Pretty switches to zerolog's console writer. Keep false in production.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service is attached to every entry when non-empty.
	Service string
}

// slowThreshold promotes Performance entries to warn level.
const slowThreshold = time.Second

var (
	mu          sync.Mutex
	instance    zerolog.Logger
	initialized bool
)

// Init builds the logger. Only the first call has an effect until Reset.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if initialized {
		return instance
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	lvl := parseLevel(opts.Level)
	ctx := zerolog.New(out).Level(lvl).With().Timestamp()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}

	instance = ctx.Logger()
	initialized = true
	return instance
}

// Get returns the logger. Panics if Init has not been called yet.
func Get() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if !initialized {
		panic("logger: Get() called before Init()")
	}
	return instance
}

// Reset tears down the logger so the next Init rebuilds it. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	instance = zerolog.Logger{}
	initialized = false
}

// Fallback records that source failed and fallbackTo was served instead.
func Fallback(log zerolog.Logger, source, fallbackTo, reason string) {
	ev := log.Warn().
		Str("event", "fallback").
		Str("source", source).
		Str("fallback_to", fallbackTo)
	if reason != "" {
		ev = ev.Str("reason", reason)
	}
	ev.Msg("using fallback")
}

// Performance records how long operation took. Entries above slowThreshold
// are logged at warn level, the rest at debug.
func Performance(log zerolog.Logger, operation string, d time.Duration, fields map[string]any) {
	ev := log.Debug()
	if d >= slowThreshold {
		ev = log.Warn()
	}
	ev.Str("event", "performance").
		Str("operation", operation).
		Dur("duration", d).
		Fields(fields).
		Msg("operation timed")
}

// parseLevel converts a string to a zerolog.Level, defaulting to info.
func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
