// Package logger holds the process-wide structured logger used by the
// allocator, memory pool and critical data store packages.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// L is the global logger instance. It discards all output until Init is called.
var L = slog.New(slog.NewTextHandler(io.Discard, nil))

// AllocTraceEnv enables per-allocation debug tracing when set to any value.
const AllocTraceEnv = "FLIGHTMEM_LOG_ALLOC"

// Options configures the logger initialization.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	Writer  io.Writer  // Destination. Default: os.Stderr
	Level   slog.Level // Minimum log level. Default: LevelInfo when enabled
	JSON    bool       // Emit JSON records instead of text
}

// Init configures logging. Call from main() before any log calls.
// If opts.Enabled is false, all log output is discarded.
func Init(opts Options) {
	if !opts.Enabled {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		return
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	if opts.JSON {
		L = slog.New(slog.NewJSONHandler(w, handlerOpts))
		return
	}
	L = slog.New(slog.NewTextHandler(w, handlerOpts))
}

// TraceAlloc reports whether allocation tracing was requested via AllocTraceEnv.
func TraceAlloc() bool {
	return os.Getenv(AllocTraceEnv) != ""
}
