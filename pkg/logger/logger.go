// Package logger provides the process-wide structured logger used by
// go-bandit and its host. It wraps log/slog the same way the teacher
// application's pkg/logger wraps it: a package-level default logger
// configured once at startup via Init, plus thin helpers so call sites
// read as `logger.Debug("bandit_choose", "trace_id", tid, ...)` instead
// of threading a *slog.Logger through every call.
package logger

import (
	"log/slog"
	"os"
)

var std = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// Init reconfigures the default logger for the given environment.
// "production" and "prod" emit JSON at info level; anything else
// (including the empty string) emits text at debug level.
func Init(env string) {
	level := slog.LevelDebug
	handler := func(w *os.File, opts *slog.HandlerOptions) slog.Handler {
		return slog.NewTextHandler(w, opts)
	}

	switch env {
	case "production", "prod":
		level = slog.LevelInfo
		handler = func(w *os.File, opts *slog.HandlerOptions) slog.Handler {
			return slog.NewJSONHandler(w, opts)
		}
	}

	std = slog.New(handler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(std)
}

// Default returns the current process-wide logger.
func Default() *slog.Logger { return std }

func Debug(msg string, kv ...any) { std.Debug(msg, kv...) }
func Info(msg string, kv ...any)  { std.Info(msg, kv...) }
func Warn(msg string, kv ...any)  { std.Warn(msg, kv...) }
func Error(msg string, kv ...any) { std.Error(msg, kv...) }

// Fatal logs at error level and terminates the process. Reserved for
// unrecoverable startup failures (bad config, unreachable backend at
// boot) — never called from request-scoped engine code.
func Fatal(msg string, kv ...any) {
	std.Error(msg, kv...)
	os.Exit(1)
}
