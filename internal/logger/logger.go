// Package logger provides the structured logging façade used across the
// engine. It wraps log/slog so call sites depend on a narrow interface
// rather than the global slog default logger.
package logger

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"
)

// Level mirrors slog's levels under names that match the rest of the
// codebase's vocabulary (Debug/Info/Warn/Error).
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// LoggerInterface is the logging contract consumed throughout the
// engine. The *c variants accept an explicit caller skip so wrapper
// code can report the caller's caller.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	Debugc(ctx context.Context, caller int, msg string, args ...any)
	Infoc(ctx context.Context, caller int, msg string, args ...any)
	Warnc(ctx context.Context, caller int, msg string, args ...any)
	Errorc(ctx context.Context, caller int, msg string, args ...any)
}

// Logger is the slog-backed LoggerInterface implementation.
type Logger struct {
	slog *slog.Logger
}

var _ LoggerInterface = (*Logger)(nil)

// New creates a Logger writing to w at the given level, tagging every
// record with a "component" attribute of name. extra are additional
// static key-value attributes attached to every record (nil is fine).
func New(w io.Writer, level Level, name string, extra map[string]any) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	base := slog.New(handler).With(slog.String("component", name))
	for k, v := range extra {
		base = base.With(slog.Any(k, v))
	}
	return &Logger{slog: base}
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.log(ctx, LevelDebug, 3, msg, args...)
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.log(ctx, LevelInfo, 3, msg, args...)
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.log(ctx, LevelWarn, 3, msg, args...)
}

func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.log(ctx, LevelError, 3, msg, args...)
}

func (l *Logger) Debugc(ctx context.Context, caller int, msg string, args ...any) {
	l.log(ctx, LevelDebug, caller, msg, args...)
}

func (l *Logger) Infoc(ctx context.Context, caller int, msg string, args ...any) {
	l.log(ctx, LevelInfo, caller, msg, args...)
}

func (l *Logger) Warnc(ctx context.Context, caller int, msg string, args ...any) {
	l.log(ctx, LevelWarn, caller, msg, args...)
}

func (l *Logger) Errorc(ctx context.Context, caller int, msg string, args ...any) {
	l.log(ctx, LevelError, caller, msg, args...)
}

func (l *Logger) log(ctx context.Context, level Level, callerSkip int, msg string, args ...any) {
	if !l.slog.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(callerSkip, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	_ = l.slog.Handler().Handle(ctx, r)
}
