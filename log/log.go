// Package log provides a simple logging interface for the installer packages.
package log

import (
	"context"
	"log/slog"
	"sync"
)

var (
	// Null is a logger that discards everything written to it.
	Null = slog.New(Discard)

	trace = sync.OnceValue(func() TraceLogger {
		return Null
	})
)

// Attribute keys used throughout the installer.
const (
	KeyCommand  = "command"
	KeyError    = "error"
	KeyStep     = "step"
	KeyPlan     = "plan"
	KeyFile     = "file"
	KeyURL      = "url"
	KeyUnit     = "unit"
	KeyDuration = "duration"
	KeyVersion  = "version"
)

// ErrorAttr returns an attribute for an error value.
func ErrorAttr(err error) slog.Attr {
	if err == nil {
		return slog.Attr{Key: KeyError, Value: slog.StringValue("")}
	}
	return slog.Attr{Key: KeyError, Value: slog.StringValue(err.Error())}
}

// StepAttr returns an attribute for a step id.
func StepAttr(id string) slog.Attr {
	return slog.String(KeyStep, id)
}

// FileAttr returns an attribute for a file path.
func FileAttr(file string) slog.Attr {
	return slog.String(KeyFile, file)
}

// SetTraceLogger sets the logger used for internal trace logging.
func SetTraceLogger(l TraceLogger) {
	trace = sync.OnceValue(func() TraceLogger { return l })
}

// Trace is for internal trace logging that must be separately enabled by
// providing a [TraceLogger], which is implemented by slog.Logger.
func Trace(ctx context.Context, msg string, keysAndValues ...any) {
	trace().Log(ctx, slog.LevelDebug, msg, keysAndValues...)
}

// TraceLogger is a logger for internal trace messages.
type TraceLogger interface {
	Log(ctx context.Context, level slog.Level, msg string, keysAndValues ...any)
}

// Logger interface is implemented by slog.Logger and most other structured
// logging packages. The functions are not sprintf-style, keys and values are
// alternating key-value pairs.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type withAttrs struct {
	logger Logger
	attrs  []any
}

func (w *withAttrs) kv(kv []any) []any {
	return append(w.attrs, kv...)
}

func (w *withAttrs) Debug(msg string, keysAndValues ...any) {
	w.logger.Debug(msg, w.kv(keysAndValues)...)
}

func (w *withAttrs) Info(msg string, keysAndValues ...any) {
	w.logger.Info(msg, w.kv(keysAndValues)...)
}

func (w *withAttrs) Warn(msg string, keysAndValues ...any) {
	w.logger.Warn(msg, w.kv(keysAndValues)...)
}

func (w *withAttrs) Error(msg string, keysAndValues ...any) {
	w.logger.Error(msg, w.kv(keysAndValues)...)
}

// WithAttrs returns a logger that includes the given attributes in every message.
func WithAttrs(logger Logger, attrs ...any) Logger {
	return &withAttrs{logger, attrs}
}

// LoggerInjectable can be embedded in other structs to provide a logger and
// a log setter.
type LoggerInjectable struct {
	logger Logger
}

// Log interface is implemented by the LoggerInjectable struct.
type Log interface {
	Log() Logger
}

type injectable interface {
	InjectLogger(obj any)
	SetLogger(logger Logger)
	Log() Logger
}

// InjectLogger sets the logger for the given object if it implements the
// injectable interface.
func InjectLogger(l Logger, obj any, attrs ...any) {
	if o, ok := obj.(injectable); ok {
		if len(attrs) > 0 {
			o.SetLogger(WithAttrs(l, attrs...))
		} else {
			o.SetLogger(l)
		}
	}
}

// GetLogger returns the logger for the given object if it implements the Log
// interface or a Null logger.
func GetLogger(obj any) Logger {
	if o, ok := obj.(Log); ok && o.Log() != nil {
		return o.Log()
	}
	return Null
}

// InjectLoggerTo passes the embedding object's logger on to another object.
func (li *LoggerInjectable) InjectLoggerTo(obj any, attrs ...any) {
	if li.HasLogger() {
		InjectLogger(li.logger, obj, attrs...)
	}
}

// SetLogger sets the logger for the embedding object.
func (li *LoggerInjectable) SetLogger(logger Logger) {
	li.logger = logger
}

// HasLogger returns true if a logger has been set.
func (li *LoggerInjectable) HasLogger() bool {
	return li.logger != nil && li.logger != Null
}

// Log returns the logger for the embedding object.
func (li *LoggerInjectable) Log() Logger {
	if li.logger == nil {
		return Null
	}
	return li.logger
}
