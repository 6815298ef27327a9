package core

import (
	"context"
	"maps"
	"sync"
)

type capturedLog struct {
	level  string
	msg    string
	fields map[string]any
}

// logSink is shared by a capture logger and every logger derived from it.
type logSink struct {
	mu      sync.Mutex
	entries []capturedLog
}

type captureLogger struct {
	sink  *logSink
	bound map[string]any
}

func newCaptureLogger() *captureLogger {
	return &captureLogger{sink: &logSink{}}
}

func (l *captureLogger) derive(extra map[string]any) *captureLogger {
	bound := maps.Clone(l.bound)
	if bound == nil {
		bound = map[string]any{}
	}
	maps.Copy(bound, extra)
	return &captureLogger{sink: l.sink, bound: bound}
}

func (l *captureLogger) WithFields(fields map[string]any) Logger { return l.derive(fields) }
func (l *captureLogger) WithContext(context.Context) Logger      { return l.derive(nil) }

func (l *captureLogger) Trace(msg string, args ...any) { l.write("trace", msg, args) }
func (l *captureLogger) Debug(msg string, args ...any) { l.write("debug", msg, args) }
func (l *captureLogger) Info(msg string, args ...any)  { l.write("info", msg, args) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.write("warn", msg, args) }
func (l *captureLogger) Error(msg string, args ...any) { l.write("error", msg, args) }
func (l *captureLogger) Fatal(msg string, args ...any) { l.write("fatal", msg, args) }

func (l *captureLogger) write(level string, msg string, args []any) {
	fields := map[string]any{}
	maps.Copy(fields, l.bound)
	for i := 1; i < len(args); i += 2 {
		if key, ok := args[i-1].(string); ok {
			fields[key] = args[i]
		}
	}
	l.sink.mu.Lock()
	l.sink.entries = append(l.sink.entries, capturedLog{level: level, msg: msg, fields: fields})
	l.sink.mu.Unlock()
}

func (l *captureLogger) snapshot() []capturedLog {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return append([]capturedLog(nil), l.sink.entries...)
}

type stubLogger struct{}

func (stubLogger) Trace(string, ...any)                 {}
func (stubLogger) Debug(string, ...any)                 {}
func (stubLogger) Info(string, ...any)                  {}
func (stubLogger) Warn(string, ...any)                  {}
func (stubLogger) Error(string, ...any)                 {}
func (stubLogger) Fatal(string, ...any)                 {}
func (s stubLogger) WithContext(context.Context) Logger { return s }

type stubLoggerProvider struct{ logger Logger }

func (s stubLoggerProvider) GetLogger(string) Logger { return s.logger }
