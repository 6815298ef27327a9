package core

import (
	"context"
	"maps"
	"slices"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// ResolveLogger uses precedence provider > logger > nop and always returns a usable logger.
func ResolveLogger(name string, provider LoggerProvider, logger Logger) Logger {
	provider, logger = glog.Resolve(name, provider, logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger(name); named != nil {
			logger = glog.Ensure(named)
		}
	}
	return logger
}

// Log writes one structured line. Sensitive field values are redacted and
// an unknown level is written at info. Loggers that bind fields receive them
// once through WithFields instead of as trailing args.
func Log(ctx context.Context, logger Logger, level string, message string, fields map[string]any) {
	if logger == nil {
		return
	}
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	fields = RedactSensitiveMap(fields)
	args := keyValues(fields)
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(maps.Clone(fields))
		args = nil
	}
	emit := logger.Info
	switch strings.ToLower(strings.TrimSpace(level)) {
	case LevelDebug:
		emit = logger.Debug
	case LevelWarn:
		emit = logger.Warn
	case LevelError:
		emit = logger.Error
	}
	emit(message, args...)
}

// keyValues flattens fields into alternating key/value args, keys sorted.
func keyValues(fields map[string]any) []any {
	args := make([]any, 0, len(fields)*2)
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		args = append(args, key, fields[key])
	}
	return args
}
