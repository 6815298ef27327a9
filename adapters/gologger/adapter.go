package gologger

import (
	"io"
	"os"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

const (
	FormatConsole = glog.LoggerTypeConsole
	FormatJSON    = glog.LoggerTypeJSON
	FormatPretty  = glog.LoggerTypePretty
)

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

// NewLogger builds a go-logger root writing to out (stderr when nil). The root
// is also the provider: GetLogger returns named children sharing its writer
// and level. Unknown levels log at info and unknown formats as console lines.
func NewLogger(out io.Writer, name string, level string, format string) *glog.BaseLogger {
	if out == nil {
		out = os.Stderr
	}
	loggerType := strings.ToLower(strings.TrimSpace(format))
	switch loggerType {
	case FormatJSON, FormatPretty:
	default:
		loggerType = FormatConsole
	}
	return glog.NewLogger(
		glog.WithWriter(out),
		glog.WithName(strings.TrimSpace(name)),
		glog.WithLevel(strings.TrimSpace(level)),
		glog.WithLoggerType(loggerType),
	)
}
