package logger

import corelogger "github.com/hydrosched/hydrosched/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

// New returns a Logger for the given component, configured from APP_ENV
// (output format) and HS_LOG_LEVEL (minimum level).
func New(component string) Logger {
	return NewZerologLogger(component)
}
