// Package logger provides the zerolog implementation of the core Logger.
package logger

import corelogger "github.com/kilianp07/evcharge/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger discards everything.
type NopLogger = corelogger.Nop

// New returns a Logger tagged with component. APP_ENV=dev selects the
// console writer and LOG_LEVEL sets the minimum level (default info).
func New(component string) Logger {
	return NewZerologLogger(component)
}
