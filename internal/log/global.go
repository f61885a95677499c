package log

import "sync/atomic"

var defaultLogger atomic.Pointer[Logger]

// SetDefaultLogger installs the process-wide logger. Called once at
// startup after the configuration is loaded.
func SetDefaultLogger(logger *Logger) {
	defaultLogger.Store(logger)
}

// DefaultLogger returns the process-wide logger, initializing one with
// default configuration on first use when none was installed.
func DefaultLogger() *Logger {
	if logger := defaultLogger.Load(); logger != nil {
		return logger
	}
	defaultLogger.CompareAndSwap(nil, Default())
	return defaultLogger.Load()
}
