package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerAdapter hands out per-category loggers. With a MultiLogger attached every
// category logger writes both to the console and to its category file; without one
// all categories share the console logger.
type LoggerAdapter struct {
	console     *zap.Logger
	multiLogger *MultiLogger
	loggers     map[LogCategory]*zap.Logger
}

// NewLoggerAdapter creates an adapter that tees console output into the category files
func NewLoggerAdapter(console *zap.Logger, multiLogger *MultiLogger) *LoggerAdapter {
	if console == nil {
		console = zap.NewNop()
	}

	la := &LoggerAdapter{
		console:     console,
		multiLogger: multiLogger,
		loggers:     make(map[LogCategory]*zap.Logger, len(Categories)),
	}

	for _, category := range Categories {
		named := console.Named(string(category))
		if multiLogger != nil {
			fileCore := multiLogger.GetLogger(category).Core()
			named = named.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
				return zapcore.NewTee(c, fileCore)
			}))
		}
		la.loggers[category] = named
	}

	return la
}

// NewSingleLoggerAdapter creates an adapter backed by one logger only
func NewSingleLoggerAdapter(logger *zap.Logger) *LoggerAdapter {
	return NewLoggerAdapter(logger, nil)
}

// Download returns the run lifecycle logger
func (la *LoggerAdapter) Download() *zap.Logger {
	return la.loggers[CategoryDownload]
}

// History returns the history persistence logger
func (la *LoggerAdapter) History() *zap.Logger {
	return la.loggers[CategoryHistory]
}

// Web returns the HTTP access logger
func (la *LoggerAdapter) Web() *zap.Logger {
	return la.loggers[CategoryWeb]
}

// Error returns the error logger
func (la *LoggerAdapter) Error() *zap.Logger {
	return la.loggers[CategoryError]
}

// General returns the plain console logger
func (la *LoggerAdapter) General() *zap.Logger {
	return la.console
}

// LogError logs an error to the category logger and, when category files are
// enabled, to the error file as well
func (la *LoggerAdapter) LogError(category LogCategory, msg string, fields ...zap.Field) {
	logger, ok := la.loggers[category]
	if !ok {
		logger = la.console
	}
	logger.Error(msg, fields...)

	if la.multiLogger != nil && category != CategoryError {
		la.multiLogger.LogAppError(msg, append(fields, zap.String("source_category", string(category)))...)
	}
}

// LogsDir returns the category logs directory, or "" without a MultiLogger
func (la *LoggerAdapter) LogsDir() string {
	if la.multiLogger == nil {
		return ""
	}
	return la.multiLogger.LogsDir()
}

// Sync flushes all loggers
func (la *LoggerAdapter) Sync() error {
	err := la.console.Sync()
	if la.multiLogger != nil {
		if mErr := la.multiLogger.Sync(); mErr != nil {
			err = mErr
		}
	}
	return err
}

// Close flushes and closes the category files
func (la *LoggerAdapter) Close() error {
	_ = la.console.Sync()
	if la.multiLogger == nil {
		return nil
	}
	return la.multiLogger.Close()
}
