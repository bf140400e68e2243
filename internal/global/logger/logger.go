package logger

import "gitlab.com/equivcheck-2025.net/internal/adapter/logging"

var Logger = logging.NewZapLogger()

// SetDebug swaps the global logger for one at debug level.
func SetDebug(debug bool) {
	Logger = logging.NewZapLoggerWithLevel(debug)
}

func Info(msg string, args ...interface{}) {
	Logger.Info(msg, args...)
}

func Error(msg string, args ...interface{}) {
	Logger.Error(msg, args...)
}

func Debug(msg string, args ...interface{}) {
	Logger.Debug(msg, args...)
}

func Warn(msg string, args ...interface{}) {
	Logger.Warn(msg, args...)
}
