package logger

import "gitlab.com/codearena.net/internal/adapter/logging"

// Logger is the process-wide logger for code that has no injected one. cmd replaces it
// once the configuration is loaded.
var Logger = logging.NewZapLogger()

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
