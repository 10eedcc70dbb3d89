package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerInitializationFailedMessageFormat is the panic message used when the logger cannot be built.
const LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"

// ApplicationExecutionFailedMessage prefixes fatal command failures.
const ApplicationExecutionFailedMessage = "application execution failed"

// NewApplicationLogger constructs the console logger used for normal runs.
// Output carries the message alone; level, caller, and timestamp fields are
// muted so fatal errors read like plain diagnostics.
func NewApplicationLogger() (*zap.Logger, error) {
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Encoding = "console"
	loggerConfig.DisableCaller = true
	loggerConfig.DisableStacktrace = true

	encoderConfig := loggerConfig.EncoderConfig
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.MessageKey = "message"
	encoderConfig.TimeKey = ""
	encoderConfig.LevelKey = ""
	encoderConfig.NameKey = ""
	encoderConfig.CallerKey = ""
	encoderConfig.StacktraceKey = ""
	loggerConfig.EncoderConfig = encoderConfig

	return loggerConfig.Build()
}

// NewDebugLogger constructs a verbose console logger that records debug events.
// The CLI installs it as the zap global when verbose output is requested.
func NewDebugLogger() (*zap.Logger, error) {
	debugConfig := zap.NewDevelopmentConfig()
	debugConfig.DisableStacktrace = true
	debugConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return debugConfig.Build()
}
