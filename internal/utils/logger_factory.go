package utils

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logLevelDebugStringConstant          = "debug"
	logLevelInfoStringConstant           = "info"
	logLevelWarnStringConstant           = "warn"
	logLevelErrorStringConstant          = "error"
	logFormatStructuredStringConstant    = "structured"
	logFormatConsoleStringConstant       = "console"
	jsonZapEncodingStringConstant        = "json"
	consoleZapEncodingStringConstant     = "console"
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
	consoleMessageKeyConstant            = "message"
	standardErrorOutputPathConstant      = "stderr"
)

// LogLevel is the common.log_level setting.
type LogLevel string

// Accepted common.log_level values.
const (
	LogLevelDebug LogLevel = LogLevel(logLevelDebugStringConstant)
	LogLevelInfo  LogLevel = LogLevel(logLevelInfoStringConstant)
	LogLevelWarn  LogLevel = LogLevel(logLevelWarnStringConstant)
	LogLevelError LogLevel = LogLevel(logLevelErrorStringConstant)
)

// LogFormat is the common.log_format setting.
type LogFormat string

// Accepted common.log_format values. Console additionally narrates each
// installer command as it runs.
const (
	LogFormatStructured LogFormat = LogFormat(logFormatStructuredStringConstant)
	LogFormatConsole    LogFormat = LogFormat(logFormatConsoleStringConstant)
)

var zapLevels = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

var zapEncodings = map[LogFormat]string{
	LogFormatStructured: jsonZapEncodingStringConstant,
	LogFormatConsole:    consoleZapEncodingStringConstant,
}

// LoggerFactory turns the common logging settings into zap loggers.
type LoggerFactory struct{}

// NewLoggerFactory returns a LoggerFactory.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{}
}

// LoggerOutputs holds the two loggers an upgrade run writes to.
// DiagnosticLogger receives lifecycle and executor events at the configured
// level. ConsoleLogger prints bare command narration lines to stderr and is a
// no-op outside the console format.
type LoggerOutputs struct {
	DiagnosticLogger *zap.Logger
	ConsoleLogger    *zap.Logger
}

// CreateLoggerOutputs validates the settings and builds both loggers.
func (factory *LoggerFactory) CreateLoggerOutputs(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (LoggerOutputs, error) {
	diagnosticLogger, diagnosticError := factory.CreateLogger(requestedLogLevel, requestedLogFormat)
	if diagnosticError != nil {
		return LoggerOutputs{}, diagnosticError
	}
	outputs := LoggerOutputs{DiagnosticLogger: diagnosticLogger, ConsoleLogger: zap.NewNop()}
	if requestedLogFormat != LogFormatConsole {
		return outputs, nil
	}

	consoleLogger, consoleError := narrationConfig().Build()
	if consoleError != nil {
		return LoggerOutputs{}, consoleError
	}
	outputs.ConsoleLogger = consoleLogger
	return outputs, nil
}

// CreateLogger builds the diagnostic logger alone.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	zapLevel, knownLevel := zapLevels[requestedLogLevel]
	if !knownLevel {
		return nil, fmt.Errorf(unsupportedLogLevelTemplateConstant, requestedLogLevel)
	}
	encoding, knownFormat := zapEncodings[requestedLogFormat]
	if !knownFormat {
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, requestedLogFormat)
	}

	configuration := zap.NewProductionConfig()
	configuration.Level = zap.NewAtomicLevelAt(zapLevel)
	configuration.Encoding = encoding
	return configuration.Build()
}

// narrationConfig emits only the message text, unsampled, at info level.
func narrationConfig() zap.Config {
	configuration := zap.NewProductionConfig()
	configuration.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	configuration.Encoding = consoleZapEncodingStringConstant
	configuration.Sampling = nil
	configuration.DisableCaller = true
	configuration.DisableStacktrace = true
	configuration.OutputPaths = []string{standardErrorOutputPathConstant}
	configuration.EncoderConfig = zapcore.EncoderConfig{
		MessageKey:     consoleMessageKeyConstant,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	return configuration
}
