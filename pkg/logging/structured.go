package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel accepts the level names case-insensitively and falls back to INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	case FATAL:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

type StructuredLogger struct {
	level      LogLevel
	jsonFormat bool
	logger     *zap.Logger
}

func NewStructuredLogger(level LogLevel, jsonFormat bool) *StructuredLogger {
	return newStructuredLogger(level, jsonFormat, os.Stdout)
}

// NewStructuredLoggerTo writes to w instead of stdout.
func NewStructuredLoggerTo(level LogLevel, jsonFormat bool, w io.Writer) *StructuredLogger {
	return newStructuredLogger(level, jsonFormat, w)
}

func newStructuredLogger(level LogLevel, jsonFormat bool, w io.Writer) *StructuredLogger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.MessageKey = "message"
	encCfg.EncodeTime = zapcore.RFC3339TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var enc zapcore.Encoder
	if jsonFormat {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), level.zapLevel())
	return &StructuredLogger{
		level:      level,
		jsonFormat: jsonFormat,
		logger:     zap.New(core),
	}
}

// NewNopLogger discards everything.
func NewNopLogger() *StructuredLogger {
	return &StructuredLogger{level: FATAL, logger: zap.NewNop()}
}

func (sl *StructuredLogger) Level() LogLevel { return sl.level }

// Zap exposes the underlying logger for callers that want typed fields.
func (sl *StructuredLogger) Zap() *zap.Logger { return sl.logger }

func (sl *StructuredLogger) Sync() error { return sl.logger.Sync() }

func (sl *StructuredLogger) WithFields(fields map[string]interface{}) *StructuredLogger {
	return &StructuredLogger{
		level:      sl.level,
		jsonFormat: sl.jsonFormat,
		logger:     sl.logger.With(toZapFields(fields)...),
	}
}

func (sl *StructuredLogger) WithField(key string, value interface{}) *StructuredLogger {
	return &StructuredLogger{
		level:      sl.level,
		jsonFormat: sl.jsonFormat,
		logger:     sl.logger.With(zap.Any(key, value)),
	}
}

func toZapFields(fields map[string]interface{}) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}

func (sl *StructuredLogger) Debug(msg string) { sl.logger.Debug(msg) }

func (sl *StructuredLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	sl.logger.Debug(msg, toZapFields(fields)...)
}

func (sl *StructuredLogger) Info(msg string) { sl.logger.Info(msg) }

func (sl *StructuredLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	sl.logger.Info(msg, toZapFields(fields)...)
}

func (sl *StructuredLogger) Warn(msg string) { sl.logger.Warn(msg) }

func (sl *StructuredLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	sl.logger.Warn(msg, toZapFields(fields)...)
}

func (sl *StructuredLogger) Error(msg string) { sl.logger.Error(msg) }

func (sl *StructuredLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	sl.logger.Error(msg, toZapFields(fields)...)
}

func (sl *StructuredLogger) Fatal(msg string) { sl.logger.Fatal(msg) }

func (sl *StructuredLogger) FatalWithFields(msg string, fields map[string]interface{}) {
	sl.logger.Fatal(msg, toZapFields(fields)...)
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = NewStructuredLogger(INFO, false)
)

func SetDefaultLogger(logger *StructuredLogger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

func GetDefaultLogger() *StructuredLogger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

func Debug(msg string) { GetDefaultLogger().Debug(msg) }

func Info(msg string) { GetDefaultLogger().Info(msg) }

func Warn(msg string) { GetDefaultLogger().Warn(msg) }

func Error(msg string) { GetDefaultLogger().Error(msg) }

func Fatal(msg string) { GetDefaultLogger().Fatal(msg) }

func WithField(key string, value interface{}) *StructuredLogger {
	return GetDefaultLogger().WithField(key, value)
}

func WithFields(fields map[string]interface{}) *StructuredLogger {
	return GetDefaultLogger().WithFields(fields)
}
