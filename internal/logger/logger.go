package logger

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level represents a log level
type Level int

const (
	// LevelDebug is for detailed debug information
	LevelDebug Level = iota
	// LevelInfo is for general informational messages
	LevelInfo
	// LevelWarn is for warning messages
	LevelWarn
	// LevelError is for error messages
	LevelError
)

// String returns the string representation of a log level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func fromZapLevel(l zapcore.Level) Level {
	switch {
	case l <= zapcore.DebugLevel:
		return LevelDebug
	case l == zapcore.InfoLevel:
		return LevelInfo
	case l == zapcore.WarnLevel:
		return LevelWarn
	default:
		return LevelError
	}
}

// Logger is a leveled printf-style logger backed by zap
type Logger struct {
	level zap.AtomicLevel
	sugar *zap.SugaredLogger
}

// FileConfig configures the optional rotated log file
type FileConfig struct {
	Path       string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

var defaultLogger *Logger

func init() {
	defaultLogger = New(os.Getenv("LOG_LEVEL"))
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

func build(level zap.AtomicLevel, cores ...zapcore.Core) *Logger {
	return &Logger{
		level: level,
		sugar: zap.New(zapcore.NewTee(cores...)).Sugar(),
	}
}

// New creates a new logger writing to stdout with the specified level
// levelStr can be: "debug", "info", "warn", "error" (case-insensitive)
// If empty or invalid, defaults to INFO level
func New(levelStr string) *Logger {
	return NewWithWriter(levelStr, os.Stdout)
}

// NewWithWriter creates a new logger with a custom writer
func NewWithWriter(levelStr string, w io.Writer) *Logger {
	level := zap.NewAtomicLevelAt(parseLevel(levelStr).zapLevel())
	return build(level, zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.AddSync(w),
		level,
	))
}

// NewWithFile creates a logger writing to stdout and, as JSON, to a rotated file
func NewWithFile(levelStr string, file FileConfig) *Logger {
	if file.MaxSize <= 0 {
		file.MaxSize = 10
	}
	if file.MaxBackups <= 0 {
		file.MaxBackups = 3
	}
	level := zap.NewAtomicLevelAt(parseLevel(levelStr).zapLevel())
	rotated := &lumberjack.Logger{
		Filename:   file.Path,
		MaxSize:    file.MaxSize,
		MaxBackups: file.MaxBackups,
		MaxAge:     file.MaxAge,
		Compress:   file.Compress,
	}
	return build(level,
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(rotated), level),
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.AddSync(os.Stdout), level),
	)
}

// parseLevel parses a log level string
func parseLevel(levelStr string) Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug", "true", "1":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// SetLevel sets the log level
func (l *Logger) SetLevel(level Level) {
	l.level.SetLevel(level.zapLevel())
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() Level {
	return fromZapLevel(l.level.Level())
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	l.sugar.Debugf(format, v...)
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

// Sync flushes buffered log entries
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

// Default package-level functions using the default logger

// Init replaces the default logger. An empty file path logs to stdout only.
func Init(levelStr, filePath string) {
	if filePath == "" {
		defaultLogger = New(levelStr)
		return
	}
	defaultLogger = NewWithFile(levelStr, FileConfig{Path: filePath})
}

// SetLevelFromString sets the log level from a string
func SetLevelFromString(levelStr string) {
	defaultLogger.SetLevel(parseLevel(levelStr))
}

// GetLevel returns the current log level
func GetLevel() Level {
	return defaultLogger.GetLevel()
}

// Debug logs a debug message using the default logger
func Debug(format string, v ...interface{}) {
	defaultLogger.Debug(format, v...)
}

// Info logs an info message using the default logger
func Info(format string, v ...interface{}) {
	defaultLogger.Info(format, v...)
}

// Warn logs a warning message using the default logger
func Warn(format string, v ...interface{}) {
	defaultLogger.Warn(format, v...)
}

// Error logs an error message using the default logger
func Error(format string, v ...interface{}) {
	defaultLogger.Error(format, v...)
}

// Sync flushes the default logger
func Sync() error {
	return defaultLogger.Sync()
}
