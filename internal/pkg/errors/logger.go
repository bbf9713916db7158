// Package errors provides error types, handling utilities, and retry logic for lazycommit.
package errors

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the logging level.
type LogLevel int

const (
	// LogLevelError logs only errors.
	LogLevelError LogLevel = iota
	// LogLevelWarn logs warnings and errors.
	LogLevelWarn
	// LogLevelInfo logs info, warnings, and errors.
	LogLevelInfo
	// LogLevelDebug logs everything including debug messages.
	LogLevelDebug
)

// String returns the string representation of LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LogLevelError:
		return "ERROR"
	case LogLevelWarn:
		return "WARN"
	case LogLevelInfo:
		return "INFO"
	case LogLevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelInfo:
		return zapcore.InfoLevel
	case LogLevelDebug:
		return zapcore.DebugLevel
	default:
		return zapcore.ErrorLevel
	}
}

// Logger provides structured logging with verbose mode support.
type Logger struct {
	mu      sync.Mutex
	output  io.Writer
	level   LogLevel
	verbose bool
	fields  []zap.Field
	zl      *zap.Logger
}

var defaultLogger = NewLogger(os.Stderr, false)

// NewLogger creates a new logger writing console-encoded lines to output.
func NewLogger(output io.Writer, verbose bool) *Logger {
	level := LogLevelError
	if verbose {
		level = LogLevelDebug
	}
	l := &Logger{
		output:  output,
		level:   level,
		verbose: verbose,
	}
	l.rebuild()
	return l
}

// rebuild recreates the zap core. Caller must hold the lock or own l exclusively.
func (l *Logger) rebuild() {
	encCfg := zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "msg",
		EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05"),
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		ConsoleSeparator: " ",
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(l.output)),
		zap.NewAtomicLevelAt(l.level.zapLevel()),
	)
	l.zl = zap.New(core).With(l.fields...)
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(verbose bool) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.verbose = verbose
	if verbose {
		defaultLogger.level = LogLevelDebug
	} else {
		defaultLogger.level = LogLevelError
	}
	defaultLogger.rebuild()
}

// IsVerbose returns whether verbose logging is enabled.
func IsVerbose() bool {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	return defaultLogger.verbose
}

// SetOutput sets the output writer for the logger.
func SetOutput(w io.Writer) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.output = w
	defaultLogger.rebuild()
}

// SetRunID tags every subsequent log line with the run identifier.
func SetRunID(id string) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.fields = []zap.Field{zap.String("run_id", id)}
	defaultLogger.rebuild()
}

// Sync flushes buffered log entries.
func Sync() {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	_ = defaultLogger.zl.Sync()
}

func (l *Logger) sugar() *zap.SugaredLogger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.zl.Sugar()
}

func (l *Logger) isVerbose() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.verbose
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar().Errorf(format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar().Warnf(format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar().Infof(format, args...)
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar().Debugf(format, args...)
}

// LogAPIRequest logs an API request in verbose mode.
func (l *Logger) LogAPIRequest(provider, endpoint, model string, promptLength int) {
	if !l.isVerbose() {
		return
	}
	l.sugar().Debugw("API request",
		"provider", provider,
		"endpoint", SanitizeErrorMessage(endpoint),
		"model", model,
		"prompt_length", promptLength)
}

// LogAPIResponse logs an API response in verbose mode.
func (l *Logger) LogAPIResponse(provider string, statusCode int, responseLength int, duration time.Duration) {
	if !l.isVerbose() {
		return
	}
	l.sugar().Debugw("API response",
		"provider", provider,
		"status", statusCode,
		"response_length", responseLength,
		"duration", duration)
}

// LogRetry logs a transport retry attempt in verbose mode.
func (l *Logger) LogRetry(attempt int, maxAttempts int, err error, delay time.Duration) {
	if !l.isVerbose() {
		return
	}
	l.sugar().Debugw("retrying request",
		"attempt", attempt,
		"max_attempts", maxAttempts,
		"error", SanitizeErrorMessage(err.Error()),
		"delay", delay)
}

// LogRepair logs a repair attempt after a rejected model reply.
func (l *Logger) LogRepair(attempt int, maxAttempts int, reason string) {
	l.sugar().Warnw("model reply rejected, asking for a corrected one",
		"attempt", attempt,
		"max_attempts", maxAttempts,
		"reason", reason)
}

// LogCircuitBreaker logs circuit breaker state changes.
func (l *Logger) LogCircuitBreaker(name, from, to string) {
	l.sugar().Debugw("circuit breaker state change", "breaker", name, "from", from, "to", to)
}

// Package-level logging functions using the default logger

// Error logs an error message.
func Error(format string, args ...interface{}) {
	defaultLogger.Error(format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...interface{}) {
	defaultLogger.Warn(format, args...)
}

// Info logs an info message.
func Info(format string, args ...interface{}) {
	defaultLogger.Info(format, args...)
}

// Debug logs a debug message.
func Debug(format string, args ...interface{}) {
	defaultLogger.Debug(format, args...)
}

// LogAPIRequest logs an API request in verbose mode.
func LogAPIRequest(provider, endpoint, model string, promptLength int) {
	defaultLogger.LogAPIRequest(provider, endpoint, model, promptLength)
}

// LogAPIResponse logs an API response in verbose mode.
func LogAPIResponse(provider string, statusCode int, responseLength int, duration time.Duration) {
	defaultLogger.LogAPIResponse(provider, statusCode, responseLength, duration)
}

// LogRetry logs a retry attempt in verbose mode.
func LogRetry(attempt int, maxAttempts int, err error, delay time.Duration) {
	defaultLogger.LogRetry(attempt, maxAttempts, err, delay)
}

// LogRepair logs a repair attempt after a rejected model reply.
func LogRepair(attempt int, maxAttempts int, reason string) {
	defaultLogger.LogRepair(attempt, maxAttempts, reason)
}

// LogCircuitBreaker logs circuit breaker state changes.
func LogCircuitBreaker(name, from, to string) {
	defaultLogger.LogCircuitBreaker(name, from, to)
}

// MaskAPIKey masks an API key for safe logging, showing only the last 4 characters.
func MaskAPIKey(apiKey string) string {
	if len(apiKey) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(apiKey)-4) + apiKey[len(apiKey)-4:]
}
