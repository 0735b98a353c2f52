package logging

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	mu      sync.RWMutex
	current = LevelInfo
	sugar   = newSugar(LevelInfo)
)

// InitFromEnv sets the log level based on LOG_LEVEL (debug|info|warn|error).
func InitFromEnv() {
	SetLevel(ParseLevel(os.Getenv("LOG_LEVEL")))
}

// ParseLevel maps a level name to a Level, defaulting to info.
func ParseLevel(raw string) Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// SetLevel rebuilds the underlying zap logger at the given level.
func SetLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()
	current = level
	_ = sugar.Sync()
	sugar = newSugar(level)
}

// Enabled reports whether messages at level are emitted.
func Enabled(level Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return level >= current
}

// Sync flushes buffered entries.
func Sync() error {
	return logger().Sync()
}

func Debugf(format string, args ...interface{}) {
	logger().Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	logger().Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	logger().Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	logger().Errorf(format, args...)
}

func Fatalf(format string, args ...interface{}) {
	logger().Fatalf(format, args...)
}

func logger() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func newSugar(level Level) *zap.SugaredLogger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeCaller = nil
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		zap.NewAtomicLevelAt(zapLevel(level)),
	)
	return zap.New(core).Sugar()
}

func zapLevel(level Level) zapcore.Level {
	switch level {
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
