package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls how the global logger is built
type Options struct {
	Development bool   // Console-only development output
	Level       string // debug, info, warn, error
	File        string // Log file path, empty for console only
	MaxSizeMB   int    // Rotate after this many megabytes
	MaxBackups  int    // Rotated files to keep
	MaxAgeDays  int    // Days to keep rotated files
}

var (
	Logger      = zap.NewNop()
	Sugar       = Logger.Sugar()
	atomicLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
)

// ParseLevel converts a level name to a zap level, defaulting to info
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(name) {
	case "debug":
		return zap.DebugLevel
	case "warn", "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// InitLogger initializes the global logger
func InitLogger(opts Options) error {
	atomicLevel.SetLevel(ParseLevel(opts.Level))

	var (
		l   *zap.Logger
		err error
	)
	if opts.Development || opts.File == "" {
		l, err = newConsoleLogger()
	} else {
		l, err = newFileLogger(opts)
	}
	if err != nil {
		return err
	}

	Logger = l
	Sugar = l.Sugar()
	zap.ReplaceGlobals(l)
	return nil
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.MessageKey = "msg"
	cfg.LevelKey = "level"
	cfg.CallerKey = "caller"
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cfg.EncodeDuration = zapcore.MillisDurationEncoder
	cfg.EncodeLevel = func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		// Fixed width level formatting for alignment
		enc.AppendString(fmt.Sprintf("%-5s", level.CapitalString()))
	}
	cfg.EncodeCaller = func(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(formatCaller(caller))
	}
	return cfg
}

func newConsoleLogger() (*zap.Logger, error) {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.Lock(os.Stdout),
		atomicLevel,
	)
	return zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1), // Skip wrapper function to show actual caller
		zap.AddStacktrace(zapcore.ErrorLevel),
	), nil
}

// newFileLogger tees JSON lines into a rotated file and plain lines to stdout
func newFileLogger(opts Options) (*zap.Logger, error) {
	if err := createLogDir(opts.File); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	maxSize := opts.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 50
	}
	maxAge := opts.MaxAgeDays
	if maxAge <= 0 {
		maxAge = 7
	}

	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    maxSize, // megabytes
		MaxBackups: opts.MaxBackups,
		MaxAge:     maxAge, // days
		Compress:   true,
	})

	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), w, atomicLevel)
	consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.Lock(os.Stdout), atomicLevel)

	return zap.New(zapcore.NewTee(fileCore, consoleCore),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(zap.String("progname", "pickupwatch")),
	), nil
}

// With creates a child logger with additional fields
func With(fields ...zap.Field) *zap.Logger {
	return Logger.With(fields...)
}

// Info logs a message at InfoLevel
func Info(msg string, fields ...zap.Field) {
	Logger.Info(msg, fields...)
}

// Error logs a message at ErrorLevel
func Error(msg string, fields ...zap.Field) {
	Logger.Error(msg, fields...)
}

// Warn logs a message at WarnLevel
func Warn(msg string, fields ...zap.Field) {
	Logger.Warn(msg, fields...)
}

// Debug logs a message at DebugLevel
func Debug(msg string, fields ...zap.Field) {
	Logger.Debug(msg, fields...)
}

// Sync flushes any buffered log entries
func Sync() error {
	if Logger != nil {
		return Logger.Sync()
	}
	return nil
}

// SetLevel dynamically changes the log level
func SetLevel(level zapcore.Level) {
	atomicLevel.SetLevel(level)
}

// GetLevel returns the current log level
func GetLevel() zapcore.Level {
	return atomicLevel.Level()
}

// DebugEnabled reports whether debug entries are written
func DebugEnabled() bool {
	return atomicLevel.Enabled(zap.DebugLevel)
}

func createLogDir(logPath string) error {
	dir := filepath.Dir(logPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// formatCaller keeps package/file.go:line padded to a fixed width
func formatCaller(caller zapcore.EntryCaller) string {
	path := caller.TrimmedPath()
	path = strings.TrimPrefix(path, "pkg/")
	path = strings.TrimPrefix(path, "cmd/")

	parts := strings.Split(path, "/")
	if len(parts) > 2 {
		path = strings.Join(parts[len(parts)-2:], "/")
	}

	const callerWidth = 28
	if len(path) > callerWidth {
		path = "..." + path[len(path)-(callerWidth-3):]
	}
	return fmt.Sprintf("%-*s", callerWidth, path)
}
