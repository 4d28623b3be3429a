// Package logging builds the process logger. The TUI owns the terminal, so logs only ever
// go to a rotating file.
package logging

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	// Path is the log file. Empty disables logging.
	Path  string
	Debug bool
}

// New returns a file-only JSON logger with rotation, or a no-op logger when no path is set.
// The returned close func flushes and releases the file.
func New(opts Options) (*zap.Logger, func() error, error) {
	path := strings.TrimSpace(opts.Path)
	if path == "" {
		return zap.NewNop(), func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // Megabytes
		MaxBackups: 5,
		MaxAge:     30, // Days
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "message"
	encoderConfig.LevelKey = "level"
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	level := zap.InfoLevel
	if opts.Debug {
		level = zap.DebugLevel
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(rotator), level)
	l := zap.New(core, zap.AddCaller())

	closeFn := func() error {
		_ = l.Sync()
		return rotator.Close()
	}
	return l, closeFn, nil
}

// Module tags every entry from a component.
func Module(l *zap.Logger, name string) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return l.With(zap.String("module", name))
}
