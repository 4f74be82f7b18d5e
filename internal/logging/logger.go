// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TimeLayout is the timestamp format of Debug tab lines.
const TimeLayout = "2006-01-02 15:04:05.000"

// Options configures New.
type Options struct {
	// Ring receives every entry. Required.
	Ring *Ring

	// FilePath, when set, receives entries at FileLevel and above as JSON.
	FilePath  string
	FileLevel zapcore.Level

	// Debug lowers the file level to debug.
	Debug bool
}

// Logger is a zap logger plus the resources it writes to.
type Logger struct {
	*zap.Logger
	Ring *Ring

	file *os.File
}

// RingEncoderConfig formats entries as "time | LEVEL | message fields".
func RingEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "msg",
		NameKey:          "logger",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.TimeEncoderOfLayout(TimeLayout),
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " | ",
	}
}

// New builds the logger described by opts.
func New(opts Options) (*Logger, error) {
	if opts.Ring == nil {
		return nil, fmt.Errorf("logging: ring is required")
	}

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(RingEncoderConfig()),
			opts.Ring,
			zap.NewAtomicLevelAt(zapcore.DebugLevel),
		),
	}

	l := &Logger{Ring: opts.Ring}

	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0o700); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.file = f

		level := zap.NewAtomicLevelAt(opts.FileLevel)
		if opts.Debug {
			level.SetLevel(zapcore.DebugLevel)
		}
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), level))
	}

	l.Logger = zap.New(zapcore.NewTee(cores...))
	return l, nil
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	_ = l.Logger.Sync()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
