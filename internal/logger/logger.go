// Package logger configures the process-wide logrus logger used for
// diagnostics. User-facing progress is printed separately by the runner.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	timestampFormat = "2006-01-02 15:04:05.000"

	// Rotation limits for the diagnostics file.
	maxLogSizeMB  = 10
	maxLogBackups = 3
)

// Config controls where diagnostics go and how verbose they are.
type Config struct {
	Level   string // logrus level name; empty means warn
	File    string // rotating log file; empty means stderr
	NoColor bool
}

// Setup configures the standard logrus logger. The returned closer flushes
// and closes the log file, if any.
func Setup(cfg Config) (io.Closer, error) {
	return configure(logrus.StandardLogger(), cfg)
}

func configure(log *logrus.Logger, cfg Config) (io.Closer, error) {
	levelName := cfg.Level
	if levelName == "" {
		levelName = "warn"
	}
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	log.SetLevel(level)

	if cfg.File == "" {
		log.SetOutput(os.Stderr)
		log.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: timestampFormat,
			FullTimestamp:   true,
			DisableColors:   cfg.NoColor,
		})
		return nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	lj := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
	}
	log.SetOutput(lj)
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: timestampFormat,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "timestamp",
			logrus.FieldKeyMsg:  "message",
		},
	})
	return lj, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
