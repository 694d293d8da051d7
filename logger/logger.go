package logger

import (
	"io"
	"log"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
	gormlogger "gorm.io/gorm/logger"

	"weather-server/confs"
)

// Setup points the standard logger at console and, when a file path is
// configured, at a size-rotated log file as well. A nil console logs to the
// file only. The returned closer releases the file and must be called on
// shutdown.
func Setup(cfg confs.LogConfig, console io.Writer) (io.Writer, func() error) {
	writers := make([]io.Writer, 0, 2)
	if console != nil {
		writers = append(writers, console)
	}
	closer := func() error { return nil }

	if cfg.FilePath != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB, // megabytes
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays, // days
			Compress:   cfg.Compress,
		}
		writers = append(writers, rotated)
		closer = rotated.Close
	}

	var out io.Writer
	switch len(writers) {
	case 0:
		out = io.Discard
	case 1:
		out = writers[0]
	default:
		out = io.MultiWriter(writers...)
	}

	log.SetOutput(out)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return out, closer
}

// NewGormLogger builds a gorm logger that writes through out at the given
// level name (silent, error, warn, info). Unknown names fall back to warn.
func NewGormLogger(out io.Writer, level string) gormlogger.Interface {
	return gormlogger.New(
		log.New(out, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  ParseGormLevel(level),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

func ParseGormLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
