// Package iologger initializes slog for sp7tree runs.
// This is an impure I/O package.
package iologger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gnames/sp7tree/pkg/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFile is the name of the log file in the log directory.
const LogFile = "sp7tree.log"

// Limits of the rotated log file.
const (
	maxSizeMB  = 50
	maxBackups = 5
)

// Init sets the default slog logger. With the "file" destination logs go
// to LogFile in logDir. Unless append is true, the previous log is rotated
// away and the run starts a fresh file. The returned closer releases the
// log file, it is a no-op for other destinations.
func Init(logDir string, cfg config.LogConfig, append bool) (io.Closer, error) {
	var writer io.Writer
	var closer io.Closer = nopCloser{}

	switch cfg.Destination {
	case "stdout":
		writer = os.Stdout
	case "file":
		logPath := filepath.Join(logDir, LogFile)
		lj := &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
		}
		if !append {
			if _, err := os.Stat(logPath); err == nil {
				if err = lj.Rotate(); err != nil {
					return nil, CreateLogFileError(logPath, err)
				}
			}
		}
		if _, err := lj.Write(nil); err != nil {
			return nil, CreateLogFileError(logPath, err)
		}
		writer = lj
		closer = lj
	default:
		writer = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}

	var handler slog.Handler
	switch cfg.Format {
	case "text", "tint":
		handler = slog.NewTextHandler(writer, opts)
	default:
		handler = slog.NewJSONHandler(writer, opts)
	}

	slog.SetDefault(slog.New(handler))
	return closer, nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
