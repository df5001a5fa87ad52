package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config describes where and how log lines are written
type Config struct {
	Level      string // trace, debug, info, warn, error
	Format     string // json or console
	Output     string // stdout, stderr, or file path
	TimeFormat string // console only
}

// New builds a zerolog logger from cfg. The returned closer releases the log
// file when Output is a path and is a no-op otherwise.
func New(cfg Config) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("invalid log level: %w", err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	var closer io.Closer = nopCloser{}
	switch cfg.Output {
	case "", "stderr":
		output = os.Stderr
	case "stdout":
		output = os.Stdout
	default:
		file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("could not open log file: %w", err)
		}
		output = file
		closer = file
	}

	return NewWithWriter(output, level, cfg.Format, cfg.TimeFormat), closer, nil
}

// NewWithWriter builds a logger writing to w. Level filtering is per logger;
// the global zerolog settings are left untouched.
func NewWithWriter(w io.Writer, level zerolog.Level, format, timeFormat string) zerolog.Logger {
	if format == "console" {
		if timeFormat == "" {
			timeFormat = time.TimeOnly
		}
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: timeFormat,
		}
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
