// Package slog provides logging decorators for dealrater services and the
// logger construction used by the command line.
package slog

import (
	"io"
	"log/slog"
	"strings"

	"github.com/fwojciec/dealrater"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ParseLevel converts a level name (debug, info, warn, error) to a
// slog.Level. Names are case-insensitive.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return 0, dealrater.Errorf(dealrater.EINVALID, "unknown log level %q", name)
	}
	return level, nil
}

// NewLogger returns a text logger writing to w at level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewFileWriter returns a size-rotated log file at path. The caller closes it.
func NewFileWriter(path string) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
}
