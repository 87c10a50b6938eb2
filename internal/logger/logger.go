package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Default rotation parameters, lumberjack semantics.
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 7
)

// Config describes logging destinations for the engine. When Dir is
// set, a rotating file restage.log is written there in addition to the
// colored console handler.
type Config struct {
	Level      string // debug|info|warn|error, default info
	Dir        string // base directory for the rotating log file
	MaxSizeMB  int    // megabytes before rotation (default 10)
	MaxBackups int    // number of backups to keep (default 3)
	MaxAgeDays int    // days to keep (default 7)
	Compress   bool   // gzip rotated files
}

// New builds a slog.Logger from the config: colored text on stderr,
// plus a rotating JSON file when Dir is set.
func (c Config) New() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.slogLevel()}
	console := NewColorTextHandler(os.Stderr, opts, true)
	if c.Dir == "" {
		return slog.New(console)
	}
	file := &lj.Logger{
		Filename:   filepath.Join(c.Dir, "restage.log"),
		MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.Compress,
	}
	return slog.New(newTeeHandler(console, slog.NewJSONHandler(file, opts)))
}

// FileWriter returns the rotating writer alone, for callers that
// redirect subsystem output.
func (c Config) FileWriter(name string) io.WriteCloser {
	if c.Dir == "" {
		return nil
	}
	return &lj.Logger{
		Filename:   filepath.Join(c.Dir, name+".log"),
		MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.Compress,
	}
}

func (c Config) slogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
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

func valOr(v int, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
