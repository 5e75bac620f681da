package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the service logger. Development gets the console writer,
// everything else gets JSON lines on stdout.
func New(env, level string) zerolog.Logger {
	return NewWithWriter(writerFor(env), level)
}

// NewWithWriter is New with an explicit sink, used by tests.
func NewWithWriter(w io.Writer, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Str("service", "kizuki-server").
		Logger()
}

// ParseLevel falls back to info for anything zerolog does not recognise.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func writerFor(env string) io.Writer {
	if env == "development" || env == "dev" {
		return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return os.Stdout
}
