package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger creates a structured JSON logger tagged with the component name.
// Level comes from EXC_LOG_LEVEL unless set explicitly in config.
func NewLogger(component string) zerolog.Logger {
	level := ParseLogLevel(os.Getenv("EXC_LOG_LEVEL"))
	return NewLoggerWithLevel(component, level, "")
}

// NewLoggerWithLevel creates a logger with an explicit level. When file is
// non-empty, output is rotated there instead of stdout.
func NewLoggerWithLevel(component string, level zerolog.Level, file string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if file != "" {
		out = &lumberjack.Logger{
			Filename:   file,
			MaxSize:    100, // MB
			MaxBackups: 5,
			MaxAge:     14, // days
			Compress:   true,
		}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}

// ParseLogLevel maps a config string to a zerolog level, defaulting to info.
func ParseLogLevel(s string) zerolog.Level {
	switch s {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}
