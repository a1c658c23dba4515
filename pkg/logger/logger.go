// Package logger is the process-wide structured logger. Calls take a message
// followed by alternating key/value pairs:
//
//	logger.Info("similarity rebuilt", "version", v, "entries", n)
//
// A bare error in a key position is logged under "error".
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu  sync.RWMutex
	log = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// Init configures the global logger for the given environment. Development
// gets a human readable console writer at debug level, everything else JSON
// at info level. LOG_LEVEL overrides the level.
func Init(environment string) {
	InitWithWriter(environment, os.Stderr)
}

// InitWithWriter is Init with an explicit output, used by tests.
func InitWithWriter(environment string, out io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.ErrorFieldName = "error"

	level := zerolog.InfoLevel
	w := out
	if strings.EqualFold(environment, "development") {
		level = zerolog.DebugLevel
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}
	if lvl, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL"))); err == nil && lvl != zerolog.NoLevel {
		level = lvl
	}

	log = zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func current() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := log
	return &l
}

func Debug(msg string, args ...any) {
	emit(current().Debug(), msg, args)
}

func Info(msg string, args ...any) {
	emit(current().Info(), msg, args)
}

func Warn(msg string, args ...any) {
	emit(current().Warn(), msg, args)
}

func Error(msg string, args ...any) {
	emit(current().Error(), msg, args)
}

// Fatal logs at fatal level and exits the process.
func Fatal(msg string, args ...any) {
	emit(current().Fatal(), msg, args)
}

func emit(ev *zerolog.Event, msg string, args []any) {
	if ev == nil {
		return
	}
	for i := 0; i < len(args); i++ {
		switch k := args[i].(type) {
		case error:
			ev = ev.Err(k)
		case string:
			if i+1 >= len(args) {
				ev = ev.Str("extra", k)
				continue
			}
			ev = field(ev, k, args[i+1])
			i++
		default:
			ev = ev.Interface(fmt.Sprintf("arg%d", i), k)
		}
	}
	ev.Msg(msg)
}

func field(ev *zerolog.Event, key string, val any) *zerolog.Event {
	switch v := val.(type) {
	case error:
		return ev.AnErr(key, v)
	case string:
		return ev.Str(key, v)
	case int:
		return ev.Int(key, v)
	case int64:
		return ev.Int64(key, v)
	case uint:
		return ev.Uint(key, v)
	case uint64:
		return ev.Uint64(key, v)
	case float64:
		return ev.Float64(key, v)
	case bool:
		return ev.Bool(key, v)
	case time.Duration:
		return ev.Dur(key, v)
	default:
		return ev.Interface(key, v)
	}
}
