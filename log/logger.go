package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

var (
	loggerMu sync.RWMutex
	logger   = zerolog.Nop()
)

// InitLogger configures the diagnostic logger. Diagnostics go to stderr in a
// human-readable console format; colour is disabled when stderr is not a terminal.
// An unparsable level falls back to warn so normal runs stay quiet.
func InitLogger(level string) zerolog.Logger {
	return InitLoggerWithWriter(level, os.Stderr, isTerminal(os.Stderr))
}

// InitLoggerWithWriter configures the diagnostic logger to write to w
func InitLoggerWithWriter(level string, w io.Writer, color bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    !color,
	}

	l := zerolog.New(consoleWriter).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
	return l
}

// Logger returns the diagnostic logger. It discards everything until InitLogger is called.
func Logger() zerolog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
