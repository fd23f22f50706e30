// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package log provides leveled, per-module loggers.
package log

import (
	"io"
	"os"
	"sync"

	"github.com/op/go-logging"
)

// Level is the type of logging levels.
type Level int

// Levels accepted by SetLevel, from most to least verbose.
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
	Critical
)

// String returns the level name.
func (l Level) String() string { return l.level().String() }

func (l Level) level() logging.Level {
	switch l {
	case Debug:
		return logging.DEBUG
	case Info:
		return logging.INFO
	case Notice:
		return logging.NOTICE
	case Warning:
		return logging.WARNING
	case Error:
		return logging.ERROR
	}
	return logging.CRITICAL
}

var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
)

var (
	mu      sync.Mutex
	backend logging.LeveledBackend
	level   = Notice
)

// Logger is the interface that named loggers implement.
type Logger interface {
	Debug(v ...any)
	Debugf(format string, v ...any)

	Info(v ...any)
	Infof(format string, v ...any)

	Notice(v ...any)
	Noticef(format string, v ...any)

	Warning(v ...any)
	Warningf(format string, v ...any)

	Error(v ...any)
	Errorf(format string, v ...any)

	// Fatal and Fatalf log at critical level and then
	// exit the process.
	Fatal(v ...any)
	Fatalf(format string, v ...any)
}

// New creates a new named logger.
// The name is printed as the module of every message.
func New(name string) Logger {
	return logging.MustGetLogger(name)
}

// SetSink replaces the output of every logger.
// The current level is preserved.
func SetSink(sink io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	b := logging.NewBackendFormatter(logging.NewLogBackend(sink, "", 0), format)
	backend = logging.AddModuleLevel(b)
	backend.SetLevel(level.level(), "")
	logging.SetBackend(backend)
}

// SetLevel sets the verbosity of every logger.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
	backend.SetLevel(l.level(), "")
}

// Verbosity maps a count of -v flags to a level.
func Verbosity(n int) Level {
	switch {
	case n <= 0:
		return Notice
	case n == 1:
		return Info
	}
	return Debug
}

func init() {
	SetSink(os.Stdout)
}
