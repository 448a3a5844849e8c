package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

// Level orders log severities from most to least verbose.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a LOG_LEVEL value to a Level. Unknown values mean INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger provides structured, leveled logging throughout the application.
type Logger struct {
	min   Level
	info  *log.Logger
	warn  *log.Logger
	err   *log.Logger
	debug *log.Logger
}

// NewLogger creates a new Logger writing to stdout/stderr at INFO level.
func NewLogger() *Logger {
	return &Logger{
		min:   LevelInfo,
		info:  log.New(os.Stdout, "", 0),
		warn:  log.New(os.Stdout, "", 0),
		err:   log.New(os.Stderr, "", 0),
		debug: log.New(os.Stdout, "", 0),
	}
}

// NewLoggerTo sends every level to w. Tests pass a buffer or io.Discard.
func NewLoggerTo(w io.Writer, min Level) *Logger {
	l := log.New(w, "", 0)
	return &Logger{min: min, info: l, warn: l, err: l, debug: l}
}

// WithLevel returns a copy of the logger that drops messages below min.
func (l *Logger) WithLevel(min Level) *Logger {
	cp := *l
	cp.min = min
	return &cp
}

func (l *Logger) timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func (l *Logger) write(lvl Level, tag, format string, args ...any) {
	if l == nil || lvl < l.min {
		return
	}
	out := l.info
	switch lvl {
	case LevelDebug:
		out = l.debug
	case LevelWarn:
		out = l.warn
	case LevelError:
		out = l.err
	}
	out.Printf(fmt.Sprintf("[%s] %s %s\n", l.timestamp(), tag, format), args...)
}

func (l *Logger) Info(format string, args ...any) {
	l.write(LevelInfo, "\033[32mINFO\033[0m ", format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.write(LevelWarn, "\033[33mWARN\033[0m ", format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.write(LevelError, "\033[31mERROR\033[0m", format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.write(LevelDebug, "\033[36mDEBUG\033[0m", format, args...)
}
