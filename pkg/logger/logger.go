// Package logger provides a leveled logging interface used by every component
// of the subtitle pipeline.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger defines the logging interface
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})
	Info(v ...interface{})
	Infof(format string, v ...interface{})
	Warn(v ...interface{})
	Warnf(format string, v ...interface{})
	Error(v ...interface{})
	Errorf(format string, v ...interface{})
	Fatal(v ...interface{})
	Fatalf(format string, v ...interface{})
}

// Level represents logging levels
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Options controls where and how verbosely a logger writes.
type Options struct {
	// Level is one of debug, info, warn, error. Empty falls back to LOG_LEVEL.
	Level string
	// File, when set, receives a copy of every line with size-based rotation.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type logger struct {
	level   Level
	loggers map[Level]*log.Logger
	mu      sync.RWMutex
}

// New creates a logger writing to stdout/stderr at the LOG_LEVEL level.
func New() Logger {
	return NewWithOptions(Options{Level: os.Getenv("LOG_LEVEL")})
}

// NewWithOptions creates a logger from explicit options.
func NewWithOptions(opts Options) Logger {
	level := opts.Level
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}

	var out, errOut io.Writer = os.Stdout, os.Stderr
	if opts.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    withDefault(opts.MaxSizeMB, 10),
			MaxBackups: withDefault(opts.MaxBackups, 3),
			MaxAge:     withDefault(opts.MaxAgeDays, 28),
		}
		out = io.MultiWriter(os.Stdout, rotating)
		errOut = io.MultiWriter(os.Stderr, rotating)
	}

	return newLogger(ParseLevel(level), out, errOut)
}

// Discard returns a logger that drops everything. Intended for tests.
func Discard() Logger {
	return newLogger(LevelError+1, io.Discard, io.Discard)
}

func newLogger(level Level, out, errOut io.Writer) *logger {
	return &logger{
		level: level,
		loggers: map[Level]*log.Logger{
			LevelDebug: log.New(out, "[DEBUG] ", log.LstdFlags|log.Lshortfile),
			LevelInfo:  log.New(out, "[INFO] ", log.LstdFlags),
			LevelWarn:  log.New(out, "[WARN] ", log.LstdFlags),
			LevelError: log.New(errOut, "[ERROR] ", log.LstdFlags|log.Lshortfile),
		},
	}
}

func withDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// ParseLevel converts a string log level to a Level, defaulting to info.
func ParseLevel(levelStr string) Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l *logger) shouldLog(level Level) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return level >= l.level
}

func (l *logger) output(level Level, msg string) {
	if !l.shouldLog(level) {
		return
	}

	l.mu.RLock()
	target := l.loggers[level]
	l.mu.RUnlock()

	target.Output(4, msg)
}

func (l *logger) Debug(v ...interface{}) { l.output(LevelDebug, fmt.Sprint(v...)) }

func (l *logger) Debugf(format string, v ...interface{}) {
	l.output(LevelDebug, fmt.Sprintf(format, v...))
}

func (l *logger) Info(v ...interface{}) { l.output(LevelInfo, fmt.Sprint(v...)) }

func (l *logger) Infof(format string, v ...interface{}) {
	l.output(LevelInfo, fmt.Sprintf(format, v...))
}

func (l *logger) Warn(v ...interface{}) { l.output(LevelWarn, fmt.Sprint(v...)) }

func (l *logger) Warnf(format string, v ...interface{}) {
	l.output(LevelWarn, fmt.Sprintf(format, v...))
}

func (l *logger) Error(v ...interface{}) { l.output(LevelError, fmt.Sprint(v...)) }

func (l *logger) Errorf(format string, v ...interface{}) {
	l.output(LevelError, fmt.Sprintf(format, v...))
}

// Fatal logs an error message and exits
func (l *logger) Fatal(v ...interface{}) {
	l.output(LevelError, fmt.Sprint(v...))
	os.Exit(1)
}

// Fatalf logs a formatted error message and exits
func (l *logger) Fatalf(format string, v ...interface{}) {
	l.output(LevelError, fmt.Sprintf(format, v...))
	os.Exit(1)
}

type prefixed struct {
	Logger
	prefix string
}

// WithPrefix returns a Logger that starts every message with prefix.
func WithPrefix(l Logger, prefix string) Logger {
	return &prefixed{Logger: l, prefix: prefix}
}

func (p *prefixed) Debug(v ...interface{}) { p.Logger.Debug(p.prefix + fmt.Sprint(v...)) }
func (p *prefixed) Info(v ...interface{})  { p.Logger.Info(p.prefix + fmt.Sprint(v...)) }
func (p *prefixed) Warn(v ...interface{})  { p.Logger.Warn(p.prefix + fmt.Sprint(v...)) }
func (p *prefixed) Error(v ...interface{}) { p.Logger.Error(p.prefix + fmt.Sprint(v...)) }
func (p *prefixed) Fatal(v ...interface{}) { p.Logger.Fatal(p.prefix + fmt.Sprint(v...)) }

func (p *prefixed) Debugf(format string, v ...interface{}) { p.Logger.Debugf(p.prefix+format, v...) }
func (p *prefixed) Infof(format string, v ...interface{})  { p.Logger.Infof(p.prefix+format, v...) }
func (p *prefixed) Warnf(format string, v ...interface{})  { p.Logger.Warnf(p.prefix+format, v...) }
func (p *prefixed) Errorf(format string, v ...interface{}) { p.Logger.Errorf(p.prefix+format, v...) }
func (p *prefixed) Fatalf(format string, v ...interface{}) { p.Logger.Fatalf(p.prefix+format, v...) }
