// Package logging provides the leveled, component-tagged logger shared by
// the cable, worker, clock, and buffered-endpoint packages.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// LogLevel represents the available log levels.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Config holds logging configuration.
type Config struct {
	Level  LogLevel
	Output io.Writer
}

// DefaultConfig returns a sensible default configuration: info level, stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:  LevelInfo,
		Output: os.Stderr,
	}
}

// Logger wraps the standard log package with levels and structured,
// chainable context (component, endpoint id) instead of a format string.
type Logger struct {
	logger    *log.Logger
	level     LogLevel
	mu        *sync.Mutex
	component string
	fields    []field
}

type field struct {
	key string
	val any
}

// NewLogger creates a new root logger. A nil config uses DefaultConfig.
func NewLogger(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	output := config.Output
	if output == nil {
		output = os.Stderr
	}
	return &Logger{
		logger: log.New(output, "", log.LstdFlags),
		level:  config.Level,
		mu:     &sync.Mutex{},
	}
}

// WithComponent returns a derived logger tagging every line with component,
// e.g. "cable", "worker", "clock", "buffered".
func (l *Logger) WithComponent(component string) *Logger {
	n := *l
	n.component = component
	return &n
}

// WithEndpoint returns a derived logger additionally tagging every line with
// an endpoint id.
func (l *Logger) WithEndpoint(id int) *Logger {
	n := *l
	n.fields = append(append([]field{}, l.fields...), field{"endpoint", id})
	return &n
}

// WithError returns a derived logger additionally tagging every line with an
// error value.
func (l *Logger) WithError(err error) *Logger {
	n := *l
	n.fields = append(append([]field{}, l.fields...), field{"err", err})
	return &n
}

func (l *Logger) prefix() string {
	if l.component == "" {
		return ""
	}
	return "[" + l.component + "] "
}

func (l *Logger) suffix() string {
	if len(l.fields) == 0 {
		return ""
	}
	s := ""
	for _, f := range l.fields {
		s += fmt.Sprintf(" %s=%v", f.key, f.val)
	}
	return s
}

func (l *Logger) log(level LogLevel, tag, msg string) {
	if level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Printf("%s %s%s%s", tag, l.prefix(), msg, l.suffix())
}

func (l *Logger) Debugf(format string, args ...any) {
	l.log(LevelDebug, "[DEBUG]", fmt.Sprintf(format, args...))
}

func (l *Logger) Infof(format string, args ...any) {
	l.log(LevelInfo, "[INFO]", fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...any) {
	l.log(LevelWarn, "[WARN]", fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...any) {
	l.log(LevelError, "[ERROR]", fmt.Sprintf(format, args...))
}

// Printf matches the fmt.Stringer-adjacent Logger interface expected by
// internal/interfaces, forwarding to Infof.
func (l *Logger) Printf(format string, args ...any) {
	l.Infof(format, args...)
}

var (
	defaultLogger *Logger
	defaultMu     sync.RWMutex
)

// Default returns the process default logger, creating it on first use.
func Default() *Logger {
	defaultMu.RLock()
	if defaultLogger != nil {
		defer defaultMu.RUnlock()
		return defaultLogger
	}
	defaultMu.RUnlock()

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewLogger(nil)
	}
	return defaultLogger
}

// SetDefault replaces the process default logger.
func SetDefault(logger *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}
