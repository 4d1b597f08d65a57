package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level represents log severity
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

// String returns the string representation of the log level
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a string to a Level, defaulting to INFO
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Field is a key-value pair attached to a log entry
type Field struct {
	Key   string
	Value interface{}
}

// F is a shorthand for creating a Field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Config holds logger configuration
type Config struct {
	Level    Level
	FilePath string // optional log file, rotated by size
	MaxSize  int64  // rotation threshold in bytes
	Console  bool   // write to stderr
}

// DefaultConfig returns server-oriented defaults: console on, no file
func DefaultConfig() Config {
	return Config{
		Level:   INFO,
		MaxSize: 10 * 1024 * 1024,
		Console: true,
	}
}

// Logger writes leveled, structured log lines
type Logger struct {
	config  Config
	mu      sync.Mutex
	file    *os.File
	writers []io.Writer
	fields  []Field
}

var (
	global *Logger
	once   sync.Once
)

// Init initializes the global logger
func Init(config Config) error {
	var err error
	once.Do(func() {
		global, err = New(config)
	})
	return err
}

// New creates a logger writing to the configured outputs
func New(config Config) (*Logger, error) {
	if config.MaxSize <= 0 {
		config.MaxSize = DefaultConfig().MaxSize
	}

	l := &Logger{config: config}

	if config.Console {
		l.writers = append(l.writers, os.Stderr)
	}

	if config.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = file
		l.writers = append(l.writers, file)
	}

	return l, nil
}

// rotate moves the current log file aside and opens a fresh one.
// Caller holds l.mu.
func (l *Logger) rotate() error {
	l.file.Close()

	if err := os.Rename(l.config.FilePath, l.config.FilePath+".1"); err != nil {
		return err
	}

	file, err := os.OpenFile(l.config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	l.file = file

	l.writers = l.writers[:0]
	if l.config.Console {
		l.writers = append(l.writers, os.Stderr)
	}
	l.writers = append(l.writers, file)
	return nil
}

func (l *Logger) log(level Level, msg string, fields []Field) {
	if level < l.config.Level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		if info, err := l.file.Stat(); err == nil && info.Size() >= l.config.MaxSize {
			l.rotate()
		}
	}

	var b strings.Builder
	b.WriteString(time.Now().Format("2006-01-02 15:04:05.000"))
	b.WriteString(" ")
	b.WriteString(level.String())
	b.WriteString(" ")
	b.WriteString(msg)

	all := append(append([]Field{}, l.fields...), fields...)
	for _, f := range all {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	b.WriteString("\n")

	for _, w := range l.writers {
		w.Write([]byte(b.String()))
	}
}

// WithFields returns a logger that attaches fields to every entry
func (l *Logger) WithFields(fields ...Field) *Logger {
	return &Logger{
		config:  l.config,
		file:    l.file,
		writers: l.writers,
		fields:  append(append([]Field{}, l.fields...), fields...),
	}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...Field) { l.log(DEBUG, msg, fields) }

// Info logs an info message
func (l *Logger) Info(msg string, fields ...Field) { l.log(INFO, msg, fields) }

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields ...Field) { l.log(WARN, msg, fields) }

// Error logs an error message
func (l *Logger) Error(msg string, fields ...Field) { l.log(ERROR, msg, fields) }

// Close closes the log file if one is open
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Global logger functions

// Debug logs a debug message using the global logger
func Debug(msg string, fields ...Field) {
	if global != nil {
		global.Debug(msg, fields...)
	}
}

// Info logs an info message using the global logger
func Info(msg string, fields ...Field) {
	if global != nil {
		global.Info(msg, fields...)
	}
}

// Warn logs a warning message using the global logger
func Warn(msg string, fields ...Field) {
	if global != nil {
		global.Warn(msg, fields...)
	}
}

// Error logs an error message using the global logger
func Error(msg string, fields ...Field) {
	if global != nil {
		global.Error(msg, fields...)
	}
}

// WithFields returns a logger with preset fields using the global logger.
// Safe to call before Init: the result then discards everything.
func WithFields(fields ...Field) *Logger {
	if global != nil {
		return global.WithFields(fields...)
	}
	return &Logger{config: Config{Level: ERROR + 1}}
}

// Close closes the global logger
func Close() error {
	if global != nil {
		return global.Close()
	}
	return nil
}
