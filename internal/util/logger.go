package util

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel orders log severities.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Field is a structured key-value attached to an entry.
type Field struct {
	Key   string
	Value interface{}
}

// F builds a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// LogFormat selects how outputs render entries.
type LogFormat string

const (
	FormatText LogFormat = "text"
	FormatJSON LogFormat = "json"
)

// Output is a log destination.
type Output interface {
	Write(entry LogEntry) error
	Close() error
}

// LogEntry is one rendered log record.
type LogEntry struct {
	Timestamp time.Time              `json:"ts"`
	Level     string                 `json:"level"`
	Message   string                 `json:"msg"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// LoggerInterface is what packages log through.
type LoggerInterface interface {
	Debug(msg string, fields ...Field)
	Debugf(format string, args ...interface{})
	Info(msg string, fields ...Field)
	Infof(format string, args ...interface{})
	Warn(msg string, fields ...Field)
	Warnf(format string, args ...interface{})
	Error(msg string, fields ...Field)
	Errorf(format string, args ...interface{})
	With(fields ...Field) LoggerInterface
	SetLevel(level LogLevel)
	AddOutput(output Output)
	Close() error
}

// Logger fans entries out to its outputs. Loggers derived with With share
// the parent's outputs.
type Logger struct {
	mu      *sync.RWMutex
	level   *LogLevel
	outputs *[]Output
	fields  map[string]interface{}
}

// LoggerOptions configures NewLogger.
type LoggerOptions struct {
	Level   string
	File    string
	Console bool
	Format  LogFormat
}

// NewLogger builds a logger writing to stderr and/or a file. With neither
// configured the logger discards everything.
func NewLogger(opts LoggerOptions) (*Logger, error) {
	format := opts.Format
	if format == "" {
		format = FormatText
	}

	l := NewLoggerWithOutputs(ParseLogLevel(opts.Level))
	if opts.Console {
		l.AddOutput(NewConsoleOutput(os.Stderr, format))
	}
	if opts.File != "" {
		out, err := NewFileOutput(opts.File, format)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", opts.File, err)
		}
		l.AddOutput(out)
	}
	return l, nil
}

// NewLoggerWithOutputs builds a logger from explicit outputs.
func NewLoggerWithOutputs(level LogLevel, outputs ...Output) *Logger {
	outs := append([]Output(nil), outputs...)
	return &Logger{
		mu:      &sync.RWMutex{},
		level:   &level,
		outputs: &outs,
		fields:  map[string]interface{}{},
	}
}

// ParseLogLevel maps a level name to a LogLevel, defaulting to info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

func (lv LogLevel) String() string {
	switch lv {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "UNKNOWN"
}

func (l *Logger) emit(level LogLevel, msg string, fields []Field) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if level < *l.level || len(*l.outputs) == 0 {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     level.String(),
		Message:   msg,
	}
	if len(l.fields)+len(fields) > 0 {
		entry.Fields = make(map[string]interface{}, len(l.fields)+len(fields))
		for k, v := range l.fields {
			entry.Fields[k] = v
		}
		for _, f := range fields {
			entry.Fields[f.Key] = f.Value
		}
	}

	for _, out := range *l.outputs {
		if err := out.Write(entry); err != nil {
			log.Printf("log output failed: %v", err)
		}
	}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.emit(LevelDebug, msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.emit(LevelInfo, msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.emit(LevelWarn, msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.emit(LevelError, msg, fields) }

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.emit(LevelDebug, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.emit(LevelInfo, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.emit(LevelWarn, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.emit(LevelError, fmt.Sprintf(format, args...), nil)
}

// With returns a child logger carrying extra fields.
func (l *Logger) With(fields ...Field) LoggerInterface {
	l.mu.RLock()
	defer l.mu.RUnlock()

	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for _, f := range fields {
		merged[f.Key] = f.Value
	}
	return &Logger{mu: l.mu, level: l.level, outputs: l.outputs, fields: merged}
}

// SetLevel changes the minimum level for this logger and its children.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.level = level
}

// AddOutput attaches another destination.
func (l *Logger) AddOutput(output Output) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.outputs = append(*l.outputs, output)
}

// Close closes every output.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	for _, out := range *l.outputs {
		if err := out.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	*l.outputs = nil
	return firstErr
}
