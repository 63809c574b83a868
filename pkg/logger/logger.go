// Package logger provides a small structured logger used across the
// tracker and the metadata store daemon.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

// Level represents the severity of a log message.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

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

// Logger is a leveled, structured logger with field inheritance.
type Logger struct {
	level  Level
	logger *log.Logger
	fields map[string]interface{}
}

// Config configures a new Logger.
type Config struct {
	Level  Level
	Output io.Writer
}

// New returns a Logger with INFO level writing to stdout.
func New() *Logger {
	return NewWithConfig(Config{Level: INFO, Output: os.Stdout})
}

// NewWithConfig returns a Logger built from the given Config.
func NewWithConfig(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	return &Logger{
		level:  cfg.Level,
		logger: log.New(cfg.Output, "", 0),
		fields: make(map[string]interface{}),
	}
}

// WithFields returns a derived Logger carrying the given key/value pairs
// in addition to any fields already attached.
func (l *Logger) WithFields(keyVals ...interface{}) *Logger {
	derived := &Logger{
		level:  l.level,
		logger: l.logger,
		fields: make(map[string]interface{}, len(l.fields)+len(keyVals)/2),
	}
	for k, v := range l.fields {
		derived.fields[k] = v
	}
	for i := 0; i+1 < len(keyVals); i += 2 {
		derived.fields[fmt.Sprintf("%v", keyVals[i])] = keyVals[i+1]
	}
	return derived
}

// WithField is a convenience wrapper around WithFields for a single pair.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(key, value)
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.log(DEBUG, msg, kv...) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.log(INFO, msg, kv...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.log(WARN, msg, kv...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.log(ERROR, msg, kv...) }

func (l *Logger) log(level Level, msg string, kv ...interface{}) {
	if level < l.level {
		return
	}

	ts := time.Now().Format("2006-01-02T15:04:05.000Z07:00")

	fields := make(map[string]interface{}, len(l.fields)+len(kv)/2)
	for k, v := range l.fields {
		fields[k] = v
	}
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprintf("%v", kv[i])] = kv[i+1]
	}

	l.logger.Print(formatLine(ts, level, msg, fields))
}

func formatLine(ts string, level Level, msg string, fields map[string]interface{}) string {
	parts := []string{fmt.Sprintf("[%s]", ts), fmt.Sprintf("[%s]", level), msg}

	if len(fields) > 0 {
		var fieldParts []string
		for k, v := range fields {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%v", k, formatValue(v)))
		}
		parts = append(parts, "|", strings.Join(fieldParts, " "))
	}

	return strings.Join(parts, " ")
}

func formatValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		if strings.Contains(v, " ") {
			return fmt.Sprintf("%q", v)
		}
		return v
	case error:
		return fmt.Sprintf("%q", v.Error())
	case time.Duration:
		return v.String()
	case time.Time:
		return v.Format("2006-01-02T15:04:05Z07:00")
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (l *Logger) SetLevel(level Level) { l.level = level }
func (l *Logger) GetLevel() Level      { return l.level }

var global = New()

func Debug(msg string, kv ...interface{}) { global.Debug(msg, kv...) }
func Info(msg string, kv ...interface{})  { global.Info(msg, kv...) }
func Warn(msg string, kv ...interface{})  { global.Warn(msg, kv...) }
func Error(msg string, kv ...interface{}) { global.Error(msg, kv...) }

func WithFields(kv ...interface{}) *Logger      { return global.WithFields(kv...) }
func WithField(k string, v interface{}) *Logger { return global.WithField(k, v) }
func SetLevel(level Level)                      { global.SetLevel(level) }

// ParseLevel parses a case-insensitive level name.
func ParseLevel(level string) (Level, error) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG, nil
	case "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("unknown log level: %s", level)
	}
}
