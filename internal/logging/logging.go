package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	// LevelDebug is the debug log level
	LevelDebug LogLevel = iota
	// LevelInfo is the info log level
	LevelInfo
	// LevelWarn is the warning log level
	LevelWarn
	// LevelError is the error log level
	LevelError
)

const timestampFormat = "2006-01-02 15:04:05.000 Z07:00"

var (
	logger    = logrus.New()
	levelOnce sync.Once
)

type utcFormatter struct {
	logrus.Formatter
}

func (f utcFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	entry.Time = entry.Time.UTC()
	return f.Formatter.Format(entry)
}

// ParseLevel converts a level name to a LogLevel. Unknown names map to LevelInfo.
func ParseLevel(s string) LogLevel {
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

// initLevel configures the logger from environment variables
func initLevel() {
	levelOnce.Do(func() {
		level := ParseLevel(os.Getenv("LOG_LEVEL"))

		// DEBUG takes precedence over LOG_LEVEL
		switch strings.ToLower(os.Getenv("DEBUG")) {
		case "1", "true", "yes", "on":
			level = LevelDebug
		}

		configure(os.Stdout, level, strings.EqualFold(os.Getenv("LOG_FORMAT"), "json"))
	})
}

func configure(out io.Writer, level LogLevel, json bool) {
	var formatter logrus.Formatter
	if json {
		formatter = &logrus.JSONFormatter{TimestampFormat: timestampFormat}
	} else {
		formatter = &logrus.TextFormatter{
			TimestampFormat:  timestampFormat,
			FullTimestamp:    true,
			DisableColors:    true,
			QuoteEmptyFields: true,
		}
	}
	logger.SetFormatter(utcFormatter{formatter})
	logger.SetOutput(out)
	logger.SetLevel(level.logrus())
}

// Setup overrides the environment-derived configuration. Tests use it to
// capture output.
func Setup(out io.Writer, level LogLevel, json bool) {
	levelOnce.Do(func() {})
	configure(out, level, json)
}

// GetLevel returns the current log level
func GetLevel() LogLevel {
	initLevel()
	switch logger.GetLevel() {
	case logrus.DebugLevel, logrus.TraceLevel:
		return LevelDebug
	case logrus.InfoLevel:
		return LevelInfo
	case logrus.WarnLevel:
		return LevelWarn
	default:
		return LevelError
	}
}

// IsDebugEnabled returns true if debug logging is enabled
func IsDebugEnabled() bool {
	return GetLevel() <= LevelDebug
}

// WithField returns an entry carrying a structured field, for call sites
// that want key/value context rather than printf formatting.
func WithField(key string, value interface{}) *logrus.Entry {
	initLevel()
	return logger.WithField(key, value)
}

// Debug logs a debug message (only if DEBUG=true or LOG_LEVEL=debug)
func Debug(format string, args ...interface{}) {
	initLevel()
	logger.Debugf(format, args...)
}

// Info logs an info message
func Info(format string, args ...interface{}) {
	initLevel()
	logger.Infof(format, args...)
}

// Warn logs a warning message
func Warn(format string, args ...interface{}) {
	initLevel()
	logger.Warnf(format, args...)
}

// Error logs an error message
func Error(format string, args ...interface{}) {
	initLevel()
	logger.Errorf(format, args...)
}

// Fatal logs an error message and exits
func Fatal(format string, args ...interface{}) {
	initLevel()
	logger.Fatalf(format, args...)
}

func (l LogLevel) logrus() logrus.Level {
	switch l {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// String returns the string representation of a log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}
