package logger

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
)

// Logger is a named, colorized console logger.
type Logger struct {
	name string
}

var (
	infoColor    = color.New(color.FgCyan)
	debugColor   = color.New(color.FgWhite, color.Faint)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	successColor = color.New(color.FgGreen)
)

// New creates a logger with the given component name.
func New(name string) *Logger {
	return &Logger{name: name}
}

func (l *Logger) print(c *color.Color, level, msg string) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	c.Fprintf(os.Stdout, "%s [%s] %s: %s\n", ts, level, l.name, msg)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.print(infoColor, "INFO", fmt.Sprintf(format, args...))
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.print(debugColor, "DEBUG", fmt.Sprintf(format, args...))
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.print(warnColor, "WARN", fmt.Sprintf(format, args...))
}

// Success logs a success message.
func (l *Logger) Success(format string, args ...interface{}) {
	l.print(successColor, "OK", fmt.Sprintf(format, args...))
}

// Error logs a message together with an error and returns an error that
// carries both, so call sites can log and propagate in one step.
func (l *Logger) Error(msg string, err error) error {
	if err == nil {
		l.print(errorColor, "ERROR", msg)
		return errors.New(msg)
	}
	l.print(errorColor, "ERROR", fmt.Sprintf("%s: %v", msg, err))
	return fmt.Errorf("%s: %w", msg, err)
}
