// Package applog wraps the standard library logger with a small
// leveled-prefix convention (log.Printf-style output, no structured
// fields).
package applog

import (
	"io"
	"log"
	"os"
)

// Logger writes leveled, prefixed lines through a standard log.Logger.
type Logger struct {
	name string
	l    *log.Logger
}

// New creates a Logger that tags every line with name, writing to
// stderr by default.
func New(name string) *Logger {
	return &Logger{name: name, l: log.New(os.Stderr, "", log.LstdFlags)}
}

// NewWithWriter is New but writing to an arbitrary destination, used by
// tests to capture output.
func NewWithWriter(name string, w io.Writer) *Logger {
	return &Logger{name: name, l: log.New(w, "", log.LstdFlags)}
}

func (lg *Logger) Debugf(format string, args ...interface{}) { lg.printf("DEBUG", format, args...) }
func (lg *Logger) Infof(format string, args ...interface{})  { lg.printf("INFO", format, args...) }
func (lg *Logger) Warnf(format string, args ...interface{})  { lg.printf("WARN", format, args...) }
func (lg *Logger) Errorf(format string, args ...interface{}) { lg.printf("ERROR", format, args...) }

func (lg *Logger) printf(level, format string, args ...interface{}) {
	lg.l.Printf("[%s] %s: "+format, append([]interface{}{level, lg.name}, args...)...)
}

// With returns a Logger scoped to a sub-component, e.g. applog.New("dispatch").With("stream").
func (lg *Logger) With(sub string) *Logger {
	return &Logger{name: lg.name + "." + sub, l: lg.l}
}
