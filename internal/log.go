package internal

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logger writes every line to a log file and echoes it to stderr. Debug lines
// only reach stderr when verbose is set; the file always gets everything.
type Logger struct {
	mu      sync.Mutex
	f       io.WriteCloser
	echo    io.Writer
	verbose bool
}

func NewLogger(path string, verbose bool) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &Logger{f: f, echo: os.Stderr, verbose: verbose}, nil
}

// NewTestLogger returns a logger that discards everything. Keeps constructors
// that require a logger quiet in tests.
func NewTestLogger() *Logger {
	return &Logger{f: nopCloser{io.Discard}, echo: io.Discard}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func (l *Logger) write(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	line := fmt.Sprintf("[ %s ] %s\n", level, fmt.Sprintf(format, args...))
	fmt.Fprint(l.f, line)
	if level != "DEBUG" || l.verbose {
		fmt.Fprint(l.echo, line)
	}
}

func (l *Logger) Info(format string, args ...interface{})  { l.write("INFO", format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.write("WARN", format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.write("ERROR", format, args...) }
func (l *Logger) Debug(format string, args ...interface{}) { l.write("DEBUG", format, args...) }

func (l *Logger) Close() error {
	return l.f.Close()
}
