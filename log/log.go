package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level represents the log level
type Level int8

const (
	// DebugLevel defines debug log level
	DebugLevel Level = iota
	// InfoLevel defines info log level
	InfoLevel
	// WarnLevel defines warn log level
	WarnLevel
	// ErrorLevel defines error log level
	ErrorLevel
	// FatalLevel defines fatal log level
	FatalLevel
)

var levelNames = [...]string{
	DebugLevel: "DEBUG",
	InfoLevel:  "INFO",
	WarnLevel:  "WARN",
	ErrorLevel: "ERROR",
	FatalLevel: "FATAL",
}

// String returns the string representation of the log level
func (l Level) String() string {
	if l >= DebugLevel && l <= FatalLevel {
		return levelNames[l]
	}
	return fmt.Sprintf("LEVEL(%d)", l)
}

// Logger is a leveled logger writing "timestamp | LEVEL | message" lines.
type Logger struct {
	mu         sync.Mutex
	writer     io.Writer
	level      Level
	timeFormat string
	buf        []byte
}

// New creates a new logger with the given writer and level.
// A nil writer defaults to os.Stdout.
func New(writer io.Writer, level Level) *Logger {
	if writer == nil {
		writer = os.Stdout
	}
	return &Logger{
		writer:     writer,
		level:      level,
		timeFormat: "2006-01-02 15:04:05",
		buf:        make([]byte, 0, 256),
	}
}

// SetLevel sets the log level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Event represents a single log event in the making.
// A nil event is a disabled one; all its methods are no-ops.
type Event struct {
	logger *Logger
	level  Level
	err    error
}

func (l *Logger) event(level Level) *Event {
	if l.GetLevel() > level {
		return nil
	}
	return &Event{logger: l, level: level}
}

// Debug returns a debug level event
func (l *Logger) Debug() *Event { return l.event(DebugLevel) }

// Info returns an info level event
func (l *Logger) Info() *Event { return l.event(InfoLevel) }

// Warn returns a warn level event
func (l *Logger) Warn() *Event { return l.event(WarnLevel) }

// Error returns an error level event
func (l *Logger) Error() *Event { return l.event(ErrorLevel) }

// Fatal returns a fatal level event
func (l *Logger) Fatal() *Event { return &Event{logger: l, level: FatalLevel} }

// Err attaches an error to the event
func (e *Event) Err(err error) *Event {
	if e == nil {
		return nil
	}
	e.err = err
	return e
}

// Msg logs the message and completes the event.
func (e *Event) Msg(msg string) {
	if e == nil {
		return
	}

	l := e.logger
	l.mu.Lock()
	defer l.mu.Unlock()

	l.buf = l.buf[:0]
	l.buf = time.Now().AppendFormat(l.buf, l.timeFormat)
	l.buf = append(l.buf, " | "...)
	l.buf = append(l.buf, e.level.String()...)
	l.buf = append(l.buf, " | "...)
	l.buf = append(l.buf, msg...)
	if e.err != nil {
		l.buf = append(l.buf, " error="...)
		l.buf = append(l.buf, e.err.Error()...)
	}
	l.buf = append(l.buf, '\n')

	_, _ = l.writer.Write(l.buf)

	if e.level == FatalLevel {
		os.Exit(1)
	}
}

// Msgf logs a formatted message and completes the event.
func (e *Event) Msgf(format string, v ...interface{}) {
	if e == nil {
		return
	}
	e.Msg(fmt.Sprintf(format, v...))
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = New(NewConsoleWriter(os.Stdout), InfoLevel)
)

// Default returns the package-level logger.
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the package-level logger.
func SetDefault(l *Logger) {
	if l == nil {
		return
	}
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}
