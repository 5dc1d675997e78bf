package observability

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// LogLevel represents log severity
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[LogLevel]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseLevel maps a level name to a LogLevel, defaulting to info
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(s) {
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

// Logger is a leveled key=value logger. WithField and WithContext derive
// child loggers; field sets are immutable once attached, so children are
// safe to share across goroutines.
type Logger struct {
	mu       *sync.Mutex
	out      io.Writer
	minLevel LogLevel
	fields   map[string]interface{}
}

var (
	defaultLogger *Logger
	loggerOnce    sync.Once
)

// NewLogger creates a logger writing to stdout
func NewLogger(minLevel LogLevel) *Logger {
	return &Logger{
		mu:       &sync.Mutex{},
		out:      os.Stdout,
		minLevel: minLevel,
	}
}

// GetLogger returns the process-wide logger, leveled by LOG_LEVEL
func GetLogger() *Logger {
	loggerOnce.Do(func() {
		defaultLogger = NewLogger(ParseLevel(os.Getenv("LOG_LEVEL")))
	})
	return defaultLogger
}

// SetOutput redirects log output, mainly for tests
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

// WithField returns a child logger carrying one extra field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a child logger carrying the extra fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{mu: l.mu, out: l.out, minLevel: l.minLevel, fields: merged}
}

// WithContext returns a child logger carrying the active span's trace and
// span IDs, so log lines correlate with exported traces
func (l *Logger) WithContext(ctx context.Context) *Logger {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return l
	}
	return l.WithFields(map[string]interface{}{
		"trace_id": sc.TraceID().String(),
		"span_id":  sc.SpanID().String(),
	})
}

func (l *Logger) Debug(msg string) { l.emit(LevelDebug, msg) }

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.emit(LevelDebug, fmt.Sprintf(format, args...))
}

func (l *Logger) Info(msg string) { l.emit(LevelInfo, msg) }

func (l *Logger) Infof(format string, args ...interface{}) {
	l.emit(LevelInfo, fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(msg string) { l.emit(LevelWarn, msg) }

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.emit(LevelWarn, fmt.Sprintf(format, args...))
}

func (l *Logger) Error(msg string) { l.emit(LevelError, msg) }

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.emit(LevelError, fmt.Sprintf(format, args...))
}

func (l *Logger) emit(level LogLevel, msg string) {
	if level < l.minLevel {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().UTC().Format(time.RFC3339))
	b.WriteString(" [")
	b.WriteString(level.String())
	b.WriteString("] ")
	b.WriteString(msg)

	// Sorted so lines are stable for grepping and test assertions.
	keys := make([]string, 0, len(l.fields))
	for k := range l.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, l.fields[k])
	}
	b.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.out, b.String())
}
