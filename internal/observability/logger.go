// Package observability holds the logging surface shared by every package:
// a small Logger interface, a process-wide default, and the zap backend.
package observability

// Logger is the structured logger every component writes through.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field is one key/value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

// F builds a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

var defaultLogger Logger = noopLogger{}

// SetLogger replaces the process logger. Nil restores the discarding default.
func SetLogger(logger Logger) {
	if logger == nil {
		defaultLogger = noopLogger{}
		return
	}
	defaultLogger = logger
}

// Log returns the process logger.
func Log() Logger {
	return defaultLogger
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return noopLogger{}
}

// With returns a logger that appends fields to every line written through l.
func With(l Logger, fields ...Field) Logger {
	if l == nil {
		l = noopLogger{}
	}
	if len(fields) == 0 {
		return l
	}
	if inner, ok := l.(fieldLogger); ok {
		merged := make([]Field, 0, len(inner.fields)+len(fields))
		merged = append(merged, inner.fields...)
		merged = append(merged, fields...)
		return fieldLogger{next: inner.next, fields: merged}
	}
	return fieldLogger{next: l, fields: append([]Field(nil), fields...)}
}

type fieldLogger struct {
	next   Logger
	fields []Field
}

func (l fieldLogger) merge(fields []Field) []Field {
	out := make([]Field, 0, len(fields)+len(l.fields))
	out = append(out, fields...)
	return append(out, l.fields...)
}

func (l fieldLogger) Debug(msg string, fields ...Field) { l.next.Debug(msg, l.merge(fields)...) }
func (l fieldLogger) Info(msg string, fields ...Field)  { l.next.Info(msg, l.merge(fields)...) }
func (l fieldLogger) Warn(msg string, fields ...Field)  { l.next.Warn(msg, l.merge(fields)...) }
func (l fieldLogger) Error(msg string, fields ...Field) { l.next.Error(msg, l.merge(fields)...) }

type noopLogger struct{}

func (noopLogger) Debug(string, ...Field) {}
func (noopLogger) Info(string, ...Field)  {}
func (noopLogger) Warn(string, ...Field)  {}
func (noopLogger) Error(string, ...Field) {}
