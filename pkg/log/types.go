package log

// Logger is the structured logger used across the issuance service.
type Logger interface {
	// Debug logs low-level details useful while developing or investigating.
	// keysAndValues are alternating keys and values (e.g., "recipient", addr).
	Debug(msg string, keysAndValues ...any)
	// Info logs routine progress such as a completed mint.
	Info(msg string, keysAndValues ...any)
	// Warn logs a situation worth attention that does not stop the caller,
	// for example a rejected authorization.
	Warn(msg string, keysAndValues ...any)
	// Error logs a failure that prevented an operation from completing.
	Error(msg string, keysAndValues ...any)
	// Fatal logs an unrecoverable failure and may terminate the process.
	Fatal(msg string, keysAndValues ...any)
	// WithKV returns a logger that attaches key/value to every entry.
	WithKV(key string, value any) Logger
	// GetAllKV returns the persistent key/value pairs of this logger.
	GetAllKV() []any
	// WithName returns a logger for a named component.
	WithName(name string) Logger
	// Name returns the component name of the logger.
	Name() string
	// AddCallerSkip returns a logger that skips extra stack frames when
	// reporting the caller. Implementations without caller info return themselves.
	AddCallerSkip(skip int) Logger
}

// Level is the severity of a log entry.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)

// SpanEventRecorder records log entries as events on a trace span.
type SpanEventRecorder interface {
	TraceID() string
	SpanID() string

	// RecordEvent adds an event with the given attributes to the span.
	RecordEvent(name string, keysAndValues ...any)
	// RecordError adds an event and marks the span as failed.
	RecordError(name string, keysAndValues ...any)
}
