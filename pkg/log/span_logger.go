package log

var _ Logger = SpanLogger{}

// SpanLogger forwards every entry to a wrapped Logger and records it on a
// span, so mint rejections show up next to the trace that produced them.
type SpanLogger struct {
	lg  Logger
	ser SpanEventRecorder
}

// NewSpanLogger wraps lg. One extra caller frame is skipped for the wrapper.
func NewSpanLogger(lg Logger, ser SpanEventRecorder) Logger {
	return &SpanLogger{
		lg:  lg.AddCallerSkip(1),
		ser: ser,
	}
}

func (sl SpanLogger) Debug(msg string, keysAndValues ...any) {
	sl.ser.RecordEvent(msg, sl.withLogContext(LevelDebug, keysAndValues)...)
	sl.lg.Debug(msg, sl.withTraceContext(keysAndValues)...)
}

func (sl SpanLogger) Info(msg string, keysAndValues ...any) {
	sl.ser.RecordEvent(msg, sl.withLogContext(LevelInfo, keysAndValues)...)
	sl.lg.Info(msg, sl.withTraceContext(keysAndValues)...)
}

func (sl SpanLogger) Warn(msg string, keysAndValues ...any) {
	sl.ser.RecordEvent(msg, sl.withLogContext(LevelWarn, keysAndValues)...)
	sl.lg.Warn(msg, sl.withTraceContext(keysAndValues)...)
}

// Error records an error event, which also marks the span as failed.
func (sl SpanLogger) Error(msg string, keysAndValues ...any) {
	sl.ser.RecordError(msg, sl.withLogContext(LevelError, keysAndValues)...)
	sl.lg.Error(msg, sl.withTraceContext(keysAndValues)...)
}

func (sl SpanLogger) Fatal(msg string, keysAndValues ...any) {
	sl.ser.RecordError(msg, sl.withLogContext(LevelFatal, keysAndValues)...)
	sl.lg.Fatal(msg, sl.withTraceContext(keysAndValues)...)
}

func (sl SpanLogger) WithKV(key string, value any) Logger {
	return SpanLogger{lg: sl.lg.WithKV(key, value), ser: sl.ser}
}

func (sl SpanLogger) GetAllKV() []any {
	return sl.lg.GetAllKV()
}

func (sl SpanLogger) WithName(name string) Logger {
	return SpanLogger{lg: sl.lg.WithName(name), ser: sl.ser}
}

func (sl SpanLogger) Name() string {
	return sl.lg.Name()
}

func (sl SpanLogger) AddCallerSkip(skip int) Logger {
	return SpanLogger{lg: sl.lg.AddCallerSkip(skip), ser: sl.ser}
}

// withTraceContext prefixes the log fields with the trace and span ids.
func (sl SpanLogger) withTraceContext(keysAndValues []any) []any {
	return append([]any{
		"traceId", sl.ser.TraceID(),
		"spanId", sl.ser.SpanID(),
	}, keysAndValues...)
}

// withLogContext builds span event attributes: level, component, the
// logger's persistent fields, then the entry's own fields.
func (sl SpanLogger) withLogContext(level Level, keysAndValues []any) []any {
	full := append([]any{
		"level", string(level),
		"component", sl.lg.Name(),
	}, sl.lg.GetAllKV()...)
	return append(full, keysAndValues...)
}
