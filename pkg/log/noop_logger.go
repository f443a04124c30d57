package log

var _ Logger = NoopLogger{}

// NoopLogger discards everything. FromContext falls back to it.
type NoopLogger struct{}

func NewNoopLogger() Logger {
	return NoopLogger{}
}

func (n NoopLogger) Debug(msg string, keysAndValues ...any) {}
func (n NoopLogger) Info(msg string, keysAndValues ...any)  {}
func (n NoopLogger) Warn(msg string, keysAndValues ...any)  {}
func (n NoopLogger) Error(msg string, keysAndValues ...any) {}
func (n NoopLogger) Fatal(msg string, keysAndValues ...any) {}
func (n NoopLogger) WithKV(key string, value any) Logger    { return n }
func (n NoopLogger) GetAllKV() []any                        { return []any{} }
func (n NoopLogger) WithName(name string) Logger            { return n }
func (n NoopLogger) Name() string                           { return "noop" }
func (n NoopLogger) AddCallerSkip(skip int) Logger          { return n }
