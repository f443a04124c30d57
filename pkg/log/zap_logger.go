package log

import (
	"os"
	"path/filepath"
	"time"

	zaplogfmt "github.com/jsternberg/zap-logfmt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ Logger = &ZapLogger{}

// ZapLogger implements Logger on top of a zap.SugaredLogger.
type ZapLogger struct {
	lg            *zap.SugaredLogger
	keysAndValues []any
}

// Config selects encoding, level and destination of a ZapLogger.
type Config struct {
	Format string `env:"LOG_FORMAT" env-default:"console"` // console, logfmt or json
	Level  Level  `env:"LOG_LEVEL" env-default:"info"`     // debug, info, warn, error, fatal
	Output string `env:"LOG_OUTPUT" env-default:"stderr"`  // stderr, stdout or a file path
}

// NewZapLogger builds a ZapLogger from conf. Entries are also written to every
// extra write syncer, which tests use to capture output.
func NewZapLogger(conf Config, extraWriters ...zapcore.WriteSyncer) Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = func(ts time.Time, encoder zapcore.PrimitiveArrayEncoder) {
		encoder.AppendString(ts.UTC().Format(time.RFC3339))
	}

	var encoder zapcore.Encoder
	switch conf.Format {
	case "logfmt":
		encoder = zaplogfmt.NewEncoder(encCfg)
	case "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	default:
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	wss := zapcore.NewMultiWriteSyncer(append(extraWriters, openOutput(conf.Output))...)

	core := zapcore.NewCore(encoder, wss, toZapLogLevel(conf.Level))
	// Skip log() and the exported level method.
	zl := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2)).Sugar()

	return &ZapLogger{lg: zl}
}

func openOutput(output string) zapcore.WriteSyncer {
	switch output {
	case "", "stderr":
		return zapcore.Lock(os.Stderr)
	case "stdout":
		return zapcore.Lock(os.Stdout)
	}

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return zapcore.Lock(os.Stderr)
	}
	file, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return zapcore.Lock(os.Stderr)
	}
	return zapcore.AddSync(file)
}

// Debug logs a message at debug level.
func (l *ZapLogger) Debug(msg string, keysAndValues ...any) {
	l.log(LevelDebug, msg, keysAndValues...)
}

// Info logs a message at info level.
func (l *ZapLogger) Info(msg string, keysAndValues ...any) {
	l.log(LevelInfo, msg, keysAndValues...)
}

// Warn logs a message at warn level.
func (l *ZapLogger) Warn(msg string, keysAndValues ...any) {
	l.log(LevelWarn, msg, keysAndValues...)
}

// Error logs a message at error level.
func (l *ZapLogger) Error(msg string, keysAndValues ...any) {
	l.log(LevelError, msg, keysAndValues...)
}

// Fatal logs a message at fatal level and exits the process.
func (l *ZapLogger) Fatal(msg string, keysAndValues ...any) {
	l.log(LevelFatal, msg, keysAndValues...)
}

func (l *ZapLogger) log(level Level, msg string, keysAndValues ...any) {
	l.lg.Logw(toZapLogLevel(level), msg, keysAndValues...)
}

// WithKV returns a copy of the logger carrying key/value on every entry.
func (l *ZapLogger) WithKV(key string, value any) Logger {
	kv := make([]any, 0, len(l.keysAndValues)+2)
	kv = append(kv, l.keysAndValues...)
	return &ZapLogger{
		lg:            l.lg.With(key, value),
		keysAndValues: append(kv, key, value),
	}
}

func (l *ZapLogger) GetAllKV() []any {
	return l.keysAndValues
}

// WithName appends name to the logger hierarchy, separated by a dot.
func (l *ZapLogger) WithName(name string) Logger {
	return &ZapLogger{
		lg:            l.lg.Named(name),
		keysAndValues: l.keysAndValues,
	}
}

func (l *ZapLogger) Name() string {
	return l.lg.Desugar().Name()
}

func (l *ZapLogger) AddCallerSkip(skip int) Logger {
	return &ZapLogger{
		lg:            l.lg.WithOptions(zap.AddCallerSkip(skip)),
		keysAndValues: l.keysAndValues,
	}
}

func toZapLogLevel(logLevel Level) zapcore.Level {
	switch logLevel {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelFatal:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}
