package log

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ Log = (*Logger)(nil)

var (
	innerLogger          *Logger
	loggerInitializeOnce sync.Once
)

type Logger struct {
	zapLogger *zap.Logger
	unsampled *zap.Logger
	zapLevel  zap.AtomicLevel
}

// Per message per second: the first sampleInitial records pass, then one in
// every sampleThereafter.
const (
	sampleInitial    = 100
	sampleThereafter = 100
)

// New builds a sampled JSON logger writing to stderr. The first logger created
// becomes the process-wide default returned by Provide.
func New(level Level) *Logger {
	logger := NewSampled(level, os.Stderr)

	loggerInitializeOnce.Do(func() { innerLogger = logger })

	return logger
}

// NewSampled builds a JSON logger over w that samples repeated messages.
// Unsampled on the result gives a view over the same output that keeps
// every record.
func NewSampled(level Level, w io.Writer) *Logger {
	zapLevel := zap.NewAtomicLevelAt(toZapLevel(level))
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.Lock(zapcore.AddSync(w)),
		zapLevel,
	)
	return &Logger{
		zapLogger: zap.New(zapcore.NewSamplerWithOptions(core, time.Second, sampleInitial, sampleThereafter)),
		unsampled: zap.New(core),
		zapLevel:  zapLevel,
	}
}

// NewWithWriter builds an unsampled JSON logger over w. Used by tests that
// assert on emitted records.
func NewWithWriter(level Level, w io.Writer) *Logger {
	zapLevel := zap.NewAtomicLevelAt(toZapLevel(level))
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(w),
		zapLevel,
	)
	zapLogger := zap.New(core)
	return &Logger{
		zapLogger: zapLogger,
		unsampled: zapLogger,
		zapLevel:  zapLevel,
	}
}

// Provide returns the process-wide logger, creating an info-level one if
// nothing has been built yet.
func Provide() *Logger {
	loggerInitializeOnce.Do(func() {
		innerLogger = New(LevelInfo)
	})
	return innerLogger
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	nop := zap.NewNop()
	return &Logger{
		zapLogger: nop,
		unsampled: nop,
		zapLevel:  zap.NewAtomicLevelAt(zap.FatalLevel),
	}
}

func (l *Logger) Log(level Level, msg string, fields ...Field) {
	if !l.zapLevel.Enabled(toZapLevel(level)) {
		return
	}
	l.zapLogger.Log(toZapLevel(level), msg, toZapFields(fields...)...)
}

func (l *Logger) Debug(msg string, fields ...Field) {
	l.zapLogger.Debug(msg, toZapFields(fields...)...)
}

func (l *Logger) Info(msg string, fields ...Field) {
	l.zapLogger.Info(msg, toZapFields(fields...)...)
}

func (l *Logger) Warn(msg string, fields ...Field) {
	l.zapLogger.Warn(msg, toZapFields(fields...)...)
}

func (l *Logger) Error(msg string, fields ...Field) {
	l.zapLogger.Error(msg, toZapFields(fields...)...)
}

func (l *Logger) Fatal(msg string, fields ...Field) {
	l.zapLogger.Fatal(msg, toZapFields(fields...)...)
}

func (l *Logger) With(fields ...Field) Log {
	zapFields := toZapFields(fields...)
	return &Logger{
		zapLogger: l.zapLogger.With(zapFields...),
		unsampled: l.unsampled.With(zapFields...),
		zapLevel:  l.zapLevel,
	}
}

// Unsampled returns a logger with the same level and fields that never drops
// repeated records.
func (l *Logger) Unsampled() Log {
	return &Logger{
		zapLogger: l.unsampled,
		unsampled: l.unsampled,
		zapLevel:  l.zapLevel,
	}
}

// WithContext returns the receiver. Nothing is propagated through contexts yet.
func (l *Logger) WithContext(_ context.Context) Log {
	return l
}

// SetLevel changes the level of this logger and every child created by With.
func (l *Logger) SetLevel(level Level) {
	l.zapLevel.SetLevel(toZapLevel(level))
}

func (l *Logger) GetLevel() Level {
	return fromZapLevel(l.zapLevel.Level())
}

func (l *Logger) Sync() error {
	return l.zapLogger.Sync()
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zap.DebugLevel
	case LevelInfo:
		return zap.InfoLevel
	case LevelWarn:
		return zap.WarnLevel
	case LevelError:
		return zap.ErrorLevel
	case LevelFatal:
		return zap.FatalLevel
	default:
		return zap.InfoLevel
	}
}

func fromZapLevel(level zapcore.Level) Level {
	switch level {
	case zap.DebugLevel:
		return LevelDebug
	case zap.InfoLevel:
		return LevelInfo
	case zap.WarnLevel:
		return LevelWarn
	case zap.ErrorLevel:
		return LevelError
	case zap.FatalLevel:
		return LevelFatal
	default:
		return LevelInfo
	}
}

func toZapFields(fields ...Field) []zap.Field {
	zapFields := make([]zap.Field, len(fields))
	for i, f := range fields {
		switch f.Type {
		case BoolType:
			zapFields[i] = zap.Bool(f.Key, f.Value.(bool))
		case DurationType:
			zapFields[i] = zap.Duration(f.Key, f.Value.(time.Duration))
		case Float64Type:
			zapFields[i] = zap.Float64(f.Key, f.Value.(float64))
		case IntType:
			zapFields[i] = zap.Int(f.Key, f.Value.(int))
		case Int64Type:
			zapFields[i] = zap.Int64(f.Key, f.Value.(int64))
		case StringType:
			zapFields[i] = zap.String(f.Key, f.Value.(string))
		case Uint64Type:
			zapFields[i] = zap.Uint64(f.Key, f.Value.(uint64))
		case ErrorType:
			err, _ := f.Value.(error)
			zapFields[i] = zap.NamedError(f.Key, err)
		default:
			zapFields[i] = zap.Any(f.Key, f.Value)
		}
	}
	return zapFields
}
