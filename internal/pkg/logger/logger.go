// Package logger exposes a process-wide structured logger built on Zap.
// Logs are emitted as JSON to stdout; when an OpenTelemetry logger provider
// has been registered via the telemetry package, an otelzap core forwards
// every entry to the telemetry backend as well.
package logger

import (
	"context"
	"os"
	"sync"

	"github.com/herowatch/herowatch/internal/pkg/telemetry"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.SugaredLogger

	// initOnce guarantees the global logger is built at most once.
	initOnce sync.Once
)

// config holds pre-initialization options for the logger.
type config struct {
	level string
}

// Option customizes the logger before Init builds it.
type Option func(*config)

// WithLevel sets the minimum level ("debug", "info", "warn", "error",
// "panic", "fatal"). The default is "info".
func WithLevel(l string) Option {
	return func(c *config) {
		c.level = l
	}
}

// Init builds the global logger. Subsequent calls are no-ops. It returns an
// error only when the configured level cannot be parsed.
func Init(opts ...Option) error {
	cfg := config{level: "info"}
	for _, opt := range opts {
		opt(&cfg)
	}

	level, err := zapcore.ParseLevel(cfg.level)
	if err != nil {
		return err
	}

	initOnce.Do(func() {
		cores := []zapcore.Core{
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				level,
			),
		}

		if lp := telemetry.LoggerProvider(); lp != nil {
			cores = append(cores, otelzap.NewCore("", otelzap.WithLoggerProvider(lp)))
		}

		logger = zap.New(zapcore.NewTee(cores...)).Sugar()
	})

	return nil
}

// Sync flushes buffered entries. Call it on shutdown.
func Sync() error {
	return logger.Sync()
}

// Debug logs at debug level with optional key/value context.
func Debug(ctx context.Context, msg string, keysAndValues ...any) {
	logger.Debugw(msg, keysAndValues...)
}

// Info logs at info level with optional key/value context.
func Info(ctx context.Context, msg string, keysAndValues ...any) {
	logger.Infow(msg, keysAndValues...)
}

// Warn logs at warn level with optional key/value context.
func Warn(ctx context.Context, msg string, keysAndValues ...any) {
	logger.Warnw(msg, keysAndValues...)
}

// Error logs at error level with optional key/value context.
func Error(ctx context.Context, msg string, keysAndValues ...any) {
	logger.Errorw(msg, keysAndValues...)
}

// Panic logs at panic level and then panics.
func Panic(ctx context.Context, msg string, keysAndValues ...any) {
	logger.Panicw(msg, keysAndValues...)
}

// Fatal logs at fatal level and then calls os.Exit(1).
func Fatal(ctx context.Context, msg string, keysAndValues ...any) {
	logger.Fatalw(msg, keysAndValues...)
}
