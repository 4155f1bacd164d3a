package log

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type key int

const (
	fieldsKey key = iota
	loggerKey
)

// Field names shared by every component so log lines can be joined on them
const (
	CollectionKey    = "collection"
	OperationKey     = "operation"
	EntryKey         = "key"
	TransactionIDKey = "transaction_id"
)

// New builds a logger for the given level name. development switches
// to zap's human-readable console encoder.
func New(level string, development bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)

	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %s", level, err.Error())
	}

	cfg := zap.NewProductionConfig()

	if development {
		cfg = zap.NewDevelopmentConfig()
	}

	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}

// Collection names the collection a log line is about
func Collection(name string) zap.Field {
	return zap.String(CollectionKey, name)
}

// Operation names the collection operation a log line is about
func Operation(operation string) zap.Field {
	return zap.String(OperationKey, operation)
}

// Key names the collection key a log line is about
func Key(key string) zap.Field {
	return zap.String(EntryKey, key)
}

// TransactionID names the transaction a log line belongs to
func TransactionID(id string) zap.Field {
	return zap.String(TransactionIDKey, id)
}

// WithTransaction tags every logger later derived from ctx with the
// transaction id.
func WithTransaction(ctx context.Context, id string) context.Context {
	return WithFields(ctx, TransactionID(id))
}

// WithContext enriches the logger with fields from the context
func WithContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	return logger.With(Fields(ctx)...)
}

// WithFields adds log fields to the context
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	return context.WithValue(ctx, fieldsKey, append(Fields(ctx), fields...))
}

// Fields returns a copy of the log fields carried by the context
func Fields(ctx context.Context) []zap.Field {
	fields, _ := ctx.Value(fieldsKey).([]zap.Field)

	return append([]zap.Field{}, fields...)
}

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// Logger returns the logger carried by the context, or nil
func Logger(ctx context.Context) *zap.Logger {
	logger, _ := ctx.Value(loggerKey).(*zap.Logger)

	return logger
}

// LoggerFromContext returns the logger carried by ctx. When there is
// none, defaultLogger is returned along with a context carrying it.
func LoggerFromContext(ctx context.Context, defaultLogger *zap.Logger) (*zap.Logger, context.Context) {
	if logger := Logger(ctx); logger != nil {
		return logger, ctx
	}

	return defaultLogger, WithLogger(ctx, defaultLogger)
}
