// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"
)

// Logger is the structured logger used throughout the application.
var Logger *slog.Logger

// LogContextKey is a type for context keys used by the logging package.
type LogContextKey string

// Context keys for logging
const (
	CorrelationID LogContextKey = "correlation_id"
	RequestIDKey  LogContextKey = "request_id"
	UserIDKey     LogContextKey = "user_id"
)

// ctxHandler is a slog.Handler that adds context values to the log record.
type ctxHandler struct {
	slog.Handler
}

// Handle adds context values to the record before passing it to the underlying handler.
func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	if rid, ok := ctx.Value(RequestIDKey).(string); ok {
		r.AddAttrs(slog.String("request_id", rid))
	}
	if uid, ok := ctx.Value(UserIDKey).(string); ok {
		r.AddAttrs(slog.String("user_id", uid))
	}
	if cid, ok := ctx.Value(CorrelationID).(string); ok {
		r.AddAttrs(slog.String("correlation_id", cid))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{h.Handler.WithGroup(name)}
}

func init() {
	Logger = NewLogger(os.Getenv("APP_ENV"))
}

// NewLogger returns a JSON logger in production and a text logger otherwise.
func NewLogger(env string) *slog.Logger {
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if env == "production" || env == "prod" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(&ctxHandler{handler})
}

// LoggingConfig defines which types of automated logging are enabled.
type LoggingConfig struct {
	EnableStoreLogging bool
}

// Config holds the current logging configuration.
var Config = LoggingConfig{
	EnableStoreLogging: true,
}

// WithCorrelationID returns a new context with the given correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationID, id)
}

// WithUserID returns a new context carrying the acting user's id.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, UserIDKey, id)
}

// StoreLogger provides structured logging for record store operations.
type StoreLogger struct {
	backend string
	key     string
	logger  *slog.Logger
}

// NewStoreLogger creates a StoreLogger for one slot key.
func NewStoreLogger(backend, key string) *StoreLogger {
	return &StoreLogger{backend: backend, key: key, logger: Logger}
}

func (l *StoreLogger) attrs(operation string) []any {
	return []any{
		slog.String("backend", l.backend),
		slog.String("key", l.key),
		slog.String("operation", operation),
	}
}

// LogLoad logs a load of the aggregate.
func (l *StoreLogger) LogLoad(ctx context.Context, bytes int, fresh bool) {
	if !Config.EnableStoreLogging {
		return
	}
	attrs := append(l.attrs("load"), slog.Int("bytes", bytes), slog.Bool("fresh", fresh))
	l.logger.DebugContext(ctx, "store load", attrs...)
}

// LogSave logs a save of the aggregate.
func (l *StoreLogger) LogSave(ctx context.Context, bytes int) {
	if !Config.EnableStoreLogging {
		return
	}
	attrs := append(l.attrs("save"), slog.Int("bytes", bytes))
	l.logger.DebugContext(ctx, "store save", attrs...)
}

// LogCorrupt logs a blob that could not be decoded and was replaced by an
// empty aggregate.
func (l *StoreLogger) LogCorrupt(ctx context.Context, err error) {
	attrs := append(l.attrs("load"), slog.String("error", err.Error()))
	l.logger.WarnContext(ctx, "store blob unreadable, starting empty", attrs...)
}

// LogError logs a store error.
func (l *StoreLogger) LogError(ctx context.Context, err error, operation string) {
	if !Config.EnableStoreLogging {
		return
	}
	attrs := append(l.attrs(operation), slog.String("error", err.Error()))
	l.logger.ErrorContext(ctx, "store error", attrs...)
}

// LogOperation logs a domain operation and its outcome.
func LogOperation(ctx context.Context, service, operation string, err error) {
	if err != nil {
		Logger.WarnContext(ctx, "operation failed",
			slog.String("service", service),
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
		return
	}
	Logger.DebugContext(ctx, "operation completed",
		slog.String("service", service),
		slog.String("operation", operation),
	)
}
