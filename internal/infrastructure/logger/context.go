package logger

import (
	"context"

	"github.com/erp/marketsync/internal/domain/integration"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// contextKey is a type for context keys used by the logger package
type contextKey string

const (
	// LoggerKey is the context key for the logger
	LoggerKey contextKey = "logger"
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// BatchIDKey is the context key for the feed batch being assembled
	BatchIDKey contextKey = "batch_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context, returns a no-op logger if not found
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID adds request ID to context and returns enriched logger
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	enriched := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, enriched), enriched
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithBatchID adds the feed batch ID to context and returns enriched logger
func WithBatchID(ctx context.Context, logger *zap.Logger, batchID uuid.UUID) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, BatchIDKey, batchID)
	enriched := logger.With(zap.String("batch_id", batchID.String()))
	return WithContext(ctx, enriched), enriched
}

// GetBatchID retrieves the feed batch ID from context
func GetBatchID(ctx context.Context) (uuid.UUID, bool) {
	batchID, ok := ctx.Value(BatchIDKey).(uuid.UUID)
	return batchID, ok
}

// SyncOperationFields returns the log fields identifying a sync operation
func SyncOperationFields(op integration.SyncOperation) []zap.Field {
	return []zap.Field{
		zap.String("sync_operation_id", op.ID.String()),
		zap.String("operation_type", op.Type.String()),
		zap.String("model_name", op.Head.ModelName.String()),
		zap.Int64("record_id", op.Head.RecordID),
	}
}

// WithSyncOperation attaches a logger enriched with the operation's identity
func WithSyncOperation(ctx context.Context, logger *zap.Logger, op integration.SyncOperation) (context.Context, *zap.Logger) {
	enriched := logger.With(SyncOperationFields(op)...)
	return WithContext(ctx, enriched), enriched
}
