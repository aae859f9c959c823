package integration

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrSyncOperationNotFound is returned when a sync operation does not exist
	ErrSyncOperationNotFound = errors.New("integration: sync operation not found")
	// ErrFeedSubmitFailed wraps failures handing a batch to the feed submitter
	ErrFeedSubmitFailed = errors.New("integration: feed submit failed")
)

// SyncOperationStatus is the processing state of a queued sync operation
type SyncOperationStatus string

const (
	SyncOperationPending SyncOperationStatus = "PENDING"
	SyncOperationDone    SyncOperationStatus = "DONE"
	SyncOperationSkipped SyncOperationStatus = "SKIPPED"
	SyncOperationFailed  SyncOperationStatus = "FAILED"
)

// IsFinal returns true if the operation will not be picked up again
func (s SyncOperationStatus) IsFinal() bool {
	return s != SyncOperationPending
}

// SyncOperationRepository persists the queue of sync operations
type SyncOperationRepository interface {
	// Enqueue stores a new pending operation
	Enqueue(ctx context.Context, op SyncOperation) error

	// FindPending returns up to limit pending operations of a type, oldest first
	FindPending(ctx context.Context, opType OperationType, limit int) ([]SyncOperation, error)

	// MarkDone marks operations as processed
	MarkDone(ctx context.Context, ids []uuid.UUID) error

	// MarkSkipped marks an operation as skipped with a reason
	MarkSkipped(ctx context.Context, id uuid.UUID, reason string) error

	// MarkFailed records a failure. The operation stays pending until
	// maxRetries failures have been recorded.
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, maxRetries int) error

	// CountByStatus returns the number of operations in each status
	CountByStatus(ctx context.Context) (map[SyncOperationStatus]int64, error)
}

// FeedEntry is one payload queued for the marketplace feed
type FeedEntry struct {
	OperationID uuid.UUID
	Head        SyncHead
	Type        OperationType
	Payload     Payload
}

// FeedSubmitter hands finished payloads to the feed submission side.
// Serialization and transport are its concern.
type FeedSubmitter interface {
	Submit(ctx context.Context, batchID uuid.UUID, entries []FeedEntry) error
}
