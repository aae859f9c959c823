package integration

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/marketsync/internal/domain/integration"
	"github.com/erp/marketsync/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/erp/marketsync/internal/application/integration"

// Skip reasons recorded for operations closed without a payload
const (
	SkipReasonRecordDeleted = "RECORD_DELETED"
	SkipReasonSyncInactive  = "SYNC_INACTIVE"
)

// ListingSyncService drains the queue of pending create operations into
// feed batches.
type ListingSyncService struct {
	classifier *integration.ProductClassifier
	builder    *integration.CreatePayloadBuilder
	operations integration.SyncOperationRepository
	submitter  integration.FeedSubmitter
	maxRetries int
	logger     *zap.Logger
}

// ListingSyncOption configures a ListingSyncService
type ListingSyncOption func(*ListingSyncService)

// WithSyncLogger sets the logger
func WithSyncLogger(l *zap.Logger) ListingSyncOption {
	return func(s *ListingSyncService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxRetries sets how many failures an operation may accumulate
func WithMaxRetries(n int) ListingSyncOption {
	return func(s *ListingSyncService) {
		s.maxRetries = n
	}
}

// NewListingSyncService creates a new ListingSyncService
func NewListingSyncService(
	classifier *integration.ProductClassifier,
	builder *integration.CreatePayloadBuilder,
	operations integration.SyncOperationRepository,
	submitter integration.FeedSubmitter,
	opts ...ListingSyncOption,
) *ListingSyncService {
	s := &ListingSyncService{
		classifier: classifier,
		builder:    builder,
		operations: operations,
		submitter:  submitter,
		maxRetries: 3,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnqueueCreate queues a create operation for head
func (s *ListingSyncService) EnqueueCreate(ctx context.Context, head integration.SyncHead) (integration.SyncOperation, error) {
	if err := head.Validate(); err != nil {
		return integration.SyncOperation{}, err
	}
	op := integration.NewCreateOperation(head)
	if err := s.operations.Enqueue(ctx, op); err != nil {
		return integration.SyncOperation{}, fmt.Errorf("failed to enqueue %s: %w", head, err)
	}
	s.logger.Info("Create operation enqueued", logger.SyncOperationFields(op)...)
	return op, nil
}

// Stats returns the queue size per status
func (s *ListingSyncService) Stats(ctx context.Context) (*SyncStats, error) {
	counts, err := s.operations.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &SyncStats{
		Pending: counts[integration.SyncOperationPending],
		Done:    counts[integration.SyncOperationDone],
		Skipped: counts[integration.SyncOperationSkipped],
		Failed:  counts[integration.SyncOperationFailed],
	}, nil
}

// ProcessCreates builds payloads for up to limit pending create operations
// and submits them as one batch.
//
// Per operation: a deleted record or an inactive product is skipped, a
// rejected build is skipped with its reason, a build error is recorded as a
// failure. Built payloads are submitted together; if submission fails every
// one of them is recorded as failed. The returned error reports bookkeeping
// failures only and comes with the partial report.
func (s *ListingSyncService) ProcessCreates(ctx context.Context, limit int) (report *SyncReport, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "listing_sync.process_creates",
		trace.WithAttributes(attribute.Int("batch.limit", limit)))
	defer func() {
		if report != nil {
			span.SetAttributes(
				attribute.String("batch.id", report.BatchID.String()),
				attribute.Int("batch.total", report.Total),
				attribute.Int("batch.created", report.Created),
				attribute.Int("batch.skipped", report.Skipped),
				attribute.Int("batch.failed", report.Failed),
			)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	ops, err := s.operations.FindPending(ctx, integration.OperationCreate, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending create operations: %w", err)
	}

	report = &SyncReport{BatchID: uuid.New(), Total: len(ops)}
	if len(ops) == 0 {
		return report, nil
	}
	ctx, batchLogger := logger.WithBatchID(ctx, s.logger, report.BatchID)

	var (
		entries  []integration.FeedEntry
		bookErrs []error
	)
	for _, op := range ops {
		opCtx, opSpan := otel.Tracer(tracerName).Start(ctx, "listing_sync.build_create", trace.WithAttributes(
			attribute.String("sync_operation.id", op.ID.String()),
			attribute.String("model_name", op.Head.ModelName.String()),
			attribute.Int64("record_id", op.Head.RecordID),
		))
		opCtx, opLogger := logger.WithSyncOperation(opCtx, batchLogger, op)

		entry, skipReason, buildErr := s.buildCreate(opCtx, op)
		switch {
		case buildErr != nil:
			opLogger.Warn("Create payload failed", zap.Error(buildErr))
			opSpan.RecordError(buildErr)
			opSpan.SetStatus(codes.Error, buildErr.Error())
			bookErrs = append(bookErrs, s.fail(opCtx, report, op, buildErr))
		case skipReason != "":
			opLogger.Info("Create operation skipped", zap.String("reason", skipReason))
			opSpan.SetAttributes(attribute.String("skip_reason", skipReason))
			bookErrs = append(bookErrs, s.skip(opCtx, report, op, skipReason))
		default:
			entries = append(entries, *entry)
		}
		opSpan.End()
	}

	if len(entries) > 0 {
		bookErrs = append(bookErrs, s.submit(ctx, report, entries, batchLogger))
	}

	batchLogger.Info("Create batch processed",
		zap.Int("total", report.Total),
		zap.Int("created", report.Created),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	err = errors.Join(bookErrs...)
	return report, err
}

// buildCreate returns either a feed entry, a skip reason or a build error
func (s *ListingSyncService) buildCreate(ctx context.Context, op integration.SyncOperation) (*integration.FeedEntry, string, error) {
	product, err := s.classifier.Resolve(ctx, op.Head)
	if errors.Is(err, integration.ErrRecordNotFound) {
		return nil, SkipReasonRecordDeleted, nil
	}
	if err != nil {
		return nil, "", err
	}
	if !s.classifier.IsSyncActive(product) {
		return nil, SkipReasonSyncInactive, nil
	}

	result, err := s.builder.BuildFor(ctx, op, product)
	if err != nil {
		return nil, "", err
	}
	switch r := result.(type) {
	case *integration.Rejected:
		return nil, string(r.Reason), nil
	case *integration.Built:
		return &integration.FeedEntry{
			OperationID: op.ID,
			Head:        op.Head,
			Type:        op.Type,
			Payload:     r.Payload,
		}, "", nil
	default:
		return nil, "", fmt.Errorf("unexpected create result %T", result)
	}
}

func (s *ListingSyncService) submit(ctx context.Context, report *SyncReport, entries []integration.FeedEntry, l *zap.Logger) error {
	submitErr := s.submitter.Submit(ctx, report.BatchID, entries)
	if submitErr != nil {
		l.Error("Feed batch submit failed", zap.Int("entries", len(entries)), zap.Error(submitErr))
		var errs []error
		for _, entry := range entries {
			op := integration.SyncOperation{ID: entry.OperationID, Head: entry.Head, Type: entry.Type}
			errs = append(errs, s.fail(ctx, report, op, submitErr))
		}
		return errors.Join(errs...)
	}

	ids := make([]uuid.UUID, len(entries))
	for i, entry := range entries {
		ids[i] = entry.OperationID
	}
	if err := s.operations.MarkDone(ctx, ids); err != nil {
		return fmt.Errorf("failed to mark %d operations done: %w", len(ids), err)
	}
	report.Created += len(entries)
	return nil
}

func (s *ListingSyncService) skip(ctx context.Context, report *SyncReport, op integration.SyncOperation, reason string) error {
	report.Skipped++
	report.Skips = append(report.Skips, SyncSkip{OperationID: op.ID, Head: op.Head, Reason: reason})
	if err := s.operations.MarkSkipped(ctx, op.ID, reason); err != nil {
		return fmt.Errorf("failed to mark operation %s skipped: %w", op.ID, err)
	}
	return nil
}

func (s *ListingSyncService) fail(ctx context.Context, report *SyncReport, op integration.SyncOperation, cause error) error {
	report.Failed++
	report.Failures = append(report.Failures, SyncFailure{OperationID: op.ID, Head: op.Head, Error: cause.Error()})
	if err := s.operations.MarkFailed(ctx, op.ID, cause.Error(), s.maxRetries); err != nil {
		return fmt.Errorf("failed to mark operation %s failed: %w", op.ID, err)
	}
	return nil
}
