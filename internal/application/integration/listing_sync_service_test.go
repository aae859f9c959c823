package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/marketsync/internal/domain/integration"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type syncFixture struct {
	catalog   *fakeCatalog
	repo      *MockSyncOperationRepository
	submitter *MockFeedSubmitter
	service   *ListingSyncService
	logs      *observer.ObservedLogs
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	catalog := newFakeCatalog()
	classifier := integration.NewProductClassifier(catalog)
	builder := integration.NewCreatePayloadBuilder(classifier)
	repo := new(MockSyncOperationRepository)
	submitter := new(MockFeedSubmitter)
	core, logs := observer.New(zap.InfoLevel)
	service := NewListingSyncService(classifier, builder, repo, submitter,
		WithSyncLogger(zap.New(core)),
		WithMaxRetries(5),
	)
	return &syncFixture{catalog: catalog, repo: repo, submitter: submitter, service: service, logs: logs}
}

func TestListingSyncService_ProcessCreates(t *testing.T) {
	ctx := context.Background()

	t.Run("empty queue", func(t *testing.T) {
		f := newSyncFixture(t)
		f.repo.On("FindPending", mock.Anything, integration.OperationCreate, 50).Return([]integration.SyncOperation{}, nil)

		report, err := f.service.ProcessCreates(ctx, 50)
		require.NoError(t, err)
		assert.Equal(t, 0, report.Total)
		f.submitter.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("mixed batch", func(t *testing.T) {
		f := newSyncFixture(t)
		f.catalog.variant(1, " SHIRT-BLUE-M ", true, f.catalog.value("Color", "Blue"), f.catalog.value("Size", "M"))
		f.catalog.variant(2, "SHIRT-X", true)
		f.catalog.variant(3, "SHIRT-OFF", false, f.catalog.value("Color", "Red"))
		f.catalog.variant(4, "SHIRT-WOOL", true, f.catalog.value("Material", "Wool"))
		blank := f.catalog.template(20, "SHIRT-T")
		blank.bools[integration.FieldAmazonSyncActive] = true
		blank.strs[integration.FieldDescriptionSale] = "  "

		built := integration.NewCreateOperation(variantHead(1))
		partial := integration.NewCreateOperation(variantHead(2))
		inactive := integration.NewCreateOperation(variantHead(3))
		noDimension := integration.NewCreateOperation(variantHead(4))
		missing := integration.NewCreateOperation(variantHead(99))
		noDescription := integration.NewCreateOperation(templateHead(20))
		ops := []integration.SyncOperation{built, partial, inactive, noDimension, missing, noDescription}

		f.repo.On("FindPending", mock.Anything, integration.OperationCreate, 10).Return(ops, nil)
		f.repo.On("MarkSkipped", mock.Anything, partial.ID, string(integration.RejectPartialVariant)).Return(nil)
		f.repo.On("MarkSkipped", mock.Anything, inactive.ID, SkipReasonSyncInactive).Return(nil)
		f.repo.On("MarkSkipped", mock.Anything, noDimension.ID, string(integration.RejectNoVariationDimension)).Return(nil)
		f.repo.On("MarkSkipped", mock.Anything, missing.ID, SkipReasonRecordDeleted).Return(nil)
		f.repo.On("MarkFailed", mock.Anything, noDescription.ID, mock.AnythingOfType("string"), 5).Return(nil)
		f.submitter.On("Submit", mock.Anything, mock.AnythingOfType("uuid.UUID"), mock.MatchedBy(func(entries []integration.FeedEntry) bool {
			return len(entries) == 1 &&
				entries[0].OperationID == built.ID &&
				entries[0].Payload[integration.FeedSKU] == "SHIRT-BLUE-M" &&
				entries[0].Payload[integration.FeedVariationTheme] == integration.VariationThemeSizeColor
		})).Return(nil)
		f.repo.On("MarkDone", mock.Anything, []uuid.UUID{built.ID}).Return(nil)

		report, err := f.service.ProcessCreates(ctx, 10)
		require.NoError(t, err)

		assert.Equal(t, 6, report.Total)
		assert.Equal(t, 1, report.Created)
		assert.Equal(t, 4, report.Skipped)
		assert.Equal(t, 1, report.Failed)
		require.Len(t, report.Failures, 1)
		assert.Equal(t, noDescription.ID, report.Failures[0].OperationID)
		assert.Contains(t, report.Failures[0].Error, "Description")
		f.repo.AssertExpectations(t)
		f.submitter.AssertExpectations(t)

		batchLogs := f.logs.FilterMessage("Create batch processed").All()
		require.Len(t, batchLogs, 1)
		assert.Equal(t, report.BatchID.String(), batchLogs[0].ContextMap()["batch_id"])
	})

	t.Run("submit failure fails every collected operation", func(t *testing.T) {
		f := newSyncFixture(t)
		f.catalog.variant(1, "A", true, f.catalog.value("Size", "S"))
		f.catalog.variant(2, "B", true, f.catalog.value("Size", "M"))
		first := integration.NewCreateOperation(variantHead(1))
		second := integration.NewCreateOperation(variantHead(2))

		submitErr := errors.New("outbox unavailable")
		f.repo.On("FindPending", mock.Anything, integration.OperationCreate, 10).Return([]integration.SyncOperation{first, second}, nil)
		f.submitter.On("Submit", mock.Anything, mock.Anything, mock.Anything).Return(submitErr)
		f.repo.On("MarkFailed", mock.Anything, first.ID, submitErr.Error(), 5).Return(nil)
		f.repo.On("MarkFailed", mock.Anything, second.ID, submitErr.Error(), 5).Return(nil)

		report, err := f.service.ProcessCreates(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 0, report.Created)
		assert.Equal(t, 2, report.Failed)
		f.repo.AssertNotCalled(t, "MarkDone", mock.Anything, mock.Anything)
		f.repo.AssertExpectations(t)
	})

	t.Run("lookup failure is a failure not a skip", func(t *testing.T) {
		f := newSyncFixture(t)
		f.catalog.err = errors.New("connection reset")
		op := integration.NewCreateOperation(variantHead(1))

		f.repo.On("FindPending", mock.Anything, integration.OperationCreate, 10).Return([]integration.SyncOperation{op}, nil)
		f.repo.On("MarkFailed", mock.Anything, op.ID, "connection reset", 5).Return(nil)

		report, err := f.service.ProcessCreates(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Failed)
		assert.Equal(t, 0, report.Skipped)
	})

	t.Run("bookkeeping errors are returned with the report", func(t *testing.T) {
		f := newSyncFixture(t)
		op := integration.NewCreateOperation(variantHead(404))

		f.repo.On("FindPending", mock.Anything, integration.OperationCreate, 10).Return([]integration.SyncOperation{op}, nil)
		f.repo.On("MarkSkipped", mock.Anything, op.ID, SkipReasonRecordDeleted).Return(errors.New("db closed"))

		report, err := f.service.ProcessCreates(ctx, 10)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db closed")
		require.NotNil(t, report)
		assert.Equal(t, 1, report.Skipped)
	})

	t.Run("find pending failure", func(t *testing.T) {
		f := newSyncFixture(t)
		f.repo.On("FindPending", mock.Anything, integration.OperationCreate, 10).Return(nil, errors.New("timeout"))

		report, err := f.service.ProcessCreates(ctx, 10)
		assert.Nil(t, report)
		assert.ErrorContains(t, err, "timeout")
	})
}

func TestListingSyncService_EnqueueCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid head", func(t *testing.T) {
		f := newSyncFixture(t)
		f.repo.On("Enqueue", ctx, mock.MatchedBy(func(op integration.SyncOperation) bool {
			return op.Head == variantHead(7) && op.Type == integration.OperationCreate
		})).Return(nil)

		op, err := f.service.EnqueueCreate(ctx, variantHead(7))
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, op.ID)
		f.repo.AssertExpectations(t)
	})

	t.Run("invalid head", func(t *testing.T) {
		f := newSyncFixture(t)
		_, err := f.service.EnqueueCreate(ctx, integration.SyncHead{ModelName: "res.partner", RecordID: 1})
		assert.ErrorIs(t, err, integration.ErrInvalidSyncHead)
		f.repo.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
	})

	t.Run("repository error", func(t *testing.T) {
		f := newSyncFixture(t)
		f.repo.On("Enqueue", ctx, mock.Anything).Return(errors.New("duplicate key"))
		_, err := f.service.EnqueueCreate(ctx, variantHead(7))
		assert.ErrorContains(t, err, "duplicate key")
	})
}

func TestListingSyncService_Stats(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t)
	f.repo.On("CountByStatus", ctx).Return(map[integration.SyncOperationStatus]int64{
		integration.SyncOperationPending: 4,
		integration.SyncOperationDone:    10,
		integration.SyncOperationFailed:  1,
	}, nil)

	stats, err := f.service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &SyncStats{Pending: 4, Done: 10, Failed: 1}, stats)
}
