package integration

import (
	"context"

	"github.com/erp/marketsync/internal/domain/integration"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockSyncOperationRepository is a mock implementation of integration.SyncOperationRepository
type MockSyncOperationRepository struct {
	mock.Mock
}

func (m *MockSyncOperationRepository) Enqueue(ctx context.Context, op integration.SyncOperation) error {
	args := m.Called(ctx, op)
	return args.Error(0)
}

func (m *MockSyncOperationRepository) FindPending(ctx context.Context, opType integration.OperationType, limit int) ([]integration.SyncOperation, error) {
	args := m.Called(ctx, opType, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.SyncOperation), args.Error(1)
}

func (m *MockSyncOperationRepository) MarkDone(ctx context.Context, ids []uuid.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockSyncOperationRepository) MarkSkipped(ctx context.Context, id uuid.UUID, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *MockSyncOperationRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, maxRetries int) error {
	args := m.Called(ctx, id, errMsg, maxRetries)
	return args.Error(0)
}

func (m *MockSyncOperationRepository) CountByStatus(ctx context.Context) (map[integration.SyncOperationStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[integration.SyncOperationStatus]int64), args.Error(1)
}

// MockFeedSubmitter is a mock implementation of integration.FeedSubmitter
type MockFeedSubmitter struct {
	mock.Mock
}

func (m *MockFeedSubmitter) Submit(ctx context.Context, batchID uuid.UUID, entries []integration.FeedEntry) error {
	args := m.Called(ctx, batchID, entries)
	return args.Error(0)
}

// ---------------------------------------------------------------------------
// In-memory catalog
// ---------------------------------------------------------------------------

type fakeRecord struct {
	model integration.ModelName
	id    int64
	bools map[integration.FieldName]bool
	ints  map[integration.FieldName]int
	strs  map[integration.FieldName]string
	refs  map[integration.FieldName]*fakeRecord
	lists map[integration.FieldName][]*fakeRecord
}

func newFakeRecord(model integration.ModelName, id int64) *fakeRecord {
	return &fakeRecord{
		model: model,
		id:    id,
		bools: map[integration.FieldName]bool{},
		ints:  map[integration.FieldName]int{},
		strs:  map[integration.FieldName]string{},
		refs:  map[integration.FieldName]*fakeRecord{},
		lists: map[integration.FieldName][]*fakeRecord{},
	}
}

func (r *fakeRecord) ModelName() integration.ModelName  { return r.model }
func (r *fakeRecord) RecordID() int64                   { return r.id }
func (r *fakeRecord) Bool(f integration.FieldName) bool { return r.bools[f] }
func (r *fakeRecord) Int(f integration.FieldName) int   { return r.ints[f] }

func (r *fakeRecord) String(f integration.FieldName) (string, bool) {
	v, ok := r.strs[f]
	return v, ok
}

func (r *fakeRecord) Record(f integration.FieldName) (integration.FieldSource, bool) {
	ref := r.refs[f]
	if ref == nil {
		return nil, false
	}
	return ref, true
}

func (r *fakeRecord) Records(f integration.FieldName) []integration.FieldSource {
	result := make([]integration.FieldSource, 0, len(r.lists[f]))
	for _, rec := range r.lists[f] {
		result = append(result, rec)
	}
	return result
}

type fakeCatalog struct {
	records map[integration.SyncHead]*fakeRecord
	err     error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{records: map[integration.SyncHead]*fakeRecord{}}
}

func (c *fakeCatalog) Lookup(_ context.Context, model integration.ModelName, id int64) (integration.FieldSource, error) {
	if c.err != nil {
		return nil, c.err
	}
	r, ok := c.records[integration.SyncHead{ModelName: model, RecordID: id}]
	if !ok {
		return nil, integration.ErrRecordNotFound
	}
	return r, nil
}

func (c *fakeCatalog) add(r *fakeRecord) *fakeRecord {
	c.records[integration.SyncHead{ModelName: r.model, RecordID: r.id}] = r
	return r
}

var fakeIDs int64 = 5000

func (c *fakeCatalog) value(attribute, name string) *fakeRecord {
	fakeIDs++
	attr := newFakeRecord(integration.ModelProductAttribute, fakeIDs)
	attr.strs[integration.FieldDisplayName] = attribute
	fakeIDs++
	v := newFakeRecord(integration.ModelProductAttributeValue, fakeIDs)
	v.strs[integration.FieldDisplayName] = name
	v.refs[integration.FieldAttributeID] = attr
	return v
}

// template registers a template named "Linen Shirt" with the given variants
func (c *fakeCatalog) template(id int64, sku string, variants ...*fakeRecord) *fakeRecord {
	t := newFakeRecord(integration.ModelProductTemplate, id)
	t.strs[integration.FieldSKU] = sku
	t.strs[integration.FieldDisplayName] = "Linen Shirt"
	t.strs[integration.FieldDescriptionSale] = "Breathable linen shirt"
	t.ints[integration.FieldProductVariantCount] = len(variants)
	t.lists[integration.FieldProductVariantIDs] = variants
	for _, v := range variants {
		v.refs[integration.FieldProductTemplateID] = t
	}
	return c.add(t)
}

func (c *fakeCatalog) variant(id int64, sku string, active bool, values ...*fakeRecord) *fakeRecord {
	v := newFakeRecord(integration.ModelProductVariant, id)
	v.strs[integration.FieldSKU] = sku
	v.strs[integration.FieldDisplayName] = "Linen Shirt"
	v.bools[integration.FieldIsProductVariant] = true
	v.bools[integration.FieldAmazonSyncActive] = active
	v.lists[integration.FieldAttributeValueIDs] = values
	return c.add(v)
}

func variantHead(id int64) integration.SyncHead {
	return integration.SyncHead{ModelName: integration.ModelProductVariant, RecordID: id}
}

func templateHead(id int64) integration.SyncHead {
	return integration.SyncHead{ModelName: integration.ModelProductTemplate, RecordID: id}
}
