package integration

import (
	"context"
)

// memRecord is an in-memory FieldSource
type memRecord struct {
	model   ModelName
	id      int64
	bools   map[FieldName]bool
	ints    map[FieldName]int
	strs    map[FieldName]*string
	refs    map[FieldName]*memRecord
	lists   map[FieldName][]*memRecord
	deleted bool
}

func newMemRecord(model ModelName, id int64) *memRecord {
	return &memRecord{
		model: model,
		id:    id,
		bools: map[FieldName]bool{},
		ints:  map[FieldName]int{},
		strs:  map[FieldName]*string{},
		refs:  map[FieldName]*memRecord{},
		lists: map[FieldName][]*memRecord{},
	}
}

func (r *memRecord) ModelName() ModelName { return r.model }
func (r *memRecord) RecordID() int64      { return r.id }

func (r *memRecord) Bool(field FieldName) bool { return r.bools[field] }
func (r *memRecord) Int(field FieldName) int   { return r.ints[field] }

func (r *memRecord) String(field FieldName) (string, bool) {
	v := r.strs[field]
	if v == nil {
		return "", false
	}
	return *v, true
}

func (r *memRecord) Record(field FieldName) (FieldSource, bool) {
	ref := r.refs[field]
	if ref == nil {
		return nil, false
	}
	return ref, true
}

func (r *memRecord) Records(field FieldName) []FieldSource {
	list := r.lists[field]
	result := make([]FieldSource, len(list))
	for i, rec := range list {
		result[i] = rec
	}
	return result
}

func (r *memRecord) setString(field FieldName, value string) *memRecord {
	r.strs[field] = &value
	return r
}

// memStore is an in-memory RecordStore
type memStore struct {
	records map[SyncHead]*memRecord
	err     error
}

func newMemStore(records ...*memRecord) *memStore {
	s := &memStore{records: map[SyncHead]*memRecord{}}
	for _, r := range records {
		s.records[SyncHead{ModelName: r.model, RecordID: r.id}] = r
	}
	return s
}

func (s *memStore) Lookup(_ context.Context, model ModelName, recordID int64) (FieldSource, error) {
	if s.err != nil {
		return nil, s.err
	}
	r, ok := s.records[SyncHead{ModelName: model, RecordID: recordID}]
	if !ok || r.deleted {
		return nil, ErrRecordNotFound
	}
	return r, nil
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

var nextAttrID int64 = 1000

func attrValue(attribute, value string) *memRecord {
	nextAttrID++
	attr := newMemRecord("product.attribute", nextAttrID).setString(FieldDisplayName, attribute)
	nextAttrID++
	v := newMemRecord("product.attribute.value", nextAttrID).setString(FieldDisplayName, value)
	v.refs[FieldAttributeID] = attr
	return v
}

func attrLine(attribute string) *memRecord {
	nextAttrID++
	attr := newMemRecord("product.attribute", nextAttrID).setString(FieldDisplayName, attribute)
	nextAttrID++
	line := newMemRecord("product.attribute.line", nextAttrID)
	line.refs[FieldAttributeID] = attr
	return line
}

func newTemplate(id int64, sku string, variants ...*memRecord) *memRecord {
	t := newMemRecord(ModelProductTemplate, id).
		setString(FieldSKU, sku).
		setString(FieldDisplayName, "Classic Tee").
		setString(FieldDescriptionSale, "Soft cotton tee")
	t.ints[FieldProductVariantCount] = len(variants)
	t.lists[FieldProductVariantIDs] = variants
	for _, v := range variants {
		v.refs[FieldProductTemplateID] = t
	}
	return t
}

func newVariant(id int64, sku string, active bool, values ...*memRecord) *memRecord {
	v := newMemRecord(ModelProductVariant, id).
		setString(FieldSKU, sku).
		setString(FieldDisplayName, "Classic Tee")
	v.bools[FieldIsProductVariant] = true
	v.bools[FieldAmazonSyncActive] = active
	v.lists[FieldAttributeValueIDs] = values
	return v
}
