package persistence

import (
	"github.com/erp/marketsync/internal/domain/integration"
)

// catalogRecord is a loaded snapshot of one catalog row and the rows it
// references. It implements integration.FieldSource.
type catalogRecord struct {
	model integration.ModelName
	id    int64
	bools map[integration.FieldName]bool
	ints  map[integration.FieldName]int
	strs  map[integration.FieldName]*string
	refs  map[integration.FieldName]*catalogRecord
	lists map[integration.FieldName][]*catalogRecord
}

func newCatalogRecord(model integration.ModelName, id int64) *catalogRecord {
	return &catalogRecord{
		model: model,
		id:    id,
		bools: make(map[integration.FieldName]bool),
		ints:  make(map[integration.FieldName]int),
		strs:  make(map[integration.FieldName]*string),
		refs:  make(map[integration.FieldName]*catalogRecord),
		lists: make(map[integration.FieldName][]*catalogRecord),
	}
}

func (r *catalogRecord) ModelName() integration.ModelName { return r.model }

func (r *catalogRecord) RecordID() int64 { return r.id }

func (r *catalogRecord) Bool(field integration.FieldName) bool { return r.bools[field] }

func (r *catalogRecord) Int(field integration.FieldName) int { return r.ints[field] }

func (r *catalogRecord) String(field integration.FieldName) (string, bool) {
	if v := r.strs[field]; v != nil {
		return *v, true
	}
	return "", false
}

func (r *catalogRecord) Record(field integration.FieldName) (integration.FieldSource, bool) {
	if ref := r.refs[field]; ref != nil {
		return ref, true
	}
	return nil, false
}

func (r *catalogRecord) Records(field integration.FieldName) []integration.FieldSource {
	list := r.lists[field]
	result := make([]integration.FieldSource, len(list))
	for i, rec := range list {
		result[i] = rec
	}
	return result
}

// setText stores a nullable text column
func (r *catalogRecord) setText(field integration.FieldName, value *string) {
	if value == nil {
		return
	}
	v := *value
	r.strs[field] = &v
}

var _ integration.FieldSource = (*catalogRecord)(nil)
