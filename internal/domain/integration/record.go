package integration

import (
	"context"
	"fmt"
)

// ---------------------------------------------------------------------------
// Record access ports
// ---------------------------------------------------------------------------

// FieldSource gives typed, read-only access to the fields of one catalog record.
// Implementations return zero values for unset scalar fields.
type FieldSource interface {
	// ModelName returns the table the record belongs to
	ModelName() ModelName
	// RecordID returns the record's generated numeric identifier
	RecordID() int64

	// Bool returns a boolean field
	Bool(field FieldName) bool
	// Int returns an integer field
	Int(field FieldName) int
	// String returns a text field; ok is false when the field is null
	String(field FieldName) (value string, ok bool)
	// Record returns a many-to-one reference; ok is false when the reference is empty
	Record(field FieldName) (FieldSource, bool)
	// Records returns an x-to-many relation in stored order
	Records(field FieldName) []FieldSource
}

// RecordStore resolves sync heads to catalog records.
// Lookup returns an error matching ErrRecordNotFound when the record no longer
// exists; any other error is a lookup failure.
type RecordStore interface {
	Lookup(ctx context.Context, model ModelName, recordID int64) (FieldSource, error)
}

// ---------------------------------------------------------------------------
// SyncHead Value Object
// ---------------------------------------------------------------------------

// SyncHead locates one record to be synchronized. It does not own the record;
// several heads may point at the same record at once.
type SyncHead struct {
	ModelName ModelName `json:"model_name"`
	RecordID  int64     `json:"record_id"`
}

// NewSyncHead creates a validated sync head
func NewSyncHead(model ModelName, recordID int64) (SyncHead, error) {
	head := SyncHead{ModelName: model, RecordID: recordID}
	if err := head.Validate(); err != nil {
		return SyncHead{}, err
	}
	return head, nil
}

// Validate validates the sync head
func (h SyncHead) Validate() error {
	if !h.ModelName.IsValid() {
		return fmt.Errorf("%w: unknown model %q", ErrInvalidSyncHead, h.ModelName)
	}
	if h.RecordID <= 0 {
		return fmt.Errorf("%w: record id must be positive", ErrInvalidSyncHead)
	}
	return nil
}

// String returns "model,id"
func (h SyncHead) String() string {
	return fmt.Sprintf("%s,%d", h.ModelName, h.RecordID)
}

// ---------------------------------------------------------------------------
// Attribute Value Objects
// ---------------------------------------------------------------------------

// AttributeValue is one value of a product attribute, e.g. {Name: "Red", AttributeName: "Color"}
type AttributeValue struct {
	Name          string
	AttributeName string
}

// VariantAttribute is an (attribute name, value) pair carried by a variant
type VariantAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
