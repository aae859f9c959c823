package integration

import (
	"strings"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Sync operations
// ---------------------------------------------------------------------------

// OperationType is the kind of feed operation requested for a sync head
type OperationType string

const (
	// OperationCreate publishes a new listing
	OperationCreate OperationType = "CREATE"
	// OperationUpdate changes an existing listing
	OperationUpdate OperationType = "UPDATE"
	// OperationDelete removes a listing
	OperationDelete OperationType = "DELETE"
)

// IsValid returns true if the operation type is valid
func (t OperationType) IsValid() bool {
	switch t {
	case OperationCreate, OperationUpdate, OperationDelete:
		return true
	default:
		return false
	}
}

// String returns the string representation of OperationType
func (t OperationType) String() string {
	return string(t)
}

// SyncOperation is a request to run one feed operation for one sync head
type SyncOperation struct {
	ID   uuid.UUID
	Head SyncHead
	Type OperationType
}

// NewCreateOperation creates a create operation for head
func NewCreateOperation(head SyncHead) SyncOperation {
	return SyncOperation{ID: uuid.New(), Head: head, Type: OperationCreate}
}

// ---------------------------------------------------------------------------
// Payload
// ---------------------------------------------------------------------------

// FeedField is a marketplace feed field name
type FeedField string

// Feed fields written by the create transform.
const (
	FeedSKU            FeedField = "SKU"
	FeedTitle          FeedField = "Title"
	FeedDescription    FeedField = "Description"
	FeedBrand          FeedField = "Brand"
	FeedBulletPoint    FeedField = "BulletPoint"
	FeedParentage      FeedField = "Parentage"
	FeedColor          FeedField = "Color"
	FeedSize           FeedField = "Size"
	FeedVariationTheme FeedField = "VariationTheme"
)

// Parentage marks a listing as a parent grouping or a child of one
type Parentage string

const (
	ParentageParent Parentage = "parent"
	ParentageChild  Parentage = "child"
)

// VariationTheme names the dimensions distinguishing sibling variants
type VariationTheme string

const (
	VariationThemeSizeColor VariationTheme = "SizeColor"
	VariationThemeColor     VariationTheme = "Color"
	VariationThemeSize      VariationTheme = "Size"
)

// Payload is one marketplace feed entry, keyed by feed field name.
// It is transient: built per operation and handed to the feed submitter.
type Payload map[FeedField]any

// Has returns true if field is set
func (p Payload) Has(field FeedField) bool {
	_, ok := p[field]
	return ok
}

// String returns a text field, or "" when unset or not text
func (p Payload) String(field FeedField) string {
	switch v := p[field].(type) {
	case string:
		return v
	case Parentage:
		return string(v)
	case VariationTheme:
		return string(v)
	default:
		return ""
	}
}

// setNonBlank stores value only when it has non-space content
func (p Payload) setNonBlank(field FeedField, value string) bool {
	if strings.TrimSpace(value) == "" {
		return false
	}
	p[field] = value
	return true
}

// ---------------------------------------------------------------------------
// CreateResult
// ---------------------------------------------------------------------------

// RejectReason explains why no payload was produced
type RejectReason string

const (
	// RejectPartialVariant means the record is a variant without attribute values
	RejectPartialVariant RejectReason = "PARTIAL_VARIANT"
	// RejectNoVariationDimension means a variant has neither a Color nor a Size attribute
	RejectNoVariationDimension RejectReason = "NO_VARIATION_DIMENSION"
)

// CreateResult is the outcome of building a create payload: either *Built or *Rejected.
type CreateResult interface {
	createResult()
}

// Built carries a completed payload
type Built struct {
	Payload Payload
}

// Rejected means the record must not be published in its current state.
// It is not an error: the operation is skipped.
type Rejected struct {
	Reason RejectReason
	Detail string
}

func (*Built) createResult()    {}
func (*Rejected) createResult() {}
