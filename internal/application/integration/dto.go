package integration

import (
	"github.com/erp/marketsync/internal/domain/integration"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Classification DTOs
// ---------------------------------------------------------------------------

// ProductClassification is everything the classifier knows about one record
type ProductClassification struct {
	Head                   integration.SyncHead           `json:"head"`
	Kind                   integration.ProductKind        `json:"kind"`
	SKU                    *string                        `json:"sku"`
	TemplateSKU            *string                        `json:"template_sku,omitempty"`
	SyncActive             bool                           `json:"sync_active"`
	NeedsSkipping          bool                           `json:"needs_skipping"`
	Attributes             []integration.VariantAttribute `json:"attributes"`
	TemplateAttributeNames []string                       `json:"template_attribute_names"`
	BulletPoints           []string                       `json:"bullet_points"`
}

// ---------------------------------------------------------------------------
// Create preview DTOs
// ---------------------------------------------------------------------------

// CreatePreview is the outcome of a dry-run create build
type CreatePreview struct {
	Head     integration.SyncHead `json:"head"`
	Rejected bool                 `json:"rejected"`
	Reason   string               `json:"reason,omitempty"`
	Detail   string               `json:"detail,omitempty"`
	Payload  map[string]any       `json:"payload,omitempty"`
}

// ToCreatePreview converts a builder result for display
func ToCreatePreview(head integration.SyncHead, result integration.CreateResult) *CreatePreview {
	preview := &CreatePreview{Head: head}
	switch r := result.(type) {
	case *integration.Built:
		preview.Payload = make(map[string]any, len(r.Payload))
		for field, value := range r.Payload {
			preview.Payload[string(field)] = value
		}
	case *integration.Rejected:
		preview.Rejected = true
		preview.Reason = string(r.Reason)
		preview.Detail = r.Detail
	}
	return preview
}

// ---------------------------------------------------------------------------
// Sync run DTOs
// ---------------------------------------------------------------------------

// SyncReport summarizes one ProcessCreates run
type SyncReport struct {
	BatchID  uuid.UUID     `json:"batch_id"`
	Total    int           `json:"total"`
	Created  int           `json:"created"`
	Skipped  int           `json:"skipped"`
	Failed   int           `json:"failed"`
	Skips    []SyncSkip    `json:"skips,omitempty"`
	Failures []SyncFailure `json:"failures,omitempty"`
}

// SyncSkip records an operation that was closed without a payload
type SyncSkip struct {
	OperationID uuid.UUID            `json:"operation_id"`
	Head        integration.SyncHead `json:"head"`
	Reason      string               `json:"reason"`
}

// SyncFailure records an operation whose payload could not be built or submitted
type SyncFailure struct {
	OperationID uuid.UUID            `json:"operation_id"`
	Head        integration.SyncHead `json:"head"`
	Error       string               `json:"error"`
}

// SyncStats is the number of queued operations per status
type SyncStats struct {
	Pending int64 `json:"pending"`
	Done    int64 `json:"done"`
	Skipped int64 `json:"skipped"`
	Failed  int64 `json:"failed"`
}
