package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/erp/marketsync/internal/domain/integration"
	"github.com/google/uuid"
)

// SyncOperationModel is the persistence model for a queued sync operation.
type SyncOperationModel struct {
	BaseModel
	ModelName     integration.ModelName           `gorm:"type:varchar(64);not null;index:idx_sync_operation_head,priority:1"`
	RecordID      int64                           `gorm:"not null;index:idx_sync_operation_head,priority:2"`
	OperationType integration.OperationType       `gorm:"type:varchar(10);not null;index:idx_sync_operation_pending,priority:2"`
	Status        integration.SyncOperationStatus `gorm:"type:varchar(10);not null;default:'PENDING';index:idx_sync_operation_pending,priority:1"`
	Attempts      int                             `gorm:"not null;default:0"`
	LastError     string                          `gorm:"type:text"`
	SkipReason    string                          `gorm:"type:varchar(255)"`
	ProcessedAt   *time.Time
}

// TableName returns the table name for GORM
func (SyncOperationModel) TableName() string {
	return "sync_operations"
}

// ToDomain converts the persistence model to a domain SyncOperation.
func (m *SyncOperationModel) ToDomain() integration.SyncOperation {
	return integration.SyncOperation{
		ID:   m.ID,
		Head: integration.SyncHead{ModelName: m.ModelName, RecordID: m.RecordID},
		Type: m.OperationType,
	}
}

// FromDomain populates the persistence model from a domain SyncOperation.
// The model is always reset to pending.
func (m *SyncOperationModel) FromDomain(op integration.SyncOperation) {
	m.ID = op.ID
	m.ModelName = op.Head.ModelName
	m.RecordID = op.Head.RecordID
	m.OperationType = op.Type
	m.Status = integration.SyncOperationPending
}

// SyncOperationModelFromDomain creates a persistence model from a domain SyncOperation.
func SyncOperationModelFromDomain(op integration.SyncOperation) *SyncOperationModel {
	m := &SyncOperationModel{}
	m.FromDomain(op)
	return m
}

// FeedEntryModel is one payload in the feed outbox, grouped by batch.
type FeedEntryModel struct {
	ID            uuid.UUID                 `gorm:"type:uuid;primary_key"`
	BatchID       uuid.UUID                 `gorm:"type:uuid;not null;index"`
	OperationID   uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Marketplace   string                    `gorm:"type:varchar(32);not null"`
	ModelName     integration.ModelName     `gorm:"type:varchar(64);not null"`
	RecordID      int64                     `gorm:"not null"`
	OperationType integration.OperationType `gorm:"type:varchar(10);not null"`
	PayloadJSON   string                    `gorm:"type:text;not null;column:payload"`
	CreatedAt     time.Time                 `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FeedEntryModel) TableName() string {
	return "feed_entries"
}

// FeedEntryModelFromDomain creates a persistence model for one entry of a batch.
func FeedEntryModelFromDomain(batchID uuid.UUID, marketplace string, entry integration.FeedEntry) (*FeedEntryModel, error) {
	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload for %s: %w", entry.Head, err)
	}
	return &FeedEntryModel{
		ID:            uuid.New(),
		BatchID:       batchID,
		OperationID:   entry.OperationID,
		Marketplace:   marketplace,
		ModelName:     entry.Head.ModelName,
		RecordID:      entry.Head.RecordID,
		OperationType: entry.Type,
		PayloadJSON:   string(payload),
	}, nil
}

// ToDomain converts the persistence model to a domain FeedEntry.
// Bullet points come back as []any after the JSON round trip.
func (m *FeedEntryModel) ToDomain() (integration.FeedEntry, error) {
	var payload integration.Payload
	if err := json.Unmarshal([]byte(m.PayloadJSON), &payload); err != nil {
		return integration.FeedEntry{}, fmt.Errorf("failed to unmarshal payload of feed entry %s: %w", m.ID, err)
	}
	return integration.FeedEntry{
		OperationID: m.OperationID,
		Head:        integration.SyncHead{ModelName: m.ModelName, RecordID: m.RecordID},
		Type:        m.OperationType,
		Payload:     payload,
	}, nil
}
