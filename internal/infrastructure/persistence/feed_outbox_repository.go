package persistence

import (
	"context"
	"fmt"

	"github.com/erp/marketsync/internal/domain/integration"
	"github.com/erp/marketsync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormFeedOutbox implements integration.FeedSubmitter by writing each batch
// to the feed_entries table, where the marketplace uploader picks it up.
type GormFeedOutbox struct {
	db          *gorm.DB
	marketplace string
}

// NewGormFeedOutbox creates a feed outbox stamping entries with marketplace
func NewGormFeedOutbox(db *gorm.DB, marketplace string) *GormFeedOutbox {
	return &GormFeedOutbox{db: db, marketplace: marketplace}
}

// Submit stores all entries of a batch atomically
func (o *GormFeedOutbox) Submit(ctx context.Context, batchID uuid.UUID, entries []integration.FeedEntry) error {
	if len(entries) == 0 {
		return nil
	}

	rows := make([]*models.FeedEntryModel, 0, len(entries))
	for _, entry := range entries {
		row, err := models.FeedEntryModelFromDomain(batchID, o.marketplace, entry)
		if err != nil {
			return fmt.Errorf("%w: %w", integration.ErrFeedSubmitFailed, err)
		}
		rows = append(rows, row)
	}

	if err := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(rows).Error
	}); err != nil {
		return fmt.Errorf("%w: %w", integration.ErrFeedSubmitFailed, err)
	}
	return nil
}

// FindBatch returns the entries of a batch in insertion order
func (o *GormFeedOutbox) FindBatch(ctx context.Context, batchID uuid.UUID) ([]integration.FeedEntry, error) {
	var rows []models.FeedEntryModel
	if err := o.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("created_at ASC, record_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]integration.FeedEntry, 0, len(rows))
	for i := range rows {
		entry, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

var _ integration.FeedSubmitter = (*GormFeedOutbox)(nil)
