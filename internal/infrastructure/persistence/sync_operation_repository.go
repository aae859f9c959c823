package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/marketsync/internal/domain/integration"
	"github.com/erp/marketsync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSyncOperationRepository implements integration.SyncOperationRepository using GORM
type GormSyncOperationRepository struct {
	db *gorm.DB
}

// NewGormSyncOperationRepository creates a new GormSyncOperationRepository
func NewGormSyncOperationRepository(db *gorm.DB) *GormSyncOperationRepository {
	return &GormSyncOperationRepository{db: db}
}

// Enqueue stores a new pending operation
func (r *GormSyncOperationRepository) Enqueue(ctx context.Context, op integration.SyncOperation) error {
	return r.db.WithContext(ctx).Create(models.SyncOperationModelFromDomain(op)).Error
}

// FindPending returns up to limit pending operations of a type, oldest first.
// A non-positive limit returns every pending operation.
func (r *GormSyncOperationRepository) FindPending(ctx context.Context, opType integration.OperationType, limit int) ([]integration.SyncOperation, error) {
	query := r.db.WithContext(ctx).
		Where("status = ? AND operation_type = ?", integration.SyncOperationPending, opType).
		Order("created_at ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.SyncOperationModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	ops := make([]integration.SyncOperation, len(rows))
	for i := range rows {
		ops[i] = rows[i].ToDomain()
	}
	return ops, nil
}

// FindByID returns the persisted state of one operation
func (r *GormSyncOperationRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.SyncOperationModel, error) {
	var model models.SyncOperationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrSyncOperationNotFound
		}
		return nil, err
	}
	return &model, nil
}

// MarkDone marks operations as processed
func (r *GormSyncOperationRepository) MarkDone(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.SyncOperationModel{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"status":       integration.SyncOperationDone,
			"last_error":   "",
			"processed_at": now,
			"updated_at":   now,
		}).Error
}

// MarkSkipped marks an operation as skipped with a reason
func (r *GormSyncOperationRepository) MarkSkipped(ctx context.Context, id uuid.UUID, reason string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.SyncOperationModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       integration.SyncOperationSkipped,
			"skip_reason":  truncate(reason, 255),
			"processed_at": now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return integration.ErrSyncOperationNotFound
	}
	return nil
}

// MarkFailed records a failure. The operation returns to pending until
// maxRetries attempts have failed, then becomes FAILED.
func (r *GormSyncOperationRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, maxRetries int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.SyncOperationModel
		if err := tx.First(&model, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return integration.ErrSyncOperationNotFound
			}
			return err
		}

		now := time.Now()
		attempts := model.Attempts + 1
		updates := map[string]any{
			"attempts":   attempts,
			"last_error": errMsg,
			"status":     integration.SyncOperationPending,
			"updated_at": now,
		}
		if attempts >= maxRetries {
			updates["status"] = integration.SyncOperationFailed
			updates["processed_at"] = now
		}
		return tx.Model(&models.SyncOperationModel{}).Where("id = ?", id).Updates(updates).Error
	})
}

// CountByStatus returns the number of operations in each status
func (r *GormSyncOperationRepository) CountByStatus(ctx context.Context) (map[integration.SyncOperationStatus]int64, error) {
	type statusCount struct {
		Status integration.SyncOperationStatus
		Count  int64
	}

	var results []statusCount
	if err := r.db.WithContext(ctx).
		Model(&models.SyncOperationModel{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&results).Error; err != nil {
		return nil, err
	}

	counts := make(map[integration.SyncOperationStatus]int64, len(results))
	for _, c := range results {
		counts[c.Status] = c.Count
	}
	return counts, nil
}

// truncate keeps at most max runes of s
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

var _ integration.SyncOperationRepository = (*GormSyncOperationRepository)(nil)
