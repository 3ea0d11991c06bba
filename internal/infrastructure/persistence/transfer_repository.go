package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/transfer"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTransferRepository implements transfer.Repository using GORM
type GormTransferRepository struct {
	db *gorm.DB
}

// NewGormTransferRepository creates a new GormTransferRepository
func NewGormTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

// FindByID finds a transfer by its ID with items and actions preloaded
func (r *GormTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*transfer.Transfer, error) {
	var t transfer.Transfer
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Actions").
		First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// FindAll finds transfers with filtering
func (r *GormTransferRepository) FindAll(ctx context.Context, filter shared.Filter) ([]transfer.Transfer, error) {
	var transfers []transfer.Transfer
	query := r.db.WithContext(ctx).Model(&transfer.Transfer{})
	query = r.applyFilter(query, filter)
	if err := query.Preload("Items").Preload("Actions").Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// FindByLocation finds transfers where the location is source or destination
func (r *GormTransferRepository) FindByLocation(ctx context.Context, locationID uuid.UUID, filter shared.Filter) ([]transfer.Transfer, error) {
	var transfers []transfer.Transfer
	query := r.db.WithContext(ctx).Model(&transfer.Transfer{}).
		Where("source_id = ? OR destination_id = ?", locationID, locationID)
	query = r.applyFilter(query, filter)
	if err := query.Preload("Items").Preload("Actions").Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// FindByStatus finds transfers by status
func (r *GormTransferRepository) FindByStatus(ctx context.Context, status transfer.Status, filter shared.Filter) ([]transfer.Transfer, error) {
	var transfers []transfer.Transfer
	query := r.db.WithContext(ctx).Model(&transfer.Transfer{}).
		Where("status = ?", status)
	query = r.applyFilter(query, filter)
	if err := query.Preload("Items").Preload("Actions").Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// Save creates or updates a transfer with its items and actions
func (r *GormTransferRepository) Save(ctx context.Context, t *transfer.Transfer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items", "Actions").Save(t).Error; err != nil {
			return err
		}
		return r.saveChildrenTx(tx, t)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormTransferRepository) SaveWithLock(ctx context.Context, t *transfer.Transfer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveWithLockTx(tx, t)
	})
}

// SaveWithLockAndMoves saves with optimistic locking and applies the stock
// membership moves atomically. Each move is a conditional update guarded on
// the item still sitting in the source inventory; a guard miss means a
// concurrent transfer already moved the item, and the transaction aborts.
func (r *GormTransferRepository) SaveWithLockAndMoves(ctx context.Context, t *transfer.Transfer, moves []transfer.StockMove) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.saveWithLockTx(tx, t); err != nil {
			return err
		}

		for _, move := range moves {
			result := tx.Table("stock_items").
				Where("id = ? AND location_id = ?", move.StockItemID, move.SourceID).
				Updates(map[string]interface{}{
					"location_id": move.DestinationID,
					"updated_at":  time.Now(),
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return shared.NewDomainError(shared.CodeConcurrencyConflict,
					"Stock item has left the source inventory")
			}
		}
		return nil
	})
}

// saveWithLockTx performs the version-checked transfer update inside tx
func (r *GormTransferRepository) saveWithLockTx(tx *gorm.DB, t *transfer.Transfer) error {
	var currentVersion int
	if err := tx.Model(&transfer.Transfer{}).
		Where("id = ?", t.ID).
		Select("version").
		Scan(&currentVersion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	if currentVersion == 0 {
		return shared.ErrNotFound
	}

	if currentVersion != t.Version {
		return shared.ErrConcurrencyConflict
	}

	t.Version++
	t.UpdatedAt = time.Now()

	result := tx.Model(&transfer.Transfer{}).
		Where("id = ? AND version = ?", t.ID, currentVersion).
		Updates(map[string]interface{}{
			"transfer_date": t.TransferDate,
			"notes":         t.Notes,
			"status":        t.Status,
			"version":       t.Version,
			"updated_at":    t.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}

	return r.saveChildrenTx(tx, t)
}

// saveChildrenTx upserts the transfer's items and actions. Both collections
// only ever grow or mutate in place, so rows are never pruned.
func (r *GormTransferRepository) saveChildrenTx(tx *gorm.DB, t *transfer.Transfer) error {
	for i := range t.Items {
		t.Items[i].TransferID = t.ID
		if err := tx.Save(&t.Items[i]).Error; err != nil {
			return err
		}
	}
	for i := range t.Actions {
		t.Actions[i].TransferID = t.ID
		if err := tx.Save(&t.Actions[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Count counts transfers with optional filters
func (r *GormTransferRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&transfer.Transfer{})
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts transfers by status
func (r *GormTransferRepository) CountByStatus(ctx context.Context, status transfer.Status) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&transfer.Transfer{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormTransferRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, TransferSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	return query.Order(sortField + " " + sortOrder)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormTransferRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "source_id":
			query = query.Where("source_id = ?", value)
		case "destination_id":
			query = query.Where("destination_id = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("transfer_date >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("transfer_date <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormTransferRepository implements transfer.Repository
var _ transfer.Repository = (*GormTransferRepository)(nil)
