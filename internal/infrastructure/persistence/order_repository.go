package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/atelier/backend/internal/domain/order"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID with items preloaded
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindAll finds orders with filtering
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	var orders []order.Order
	query := r.db.WithContext(ctx).Model(&order.Order{})
	query = r.applyFilter(query, filter)
	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByClient finds orders for a client
func (r *GormOrderRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	var orders []order.Order
	query := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("client_id = ?", clientID)
	query = r.applyFilter(query, filter)
	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByStatus finds orders by status
func (r *GormOrderRepository) FindByStatus(ctx context.Context, status order.Status, filter shared.Filter) ([]order.Order, error) {
	var orders []order.Order
	query := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("status = ?", status)
	query = r.applyFilter(query, filter)
	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save creates or updates an order and its items. Line items are immutable
// after creation, so existing rows are upserted and never pruned.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(o).Error; err != nil {
			return err
		}
		for i := range o.Items {
			o.Items[i].OrderID = o.ID
			if err := tx.Save(&o.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveWithReservation creates the order and reserves the given stock items
// atomically. The reservation is a conditional update guarded on the items
// still being free; a shortfall aborts the whole transaction so a rent order
// whose reservation fails never exists.
func (r *GormOrderRepository) SaveWithReservation(ctx context.Context, o *order.Order, reserveItemIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(o).Error; err != nil {
			return err
		}
		for i := range o.Items {
			o.Items[i].OrderID = o.ID
			if err := tx.Save(&o.Items[i]).Error; err != nil {
				return err
			}
		}

		if len(reserveItemIDs) == 0 {
			return nil
		}

		result := tx.Table("stock_items").
			Where("id IN ? AND reserved = ?", reserveItemIDs, false).
			Updates(map[string]interface{}{
				"reserved":   true,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != int64(len(reserveItemIDs)) {
			return shared.NewInvalidTransitionError("One or more stock items are already reserved")
		}
		return nil
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveWithLockTx(tx, o)
	})
}

// SaveWithLockAndRelease saves with optimistic locking and releases the given
// stock item reservations in the same transaction
func (r *GormOrderRepository) SaveWithLockAndRelease(ctx context.Context, o *order.Order, releaseItemIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.saveWithLockTx(tx, o); err != nil {
			return err
		}
		if len(releaseItemIDs) == 0 {
			return nil
		}
		return tx.Table("stock_items").
			Where("id IN ?", releaseItemIDs).
			Updates(map[string]interface{}{
				"reserved":   false,
				"updated_at": time.Now(),
			}).Error
	})
}

// saveWithLockTx performs the version-checked order update inside tx
func (r *GormOrderRepository) saveWithLockTx(tx *gorm.DB, o *order.Order) error {
	var currentVersion int
	if err := tx.Model(&order.Order{}).
		Where("id = ?", o.ID).
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

	if currentVersion != o.Version {
		return shared.ErrConcurrencyConflict
	}

	o.Version++
	o.UpdatedAt = time.Now()

	result := tx.Model(&order.Order{}).
		Where("id = ? AND version = ?", o.ID, currentVersion).
		Updates(map[string]interface{}{
			"client_id":      o.ClientID,
			"client_name":    o.ClientName,
			"total_price":    o.TotalPrice,
			"paid":           o.Paid,
			"remaining":      o.Remaining,
			"discount_type":  o.DiscountType,
			"discount_value": o.DiscountValue,
			"status":         o.Status,
			"notes":          o.Notes,
			"delivered_at":   o.DeliveredAt,
			"finished_at":    o.FinishedAt,
			"cancelled_at":   o.CancelledAt,
			"version":        o.Version,
			"updated_at":     o.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete soft-deletes an order
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&order.Order{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts orders with optional filters
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&order.Order{})
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts orders by status
func (r *GormOrderRepository) CountByStatus(ctx context.Context, status order.Status) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	return query.Order(sortField + " " + sortOrder)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("client_name ILIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "client_id":
			query = query.Where("client_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "source_id":
			query = query.Where("source_id = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormOrderRepository implements order.Repository
var _ order.Repository = (*GormOrderRepository)(nil)
