package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/atelier/backend/internal/domain/custody"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustodyRepository implements custody.Repository using GORM
type GormCustodyRepository struct {
	db *gorm.DB
}

// NewGormCustodyRepository creates a new GormCustodyRepository
func NewGormCustodyRepository(db *gorm.DB) *GormCustodyRepository {
	return &GormCustodyRepository{db: db}
}

// FindByID finds a custody record by its ID with photos preloaded
func (r *GormCustodyRepository) FindByID(ctx context.Context, id uuid.UUID) (*custody.Custody, error) {
	var c custody.Custody
	if err := r.db.WithContext(ctx).
		Preload("Photos").
		First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByOrder finds all custody records held against an order
func (r *GormCustodyRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]custody.Custody, error) {
	var custodies []custody.Custody
	if err := r.db.WithContext(ctx).
		Preload("Photos").
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&custodies).Error; err != nil {
		return nil, err
	}
	return custodies, nil
}

// FindAll finds custody records with filtering
func (r *GormCustodyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]custody.Custody, error) {
	var custodies []custody.Custody
	query := r.db.WithContext(ctx).Model(&custody.Custody{})
	query = r.applyFilter(query, filter)
	if err := query.Preload("Photos").Find(&custodies).Error; err != nil {
		return nil, err
	}
	return custodies, nil
}

// CountByOrder counts all custody records of an order
func (r *GormCustodyRepository) CountByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&custody.Custody{}).
		Where("order_id = ?", orderID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountPendingByOrder counts the custody records still blocking order completion
func (r *GormCustodyRepository) CountPendingByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&custody.Custody{}).
		Where("order_id = ? AND status = ?", orderID, custody.StatusPending).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a custody record and its photos. Photos are
// append-only, so existing rows are upserted and never pruned.
func (r *GormCustodyRepository) Save(ctx context.Context, c *custody.Custody) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Photos").Save(c).Error; err != nil {
			return err
		}
		for i := range c.Photos {
			c.Photos[i].CustodyID = c.ID
			if err := tx.Save(&c.Photos[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormCustodyRepository) SaveWithLock(ctx context.Context, c *custody.Custody) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&custody.Custody{}).
			Where("id = ?", c.ID).
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

		if currentVersion != c.Version {
			return shared.ErrConcurrencyConflict
		}

		c.Version++
		c.UpdatedAt = time.Now()

		result := tx.Model(&custody.Custody{}).
			Where("id = ? AND version = ?", c.ID, currentVersion).
			Updates(map[string]interface{}{
				"type":          c.Type,
				"description":   c.Description,
				"value":         c.Value,
				"status":        c.Status,
				"return_action": c.ReturnAction,
				"return_reason": c.ReturnReason,
				"returned_by":   c.ReturnedBy,
				"returned_at":   c.ReturnedAt,
				"version":       c.Version,
				"updated_at":    c.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		for i := range c.Photos {
			c.Photos[i].CustodyID = c.ID
			if err := tx.Save(&c.Photos[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Count counts custody records with optional filters
func (r *GormCustodyRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&custody.Custody{})
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormCustodyRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, CustodySortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	return query.Order(sortField + " " + sortOrder)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormCustodyRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("description ILIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "order_id":
			query = query.Where("order_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		}
	}

	return query
}

// Ensure GormCustodyRepository implements custody.Repository
var _ custody.Repository = (*GormCustodyRepository)(nil)
