package persistence

import (
	"context"
	"errors"

	"github.com/atelier/backend/internal/domain/location"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockItemRepository implements location.StockItemRepository using GORM
type GormStockItemRepository struct {
	db *gorm.DB
}

// NewGormStockItemRepository creates a new GormStockItemRepository
func NewGormStockItemRepository(db *gorm.DB) *GormStockItemRepository {
	return &GormStockItemRepository{db: db}
}

// FindByID finds a stock item by its ID
func (r *GormStockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*location.StockItem, error) {
	var item location.StockItem
	if err := r.db.WithContext(ctx).
		First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByIDs finds the stock items with the given IDs
func (r *GormStockItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]location.StockItem, error) {
	if len(ids) == 0 {
		return []location.StockItem{}, nil
	}
	var items []location.StockItem
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindByLocation finds the inventory of a location
func (r *GormStockItemRepository) FindByLocation(ctx context.Context, locationID uuid.UUID, filter shared.Filter) ([]location.StockItem, error) {
	var items []location.StockItem
	query := r.db.WithContext(ctx).Model(&location.StockItem{}).
		Where("location_id = ?", locationID)
	query = r.applyFilter(query, filter)
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CountInLocation counts how many of the given items are currently members of
// the location's inventory. Callers compare the count against len(ids) to
// validate membership before creating orders and transfers.
func (r *GormStockItemRepository) CountInLocation(ctx context.Context, locationID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&location.StockItem{}).
		Where("location_id = ? AND id IN ?", locationID, ids).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a stock item
func (r *GormStockItemRepository) Save(ctx context.Context, item *location.StockItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// CountByLocation counts the items held by a location
func (r *GormStockItemRepository) CountByLocation(ctx context.Context, locationID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&location.StockItem{}).
		Where("location_id = ?", locationID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormStockItemRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("sku ILIKE ? OR name ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "category":
			query = query.Where("category = ?", value)
		case "reserved":
			query = query.Where("reserved = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, StockItemSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	return query.Order(sortField + " " + sortOrder)
}

// Ensure GormStockItemRepository implements location.StockItemRepository
var _ location.StockItemRepository = (*GormStockItemRepository)(nil)
