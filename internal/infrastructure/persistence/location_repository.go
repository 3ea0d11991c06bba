package persistence

import (
	"context"
	"errors"

	"github.com/atelier/backend/internal/domain/location"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLocationRepository implements location.Repository using GORM
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GormLocationRepository
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

// Resolve resolves a polymorphic (kind, id) reference to a concrete location.
// An existing id of the wrong kind is indistinguishable from a missing one.
func (r *GormLocationRepository) Resolve(ctx context.Context, ref location.Ref) (*location.Location, error) {
	var loc location.Location
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND id = ?", ref.Kind, ref.ID).
		First(&loc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &loc, nil
}

// FindByID finds a location by its ID regardless of kind
func (r *GormLocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*location.Location, error) {
	var loc location.Location
	if err := r.db.WithContext(ctx).
		First(&loc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &loc, nil
}

// FindAll finds locations with filtering
func (r *GormLocationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]location.Location, error) {
	var locations []location.Location
	query := r.db.WithContext(ctx).Model(&location.Location{})
	query = r.applyFilter(query, filter)
	if err := query.Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// FindByKind finds all locations of a kind
func (r *GormLocationRepository) FindByKind(ctx context.Context, kind location.Kind, filter shared.Filter) ([]location.Location, error) {
	var locations []location.Location
	query := r.db.WithContext(ctx).Model(&location.Location{}).
		Where("kind = ?", kind)
	query = r.applyFilter(query, filter)
	if err := query.Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// Save creates or updates a location
func (r *GormLocationRepository) Save(ctx context.Context, loc *location.Location) error {
	return r.db.WithContext(ctx).Save(loc).Error
}

// Count counts locations with optional filters
func (r *GormLocationRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&location.Location{})
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormLocationRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, LocationSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	return query.Order(sortField + " " + sortOrder)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormLocationRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR address ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "kind":
			query = query.Where("kind = ?", value)
		}
	}

	return query
}

// Ensure GormLocationRepository implements location.Repository
var _ location.Repository = (*GormLocationRepository)(nil)
