package location

import (
	"context"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines the interface for location persistence.
// Resolve is the single entry point that turns a polymorphic (kind, id)
// reference into a concrete location; it fails with NOT_FOUND when the id
// does not exist or belongs to a location of a different kind.
type Repository interface {
	// Resolve resolves a polymorphic reference to a concrete location
	Resolve(ctx context.Context, ref Ref) (*Location, error)

	// FindByID finds a location by ID regardless of kind
	FindByID(ctx context.Context, id uuid.UUID) (*Location, error)

	// FindAll finds locations with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Location, error)

	// FindByKind finds all locations of a kind
	FindByKind(ctx context.Context, kind Kind, filter shared.Filter) ([]Location, error)

	// Save creates or updates a location
	Save(ctx context.Context, loc *Location) error

	// Count counts locations with optional filters
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// StockItemRepository defines the interface for stock item persistence and
// the inventory-membership ledger.
type StockItemRepository interface {
	// FindByID finds a stock item by ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockItem, error)

	// FindByIDs finds the stock items with the given IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]StockItem, error)

	// FindByLocation finds the inventory of a location
	FindByLocation(ctx context.Context, locationID uuid.UUID, filter shared.Filter) ([]StockItem, error)

	// CountInLocation counts how many of the given items are currently members
	// of the location's inventory
	CountInLocation(ctx context.Context, locationID uuid.UUID, ids []uuid.UUID) (int64, error)

	// Save creates or updates a stock item
	Save(ctx context.Context, item *StockItem) error

	// CountByLocation counts the items held by a location
	CountByLocation(ctx context.Context, locationID uuid.UUID) (int64, error)
}
