package transfer

import (
	"context"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StockMove is a membership change produced by an approval pass: the stock
// item leaves the source inventory and joins the destination inventory.
type StockMove struct {
	StockItemID   uuid.UUID
	SourceID      uuid.UUID
	DestinationID uuid.UUID
}

// Repository defines the interface for transfer persistence.
//
// SaveWithLockAndMoves bundles the inventory side effects of an approval
// into the same transaction as the aggregate write: each move is a
// conditional update guarded on the item still sitting in the source
// inventory, so a concurrent transfer of the same item cannot double-move it.
type Repository interface {
	// FindByID finds a transfer by ID, items and actions preloaded
	FindByID(ctx context.Context, id uuid.UUID) (*Transfer, error)

	// FindAll finds transfers with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Transfer, error)

	// FindByLocation finds transfers where the location is source or
	// destination
	FindByLocation(ctx context.Context, locationID uuid.UUID, filter shared.Filter) ([]Transfer, error)

	// FindByStatus finds transfers by status
	FindByStatus(ctx context.Context, status Status, filter shared.Filter) ([]Transfer, error)

	// Save creates or updates a transfer with its items and actions
	Save(ctx context.Context, t *Transfer) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, t *Transfer) error

	// SaveWithLockAndMoves saves with optimistic locking and applies the
	// stock membership moves atomically
	SaveWithLockAndMoves(ctx context.Context, t *Transfer, moves []StockMove) error

	// Count counts transfers with optional filters
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus counts transfers by status
	CountByStatus(ctx context.Context, status Status) (int64, error)
}
