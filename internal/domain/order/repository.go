package order

import (
	"context"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines the interface for order persistence.
//
// SaveWithReservation and SaveWithLockAndRelease bundle the stock-item side
// effects of order creation and cancellation into the same transaction as the
// aggregate write: a rent order whose reservation fails must not exist, and a
// cancelled order must not leave items reserved.
type Repository interface {
	// FindByID finds an order by ID, items preloaded
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindAll finds orders with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// FindByClient finds orders for a client
	FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]Order, error)

	// FindByStatus finds orders by status
	FindByStatus(ctx context.Context, status Status, filter shared.Filter) ([]Order, error)

	// Save creates or updates an order and its items
	Save(ctx context.Context, o *Order) error

	// SaveWithReservation creates the order and reserves the given stock
	// items atomically; fails if any item is already reserved
	SaveWithReservation(ctx context.Context, o *Order, reserveItemIDs []uuid.UUID) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, o *Order) error

	// SaveWithLockAndRelease saves with optimistic locking and releases the
	// given stock item reservations in the same transaction
	SaveWithLockAndRelease(ctx context.Context, o *Order, releaseItemIDs []uuid.UUID) error

	// Delete soft-deletes an order
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts orders with optional filters
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus counts orders by status
	CountByStatus(ctx context.Context, status Status) (int64, error)
}
