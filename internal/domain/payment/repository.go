package payment

import (
	"context"

	"github.com/atelier/backend/internal/domain/order"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines the interface for payment ledger persistence
type Repository interface {
	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByOrder finds the full ledger of an order, oldest first
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Payment, error)

	// FindAll finds payments with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Payment, error)

	// Save creates or updates a payment
	Save(ctx context.Context, p *Payment) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, p *Payment) error

	// SaveWithRecompute persists the entry and folds the order's full ledger
	// into its paid/remaining/status figures in the same transaction. A
	// version conflict on the order rolls back the payment write too and
	// returns ErrConcurrencyConflict.
	SaveWithRecompute(ctx context.Context, p *Payment) (*order.Order, error)

	// SaveWithLockAndRecompute is SaveWithRecompute with a version check on
	// the payment row itself
	SaveWithLockAndRecompute(ctx context.Context, p *Payment) (*order.Order, error)

	// Count counts payments with optional filters
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
