package custody

import (
	"context"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines the interface for custody persistence.
// CountPendingByOrder and CountByOrder back the order engine's deliver and
// finish guards; they must be read inside the same transaction as the guard.
type Repository interface {
	// FindByID finds a custody record by ID, photos preloaded
	FindByID(ctx context.Context, id uuid.UUID) (*Custody, error)

	// FindByOrder finds all custody records held against an order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Custody, error)

	// FindAll finds custody records with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Custody, error)

	// CountByOrder counts all custody records of an order
	CountByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)

	// CountPendingByOrder counts the custody records still blocking
	// order completion
	CountPendingByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)

	// Save creates or updates a custody record and its photos
	Save(ctx context.Context, c *Custody) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, c *Custody) error

	// Count counts custody records with optional filters
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
