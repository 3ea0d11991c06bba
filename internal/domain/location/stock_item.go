package location

import (
	"time"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StockItem is a discrete garment piece tracked individually.
// Its LocationID is the inventory-membership relation: an item belongs to at
// most one location's inventory at a time. Membership is mutated only by
// transfer approval and by order cancellation releasing rental reservations,
// always through conditional updates guarded on the current location.
type StockItem struct {
	shared.BaseAggregateRoot
	SKU        string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name       string    `gorm:"type:varchar(200);not null"`
	Category   string    `gorm:"type:varchar(100)"`
	LocationID uuid.UUID `gorm:"type:uuid;not null;index"`
	Reserved   bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (StockItem) TableName() string {
	return "stock_items"
}

// NewStockItem creates a new stock item held by the given location
func NewStockItem(sku, name string, locationID uuid.UUID) (*StockItem, error) {
	if sku == "" {
		return nil, shared.NewValidationError("Stock item SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewValidationError("Stock item name cannot be empty")
	}
	if locationID == uuid.Nil {
		return nil, shared.NewValidationError("Stock item location cannot be empty")
	}

	return &StockItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               sku,
		Name:              name,
		LocationID:        locationID,
	}, nil
}

// IsAvailable reports whether the item can be sold, rented or transferred
func (s *StockItem) IsAvailable() bool {
	return !s.Reserved
}

// Reserve marks the item as held for a rental order
func (s *StockItem) Reserve() error {
	if s.Reserved {
		return shared.NewInvalidTransitionError("Stock item is already reserved")
	}
	s.Reserved = true
	s.UpdatedAt = time.Now()
	return nil
}

// Release returns a reserved item to the available pool
func (s *StockItem) Release() {
	s.Reserved = false
	s.UpdatedAt = time.Now()
}
