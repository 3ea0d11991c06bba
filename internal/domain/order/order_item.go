package order

import (
	"time"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemType distinguishes the three kinds of commercial transactions
type ItemType string

const (
	ItemTypeBuy       ItemType = "BUY"
	ItemTypeRent      ItemType = "RENT"
	ItemTypeTailoring ItemType = "TAILORING"
)

// IsValid checks if the type is a recognized ItemType
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeBuy, ItemTypeRent, ItemTypeTailoring:
		return true
	}
	return false
}

// String returns the string representation of ItemType
func (t ItemType) String() string {
	return string(t)
}

// RentalTerms carries the metadata required for RENT items
type RentalTerms struct {
	DeliveryDate time.Time
	Days         int
}

// OrderItem represents a line item in an order.
// Items are immutable after order creation; the computed Total already has
// the per-item discount applied.
type OrderItem struct {
	ID            uuid.UUID                 `gorm:"type:uuid;primaryKey"`
	OrderID       uuid.UUID                 `gorm:"type:uuid;not null;index"`
	StockItemID   uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Type          ItemType                  `gorm:"type:varchar(20);not null"`
	UnitPrice     decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	Quantity      int                       `gorm:"not null"`
	DiscountType  *valueobject.DiscountType `gorm:"type:varchar(20)"`
	DiscountValue decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	Subtotal      decimal.Decimal           `gorm:"type:decimal(18,2);not null"` // UnitPrice * Quantity
	Total         decimal.Decimal           `gorm:"type:decimal(18,2);not null"` // Subtotal after item discount
	DeliveryDate  *time.Time                `gorm:""`
	RentalDays    int                       `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// NewOrderItem creates a new order line item.
// The item total is the discounted subtotal; the order-level discount is
// applied later, on the sum of item totals.
func NewOrderItem(stockItemID uuid.UUID, itemType ItemType, unitPrice valueobject.Money, quantity int, discount *valueobject.Discount, rental *RentalTerms) (*OrderItem, error) {
	if stockItemID == uuid.Nil {
		return nil, shared.NewValidationError("Stock item ID cannot be empty")
	}
	if !itemType.IsValid() {
		return nil, shared.NewValidationError("Unknown order item type: " + string(itemType))
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("Unit price cannot be negative")
	}
	if quantity <= 0 {
		return nil, shared.NewValidationError("Quantity must be positive")
	}
	if itemType == ItemTypeRent {
		if rental == nil || rental.DeliveryDate.IsZero() {
			return nil, shared.NewValidationError("Rent items require a delivery date")
		}
		if rental.Days <= 0 {
			return nil, shared.NewValidationError("Rent items require a positive rental duration")
		}
	}

	now := time.Now()
	subtotal := unitPrice.Amount().Mul(decimal.NewFromInt(int64(quantity)))
	total := subtotal
	item := &OrderItem{
		ID:          uuid.New(),
		StockItemID: stockItemID,
		Type:        itemType,
		UnitPrice:   unitPrice.Amount(),
		Quantity:    quantity,
		Subtotal:    subtotal,
		Total:       subtotal,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if discount != nil && !discount.IsZero() {
		total = discount.Apply(subtotal)
		discountType := discount.Type()
		item.DiscountType = &discountType
		item.DiscountValue = discount.Value()
	}
	item.Total = total

	if rental != nil {
		deliveryDate := rental.DeliveryDate
		item.DeliveryDate = &deliveryDate
		item.RentalDays = rental.Days
	}

	return item, nil
}

// IsRental reports whether the item reserves stock until delivery
func (i *OrderItem) IsRental() bool {
	return i.Type == ItemTypeRent
}

// Discount reconstructs the per-item discount, if any
func (i *OrderItem) Discount() (valueobject.Discount, bool) {
	if i.DiscountType == nil {
		return valueobject.Discount{}, false
	}
	d, err := valueobject.NewDiscount(*i.DiscountType, i.DiscountValue)
	if err != nil {
		return valueobject.Discount{}, false
	}
	return d, true
}

// TotalMoney returns the discounted item total as Money
func (i *OrderItem) TotalMoney() valueobject.Money {
	return valueobject.NewMoneyEGP(i.Total)
}
