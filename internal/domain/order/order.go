package order

import (
	"fmt"
	"time"

	"github.com/atelier/backend/internal/domain/location"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Status represents the status of an order
type Status string

const (
	StatusCreated       Status = "CREATED"
	StatusPartiallyPaid Status = "PARTIALLY_PAID"
	StatusPaid          Status = "PAID"
	StatusDelivered     Status = "DELIVERED"
	StatusFinished      Status = "FINISHED"
	StatusCancelled     Status = "CANCELLED"
)

// IsValid checks if the status is a valid order Status
func (s Status) IsValid() bool {
	switch s {
	case StatusCreated, StatusPartiallyPaid, StatusPaid, StatusDelivered, StatusFinished, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the status permits no further transitions
func (s Status) IsTerminal() bool {
	return s == StatusFinished || s == StatusCancelled
}

// IsDerived reports whether the status is recomputed from the payment ledger.
// DELIVERED, FINISHED and CANCELLED are one-way gates set only by explicit
// transitions; ledger recomputation never regresses past them.
func (s Status) IsDerived() bool {
	switch s {
	case StatusCreated, StatusPartiallyPaid, StatusPaid:
		return true
	}
	return false
}

// Order represents a commercial transaction aggregate: a rental, sale or
// tailoring order placed by a client against one location's stock.
//
// Invariant: Remaining == TotalPrice - Paid (floored at zero) after every
// ledger operation. CREATED/PARTIALLY_PAID/PAID are pure functions of
// Paid vs TotalPrice; the remaining statuses are set by explicit transitions.
type Order struct {
	shared.BaseAggregateRoot
	ClientID      uuid.UUID                 `gorm:"type:uuid;not null;index"`
	ClientName    string                    `gorm:"type:varchar(200);not null"`
	Source        location.Ref              `gorm:"embedded;embeddedPrefix:source_"`
	Items         []OrderItem               `gorm:"foreignKey:OrderID;references:ID"`
	TotalPrice    decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	Paid          decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	Remaining     decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	DiscountType  *valueobject.DiscountType `gorm:"type:varchar(20)"`
	DiscountValue decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	Status        Status                    `gorm:"type:varchar(20);not null;index"`
	Notes         string                    `gorm:"type:varchar(500)"`
	DeliveredAt   *time.Time
	FinishedAt    *time.Time
	CancelledAt   *time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new order with its full, immutable item list.
//
// Pricing order of operations: each item total is price*quantity with the
// item's own discount applied; the order discount is then applied to the sum
// of item totals. Stacking this way produces a smaller figure than applying
// both discounts to the raw subtotal, and callers depend on it.
func NewOrder(clientID uuid.UUID, clientName string, source location.Ref, items []OrderItem, discount *valueobject.Discount, initialPaid decimal.Decimal) (*Order, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewValidationError("Client ID cannot be empty")
	}
	if !source.Kind.IsValid() || source.ID == uuid.Nil {
		return nil, shared.NewValidationError("Order source location is invalid")
	}
	if len(items) == 0 {
		return nil, shared.NewValidationError("Order must contain at least one item")
	}
	if initialPaid.IsNegative() {
		return nil, shared.NewValidationError("Initial paid amount cannot be negative")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          clientID,
		ClientName:        clientName,
		Source:            source,
		Items:             make([]OrderItem, 0, len(items)),
		Paid:              decimal.Zero,
		Remaining:         decimal.Zero,
	}

	for _, item := range items {
		item.OrderID = order.ID
		order.Items = append(order.Items, item)
	}

	if discount != nil && !discount.IsZero() {
		discountType := discount.Type()
		order.DiscountType = &discountType
		order.DiscountValue = discount.Value()
	}

	order.TotalPrice = order.computeTotalPrice()
	order.Paid = initialPaid
	order.Remaining = remainingOf(order.TotalPrice, initialPaid)
	order.Status = deriveStatus(order.Paid, order.TotalPrice)

	order.AddDomainEvent(NewOrderCreatedEvent(order))

	return order, nil
}

// computeTotalPrice folds the discounted item totals and applies the
// order-level discount to the sum
func (o *Order) computeTotalPrice() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.Total)
	}
	if d, ok := o.Discount(); ok {
		sum = d.Apply(sum)
	}
	return sum
}

// Discount reconstructs the order-level discount, if any
func (o *Order) Discount() (valueobject.Discount, bool) {
	if o.DiscountType == nil {
		return valueobject.Discount{}, false
	}
	d, err := valueobject.NewDiscount(*o.DiscountType, o.DiscountValue)
	if err != nil {
		return valueobject.Discount{}, false
	}
	return d, true
}

// deriveStatus is the paid/total derivation table for ledger-driven statuses
func deriveStatus(paid, total decimal.Decimal) Status {
	switch {
	case paid.IsZero():
		return StatusCreated
	case paid.GreaterThanOrEqual(total):
		return StatusPaid
	default:
		return StatusPartiallyPaid
	}
}

func remainingOf(total, paid decimal.Decimal) decimal.Decimal {
	remaining := total.Sub(paid)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// ApplyLedger applies the recomputed ledger total to the order: Paid,
// Remaining and, while the order has not passed a one-way gate, the derived
// status. Called inside the same transaction as the payment mutation that
// triggered it.
func (o *Order) ApplyLedger(paidTotal decimal.Decimal) {
	o.Paid = paidTotal
	o.Remaining = remainingOf(o.TotalPrice, paidTotal)
	if o.Status.IsDerived() {
		o.Status = deriveStatus(o.Paid, o.TotalPrice)
	}
	o.UpdatedAt = time.Now()
}

// Deliver transitions the order to DELIVERED. Requires payment to be
// complete and at least one custody record held against the order.
func (o *Order) Deliver(custodyCount int64) error {
	if o.Status != StatusPaid {
		return shared.NewInvalidTransitionError(fmt.Sprintf("Cannot deliver order in %s status", o.Status))
	}
	if custodyCount == 0 {
		return shared.NewInvalidTransitionError("Cannot deliver order without a custody record")
	}

	now := time.Now()
	o.Status = StatusDelivered
	o.DeliveredAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderDeliveredEvent(o))

	return nil
}

// Finish transitions the order to FINISHED. Requires a settled balance and
// every custody record in a terminal state; any pending custody blocks
// completion.
func (o *Order) Finish(pendingCustody int64) error {
	if o.Status != StatusPaid && o.Status != StatusDelivered {
		return shared.NewInvalidTransitionError(fmt.Sprintf("Cannot finish order in %s status", o.Status))
	}
	if !o.Remaining.IsZero() {
		return shared.NewInvalidTransitionError("Cannot finish order with an outstanding balance")
	}
	if pendingCustody > 0 {
		return shared.NewInvalidTransitionError("Cannot finish order with pending custody records")
	}

	now := time.Now()
	o.Status = StatusFinished
	o.FinishedAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderFinishedEvent(o))

	return nil
}

// Cancel transitions the order to CANCELLED from any non-terminal state.
// Reserved rental stock is released by the caller in the same transaction;
// the balance is intentionally left as-is.
func (o *Order) Cancel() error {
	if o.Status.IsTerminal() {
		return shared.NewInvalidTransitionError(fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderCancelledEvent(o))

	return nil
}

// RentalStockItemIDs returns the stock items reserved by RENT line items
func (o *Order) RentalStockItemIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0)
	for _, item := range o.Items {
		if item.IsRental() {
			ids = append(ids, item.StockItemID)
		}
	}
	return ids
}

// StockItemIDs returns every stock item referenced by the order
func (o *Order) StockItemIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(o.Items))
	for _, item := range o.Items {
		ids = append(ids, item.StockItemID)
	}
	return ids
}

// ItemCount returns the number of line items in the order
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// IsCancelled returns true if the order is cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == StatusCancelled
}

// IsFinished returns true if the order is finished
func (o *Order) IsFinished() bool {
	return o.Status == StatusFinished
}

// AcceptsCustody reports whether custody records may still be opened
// against the order
func (o *Order) AcceptsCustody() bool {
	return !o.Status.IsTerminal()
}

// TotalPriceMoney returns the total price as Money
func (o *Order) TotalPriceMoney() valueobject.Money {
	return valueobject.NewMoneyEGP(o.TotalPrice)
}

// RemainingMoney returns the outstanding balance as Money
func (o *Order) RemainingMoney() valueobject.Money {
	return valueobject.NewMoneyEGP(o.Remaining)
}
