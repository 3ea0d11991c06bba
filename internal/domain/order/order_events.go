package order

import (
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCreated   = "OrderCreated"
	EventTypeOrderDelivered = "OrderDelivered"
	EventTypeOrderFinished  = "OrderFinished"
	EventTypeOrderCancelled = "OrderCancelled"
)

// OrderCreatedEvent is raised when a new order is created
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID    uuid.UUID       `json:"order_id"`
	ClientID   uuid.UUID       `json:"client_id"`
	SourceKind string          `json:"source_kind"`
	SourceID   uuid.UUID       `json:"source_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Paid       decimal.Decimal `json:"paid"`
	Status     string          `json:"status"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		ClientID:        o.ClientID,
		SourceKind:      o.Source.Kind.String(),
		SourceID:        o.Source.ID,
		TotalPrice:      o.TotalPrice,
		Paid:            o.Paid,
		Status:          o.Status.String(),
	}
}

// EventType returns the event type name
func (e *OrderCreatedEvent) EventType() string {
	return EventTypeOrderCreated
}

// OrderDeliveredEvent is raised when an order is handed to the client
type OrderDeliveredEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID `json:"order_id"`
}

// NewOrderDeliveredEvent creates a new OrderDeliveredEvent
func NewOrderDeliveredEvent(o *Order) *OrderDeliveredEvent {
	return &OrderDeliveredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderDelivered, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
	}
}

// EventType returns the event type name
func (e *OrderDeliveredEvent) EventType() string {
	return EventTypeOrderDelivered
}

// OrderFinishedEvent is raised when an order completes
type OrderFinishedEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID       `json:"order_id"`
	Paid    decimal.Decimal `json:"paid"`
}

// NewOrderFinishedEvent creates a new OrderFinishedEvent
func NewOrderFinishedEvent(o *Order) *OrderFinishedEvent {
	return &OrderFinishedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderFinished, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		Paid:            o.Paid,
	}
}

// EventType returns the event type name
func (e *OrderFinishedEvent) EventType() string {
	return EventTypeOrderFinished
}

// OrderCancelledEvent is raised when an order is cancelled.
// Rental reservations are released in the same transaction.
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID   `json:"order_id"`
	ReleasedItems []uuid.UUID `json:"released_items"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(o *Order) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		ReleasedItems:   o.RentalStockItemIDs(),
	}
}

// EventType returns the event type name
func (e *OrderCancelledEvent) EventType() string {
	return EventTypeOrderCancelled
}
