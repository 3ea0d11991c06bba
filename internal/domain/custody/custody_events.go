package custody

import (
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeCustody = "Custody"

// Event type constants
const (
	EventTypeCustodyOpened = "CustodyOpened"
	EventTypeCustodyClosed = "CustodyClosed"
)

// CustodyOpenedEvent is raised when collateral is taken against an order
type CustodyOpenedEvent struct {
	shared.BaseDomainEvent
	CustodyID uuid.UUID `json:"custody_id"`
	OrderID   uuid.UUID `json:"order_id"`
	Kind      string    `json:"kind"`
}

// NewCustodyOpenedEvent creates a new CustodyOpenedEvent
func NewCustodyOpenedEvent(c *Custody) *CustodyOpenedEvent {
	return &CustodyOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustodyOpened, AggregateTypeCustody, c.ID),
		CustodyID:       c.ID,
		OrderID:         c.OrderID,
		Kind:            c.Type.String(),
	}
}

// EventType returns the event type name
func (e *CustodyOpenedEvent) EventType() string {
	return EventTypeCustodyOpened
}

// CustodyClosedEvent is raised when custody reaches a terminal state
type CustodyClosedEvent struct {
	shared.BaseDomainEvent
	CustodyID uuid.UUID `json:"custody_id"`
	OrderID   uuid.UUID `json:"order_id"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
}

// NewCustodyClosedEvent creates a new CustodyClosedEvent
func NewCustodyClosedEvent(c *Custody) *CustodyClosedEvent {
	return &CustodyClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustodyClosed, AggregateTypeCustody, c.ID),
		CustodyID:       c.ID,
		OrderID:         c.OrderID,
		Status:          c.Status.String(),
		Reason:          c.ReturnReason,
	}
}

// EventType returns the event type name
func (e *CustodyClosedEvent) EventType() string {
	return EventTypeCustodyClosed
}
