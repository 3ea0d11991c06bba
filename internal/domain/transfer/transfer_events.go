package transfer

import (
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeTransfer = "Transfer"

// Event type constants
const (
	EventTypeTransferCreated  = "TransferCreated"
	EventTypeTransferResolved = "TransferResolved"
)

// TransferCreatedEvent is raised when a transfer request is opened
type TransferCreatedEvent struct {
	shared.BaseDomainEvent
	TransferID  uuid.UUID `json:"transfer_id"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	ItemCount   int       `json:"item_count"`
}

// NewTransferCreatedEvent creates a new TransferCreatedEvent
func NewTransferCreatedEvent(t *Transfer) *TransferCreatedEvent {
	return &TransferCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferCreated, AggregateTypeTransfer, t.ID),
		TransferID:      t.ID,
		Source:          t.Source.String(),
		Destination:     t.Destination.String(),
		ItemCount:       len(t.Items),
	}
}

// EventType returns the event type name
func (e *TransferCreatedEvent) EventType() string {
	return EventTypeTransferCreated
}

// TransferResolvedEvent is raised after an approval or rejection pass.
// MovedItems carries the stock items whose membership moved to the
// destination (empty for rejections).
type TransferResolvedEvent struct {
	shared.BaseDomainEvent
	TransferID uuid.UUID   `json:"transfer_id"`
	Action     string      `json:"action"`
	Status     string      `json:"status"`
	MovedItems []uuid.UUID `json:"moved_items,omitempty"`
}

// NewTransferResolvedEvent creates a new TransferResolvedEvent
func NewTransferResolvedEvent(t *Transfer, kind ActionKind, movedItems []uuid.UUID) *TransferResolvedEvent {
	return &TransferResolvedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferResolved, AggregateTypeTransfer, t.ID),
		TransferID:      t.ID,
		Action:          string(kind),
		Status:          t.Status.String(),
		MovedItems:      movedItems,
	}
}

// EventType returns the event type name
func (e *TransferResolvedEvent) EventType() string {
	return EventTypeTransferResolved
}
