package payment

import (
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypePayment = "Payment"

// Event type constants
const (
	EventTypePaymentCreated  = "PaymentCreated"
	EventTypePaymentPaid     = "PaymentPaid"
	EventTypePaymentCanceled = "PaymentCanceled"
)

// PaymentCreatedEvent is raised when a ledger entry is created
type PaymentCreatedEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID       `json:"payment_id"`
	OrderID   uuid.UUID       `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	Kind      string          `json:"kind"`
}

// NewPaymentCreatedEvent creates a new PaymentCreatedEvent
func NewPaymentCreatedEvent(p *Payment) *PaymentCreatedEvent {
	return &PaymentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentCreated, AggregateTypePayment, p.ID),
		PaymentID:       p.ID,
		OrderID:         p.OrderID,
		Amount:          p.Amount,
		Status:          p.Status.String(),
		Kind:            p.Type.String(),
	}
}

// EventType returns the event type name
func (e *PaymentCreatedEvent) EventType() string {
	return EventTypePaymentCreated
}

// PaymentPaidEvent is raised when a pending payment is marked paid
type PaymentPaidEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID       `json:"payment_id"`
	OrderID   uuid.UUID       `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// NewPaymentPaidEvent creates a new PaymentPaidEvent
func NewPaymentPaidEvent(p *Payment) *PaymentPaidEvent {
	return &PaymentPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentPaid, AggregateTypePayment, p.ID),
		PaymentID:       p.ID,
		OrderID:         p.OrderID,
		Amount:          p.Amount,
	}
}

// EventType returns the event type name
func (e *PaymentPaidEvent) EventType() string {
	return EventTypePaymentPaid
}

// PaymentCanceledEvent is raised when a payment is voided
type PaymentCanceledEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID       `json:"payment_id"`
	OrderID   uuid.UUID       `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// NewPaymentCanceledEvent creates a new PaymentCanceledEvent
func NewPaymentCanceledEvent(p *Payment) *PaymentCanceledEvent {
	return &PaymentCanceledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentCanceled, AggregateTypePayment, p.ID),
		PaymentID:       p.ID,
		OrderID:         p.OrderID,
		Amount:          p.Amount,
	}
}

// EventType returns the event type name
func (e *PaymentCanceledEvent) EventType() string {
	return EventTypePaymentCanceled
}
