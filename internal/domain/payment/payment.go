package payment

import (
	"fmt"
	"time"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the status of a payment
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusPaid     Status = "PAID"
	StatusCanceled Status = "CANCELED"
)

// IsValid checks if the status is a valid payment Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCanceled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Type distinguishes balance-reducing payments from informational fees
type Type string

const (
	// TypeNormal payments reduce the order's remaining balance
	TypeNormal Type = "NORMAL"
	// TypeFee payments are tracked for bookkeeping display but never
	// affect remaining/status derivation
	TypeFee Type = "FEE"
)

// IsValid checks if the type is a valid payment Type
func (t Type) IsValid() bool {
	switch t {
	case TypeNormal, TypeFee:
		return true
	}
	return false
}

// String returns the string representation of Type
func (t Type) String() string {
	return string(t)
}

// Payment is one append-only entry in an order's payment ledger.
// Entries are never edited in place: the only mutations are the PENDING to
// PAID transition and cancellation, each of which triggers a full ledger
// recompute on the owning order.
type Payment struct {
	shared.BaseAggregateRoot
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status      Status          `gorm:"type:varchar(20);not null;index"`
	Type        Type            `gorm:"type:varchar(20);not null"`
	PaymentDate *time.Time
	Notes       string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a new ledger entry against an order.
// A payment created directly in PAID status gets its payment date stamped
// immediately.
func NewPayment(orderID uuid.UUID, amount valueobject.Money, status Status, paymentType Type) (*Payment, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewValidationError("Order ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("Payment amount must be positive")
	}
	if !status.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Unknown payment status: %q", status))
	}
	if status == StatusCanceled {
		return nil, shared.NewValidationError("Payment cannot be created already canceled")
	}
	if !paymentType.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Unknown payment type: %q", paymentType))
	}

	p := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		Amount:            amount.Amount(),
		Status:            status,
		Type:              paymentType,
	}

	if status == StatusPaid {
		now := time.Now()
		p.PaymentDate = &now
	}

	p.AddDomainEvent(NewPaymentCreatedEvent(p))

	return p, nil
}

// MarkPaid transitions the payment from PENDING to PAID and stamps the
// payment date
func (p *Payment) MarkPaid() error {
	if p.Status != StatusPending {
		return shared.NewInvalidTransitionError(fmt.Sprintf("Cannot pay payment in %s status", p.Status))
	}

	now := time.Now()
	p.Status = StatusPaid
	p.PaymentDate = &now
	p.UpdatedAt = now

	p.AddDomainEvent(NewPaymentPaidEvent(p))

	return nil
}

// Cancel voids the payment. Canceling a PAID payment is permitted and
// reverses its ledger effect through the subsequent recompute.
func (p *Payment) Cancel() error {
	if p.Status == StatusCanceled {
		return shared.NewInvalidTransitionError("Payment is already canceled")
	}

	p.Status = StatusCanceled
	p.UpdatedAt = time.Now()

	p.AddDomainEvent(NewPaymentCanceledEvent(p))

	return nil
}

// CountsTowardBalance reports whether the entry participates in
// remaining/status derivation
func (p *Payment) CountsTowardBalance() bool {
	return p.Status == StatusPaid && p.Type == TypeNormal
}

// AmountMoney returns the payment amount as Money
func (p *Payment) AmountMoney() valueobject.Money {
	return valueobject.NewMoneyEGP(p.Amount)
}
