package custody

import (
	"fmt"
	"time"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type classifies what is held as collateral
type Type string

const (
	TypeMoney        Type = "MONEY"
	TypePhysicalItem Type = "PHYSICAL_ITEM"
	TypeDocument     Type = "DOCUMENT"
)

// IsValid checks if the type is a recognized custody Type
func (t Type) IsValid() bool {
	switch t {
	case TypeMoney, TypePhysicalItem, TypeDocument:
		return true
	}
	return false
}

// String returns the string representation of Type
func (t Type) String() string {
	return string(t)
}

// Status represents the status of a custody record
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusReturned  Status = "RETURNED"
	StatusForfeited Status = "FORFEITED"
)

// IsValid checks if the status is a valid custody Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusReturned, StatusForfeited:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the custody no longer blocks order completion
func (s Status) IsTerminal() bool {
	return s == StatusReturned || s == StatusForfeited
}

// ReturnAction is the closing action applied to a pending custody
type ReturnAction string

const (
	ActionReturnedToUser ReturnAction = "RETURNED_TO_USER"
	ActionForfeit        ReturnAction = "FORFEIT"
)

// IsValid checks if the action is a recognized ReturnAction
func (a ReturnAction) IsValid() bool {
	switch a {
	case ActionReturnedToUser, ActionForfeit:
		return true
	}
	return false
}

// String returns the string representation of ReturnAction
func (a ReturnAction) String() string {
	return string(a)
}

// PhotoKind distinguishes intake evidence from return acknowledgements
type PhotoKind string

const (
	PhotoEvidence        PhotoKind = "EVIDENCE"
	PhotoAcknowledgement PhotoKind = "ACKNOWLEDGEMENT"
)

// Photo is a stored image attached to a custody record. The domain keeps
// only the storage object key; bytes live in object storage.
type Photo struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustodyID uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind      PhotoKind `gorm:"type:varchar(20);not null"`
	ObjectKey string    `gorm:"type:varchar(500);not null"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (Photo) TableName() string {
	return "custody_photos"
}

// Custody represents collateral held against an order pending its
// completion. The single write path to a terminal state is Return; the
// order engine's finish guard consults the pending count.
type Custody struct {
	shared.BaseAggregateRoot
	OrderID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	Type         Type             `gorm:"type:varchar(20);not null"`
	Description  string           `gorm:"type:varchar(500);not null"`
	Value        *decimal.Decimal `gorm:"type:decimal(18,2)"`
	Status       Status           `gorm:"type:varchar(20);not null;index"`
	Photos       []Photo          `gorm:"foreignKey:CustodyID;references:ID"`
	ReturnAction *ReturnAction    `gorm:"type:varchar(20)"`
	ReturnReason string           `gorm:"type:varchar(500)"`
	ReturnedBy   *uuid.UUID       `gorm:"type:uuid"`
	ReturnedAt   *time.Time
}

// TableName returns the table name for GORM
func (Custody) TableName() string {
	return "custodies"
}

// NewCustody opens a custody record against an order.
// Money custody requires a value; physical-item custody requires at least
// one intake photo.
func NewCustody(orderID uuid.UUID, custodyType Type, description string, value *decimal.Decimal, photoKeys []string) (*Custody, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewValidationError("Order ID cannot be empty")
	}
	if !custodyType.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Unknown custody type: %q", custodyType))
	}
	if description == "" {
		return nil, shared.NewValidationError("Custody description cannot be empty")
	}
	if custodyType == TypeMoney {
		if value == nil {
			return nil, shared.NewValidationError("Money custody requires a value")
		}
		if !value.IsPositive() {
			return nil, shared.NewValidationError("Money custody value must be positive")
		}
	}
	if custodyType == TypePhysicalItem && len(photoKeys) == 0 {
		return nil, shared.NewValidationError("Physical item custody requires at least one photo")
	}

	c := &Custody{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		Type:              custodyType,
		Description:       description,
		Value:             value,
		Status:            StatusPending,
		Photos:            make([]Photo, 0, len(photoKeys)),
	}

	for _, key := range photoKeys {
		c.Photos = append(c.Photos, Photo{
			ID:        uuid.New(),
			CustodyID: c.ID,
			Kind:      PhotoEvidence,
			ObjectKey: key,
			CreatedAt: time.Now(),
		})
	}

	c.AddDomainEvent(NewCustodyOpenedEvent(c))

	return c, nil
}

// Return closes the custody. RETURNED_TO_USER hands the collateral back;
// FORFEIT keeps it and requires a reason. Both need at least one
// acknowledgement photo, and neither is allowed from a terminal state.
func (c *Custody) Return(actor uuid.UUID, action ReturnAction, ackPhotoKeys []string, reason string) error {
	if c.Status.IsTerminal() {
		return shared.NewInvalidTransitionError(fmt.Sprintf("Custody is already %s", c.Status))
	}
	if !action.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Unknown return action: %q", action))
	}
	if len(ackPhotoKeys) == 0 {
		return shared.NewValidationError("Custody return requires at least one acknowledgement photo")
	}
	if action == ActionForfeit && reason == "" {
		return shared.NewValidationError("Forfeiting custody requires a reason")
	}

	now := time.Now()
	switch action {
	case ActionReturnedToUser:
		c.Status = StatusReturned
	case ActionForfeit:
		c.Status = StatusForfeited
		c.ReturnReason = reason
	}
	c.ReturnAction = &action
	c.ReturnedBy = &actor
	c.ReturnedAt = &now
	c.UpdatedAt = now

	for _, key := range ackPhotoKeys {
		c.Photos = append(c.Photos, Photo{
			ID:        uuid.New(),
			CustodyID: c.ID,
			Kind:      PhotoAcknowledgement,
			ObjectKey: key,
			CreatedAt: now,
		})
	}

	c.AddDomainEvent(NewCustodyClosedEvent(c))

	return nil
}

// IsPending reports whether the custody still blocks order completion
func (c *Custody) IsPending() bool {
	return c.Status == StatusPending
}

// AcknowledgementPhotos returns the photos captured at return time
func (c *Custody) AcknowledgementPhotos() []Photo {
	photos := make([]Photo, 0)
	for _, p := range c.Photos {
		if p.Kind == PhotoAcknowledgement {
			photos = append(photos, p)
		}
	}
	return photos
}
