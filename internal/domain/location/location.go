package location

import (
	"fmt"
	"time"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Kind identifies the type of a stock-holding location
type Kind string

const (
	KindBranch   Kind = "BRANCH"
	KindWorkshop Kind = "WORKSHOP"
	KindFactory  Kind = "FACTORY"
)

// IsValid checks if the kind is a recognized location Kind
func (k Kind) IsValid() bool {
	switch k {
	case KindBranch, KindWorkshop, KindFactory:
		return true
	}
	return false
}

// String returns the string representation of Kind
func (k Kind) String() string {
	return string(k)
}

// ParseKind converts a raw string into a Kind.
// Accepts the canonical uppercase form as well as lowercase input.
func ParseKind(raw string) (Kind, error) {
	switch raw {
	case "BRANCH", "branch":
		return KindBranch, nil
	case "WORKSHOP", "workshop":
		return KindWorkshop, nil
	case "FACTORY", "factory":
		return KindFactory, nil
	}
	return "", shared.NewValidationError(fmt.Sprintf("unknown location kind: %q", raw))
}

// Ref is a polymorphic reference to a stock-holding location.
// Every component that needs a source or destination location carries a Ref
// and resolves it through the repository instead of branching on type strings.
type Ref struct {
	Kind Kind      `json:"kind" gorm:"type:varchar(20)"`
	ID   uuid.UUID `json:"id" gorm:"type:uuid"`
}

// NewRef creates a validated location reference
func NewRef(kind Kind, id uuid.UUID) (Ref, error) {
	if !kind.IsValid() {
		return Ref{}, shared.NewValidationError(fmt.Sprintf("unknown location kind: %q", kind))
	}
	if id == uuid.Nil {
		return Ref{}, shared.NewValidationError("location ID cannot be empty")
	}
	return Ref{Kind: kind, ID: id}, nil
}

// Equals reports whether two references point at the same location
func (r Ref) Equals(other Ref) bool {
	return r.Kind == other.Kind && r.ID == other.ID
}

// String returns kind:id, useful for logging
func (r Ref) String() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}

// Location represents a stock-holding location aggregate (branch, workshop
// or factory). Each location owns exactly one inventory: the set of stock
// items whose LocationID points at it.
type Location struct {
	shared.BaseAggregateRoot
	Kind    Kind   `gorm:"type:varchar(20);not null;index"`
	Name    string `gorm:"type:varchar(200);not null"`
	Address string `gorm:"type:varchar(500)"`
	Phone   string `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (Location) TableName() string {
	return "locations"
}

// NewLocation creates a new stock-holding location
func NewLocation(kind Kind, name string) (*Location, error) {
	if !kind.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("unknown location kind: %q", kind))
	}
	if name == "" {
		return nil, shared.NewValidationError("Location name cannot be empty")
	}

	return &Location{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Kind:              kind,
		Name:              name,
	}, nil
}

// Ref returns the polymorphic reference to this location
func (l *Location) Ref() Ref {
	return Ref{Kind: l.Kind, ID: l.ID}
}

// UpdateContact updates the address and phone of the location
func (l *Location) UpdateContact(address, phone string) {
	l.Address = address
	l.Phone = phone
	l.UpdatedAt = time.Now()
}
