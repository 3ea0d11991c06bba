package transfer

import (
	"fmt"
	"time"

	"github.com/atelier/backend/internal/domain/location"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Status represents the aggregate status of a transfer, folded from the
// statuses of its items after every mutation.
type Status string

const (
	StatusPending           Status = "PENDING"
	StatusApproved          Status = "APPROVED"
	StatusRejected          Status = "REJECTED"
	StatusPartiallyApproved Status = "PARTIALLY_APPROVED"
	// StatusPartiallyPending covers the mixed rejected/pending case before
	// any item has been approved.
	StatusPartiallyPending Status = "PARTIALLY_PENDING"
)

// IsValid checks if the status is a valid transfer Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusPartiallyApproved, StatusPartiallyPending:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsResolved reports whether no item is still awaiting a decision
func (s Status) IsResolved() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusPartiallyApproved
}

// ItemStatus represents the status of a single transfer line
type ItemStatus string

const (
	ItemPending  ItemStatus = "PENDING"
	ItemApproved ItemStatus = "APPROVED"
	ItemRejected ItemStatus = "REJECTED"
)

// String returns the string representation of ItemStatus
func (s ItemStatus) String() string {
	return string(s)
}

// ActionKind classifies an entry in the transfer audit log
type ActionKind string

const (
	ActionCreated  ActionKind = "CREATED"
	ActionApproved ActionKind = "APPROVED"
	ActionRejected ActionKind = "REJECTED"
)

// Item is a single stock item requested for movement. Each line is approved
// or rejected independently.
type Item struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TransferID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	StockItemID uuid.UUID  `gorm:"type:uuid;not null"`
	Status      ItemStatus `gorm:"type:varchar(20);not null"`
	ResolvedBy  *uuid.UUID `gorm:"type:uuid"`
	ResolvedAt  *time.Time
	CreatedAt   time.Time
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "transfer_items"
}

// IsPending reports whether the line still awaits a decision
func (i Item) IsPending() bool {
	return i.Status == ItemPending
}

// Action is an append-only audit entry recording who did what to a transfer
type Action struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TransferID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Actor      uuid.UUID  `gorm:"type:uuid;not null"`
	Kind       ActionKind `gorm:"type:varchar(20);not null"`
	ItemCount  int        `gorm:"not null"`
	CreatedAt  time.Time
}

// TableName returns the table name for GORM
func (Action) TableName() string {
	return "transfer_actions"
}

// Transfer represents a batch request to move stock items between two
// locations. Items are resolved individually; approval moves the item's
// inventory membership to the destination, rejection leaves it in place.
type Transfer struct {
	shared.BaseAggregateRoot
	Source       location.Ref `gorm:"embedded;embeddedPrefix:source_"`
	Destination  location.Ref `gorm:"embedded;embeddedPrefix:destination_"`
	TransferDate time.Time    `gorm:"not null"`
	Notes        string       `gorm:"type:varchar(1000)"`
	Status       Status       `gorm:"type:varchar(30);not null;index"`
	Items        []Item       `gorm:"foreignKey:TransferID;references:ID"`
	Actions      []Action     `gorm:"foreignKey:TransferID;references:ID"`
}

// TableName returns the table name for GORM
func (Transfer) TableName() string {
	return "transfers"
}

// NewTransfer creates a transfer request with all items pending.
// Source-inventory membership of the stock items is the caller's concern;
// the aggregate only guards against degenerate requests.
func NewTransfer(actor uuid.UUID, source, destination location.Ref, transferDate time.Time, notes string, stockItemIDs []uuid.UUID) (*Transfer, error) {
	if source.Equals(destination) {
		return nil, shared.NewValidationError("transfer source and destination must differ")
	}
	if len(stockItemIDs) == 0 {
		return nil, shared.NewValidationError("transfer requires at least one stock item")
	}
	if transferDate.IsZero() {
		transferDate = time.Now()
	}

	seen := make(map[uuid.UUID]struct{}, len(stockItemIDs))
	t := &Transfer{
		BaseAggregateRoot: shared.NewBaseAggregateRootWithCreator(actor),
		Source:            source,
		Destination:       destination,
		TransferDate:      transferDate,
		Notes:             notes,
		Status:            StatusPending,
		Items:             make([]Item, 0, len(stockItemIDs)),
	}
	for _, id := range stockItemIDs {
		if id == uuid.Nil {
			return nil, shared.NewValidationError("stock item ID cannot be empty")
		}
		if _, dup := seen[id]; dup {
			return nil, shared.NewValidationError(fmt.Sprintf("duplicate stock item in transfer: %s", id))
		}
		seen[id] = struct{}{}
		t.Items = append(t.Items, Item{
			ID:          uuid.New(),
			TransferID:  t.ID,
			StockItemID: id,
			Status:      ItemPending,
			CreatedAt:   time.Now(),
		})
	}

	t.logAction(actor, ActionCreated, len(t.Items))
	t.AddDomainEvent(NewTransferCreatedEvent(t))

	return t, nil
}

// ApproveItems approves the addressed pending items and returns the stock
// item IDs whose inventory membership must move to the destination. Items
// already resolved are skipped; if nothing addressed is still pending the
// call fails.
func (t *Transfer) ApproveItems(actor uuid.UUID, itemIDs []uuid.UUID) ([]uuid.UUID, error) {
	return t.resolveItems(actor, itemIDs, ItemApproved)
}

// RejectItems rejects the addressed pending items. Membership of the stock
// items is left untouched.
func (t *Transfer) RejectItems(actor uuid.UUID, itemIDs []uuid.UUID) error {
	_, err := t.resolveItems(actor, itemIDs, ItemRejected)
	return err
}

// Approve resolves every currently-pending item as approved and returns the
// stock item IDs to move. Fails when no item remains pending.
func (t *Transfer) Approve(actor uuid.UUID) ([]uuid.UUID, error) {
	pending := t.PendingItemIDs()
	if len(pending) == 0 {
		return nil, shared.NewInvalidTransitionError(fmt.Sprintf("transfer is already %s", t.Status))
	}
	return t.ApproveItems(actor, pending)
}

// Reject resolves every currently-pending item as rejected. Fails when no
// item remains pending.
func (t *Transfer) Reject(actor uuid.UUID) error {
	pending := t.PendingItemIDs()
	if len(pending) == 0 {
		return shared.NewInvalidTransitionError(fmt.Sprintf("transfer is already %s", t.Status))
	}
	return t.RejectItems(actor, pending)
}

func (t *Transfer) resolveItems(actor uuid.UUID, itemIDs []uuid.UUID, target ItemStatus) ([]uuid.UUID, error) {
	if len(itemIDs) == 0 {
		return nil, shared.NewValidationError("no transfer items addressed")
	}

	addressed := make(map[uuid.UUID]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		addressed[id] = struct{}{}
	}
	known := make(map[uuid.UUID]struct{}, len(t.Items))
	for _, item := range t.Items {
		known[item.ID] = struct{}{}
	}
	for id := range addressed {
		if _, ok := known[id]; !ok {
			return nil, shared.NewValidationError(fmt.Sprintf("unknown transfer item: %s", id))
		}
	}

	now := time.Now()
	moved := make([]uuid.UUID, 0, len(itemIDs))
	resolvedCount := 0
	for i := range t.Items {
		item := &t.Items[i]
		if _, ok := addressed[item.ID]; !ok {
			continue
		}
		if !item.IsPending() {
			continue
		}
		item.Status = target
		item.ResolvedBy = &actor
		item.ResolvedAt = &now
		resolvedCount++
		if target == ItemApproved {
			moved = append(moved, item.StockItemID)
		}
	}
	if resolvedCount == 0 {
		return nil, shared.NewValidationError("none of the addressed items was pending")
	}

	kind := ActionApproved
	if target == ItemRejected {
		kind = ActionRejected
	}
	t.logAction(actor, kind, resolvedCount)
	t.foldStatus()
	t.UpdatedAt = now
	t.AddDomainEvent(NewTransferResolvedEvent(t, kind, moved))

	return moved, nil
}

// foldStatus recomputes the aggregate status from the item statuses
func (t *Transfer) foldStatus() {
	var pending, approved, rejected int
	for _, item := range t.Items {
		switch item.Status {
		case ItemPending:
			pending++
		case ItemApproved:
			approved++
		case ItemRejected:
			rejected++
		}
	}

	switch {
	case pending == len(t.Items):
		t.Status = StatusPending
	case approved == len(t.Items):
		t.Status = StatusApproved
	case rejected == len(t.Items):
		t.Status = StatusRejected
	case approved > 0:
		t.Status = StatusPartiallyApproved
	default:
		t.Status = StatusPartiallyPending
	}
}

func (t *Transfer) logAction(actor uuid.UUID, kind ActionKind, itemCount int) {
	t.Actions = append(t.Actions, Action{
		ID:         uuid.New(),
		TransferID: t.ID,
		Actor:      actor,
		Kind:       kind,
		ItemCount:  itemCount,
		CreatedAt:  time.Now(),
	})
}

// PendingItemIDs returns the IDs of items still awaiting a decision
func (t *Transfer) PendingItemIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0)
	for _, item := range t.Items {
		if item.IsPending() {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

// StockItemIDs returns the stock items referenced by all lines
func (t *Transfer) StockItemIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(t.Items))
	for _, item := range t.Items {
		ids = append(ids, item.StockItemID)
	}
	return ids
}
