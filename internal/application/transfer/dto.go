package transfer

import (
	"time"

	"github.com/atelier/backend/internal/domain/transfer"
	"github.com/google/uuid"
)

// CreateTransferRequest represents a request to open a stock transfer
type CreateTransferRequest struct {
	SourceKind      string      `json:"source_kind" binding:"required"`
	SourceID        uuid.UUID   `json:"source_id" binding:"required"`
	DestinationKind string      `json:"destination_kind" binding:"required"`
	DestinationID   uuid.UUID   `json:"destination_id" binding:"required"`
	TransferDate    *time.Time  `json:"transfer_date"`
	Notes           string      `json:"notes" binding:"max=1000"`
	StockItemIDs    []uuid.UUID `json:"stock_item_ids" binding:"required,min=1"`
}

// ResolveItemsRequest addresses a subset of transfer items for approval or
// rejection
type ResolveItemsRequest struct {
	ItemIDs []uuid.UUID `json:"item_ids" binding:"required,min=1"`
}

// TransferListFilter represents filter options for the transfer list
type TransferListFilter struct {
	LocationID *uuid.UUID `form:"location_id"`
	Status     *string    `form:"status"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// TransferItemResponse represents a transfer line in API responses
type TransferItemResponse struct {
	ID          uuid.UUID  `json:"id"`
	StockItemID uuid.UUID  `json:"stock_item_id"`
	Status      string     `json:"status"`
	ResolvedBy  *uuid.UUID `json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// TransferActionResponse represents an audit entry in API responses
type TransferActionResponse struct {
	ID        uuid.UUID `json:"id"`
	Actor     uuid.UUID `json:"actor"`
	Kind      string    `json:"kind"`
	ItemCount int       `json:"item_count"`
	CreatedAt time.Time `json:"created_at"`
}

// TransferResponse represents a transfer in API responses
type TransferResponse struct {
	ID              uuid.UUID                `json:"id"`
	SourceKind      string                   `json:"source_kind"`
	SourceID        uuid.UUID                `json:"source_id"`
	DestinationKind string                   `json:"destination_kind"`
	DestinationID   uuid.UUID                `json:"destination_id"`
	TransferDate    time.Time                `json:"transfer_date"`
	Notes           string                   `json:"notes,omitempty"`
	Status          string                   `json:"status"`
	Items           []TransferItemResponse   `json:"items"`
	Actions         []TransferActionResponse `json:"actions"`
	Version         int                      `json:"version"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// ToTransferResponse converts a domain transfer to a response DTO
func ToTransferResponse(t *transfer.Transfer) TransferResponse {
	items := make([]TransferItemResponse, 0, len(t.Items))
	for _, item := range t.Items {
		items = append(items, TransferItemResponse{
			ID:          item.ID,
			StockItemID: item.StockItemID,
			Status:      item.Status.String(),
			ResolvedBy:  item.ResolvedBy,
			ResolvedAt:  item.ResolvedAt,
		})
	}
	actions := make([]TransferActionResponse, 0, len(t.Actions))
	for _, action := range t.Actions {
		actions = append(actions, TransferActionResponse{
			ID:        action.ID,
			Actor:     action.Actor,
			Kind:      string(action.Kind),
			ItemCount: action.ItemCount,
			CreatedAt: action.CreatedAt,
		})
	}
	return TransferResponse{
		ID:              t.ID,
		SourceKind:      t.Source.Kind.String(),
		SourceID:        t.Source.ID,
		DestinationKind: t.Destination.Kind.String(),
		DestinationID:   t.Destination.ID,
		TransferDate:    t.TransferDate,
		Notes:           t.Notes,
		Status:          t.Status.String(),
		Items:           items,
		Actions:         actions,
		Version:         t.Version,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}
