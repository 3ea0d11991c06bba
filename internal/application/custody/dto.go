package custody

import (
	"time"

	"github.com/atelier/backend/internal/domain/custody"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PhotoUpload carries raw photo bytes received from the transport layer
type PhotoUpload struct {
	Data        []byte `json:"data" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// CreateCustodyRequest represents a request to open custody against an order
type CreateCustodyRequest struct {
	OrderID     uuid.UUID        `json:"order_id" binding:"required"`
	Type        string           `json:"type" binding:"required,oneof=MONEY PHYSICAL_ITEM DOCUMENT"`
	Description string           `json:"description" binding:"required,min=1,max=500"`
	Value       *decimal.Decimal `json:"value"`
	Photos      []PhotoUpload    `json:"photos"`
}

// ReturnCustodyRequest represents a request to close a custody record
type ReturnCustodyRequest struct {
	Action                string        `json:"action" binding:"required,oneof=RETURNED_TO_USER FORFEIT"`
	Reason                string        `json:"reason" binding:"max=500"`
	AcknowledgementPhotos []PhotoUpload `json:"acknowledgement_photos" binding:"required,min=1"`
}

// CustodyListFilter represents filter options for the custody list
type CustodyListFilter struct {
	OrderID  *uuid.UUID `form:"order_id"`
	Status   *string    `form:"status"`
	Type     *string    `form:"type"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PhotoResponse represents a custody photo in API responses
type PhotoResponse struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	ObjectKey string    `json:"object_key"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CustodyResponse represents a custody record in API responses
type CustodyResponse struct {
	ID           uuid.UUID        `json:"id"`
	OrderID      uuid.UUID        `json:"order_id"`
	Type         string           `json:"type"`
	Description  string           `json:"description"`
	Value        *decimal.Decimal `json:"value,omitempty"`
	Status       string           `json:"status"`
	Photos       []PhotoResponse  `json:"photos"`
	ReturnAction *string          `json:"return_action,omitempty"`
	ReturnReason string           `json:"return_reason,omitempty"`
	ReturnedBy   *uuid.UUID       `json:"returned_by,omitempty"`
	ReturnedAt   *time.Time       `json:"returned_at,omitempty"`
	Version      int              `json:"version"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// ToCustodyResponse converts a domain custody record to a response DTO
func ToCustodyResponse(c *custody.Custody) CustodyResponse {
	photos := make([]PhotoResponse, 0, len(c.Photos))
	for _, p := range c.Photos {
		photos = append(photos, PhotoResponse{
			ID:        p.ID,
			Kind:      string(p.Kind),
			ObjectKey: p.ObjectKey,
			CreatedAt: p.CreatedAt,
		})
	}
	resp := CustodyResponse{
		ID:           c.ID,
		OrderID:      c.OrderID,
		Type:         c.Type.String(),
		Description:  c.Description,
		Value:        c.Value,
		Status:       c.Status.String(),
		Photos:       photos,
		ReturnReason: c.ReturnReason,
		ReturnedBy:   c.ReturnedBy,
		ReturnedAt:   c.ReturnedAt,
		Version:      c.Version,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if c.ReturnAction != nil {
		action := c.ReturnAction.String()
		resp.ReturnAction = &action
	}
	return resp
}
