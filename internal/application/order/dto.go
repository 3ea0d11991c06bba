package order

import (
	"time"

	"github.com/atelier/backend/internal/domain/order"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Order DTOs ====================

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	ClientID      uuid.UUID              `json:"client_id" binding:"required"`
	ClientName    string                 `json:"client_name" binding:"required,min=1,max=200"`
	SourceKind    string                 `json:"source_kind" binding:"required"`
	SourceID      uuid.UUID              `json:"source_id" binding:"required"`
	Items         []CreateOrderItemInput `json:"items" binding:"required,min=1,dive"`
	DiscountType  *string                `json:"discount_type" binding:"omitempty,oneof=PERCENTAGE FIXED"`
	DiscountValue *decimal.Decimal       `json:"discount_value"`
	InitialPaid   decimal.Decimal        `json:"initial_paid"`
	Notes         string                 `json:"notes" binding:"max=500"`
}

// CreateOrderItemInput represents a line item in the create order request
type CreateOrderItemInput struct {
	StockItemID   uuid.UUID        `json:"stock_item_id" binding:"required"`
	Type          string           `json:"type" binding:"required,oneof=BUY RENT TAILORING"`
	UnitPrice     decimal.Decimal  `json:"unit_price" binding:"required"`
	Quantity      int              `json:"quantity" binding:"required,min=1"`
	DiscountType  *string          `json:"discount_type" binding:"omitempty,oneof=PERCENTAGE FIXED"`
	DiscountValue *decimal.Decimal `json:"discount_value"`
	DeliveryDate  *time.Time       `json:"delivery_date"`
	RentalDays    int              `json:"rental_days"`
}

// OrderListFilter represents filter options for the order list
type OrderListFilter struct {
	Search   string     `form:"search"`
	ClientID *uuid.UUID `form:"client_id"`
	Status   *string    `form:"status"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// OrderItemResponse represents an order line item in API responses
type OrderItemResponse struct {
	ID            uuid.UUID        `json:"id"`
	StockItemID   uuid.UUID        `json:"stock_item_id"`
	Type          string           `json:"type"`
	UnitPrice     decimal.Decimal  `json:"unit_price"`
	Quantity      int              `json:"quantity"`
	DiscountType  *string          `json:"discount_type,omitempty"`
	DiscountValue *decimal.Decimal `json:"discount_value,omitempty"`
	Subtotal      decimal.Decimal  `json:"subtotal"`
	Total         decimal.Decimal  `json:"total"`
	DeliveryDate  *time.Time       `json:"delivery_date,omitempty"`
	RentalDays    int              `json:"rental_days,omitempty"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	ClientID      uuid.UUID           `json:"client_id"`
	ClientName    string              `json:"client_name"`
	SourceKind    string              `json:"source_kind"`
	SourceID      uuid.UUID           `json:"source_id"`
	Items         []OrderItemResponse `json:"items"`
	TotalPrice    decimal.Decimal     `json:"total_price"`
	Paid          decimal.Decimal     `json:"paid"`
	Remaining     decimal.Decimal     `json:"remaining"`
	DiscountType  *string             `json:"discount_type,omitempty"`
	DiscountValue *decimal.Decimal    `json:"discount_value,omitempty"`
	Status        string              `json:"status"`
	Notes         string              `json:"notes,omitempty"`
	DeliveredAt   *time.Time          `json:"delivered_at,omitempty"`
	FinishedAt    *time.Time          `json:"finished_at,omitempty"`
	CancelledAt   *time.Time          `json:"cancelled_at,omitempty"`
	Version       int                 `json:"version"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// ToOrderItemResponse converts a domain order item to a response DTO
func ToOrderItemResponse(item order.OrderItem) OrderItemResponse {
	resp := OrderItemResponse{
		ID:           item.ID,
		StockItemID:  item.StockItemID,
		Type:         item.Type.String(),
		UnitPrice:    item.UnitPrice,
		Quantity:     item.Quantity,
		Subtotal:     item.Subtotal,
		Total:        item.Total,
		DeliveryDate: item.DeliveryDate,
		RentalDays:   item.RentalDays,
	}
	if item.DiscountType != nil {
		dt := string(*item.DiscountType)
		resp.DiscountType = &dt
		dv := item.DiscountValue
		resp.DiscountValue = &dv
	}
	return resp
}

// ToOrderResponse converts a domain order to a response DTO
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, ToOrderItemResponse(item))
	}
	resp := OrderResponse{
		ID:          o.ID,
		ClientID:    o.ClientID,
		ClientName:  o.ClientName,
		SourceKind:  o.Source.Kind.String(),
		SourceID:    o.Source.ID,
		Items:       items,
		TotalPrice:  o.TotalPrice,
		Paid:        o.Paid,
		Remaining:   o.Remaining,
		Status:      o.Status.String(),
		Notes:       o.Notes,
		DeliveredAt: o.DeliveredAt,
		FinishedAt:  o.FinishedAt,
		CancelledAt: o.CancelledAt,
		Version:     o.Version,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	if o.DiscountType != nil {
		dt := string(*o.DiscountType)
		resp.DiscountType = &dt
		dv := o.DiscountValue
		resp.DiscountValue = &dv
	}
	return resp
}

// toDiscount builds an optional discount value object from raw DTO fields
func toDiscount(discountType *string, discountValue *decimal.Decimal) (*valueobject.Discount, error) {
	if discountType == nil {
		return nil, nil
	}
	value := decimal.Zero
	if discountValue != nil {
		value = *discountValue
	}
	d, err := valueobject.NewDiscount(valueobject.DiscountType(*discountType), value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
