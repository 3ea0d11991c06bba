package location

import (
	"time"

	"github.com/atelier/backend/internal/domain/location"
	"github.com/google/uuid"
)

// CreateLocationRequest represents a request to register a stock-holding
// location
type CreateLocationRequest struct {
	Kind    string `json:"kind" binding:"required,oneof=BRANCH WORKSHOP FACTORY branch workshop factory"`
	Name    string `json:"name" binding:"required,min=1,max=200"`
	Address string `json:"address" binding:"max=500"`
	Phone   string `json:"phone" binding:"max=30"`
}

// UpdateLocationRequest represents a request to update location contact data
type UpdateLocationRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=1,max=200"`
	Address *string `json:"address" binding:"omitempty,max=500"`
	Phone   *string `json:"phone" binding:"omitempty,max=30"`
}

// LocationListFilter represents filter options for the location list
type LocationListFilter struct {
	Kind     *string `form:"kind"`
	Search   string  `form:"search"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string  `form:"order_by"`
	OrderDir string  `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// LocationResponse represents a location in API responses
type LocationResponse struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateStockItemRequest represents a request to register a stock item in a
// location's inventory
type CreateStockItemRequest struct {
	SKU        string    `json:"sku" binding:"required,min=1,max=100"`
	Name       string    `json:"name" binding:"required,min=1,max=200"`
	Category   string    `json:"category" binding:"max=100"`
	LocationID uuid.UUID `json:"location_id" binding:"required"`
}

// StockItemListFilter represents filter options for the stock item list
type StockItemListFilter struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// StockItemResponse represents a stock item in API responses
type StockItemResponse struct {
	ID         uuid.UUID `json:"id"`
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	Category   string    `json:"category,omitempty"`
	LocationID uuid.UUID `json:"location_id"`
	Reserved   bool      `json:"reserved"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToLocationResponse converts a domain location to a response DTO
func ToLocationResponse(loc *location.Location) LocationResponse {
	return LocationResponse{
		ID:        loc.ID,
		Kind:      loc.Kind.String(),
		Name:      loc.Name,
		Address:   loc.Address,
		Phone:     loc.Phone,
		Version:   loc.Version,
		CreatedAt: loc.CreatedAt,
		UpdatedAt: loc.UpdatedAt,
	}
}

// ToStockItemResponse converts a domain stock item to a response DTO
func ToStockItemResponse(item *location.StockItem) StockItemResponse {
	return StockItemResponse{
		ID:         item.ID,
		SKU:        item.SKU,
		Name:       item.Name,
		Category:   item.Category,
		LocationID: item.LocationID,
		Reserved:   item.Reserved,
		CreatedAt:  item.CreatedAt,
		UpdatedAt:  item.UpdatedAt,
	}
}
