package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	locationapp "github.com/atelier/backend/internal/application/location"
	"github.com/atelier/backend/internal/interfaces/http/middleware"
)

// LocationHandler handles location and stock item API endpoints
type LocationHandler struct {
	BaseHandler
	locationService *locationapp.Service
}

// NewLocationHandler creates a new LocationHandler
func NewLocationHandler(locationService *locationapp.Service) *LocationHandler {
	return &LocationHandler{
		locationService: locationService,
	}
}

// Create creates a new branch, workshop or factory
func (h *LocationHandler) Create(c *gin.Context) {
	actor, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	var req locationapp.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	location, err := h.locationService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, location)
}

// GetByID retrieves a location by its ID
func (h *LocationHandler) GetByID(c *gin.Context) {
	locationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid location ID format")
		return
	}

	location, err := h.locationService.GetByID(c.Request.Context(), locationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, location)
}

// Resolve resolves a (kind, id) reference to a location, verifying that the
// location actually has the named kind
func (h *LocationHandler) Resolve(c *gin.Context) {
	locationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid location ID format")
		return
	}

	location, err := h.locationService.Resolve(c.Request.Context(), c.Param("kind"), locationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, location)
}

// List retrieves a paginated list of locations with optional filtering
func (h *LocationHandler) List(c *gin.Context) {
	var filter locationapp.LocationListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	locations, total, err := h.locationService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, locations, total, filter.Page, filter.PageSize)
}

// Update updates an existing location's details
func (h *LocationHandler) Update(c *gin.Context) {
	locationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid location ID format")
		return
	}

	var req locationapp.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	location, err := h.locationService.Update(c.Request.Context(), locationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, location)
}

// CreateStockItem registers a new stock item at a location
func (h *LocationHandler) CreateStockItem(c *gin.Context) {
	actor, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	var req locationapp.CreateStockItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	item, err := h.locationService.CreateStockItem(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, item)
}

// GetStockItem retrieves a stock item by its ID
func (h *LocationHandler) GetStockItem(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid stock item ID format")
		return
	}

	item, err := h.locationService.GetStockItem(c.Request.Context(), itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// ListInventory retrieves the stock items currently held at a location
func (h *LocationHandler) ListInventory(c *gin.Context) {
	locationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid location ID format")
		return
	}

	var filter locationapp.StockItemListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	items, total, err := h.locationService.ListInventory(c.Request.Context(), locationID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// RegisterRoutes registers location and stock item routes
func (h *LocationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	locations := rg.Group("/locations")
	locations.POST("", h.Create)
	locations.GET("", h.List)
	locations.GET("/:id", h.GetByID)
	locations.PUT("/:id", h.Update)
	locations.GET("/:id/inventory", h.ListInventory)
	locations.GET("/resolve/:kind/:id", h.Resolve)

	items := rg.Group("/stock-items")
	items.POST("", h.CreateStockItem)
	items.GET("/:id", h.GetStockItem)
}
