package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	orderapp "github.com/atelier/backend/internal/application/order"
	"github.com/atelier/backend/internal/interfaces/http/middleware"
)

// OrderHandler handles order API endpoints
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.Service
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.Service) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// Create creates a new order with its items and optional initial payment
func (h *OrderHandler) Create(c *gin.Context) {
	actor, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	var req orderapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// GetByID retrieves an order by its ID
func (h *OrderHandler) GetByID(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// List retrieves a paginated list of orders with optional filtering
func (h *OrderHandler) List(c *gin.Context) {
	var filter orderapp.OrderListFilter
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

	orders, total, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// Deliver marks an order as delivered once payment and custody gates pass
func (h *OrderHandler) Deliver(c *gin.Context) {
	h.transition(c, h.orderService.Deliver)
}

// Finish completes a delivered order
func (h *OrderHandler) Finish(c *gin.Context) {
	h.transition(c, h.orderService.Finish)
}

// Cancel cancels an order that has not been delivered
func (h *OrderHandler) Cancel(c *gin.Context) {
	h.transition(c, h.orderService.Cancel)
}

// Delete removes a cancelled order
func (h *OrderHandler) Delete(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), orderID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// transition applies a status transition identified by the :id path parameter
func (h *OrderHandler) transition(c *gin.Context, apply func(ctx context.Context, orderID uuid.UUID) (*orderapp.OrderResponse, error)) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := apply(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// RegisterRoutes registers order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	orders.POST("", h.Create)
	orders.GET("", h.List)
	orders.GET("/:id", h.GetByID)
	orders.POST("/:id/deliver", h.Deliver)
	orders.POST("/:id/finish", h.Finish)
	orders.POST("/:id/cancel", h.Cancel)
	orders.DELETE("/:id", h.Delete)
}
