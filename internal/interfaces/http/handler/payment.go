package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	paymentapp "github.com/atelier/backend/internal/application/payment"
	"github.com/atelier/backend/internal/interfaces/http/middleware"
)

// PaymentHandler handles payment API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *paymentapp.Service
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *paymentapp.Service) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// Create records a payment against an order and returns the updated balance
func (h *PaymentHandler) Create(c *gin.Context) {
	actor, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	var req paymentapp.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	balance, err := h.paymentService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, balance)
}

// MarkPaid confirms a pending payment
func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	balance, err := h.paymentService.MarkPaid(c.Request.Context(), paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, balance)
}

// Cancel voids a payment and returns the recomputed order balance
func (h *PaymentHandler) Cancel(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	balance, err := h.paymentService.Cancel(c.Request.Context(), paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, balance)
}

// GetByID retrieves a payment by its ID
func (h *PaymentHandler) GetByID(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	payment, err := h.paymentService.GetByID(c.Request.Context(), paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payment)
}

// ListByOrder retrieves the full payment ledger of an order
func (h *PaymentHandler) ListByOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	payments, err := h.paymentService.ListByOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payments)
}

// List retrieves a paginated list of payments with optional filtering
func (h *PaymentHandler) List(c *gin.Context) {
	var filter paymentapp.PaymentListFilter
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

	payments, total, err := h.paymentService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, payments, total, filter.Page, filter.PageSize)
}

// RegisterRoutes registers payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	payments.POST("", h.Create)
	payments.GET("", h.List)
	payments.GET("/:id", h.GetByID)
	payments.POST("/:id/pay", h.MarkPaid)
	payments.POST("/:id/cancel", h.Cancel)
	payments.GET("/order/:orderId", h.ListByOrder)
}
