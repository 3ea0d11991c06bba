package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	transferapp "github.com/atelier/backend/internal/application/transfer"
	"github.com/atelier/backend/internal/interfaces/http/middleware"
)

// TransferHandler handles stock transfer API endpoints
type TransferHandler struct {
	BaseHandler
	transferService *transferapp.Service
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(transferService *transferapp.Service) *TransferHandler {
	return &TransferHandler{
		transferService: transferService,
	}
}

// Create opens a transfer moving stock items between two locations
func (h *TransferHandler) Create(c *gin.Context) {
	actor, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	var req transferapp.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	transfer, err := h.transferService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, transfer)
}

// GetByID retrieves a transfer by its ID
func (h *TransferHandler) GetByID(c *gin.Context) {
	transferID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID format")
		return
	}

	transfer, err := h.transferService.GetByID(c.Request.Context(), transferID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, transfer)
}

// List retrieves a paginated list of transfers with optional filtering
func (h *TransferHandler) List(c *gin.Context) {
	var filter transferapp.TransferListFilter
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

	transfers, total, err := h.transferService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, transfers, total, filter.Page, filter.PageSize)
}

// ApproveItems approves a subset of transfer items, moving the stock when
// the last item is resolved
func (h *TransferHandler) ApproveItems(c *gin.Context) {
	h.resolveItems(c, h.transferService.ApproveItems)
}

// RejectItems rejects a subset of transfer items, releasing their reservations
func (h *TransferHandler) RejectItems(c *gin.Context) {
	h.resolveItems(c, h.transferService.RejectItems)
}

// Approve approves every pending item on the transfer
func (h *TransferHandler) Approve(c *gin.Context) {
	h.resolveAll(c, h.transferService.Approve)
}

// Reject rejects every pending item on the transfer
func (h *TransferHandler) Reject(c *gin.Context) {
	h.resolveAll(c, h.transferService.Reject)
}

func (h *TransferHandler) resolveItems(c *gin.Context, apply func(ctx context.Context, actor, transferID uuid.UUID, req transferapp.ResolveItemsRequest) (*transferapp.TransferResponse, error)) {
	actor, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	transferID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID format")
		return
	}

	var req transferapp.ResolveItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	transfer, err := apply(c.Request.Context(), actor, transferID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, transfer)
}

func (h *TransferHandler) resolveAll(c *gin.Context, apply func(ctx context.Context, actor, transferID uuid.UUID) (*transferapp.TransferResponse, error)) {
	actor, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	transferID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID format")
		return
	}

	transfer, err := apply(c.Request.Context(), actor, transferID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, transfer)
}

// RegisterRoutes registers transfer routes
func (h *TransferHandler) RegisterRoutes(rg *gin.RouterGroup) {
	transfers := rg.Group("/transfers")
	transfers.POST("", h.Create)
	transfers.GET("", h.List)
	transfers.GET("/:id", h.GetByID)
	transfers.POST("/:id/items/approve", h.ApproveItems)
	transfers.POST("/:id/items/reject", h.RejectItems)
	transfers.POST("/:id/approve", h.Approve)
	transfers.POST("/:id/reject", h.Reject)
}
