package handler

import (
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	custodyapp "github.com/atelier/backend/internal/application/custody"
	"github.com/atelier/backend/internal/interfaces/http/middleware"
)

// CustodyHandler handles custody API endpoints. Create and Return accept
// multipart forms because custody evidence is photographic.
type CustodyHandler struct {
	BaseHandler
	custodyService *custodyapp.Service
}

// NewCustodyHandler creates a new CustodyHandler
func NewCustodyHandler(custodyService *custodyapp.Service) *CustodyHandler {
	return &CustodyHandler{
		custodyService: custodyService,
	}
}

// createCustodyForm carries the non-file fields of the custody creation form
type createCustodyForm struct {
	OrderID     string `form:"order_id" binding:"required,uuid"`
	Type        string `form:"type" binding:"required,oneof=MONEY PHYSICAL_ITEM DOCUMENT"`
	Description string `form:"description" binding:"required,min=1,max=500"`
	Value       string `form:"value"`
}

// returnCustodyForm carries the non-file fields of the custody return form
type returnCustodyForm struct {
	Action string `form:"action" binding:"required,oneof=RETURNED_TO_USER FORFEIT"`
	Reason string `form:"reason" binding:"max=500"`
}

// Create opens a custody record against an order, with optional intake photos
func (h *CustodyHandler) Create(c *gin.Context) {
	actor, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	var form createCustodyForm
	if err := c.ShouldBind(&form); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	orderID, err := uuid.Parse(form.OrderID)
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	req := custodyapp.CreateCustodyRequest{
		OrderID:     orderID,
		Type:        form.Type,
		Description: form.Description,
	}

	if form.Value != "" {
		value, err := decimal.NewFromString(form.Value)
		if err != nil {
			h.BadRequest(c, "Invalid custody value")
			return
		}
		req.Value = &value
	}

	photos, err := h.readPhotos(c, "photos")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Photos = photos

	record, err := h.custodyService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, record)
}

// Return closes a custody record. At least one acknowledgement photo is
// required as proof of handover or forfeiture.
func (h *CustodyHandler) Return(c *gin.Context) {
	actor, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	custodyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid custody ID format")
		return
	}

	var form returnCustodyForm
	if err := c.ShouldBind(&form); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	photos, err := h.readPhotos(c, "photos")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	req := custodyapp.ReturnCustodyRequest{
		Action:                form.Action,
		Reason:                form.Reason,
		AcknowledgementPhotos: photos,
	}

	record, err := h.custodyService.Return(c.Request.Context(), actor, custodyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// GetByID retrieves a custody record by its ID
func (h *CustodyHandler) GetByID(c *gin.Context) {
	custodyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid custody ID format")
		return
	}

	record, err := h.custodyService.GetByID(c.Request.Context(), custodyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// ListByOrder retrieves all custody records attached to an order
func (h *CustodyHandler) ListByOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	records, err := h.custodyService.ListByOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, records)
}

// List retrieves a paginated list of custody records with optional filtering
func (h *CustodyHandler) List(c *gin.Context) {
	var filter custodyapp.CustodyListFilter
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

	records, total, err := h.custodyService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, records, total, filter.Page, filter.PageSize)
}

// readPhotos reads all uploaded files under the given multipart field into
// photo uploads. Returns an empty slice when no files were sent.
func (h *CustodyHandler) readPhotos(c *gin.Context, field string) ([]custodyapp.PhotoUpload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// No multipart body at all; treat as no photos
		return nil, nil
	}

	files := form.File[field]
	photos := make([]custodyapp.PhotoUpload, 0, len(files))
	for _, header := range files {
		photo, err := readPhotoUpload(header)
		if err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}
	return photos, nil
}

func readPhotoUpload(header *multipart.FileHeader) (custodyapp.PhotoUpload, error) {
	file, err := header.Open()
	if err != nil {
		return custodyapp.PhotoUpload{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return custodyapp.PhotoUpload{}, err
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return custodyapp.PhotoUpload{
		Data:        data,
		ContentType: contentType,
	}, nil
}

// RegisterRoutes registers custody routes
func (h *CustodyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	custodies := rg.Group("/custodies")
	custodies.POST("", h.Create)
	custodies.GET("", h.List)
	custodies.GET("/:id", h.GetByID)
	custodies.POST("/:id/return", h.Return)
	custodies.GET("/order/:orderId", h.ListByOrder)
}
