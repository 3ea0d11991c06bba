package custody

import (
	"context"
	"fmt"
	"time"

	"github.com/atelier/backend/internal/domain/custody"
	"github.com/atelier/backend/internal/domain/order"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ObjectStorageService abstracts the object store holding custody photos.
// The domain keeps storage keys only; bytes never touch the database.
type ObjectStorageService interface {
	// Upload stores raw bytes under the given key
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error

	// GenerateDownloadURL produces a presigned read URL for a stored object
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

// downloadURLTTL is how long presigned photo links stay valid in responses
const downloadURLTTL = 15 * time.Minute

// Service handles custody lifecycle operations
type Service struct {
	custodyRepo custody.Repository
	orderRepo   order.Repository
	storage     ObjectStorageService
}

// NewService creates a new custody Service
func NewService(custodyRepo custody.Repository, orderRepo order.Repository, storage ObjectStorageService) *Service {
	return &Service{
		custodyRepo: custodyRepo,
		orderRepo:   orderRepo,
		storage:     storage,
	}
}

// Create opens a custody record against an order. Orders past a terminal
// state no longer accept custody. Photos are uploaded before the record is
// written; an upload failure aborts the creation.
func (s *Service) Create(ctx context.Context, actor uuid.UUID, req CreateCustodyRequest) (*CustodyResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if !o.AcceptsCustody() {
		return nil, shared.NewInvalidTransitionError(fmt.Sprintf("Cannot open custody against a %s order", o.Status))
	}

	photoKeys, err := s.uploadPhotos(ctx, req.OrderID, req.Photos)
	if err != nil {
		return nil, err
	}

	c, err := custody.NewCustody(req.OrderID, custody.Type(req.Type), req.Description, req.Value, photoKeys)
	if err != nil {
		return nil, err
	}
	c.SetCreatedBy(actor)

	if err := s.custodyRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	response := s.toResponse(ctx, c)
	return &response, nil
}

// Return closes a custody record, either handing the collateral back or
// forfeiting it. The acknowledgement photos are uploaded first.
func (s *Service) Return(ctx context.Context, actor uuid.UUID, custodyID uuid.UUID, req ReturnCustodyRequest) (*CustodyResponse, error) {
	c, err := s.custodyRepo.FindByID(ctx, custodyID)
	if err != nil {
		return nil, err
	}

	ackKeys, err := s.uploadPhotos(ctx, c.OrderID, req.AcknowledgementPhotos)
	if err != nil {
		return nil, err
	}

	if err := c.Return(actor, custody.ReturnAction(req.Action), ackKeys, req.Reason); err != nil {
		return nil, err
	}

	if err := s.custodyRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}

	response := s.toResponse(ctx, c)
	return &response, nil
}

// GetByID retrieves a custody record by ID
func (s *Service) GetByID(ctx context.Context, custodyID uuid.UUID) (*CustodyResponse, error) {
	c, err := s.custodyRepo.FindByID(ctx, custodyID)
	if err != nil {
		return nil, err
	}
	response := s.toResponse(ctx, c)
	return &response, nil
}

// ListByOrder retrieves all custody records held against an order
func (s *Service) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]CustodyResponse, error) {
	records, err := s.custodyRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	responses := make([]CustodyResponse, 0, len(records))
	for i := range records {
		responses = append(responses, s.toResponse(ctx, &records[i]))
	}
	return responses, nil
}

// List retrieves custody records with filtering and pagination
func (s *Service) List(ctx context.Context, filter CustodyListFilter) ([]CustodyResponse, int64, error) {
	domainFilter := buildFilter(filter)

	records, err := s.custodyRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.custodyRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CustodyResponse, 0, len(records))
	for i := range records {
		responses = append(responses, s.toResponse(ctx, &records[i]))
	}
	return responses, total, nil
}

func buildFilter(filter CustodyListFilter) shared.Filter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if filter.OrderID != nil {
		domainFilter.Filters["order_id"] = *filter.OrderID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}
	if filter.Type != nil {
		domainFilter.Filters["type"] = *filter.Type
	}
	return domainFilter
}

// uploadPhotos stores each photo and returns the generated object keys
func (s *Service) uploadPhotos(ctx context.Context, orderID uuid.UUID, photos []PhotoUpload) ([]string, error) {
	keys := make([]string, 0, len(photos))
	for _, photo := range photos {
		if len(photo.Data) == 0 {
			return nil, shared.NewValidationError("Photo payload cannot be empty")
		}
		key := fmt.Sprintf("custody/%s/%s%s", orderID, uuid.New(), extensionFor(photo.ContentType))
		if err := s.storage.Upload(ctx, key, photo.Data, photo.ContentType); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

// toResponse converts a record and decorates each photo with a presigned
// download URL. URL generation failures degrade to key-only responses.
func (s *Service) toResponse(ctx context.Context, c *custody.Custody) CustodyResponse {
	response := ToCustodyResponse(c)
	for i := range response.Photos {
		url, _, err := s.storage.GenerateDownloadURL(ctx, response.Photos[i].ObjectKey, downloadURLTTL)
		if err == nil {
			response.Photos[i].URL = url
		}
	}
	return response
}
