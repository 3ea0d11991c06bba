package location

import (
	"context"
	"time"

	"github.com/atelier/backend/internal/domain/location"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ResolverCache caches resolved locations keyed by (kind, id). A nil return
// with a nil error is a cache miss; cache failures are treated as misses by
// the service, never surfaced to callers.
type ResolverCache interface {
	Get(ctx context.Context, ref location.Ref) (*location.Location, error)
	Set(ctx context.Context, loc *location.Location, ttl time.Duration) error
	Invalidate(ctx context.Context, ref location.Ref) error
}

// resolverCacheTTL bounds staleness of cached location lookups
const resolverCacheTTL = 10 * time.Minute

// Service handles location and inventory operations
type Service struct {
	locationRepo location.Repository
	stockRepo    location.StockItemRepository
	cache        ResolverCache
}

// NewService creates a new location Service
func NewService(locationRepo location.Repository, stockRepo location.StockItemRepository) *Service {
	return &Service{
		locationRepo: locationRepo,
		stockRepo:    stockRepo,
	}
}

// SetResolverCache installs a cache in front of Resolve lookups
func (s *Service) SetResolverCache(cache ResolverCache) {
	s.cache = cache
}

// Create registers a new stock-holding location
func (s *Service) Create(ctx context.Context, actor uuid.UUID, req CreateLocationRequest) (*LocationResponse, error) {
	kind, err := location.ParseKind(req.Kind)
	if err != nil {
		return nil, err
	}
	loc, err := location.NewLocation(kind, req.Name)
	if err != nil {
		return nil, err
	}
	loc.SetCreatedBy(actor)
	if req.Address != "" || req.Phone != "" {
		loc.UpdateContact(req.Address, req.Phone)
	}

	if err := s.locationRepo.Save(ctx, loc); err != nil {
		return nil, err
	}

	response := ToLocationResponse(loc)
	return &response, nil
}

// Update changes the contact data of a location and invalidates its cached
// resolution
func (s *Service) Update(ctx context.Context, locationID uuid.UUID, req UpdateLocationRequest) (*LocationResponse, error) {
	loc, err := s.locationRepo.FindByID(ctx, locationID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		loc.Name = *req.Name
	}
	address := loc.Address
	if req.Address != nil {
		address = *req.Address
	}
	phone := loc.Phone
	if req.Phone != nil {
		phone = *req.Phone
	}
	loc.UpdateContact(address, phone)

	if err := s.locationRepo.Save(ctx, loc); err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, loc.Ref())
	}

	response := ToLocationResponse(loc)
	return &response, nil
}

// Resolve turns a polymorphic (kind, id) reference into a concrete location,
// consulting the cache first
func (s *Service) Resolve(ctx context.Context, rawKind string, id uuid.UUID) (*LocationResponse, error) {
	kind, err := location.ParseKind(rawKind)
	if err != nil {
		return nil, err
	}
	ref, err := location.NewRef(kind, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, ref); err == nil && cached != nil {
			response := ToLocationResponse(cached)
			return &response, nil
		}
	}

	loc, err := s.locationRepo.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, loc, resolverCacheTTL)
	}

	response := ToLocationResponse(loc)
	return &response, nil
}

// GetByID retrieves a location by ID regardless of kind
func (s *Service) GetByID(ctx context.Context, locationID uuid.UUID) (*LocationResponse, error) {
	loc, err := s.locationRepo.FindByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	response := ToLocationResponse(loc)
	return &response, nil
}

// List retrieves locations with filtering and pagination
func (s *Service) List(ctx context.Context, filter LocationListFilter) ([]LocationResponse, int64, error) {
	domainFilter := buildLocationFilter(filter)

	var (
		locations []location.Location
		err       error
	)
	if filter.Kind != nil {
		kind, kindErr := location.ParseKind(*filter.Kind)
		if kindErr != nil {
			return nil, 0, kindErr
		}
		locations, err = s.locationRepo.FindByKind(ctx, kind, domainFilter)
	} else {
		locations, err = s.locationRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.locationRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]LocationResponse, 0, len(locations))
	for i := range locations {
		responses = append(responses, ToLocationResponse(&locations[i]))
	}
	return responses, total, nil
}

func buildLocationFilter(filter LocationListFilter) shared.Filter {
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
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Kind != nil {
		domainFilter.Filters["kind"] = *filter.Kind
	}
	return domainFilter
}

// CreateStockItem registers a stock item in a location's inventory
func (s *Service) CreateStockItem(ctx context.Context, actor uuid.UUID, req CreateStockItemRequest) (*StockItemResponse, error) {
	if _, err := s.locationRepo.FindByID(ctx, req.LocationID); err != nil {
		return nil, err
	}

	item, err := location.NewStockItem(req.SKU, req.Name, req.LocationID)
	if err != nil {
		return nil, err
	}
	item.SetCreatedBy(actor)
	if req.Category != "" {
		item.Category = req.Category
	}

	if err := s.stockRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	response := ToStockItemResponse(item)
	return &response, nil
}

// GetStockItem retrieves a stock item by ID
func (s *Service) GetStockItem(ctx context.Context, itemID uuid.UUID) (*StockItemResponse, error) {
	item, err := s.stockRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	response := ToStockItemResponse(item)
	return &response, nil
}

// ListInventory retrieves the inventory of a location
func (s *Service) ListInventory(ctx context.Context, locationID uuid.UUID, filter StockItemListFilter) ([]StockItemResponse, int64, error) {
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
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}

	items, err := s.stockRepo.FindByLocation(ctx, locationID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.stockRepo.CountByLocation(ctx, locationID)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]StockItemResponse, 0, len(items))
	for i := range items {
		responses = append(responses, ToStockItemResponse(&items[i]))
	}
	return responses, total, nil
}
