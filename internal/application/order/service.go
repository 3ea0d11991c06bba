package order

import (
	"context"
	"fmt"

	"github.com/atelier/backend/internal/domain/custody"
	"github.com/atelier/backend/internal/domain/location"
	"github.com/atelier/backend/internal/domain/order"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// lockRetries bounds the optimistic-lock retry loop on order transitions
const lockRetries = 3

// Service handles order business operations
type Service struct {
	orderRepo    order.Repository
	locationRepo location.Repository
	stockRepo    location.StockItemRepository
	custodyRepo  custody.Repository
}

// NewService creates a new order Service
func NewService(orderRepo order.Repository, locationRepo location.Repository, stockRepo location.StockItemRepository, custodyRepo custody.Repository) *Service {
	return &Service{
		orderRepo:    orderRepo,
		locationRepo: locationRepo,
		stockRepo:    stockRepo,
		custodyRepo:  custodyRepo,
	}
}

// Create creates a new order. Every stock item must be a member of the
// source location's inventory; RENT items are reserved in the same
// transaction as the order insert, so a lost reservation race fails the
// whole creation.
func (s *Service) Create(ctx context.Context, actor uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	kind, err := location.ParseKind(req.SourceKind)
	if err != nil {
		return nil, err
	}
	source, err := location.NewRef(kind, req.SourceID)
	if err != nil {
		return nil, err
	}
	if _, err := s.locationRepo.Resolve(ctx, source); err != nil {
		return nil, err
	}

	items := make([]order.OrderItem, 0, len(req.Items))
	stockIDs := make([]uuid.UUID, 0, len(req.Items))
	for _, input := range req.Items {
		discount, err := toDiscount(input.DiscountType, input.DiscountValue)
		if err != nil {
			return nil, err
		}
		var rental *order.RentalTerms
		if order.ItemType(input.Type) == order.ItemTypeRent {
			if input.DeliveryDate == nil {
				return nil, shared.NewValidationError("Rent items require a delivery date")
			}
			rental = &order.RentalTerms{DeliveryDate: *input.DeliveryDate, Days: input.RentalDays}
		}
		item, err := order.NewOrderItem(
			input.StockItemID,
			order.ItemType(input.Type),
			valueobject.NewMoneyEGP(input.UnitPrice),
			input.Quantity,
			discount,
			rental,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
		stockIDs = append(stockIDs, input.StockItemID)
	}

	if err := s.verifyMembership(ctx, source.ID, stockIDs); err != nil {
		return nil, err
	}

	discount, err := toDiscount(req.DiscountType, req.DiscountValue)
	if err != nil {
		return nil, err
	}
	o, err := order.NewOrder(req.ClientID, req.ClientName, source, items, discount, req.InitialPaid)
	if err != nil {
		return nil, err
	}
	o.SetCreatedBy(actor)
	if req.Notes != "" {
		o.Notes = req.Notes
	}

	if err := s.orderRepo.SaveWithReservation(ctx, o, o.RentalStockItemIDs()); err != nil {
		return nil, err
	}

	response := ToOrderResponse(o)
	return &response, nil
}

// verifyMembership checks that every stock item sits in the source inventory
func (s *Service) verifyMembership(ctx context.Context, locationID uuid.UUID, stockIDs []uuid.UUID) error {
	found, err := s.stockRepo.CountInLocation(ctx, locationID, stockIDs)
	if err != nil {
		return err
	}
	if found != int64(len(stockIDs)) {
		return shared.NewValidationError(fmt.Sprintf("%d of %d stock items are not in the source location", int64(len(stockIDs))-found, len(stockIDs)))
	}
	return nil
}

// GetByID retrieves an order by ID
func (s *Service) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// List retrieves orders with filtering and pagination
func (s *Service) List(ctx context.Context, filter OrderListFilter) ([]OrderResponse, int64, error) {
	domainFilter := buildFilter(filter)

	var (
		orders []order.Order
		err    error
	)
	switch {
	case filter.ClientID != nil:
		orders, err = s.orderRepo.FindByClient(ctx, *filter.ClientID, domainFilter)
	case filter.Status != nil:
		orders, err = s.orderRepo.FindByStatus(ctx, order.Status(*filter.Status), domainFilter)
	default:
		orders, err = s.orderRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, ToOrderResponse(&orders[i]))
	}
	return responses, total, nil
}

func buildFilter(filter OrderListFilter) shared.Filter {
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
	if filter.ClientID != nil {
		domainFilter.Filters["client_id"] = *filter.ClientID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}
	return domainFilter
}

// Deliver transitions the order to DELIVERED. The custody requirement is
// checked against the current custody ledger of the order.
func (s *Service) Deliver(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, orderID, func(ctx context.Context, o *order.Order) error {
		custodyCount, err := s.custodyRepo.CountByOrder(ctx, o.ID)
		if err != nil {
			return err
		}
		if err := o.Deliver(custodyCount); err != nil {
			return err
		}
		return s.orderRepo.SaveWithLock(ctx, o)
	})
}

// Finish transitions the order to FINISHED. Blocked while any custody
// record is still pending or a balance is outstanding.
func (s *Service) Finish(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, orderID, func(ctx context.Context, o *order.Order) error {
		pending, err := s.custodyRepo.CountPendingByOrder(ctx, o.ID)
		if err != nil {
			return err
		}
		if err := o.Finish(pending); err != nil {
			return err
		}
		return s.orderRepo.SaveWithLock(ctx, o)
	})
}

// Cancel transitions the order to CANCELLED and releases its rental stock
// reservations in the same transaction. The payment balance is left as-is.
func (s *Service) Cancel(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, orderID, func(ctx context.Context, o *order.Order) error {
		if err := o.Cancel(); err != nil {
			return err
		}
		return s.orderRepo.SaveWithLockAndRelease(ctx, o, o.RentalStockItemIDs())
	})
}

// Delete soft-deletes an order
func (s *Service) Delete(ctx context.Context, orderID uuid.UUID) error {
	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		return err
	}
	return s.orderRepo.Delete(ctx, orderID)
}

// transition runs a state transition with optimistic-lock retry: on a
// version conflict the aggregate is reloaded and the transition re-applied,
// up to lockRetries attempts.
func (s *Service) transition(ctx context.Context, orderID uuid.UUID, apply func(context.Context, *order.Order) error) (*OrderResponse, error) {
	var lastErr error
	for attempt := 0; attempt < lockRetries; attempt++ {
		o, err := s.orderRepo.FindByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if err := apply(ctx, o); err != nil {
			if shared.IsConcurrencyConflict(err) {
				lastErr = err
				continue
			}
			return nil, err
		}
		response := ToOrderResponse(o)
		return &response, nil
	}
	return nil, lastErr
}
