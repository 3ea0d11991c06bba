package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/atelier/backend/internal/domain/location"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/transfer"
	"github.com/google/uuid"
)

// lockRetries bounds the optimistic-lock retry loop on transfer resolution
const lockRetries = 3

// Service handles stock transfer operations
type Service struct {
	transferRepo transfer.Repository
	locationRepo location.Repository
	stockRepo    location.StockItemRepository
}

// NewService creates a new transfer Service
func NewService(transferRepo transfer.Repository, locationRepo location.Repository, stockRepo location.StockItemRepository) *Service {
	return &Service{
		transferRepo: transferRepo,
		locationRepo: locationRepo,
		stockRepo:    stockRepo,
	}
}

// Create opens a transfer request. Both endpoints must resolve to existing
// locations and every stock item must currently sit in the source inventory.
func (s *Service) Create(ctx context.Context, actor uuid.UUID, req CreateTransferRequest) (*TransferResponse, error) {
	source, err := parseRef(req.SourceKind, req.SourceID)
	if err != nil {
		return nil, err
	}
	destination, err := parseRef(req.DestinationKind, req.DestinationID)
	if err != nil {
		return nil, err
	}
	if _, err := s.locationRepo.Resolve(ctx, source); err != nil {
		return nil, err
	}
	if _, err := s.locationRepo.Resolve(ctx, destination); err != nil {
		return nil, err
	}

	found, err := s.stockRepo.CountInLocation(ctx, source.ID, req.StockItemIDs)
	if err != nil {
		return nil, err
	}
	if found != int64(len(req.StockItemIDs)) {
		return nil, shared.NewValidationError(fmt.Sprintf("%d of %d stock items are not in the source location", int64(len(req.StockItemIDs))-found, len(req.StockItemIDs)))
	}

	transferDate := time.Time{}
	if req.TransferDate != nil {
		transferDate = *req.TransferDate
	}
	t, err := transfer.NewTransfer(actor, source, destination, transferDate, req.Notes, req.StockItemIDs)
	if err != nil {
		return nil, err
	}

	if err := s.transferRepo.Save(ctx, t); err != nil {
		return nil, err
	}

	response := ToTransferResponse(t)
	return &response, nil
}

func parseRef(rawKind string, id uuid.UUID) (location.Ref, error) {
	kind, err := location.ParseKind(rawKind)
	if err != nil {
		return location.Ref{}, err
	}
	return location.NewRef(kind, id)
}

// GetByID retrieves a transfer by ID
func (s *Service) GetByID(ctx context.Context, transferID uuid.UUID) (*TransferResponse, error) {
	t, err := s.transferRepo.FindByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	response := ToTransferResponse(t)
	return &response, nil
}

// List retrieves transfers with filtering and pagination
func (s *Service) List(ctx context.Context, filter TransferListFilter) ([]TransferResponse, int64, error) {
	domainFilter := buildFilter(filter)

	var (
		transfers []transfer.Transfer
		err       error
	)
	switch {
	case filter.LocationID != nil:
		transfers, err = s.transferRepo.FindByLocation(ctx, *filter.LocationID, domainFilter)
	case filter.Status != nil:
		transfers, err = s.transferRepo.FindByStatus(ctx, transfer.Status(*filter.Status), domainFilter)
	default:
		transfers, err = s.transferRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.transferRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]TransferResponse, 0, len(transfers))
	for i := range transfers {
		responses = append(responses, ToTransferResponse(&transfers[i]))
	}
	return responses, total, nil
}

func buildFilter(filter TransferListFilter) shared.Filter {
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
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}
	return domainFilter
}

// ApproveItems approves the addressed items and moves their inventory
// membership to the destination in the same transaction.
func (s *Service) ApproveItems(ctx context.Context, actor uuid.UUID, transferID uuid.UUID, req ResolveItemsRequest) (*TransferResponse, error) {
	return s.resolve(ctx, transferID, func(t *transfer.Transfer) ([]uuid.UUID, error) {
		return t.ApproveItems(actor, req.ItemIDs)
	})
}

// RejectItems rejects the addressed items, leaving stock membership
// untouched.
func (s *Service) RejectItems(ctx context.Context, actor uuid.UUID, transferID uuid.UUID, req ResolveItemsRequest) (*TransferResponse, error) {
	return s.resolve(ctx, transferID, func(t *transfer.Transfer) ([]uuid.UUID, error) {
		return nil, t.RejectItems(actor, req.ItemIDs)
	})
}

// Approve resolves all pending items of the transfer as approved
func (s *Service) Approve(ctx context.Context, actor uuid.UUID, transferID uuid.UUID) (*TransferResponse, error) {
	return s.resolve(ctx, transferID, func(t *transfer.Transfer) ([]uuid.UUID, error) {
		return t.Approve(actor)
	})
}

// Reject resolves all pending items of the transfer as rejected
func (s *Service) Reject(ctx context.Context, actor uuid.UUID, transferID uuid.UUID) (*TransferResponse, error) {
	return s.resolve(ctx, transferID, func(t *transfer.Transfer) ([]uuid.UUID, error) {
		return nil, t.Reject(actor)
	})
}

// resolve runs a resolution pass under optimistic locking. Approved stock
// items become membership moves applied atomically with the aggregate save;
// a version conflict reloads and replays the pass, up to lockRetries
// attempts.
func (s *Service) resolve(ctx context.Context, transferID uuid.UUID, apply func(*transfer.Transfer) ([]uuid.UUID, error)) (*TransferResponse, error) {
	var lastErr error
	for attempt := 0; attempt < lockRetries; attempt++ {
		t, err := s.transferRepo.FindByID(ctx, transferID)
		if err != nil {
			return nil, err
		}

		movedStockIDs, err := apply(t)
		if err != nil {
			return nil, err
		}

		moves := make([]transfer.StockMove, 0, len(movedStockIDs))
		for _, stockID := range movedStockIDs {
			moves = append(moves, transfer.StockMove{
				StockItemID:   stockID,
				SourceID:      t.Source.ID,
				DestinationID: t.Destination.ID,
			})
		}

		if err := s.transferRepo.SaveWithLockAndMoves(ctx, t, moves); err != nil {
			if shared.IsConcurrencyConflict(err) {
				lastErr = err
				continue
			}
			return nil, err
		}

		response := ToTransferResponse(t)
		return &response, nil
	}
	return nil, lastErr
}
