package payment

import (
	"context"

	"github.com/atelier/backend/internal/domain/order"
	"github.com/atelier/backend/internal/domain/payment"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// lockRetries bounds the retry loop on the ledger-plus-recompute unit
const lockRetries = 3

// Service handles payment ledger operations. Every mutation of the ledger
// commits together with a recompute of the owning order's paid/remaining/
// status figures; a version conflict on either row rolls back the whole
// unit, which is then replayed from freshly loaded state.
type Service struct {
	paymentRepo payment.Repository
	orderRepo   order.Repository
}

// NewService creates a new payment Service
func NewService(paymentRepo payment.Repository, orderRepo order.Repository) *Service {
	return &Service{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
	}
}

// Create records a new ledger entry and recomputes the order balance
func (s *Service) Create(ctx context.Context, actor uuid.UUID, req CreatePaymentRequest) (*OrderBalanceResponse, error) {
	if _, err := s.orderRepo.FindByID(ctx, req.OrderID); err != nil {
		return nil, err
	}

	p, err := payment.NewPayment(req.OrderID, valueobject.NewMoneyEGP(req.Amount), payment.Status(req.Status), payment.Type(req.Type))
	if err != nil {
		return nil, err
	}
	p.SetCreatedBy(actor)
	if req.Notes != "" {
		p.Notes = req.Notes
	}

	var lastErr error
	for attempt := 0; attempt < lockRetries; attempt++ {
		o, err := s.paymentRepo.SaveWithRecompute(ctx, p)
		if err != nil {
			if shared.IsConcurrencyConflict(err) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return balanceResponse(p, o), nil
	}
	return nil, lastErr
}

// MarkPaid transitions a pending payment to PAID and recomputes the order
// balance
func (s *Service) MarkPaid(ctx context.Context, paymentID uuid.UUID) (*OrderBalanceResponse, error) {
	return s.mutateEntry(ctx, paymentID, func(p *payment.Payment) error {
		return p.MarkPaid()
	})
}

// Cancel voids a payment and recomputes the order balance. Canceling a PAID
// payment lowers the paid total, which can regress a derived order status.
func (s *Service) Cancel(ctx context.Context, paymentID uuid.UUID) (*OrderBalanceResponse, error) {
	return s.mutateEntry(ctx, paymentID, func(p *payment.Payment) error {
		return p.Cancel()
	})
}

// mutateEntry applies a domain transition to a ledger entry and persists it
// together with the order recompute. Each attempt reloads the entry so a
// rolled-back transaction is replayed against current state.
func (s *Service) mutateEntry(ctx context.Context, paymentID uuid.UUID, apply func(*payment.Payment) error) (*OrderBalanceResponse, error) {
	var lastErr error
	for attempt := 0; attempt < lockRetries; attempt++ {
		p, err := s.paymentRepo.FindByID(ctx, paymentID)
		if err != nil {
			return nil, err
		}
		if err := apply(p); err != nil {
			return nil, err
		}

		o, err := s.paymentRepo.SaveWithLockAndRecompute(ctx, p)
		if err != nil {
			if shared.IsConcurrencyConflict(err) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return balanceResponse(p, o), nil
	}
	return nil, lastErr
}

func balanceResponse(p *payment.Payment, o *order.Order) *OrderBalanceResponse {
	return &OrderBalanceResponse{
		Payment:     ToPaymentResponse(p),
		OrderStatus: o.Status.String(),
		Paid:        o.Paid,
		Remaining:   o.Remaining,
	}
}

// GetByID retrieves a payment by ID
func (s *Service) GetByID(ctx context.Context, paymentID uuid.UUID) (*PaymentResponse, error) {
	p, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	response := ToPaymentResponse(p)
	return &response, nil
}

// ListByOrder retrieves the full ledger of an order
func (s *Service) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]PaymentResponse, error) {
	payments, err := s.paymentRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	responses := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, ToPaymentResponse(&payments[i]))
	}
	return responses, nil
}

// List retrieves payments with filtering and pagination
func (s *Service) List(ctx context.Context, filter PaymentListFilter) ([]PaymentResponse, int64, error) {
	domainFilter := buildFilter(filter)

	payments, err := s.paymentRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.paymentRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, ToPaymentResponse(&payments[i]))
	}
	return responses, total, nil
}

func buildFilter(filter PaymentListFilter) shared.Filter {
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
