package transfer

import (
	"context"
	"testing"
	"time"

	"github.com/atelier/backend/internal/domain/location"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/transfer"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTransferRepository is a mock implementation of transfer.Repository
type MockTransferRepository struct {
	mock.Mock
}

func (m *MockTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*transfer.Transfer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.Transfer), args.Error(1)
}

func (m *MockTransferRepository) FindAll(ctx context.Context, filter shared.Filter) ([]transfer.Transfer, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]transfer.Transfer), args.Error(1)
}

func (m *MockTransferRepository) FindByLocation(ctx context.Context, locationID uuid.UUID, filter shared.Filter) ([]transfer.Transfer, error) {
	args := m.Called(ctx, locationID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]transfer.Transfer), args.Error(1)
}

func (m *MockTransferRepository) FindByStatus(ctx context.Context, status transfer.Status, filter shared.Filter) ([]transfer.Transfer, error) {
	args := m.Called(ctx, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]transfer.Transfer), args.Error(1)
}

func (m *MockTransferRepository) Save(ctx context.Context, t *transfer.Transfer) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTransferRepository) SaveWithLock(ctx context.Context, t *transfer.Transfer) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTransferRepository) SaveWithLockAndMoves(ctx context.Context, t *transfer.Transfer, moves []transfer.StockMove) error {
	args := m.Called(ctx, t, moves)
	return args.Error(0)
}

func (m *MockTransferRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransferRepository) CountByStatus(ctx context.Context, status transfer.Status) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

// MockLocationRepository is a mock implementation of location.Repository
type MockLocationRepository struct {
	mock.Mock
}

func (m *MockLocationRepository) Resolve(ctx context.Context, ref location.Ref) (*location.Location, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*location.Location), args.Error(1)
}

func (m *MockLocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*location.Location, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*location.Location), args.Error(1)
}

func (m *MockLocationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]location.Location, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]location.Location), args.Error(1)
}

func (m *MockLocationRepository) FindByKind(ctx context.Context, kind location.Kind, filter shared.Filter) ([]location.Location, error) {
	args := m.Called(ctx, kind, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]location.Location), args.Error(1)
}

func (m *MockLocationRepository) Save(ctx context.Context, loc *location.Location) error {
	args := m.Called(ctx, loc)
	return args.Error(0)
}

func (m *MockLocationRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockStockItemRepository is a mock implementation of location.StockItemRepository
type MockStockItemRepository struct {
	mock.Mock
}

func (m *MockStockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*location.StockItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*location.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]location.StockItem, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]location.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) FindByLocation(ctx context.Context, locationID uuid.UUID, filter shared.Filter) ([]location.StockItem, error) {
	args := m.Called(ctx, locationID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]location.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) CountInLocation(ctx context.Context, locationID uuid.UUID, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, locationID, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStockItemRepository) Save(ctx context.Context, item *location.StockItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockStockItemRepository) CountByLocation(ctx context.Context, locationID uuid.UUID) (int64, error) {
	args := m.Called(ctx, locationID)
	return args.Get(0).(int64), args.Error(1)
}

func newTestService() (*Service, *MockTransferRepository, *MockLocationRepository, *MockStockItemRepository) {
	transferRepo := new(MockTransferRepository)
	locationRepo := new(MockLocationRepository)
	stockRepo := new(MockStockItemRepository)
	svc := NewService(transferRepo, locationRepo, stockRepo)
	return svc, transferRepo, locationRepo, stockRepo
}

func testLocations(t *testing.T) (*location.Location, *location.Location) {
	t.Helper()
	branch, err := location.NewLocation(location.KindBranch, "Downtown branch")
	require.NoError(t, err)
	workshop, err := location.NewLocation(location.KindWorkshop, "Sewing workshop")
	require.NoError(t, err)
	return branch, workshop
}

func pendingTransfer(t *testing.T, itemCount int) *transfer.Transfer {
	t.Helper()
	branch, workshop := testLocations(t)
	ids := make([]uuid.UUID, itemCount)
	for i := range ids {
		ids[i] = uuid.New()
	}
	tr, err := transfer.NewTransfer(uuid.New(), branch.Ref(), workshop.Ref(), time.Now(), "", ids)
	require.NoError(t, err)
	return tr
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	actor := uuid.New()

	t.Run("creates transfer when items sit in the source", func(t *testing.T) {
		svc, transferRepo, locationRepo, stockRepo := newTestService()
		branch, workshop := testLocations(t)
		stockIDs := []uuid.UUID{uuid.New(), uuid.New()}

		locationRepo.On("Resolve", ctx, branch.Ref()).Return(branch, nil)
		locationRepo.On("Resolve", ctx, workshop.Ref()).Return(workshop, nil)
		stockRepo.On("CountInLocation", ctx, branch.ID, stockIDs).Return(int64(2), nil)
		transferRepo.On("Save", ctx, mock.Anything).Return(nil)

		resp, err := svc.Create(ctx, actor, CreateTransferRequest{
			SourceKind:      "BRANCH",
			SourceID:        branch.ID,
			DestinationKind: "WORKSHOP",
			DestinationID:   workshop.ID,
			StockItemIDs:    stockIDs,
		})
		require.NoError(t, err)
		assert.Equal(t, "PENDING", resp.Status)
		assert.Len(t, resp.Items, 2)
		transferRepo.AssertExpectations(t)
	})

	t.Run("fails when an item is outside the source", func(t *testing.T) {
		svc, transferRepo, locationRepo, stockRepo := newTestService()
		branch, workshop := testLocations(t)
		stockIDs := []uuid.UUID{uuid.New(), uuid.New()}

		locationRepo.On("Resolve", ctx, branch.Ref()).Return(branch, nil)
		locationRepo.On("Resolve", ctx, workshop.Ref()).Return(workshop, nil)
		stockRepo.On("CountInLocation", ctx, branch.ID, stockIDs).Return(int64(1), nil)

		_, err := svc.Create(ctx, actor, CreateTransferRequest{
			SourceKind:      "BRANCH",
			SourceID:        branch.ID,
			DestinationKind: "WORKSHOP",
			DestinationID:   workshop.ID,
			StockItemIDs:    stockIDs,
		})
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
		transferRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("fails when the destination does not resolve", func(t *testing.T) {
		svc, _, locationRepo, _ := newTestService()
		branch, workshop := testLocations(t)

		locationRepo.On("Resolve", ctx, branch.Ref()).Return(branch, nil)
		locationRepo.On("Resolve", ctx, workshop.Ref()).Return(nil, shared.ErrNotFound)

		_, err := svc.Create(ctx, actor, CreateTransferRequest{
			SourceKind:      "BRANCH",
			SourceID:        branch.ID,
			DestinationKind: "WORKSHOP",
			DestinationID:   workshop.ID,
			StockItemIDs:    []uuid.UUID{uuid.New()},
		})
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestService_ApproveItems(t *testing.T) {
	ctx := context.Background()
	actor := uuid.New()

	t.Run("approval produces membership moves", func(t *testing.T) {
		svc, transferRepo, _, _ := newTestService()
		tr := pendingTransfer(t, 2)

		transferRepo.On("FindByID", ctx, tr.ID).Return(tr, nil)
		transferRepo.On("SaveWithLockAndMoves", ctx, tr, []transfer.StockMove{{
			StockItemID:   tr.Items[0].StockItemID,
			SourceID:      tr.Source.ID,
			DestinationID: tr.Destination.ID,
		}}).Return(nil)

		resp, err := svc.ApproveItems(ctx, actor, tr.ID, ResolveItemsRequest{ItemIDs: []uuid.UUID{tr.Items[0].ID}})
		require.NoError(t, err)
		assert.Equal(t, "PARTIALLY_APPROVED", resp.Status)
		transferRepo.AssertExpectations(t)
	})

	t.Run("rejection applies no moves", func(t *testing.T) {
		svc, transferRepo, _, _ := newTestService()
		tr := pendingTransfer(t, 2)

		transferRepo.On("FindByID", ctx, tr.ID).Return(tr, nil)
		transferRepo.On("SaveWithLockAndMoves", ctx, tr, []transfer.StockMove{}).Return(nil)

		resp, err := svc.RejectItems(ctx, actor, tr.ID, ResolveItemsRequest{ItemIDs: []uuid.UUID{tr.Items[0].ID}})
		require.NoError(t, err)
		assert.Equal(t, "PARTIALLY_PENDING", resp.Status)
		transferRepo.AssertExpectations(t)
	})

	t.Run("double approval of the same item fails", func(t *testing.T) {
		svc, transferRepo, _, _ := newTestService()
		tr := pendingTransfer(t, 1)
		_, err := tr.ApproveItems(actor, []uuid.UUID{tr.Items[0].ID})
		require.NoError(t, err)

		transferRepo.On("FindByID", ctx, tr.ID).Return(tr, nil)

		_, err = svc.ApproveItems(ctx, actor, tr.ID, ResolveItemsRequest{ItemIDs: []uuid.UUID{tr.Items[0].ID}})
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
		transferRepo.AssertNotCalled(t, "SaveWithLockAndMoves", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("retries resolution on a version conflict", func(t *testing.T) {
		svc, transferRepo, _, _ := newTestService()

		transferID := uuid.New()
		transferRepo.On("FindByID", ctx, transferID).Return(pendingTransfer(t, 1), nil).Once()
		transferRepo.On("FindByID", ctx, transferID).Return(pendingTransfer(t, 1), nil).Once()
		transferRepo.On("SaveWithLockAndMoves", ctx, mock.Anything, mock.Anything).Return(shared.ErrConcurrencyConflict).Once()
		transferRepo.On("SaveWithLockAndMoves", ctx, mock.Anything, mock.Anything).Return(nil).Once()

		resp, err := svc.Approve(ctx, actor, transferID)
		require.NoError(t, err)
		assert.Equal(t, "APPROVED", resp.Status)
		transferRepo.AssertExpectations(t)
	})
}

func TestService_ApproveAll(t *testing.T) {
	ctx := context.Background()
	actor := uuid.New()

	t.Run("approves all pending items", func(t *testing.T) {
		svc, transferRepo, _, _ := newTestService()
		tr := pendingTransfer(t, 3)

		transferRepo.On("FindByID", ctx, tr.ID).Return(tr, nil)
		transferRepo.On("SaveWithLockAndMoves", ctx, tr, mock.MatchedBy(func(moves []transfer.StockMove) bool {
			return len(moves) == 3
		})).Return(nil)

		resp, err := svc.Approve(ctx, actor, tr.ID)
		require.NoError(t, err)
		assert.Equal(t, "APPROVED", resp.Status)
	})

	t.Run("fails when already resolved", func(t *testing.T) {
		svc, transferRepo, _, _ := newTestService()
		tr := pendingTransfer(t, 1)
		require.NoError(t, tr.Reject(actor))

		transferRepo.On("FindByID", ctx, tr.ID).Return(tr, nil)

		_, err := svc.Approve(ctx, actor, tr.ID)
		require.Error(t, err)
		assert.True(t, shared.IsInvalidTransition(err))
	})
}
