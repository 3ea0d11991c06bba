package transfer

import (
	"testing"
	"time"

	"github.com/atelier/backend/internal/domain/location"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func branchRef(t *testing.T) location.Ref {
	t.Helper()
	ref, err := location.NewRef(location.KindBranch, uuid.New())
	require.NoError(t, err)
	return ref
}

func workshopRef(t *testing.T) location.Ref {
	t.Helper()
	ref, err := location.NewRef(location.KindWorkshop, uuid.New())
	require.NoError(t, err)
	return ref
}

func newTestTransfer(t *testing.T, itemCount int) *Transfer {
	t.Helper()
	ids := make([]uuid.UUID, itemCount)
	for i := range ids {
		ids[i] = uuid.New()
	}
	tr, err := NewTransfer(uuid.New(), branchRef(t), workshopRef(t), time.Now(), "", ids)
	require.NoError(t, err)
	return tr
}

func TestNewTransfer(t *testing.T) {
	actor := uuid.New()

	t.Run("creates pending transfer with pending items", func(t *testing.T) {
		tr := newTestTransfer(t, 3)
		assert.Equal(t, StatusPending, tr.Status)
		require.Len(t, tr.Items, 3)
		for _, item := range tr.Items {
			assert.Equal(t, ItemPending, item.Status)
		}
		require.Len(t, tr.Actions, 1)
		assert.Equal(t, ActionCreated, tr.Actions[0].Kind)
		assert.Equal(t, 3, tr.Actions[0].ItemCount)
	})

	t.Run("fails when source equals destination", func(t *testing.T) {
		src := branchRef(t)
		_, err := NewTransfer(actor, src, src, time.Now(), "", []uuid.UUID{uuid.New()})
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("fails with no items", func(t *testing.T) {
		_, err := NewTransfer(actor, branchRef(t), workshopRef(t), time.Now(), "", nil)
		require.Error(t, err)
	})

	t.Run("fails with duplicate items", func(t *testing.T) {
		id := uuid.New()
		_, err := NewTransfer(actor, branchRef(t), workshopRef(t), time.Now(), "", []uuid.UUID{id, id})
		require.Error(t, err)
	})

	t.Run("defaults a zero transfer date", func(t *testing.T) {
		tr, err := NewTransfer(actor, branchRef(t), workshopRef(t), time.Time{}, "", []uuid.UUID{uuid.New()})
		require.NoError(t, err)
		assert.False(t, tr.TransferDate.IsZero())
	})
}

func TestTransfer_ApproveItems(t *testing.T) {
	actor := uuid.New()

	t.Run("approving a subset leaves transfer partially approved", func(t *testing.T) {
		tr := newTestTransfer(t, 3)
		moved, err := tr.ApproveItems(actor, []uuid.UUID{tr.Items[0].ID})
		require.NoError(t, err)
		require.Len(t, moved, 1)
		assert.Equal(t, tr.Items[0].StockItemID, moved[0])
		assert.Equal(t, StatusPartiallyApproved, tr.Status)
		assert.Equal(t, ItemApproved, tr.Items[0].Status)
		assert.Equal(t, &actor, tr.Items[0].ResolvedBy)
	})

	t.Run("approving all items approves the transfer", func(t *testing.T) {
		tr := newTestTransfer(t, 2)
		moved, err := tr.ApproveItems(actor, []uuid.UUID{tr.Items[0].ID, tr.Items[1].ID})
		require.NoError(t, err)
		assert.Len(t, moved, 2)
		assert.Equal(t, StatusApproved, tr.Status)
	})

	t.Run("already-resolved items are skipped", func(t *testing.T) {
		tr := newTestTransfer(t, 2)
		_, err := tr.ApproveItems(actor, []uuid.UUID{tr.Items[0].ID})
		require.NoError(t, err)

		moved, err := tr.ApproveItems(actor, []uuid.UUID{tr.Items[0].ID, tr.Items[1].ID})
		require.NoError(t, err)
		require.Len(t, moved, 1)
		assert.Equal(t, tr.Items[1].StockItemID, moved[0])
	})

	t.Run("fails when nothing addressed is pending", func(t *testing.T) {
		tr := newTestTransfer(t, 2)
		_, err := tr.ApproveItems(actor, []uuid.UUID{tr.Items[0].ID})
		require.NoError(t, err)

		_, err = tr.ApproveItems(actor, []uuid.UUID{tr.Items[0].ID})
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("fails with unknown item", func(t *testing.T) {
		tr := newTestTransfer(t, 1)
		_, err := tr.ApproveItems(actor, []uuid.UUID{uuid.New()})
		require.Error(t, err)
		assert.Equal(t, StatusPending, tr.Status)
	})

	t.Run("fails with empty selection", func(t *testing.T) {
		tr := newTestTransfer(t, 1)
		_, err := tr.ApproveItems(actor, nil)
		require.Error(t, err)
	})

	t.Run("records an audit entry per pass", func(t *testing.T) {
		tr := newTestTransfer(t, 3)
		_, err := tr.ApproveItems(actor, []uuid.UUID{tr.Items[0].ID, tr.Items[1].ID})
		require.NoError(t, err)

		require.Len(t, tr.Actions, 2)
		assert.Equal(t, ActionApproved, tr.Actions[1].Kind)
		assert.Equal(t, 2, tr.Actions[1].ItemCount)
	})
}

func TestTransfer_RejectItems(t *testing.T) {
	actor := uuid.New()

	t.Run("rejecting all items rejects the transfer", func(t *testing.T) {
		tr := newTestTransfer(t, 2)
		err := tr.RejectItems(actor, []uuid.UUID{tr.Items[0].ID, tr.Items[1].ID})
		require.NoError(t, err)
		assert.Equal(t, StatusRejected, tr.Status)
	})

	t.Run("rejection with pending remainder is partially pending", func(t *testing.T) {
		tr := newTestTransfer(t, 3)
		err := tr.RejectItems(actor, []uuid.UUID{tr.Items[0].ID})
		require.NoError(t, err)
		assert.Equal(t, StatusPartiallyPending, tr.Status)
	})

	t.Run("mixed approvals and rejections fold to partially approved", func(t *testing.T) {
		tr := newTestTransfer(t, 3)
		_, err := tr.ApproveItems(actor, []uuid.UUID{tr.Items[0].ID})
		require.NoError(t, err)
		require.NoError(t, tr.RejectItems(actor, []uuid.UUID{tr.Items[1].ID}))
		assert.Equal(t, StatusPartiallyApproved, tr.Status)

		require.NoError(t, tr.RejectItems(actor, []uuid.UUID{tr.Items[2].ID}))
		assert.Equal(t, StatusPartiallyApproved, tr.Status)
	})
}

func TestTransfer_ApproveAll(t *testing.T) {
	actor := uuid.New()

	t.Run("approves every pending item", func(t *testing.T) {
		tr := newTestTransfer(t, 3)
		moved, err := tr.Approve(actor)
		require.NoError(t, err)
		assert.Len(t, moved, 3)
		assert.Equal(t, StatusApproved, tr.Status)
	})

	t.Run("approves the remainder after a partial rejection", func(t *testing.T) {
		tr := newTestTransfer(t, 3)
		require.NoError(t, tr.RejectItems(actor, []uuid.UUID{tr.Items[0].ID}))

		moved, err := tr.Approve(actor)
		require.NoError(t, err)
		assert.Len(t, moved, 2)
		assert.Equal(t, StatusPartiallyApproved, tr.Status)
	})

	t.Run("fails when nothing is pending", func(t *testing.T) {
		tr := newTestTransfer(t, 1)
		_, err := tr.Approve(actor)
		require.NoError(t, err)

		_, err = tr.Approve(actor)
		require.Error(t, err)
		assert.True(t, shared.IsInvalidTransition(err))
	})
}

func TestTransfer_RejectAll(t *testing.T) {
	actor := uuid.New()

	t.Run("rejects every pending item", func(t *testing.T) {
		tr := newTestTransfer(t, 2)
		require.NoError(t, tr.Reject(actor))
		assert.Equal(t, StatusRejected, tr.Status)
	})

	t.Run("fails when nothing is pending", func(t *testing.T) {
		tr := newTestTransfer(t, 1)
		require.NoError(t, tr.Reject(actor))
		err := tr.Reject(actor)
		require.Error(t, err)
		assert.True(t, shared.IsInvalidTransition(err))
	})
}

func TestTransfer_PendingItemIDs(t *testing.T) {
	actor := uuid.New()
	tr := newTestTransfer(t, 3)
	assert.Len(t, tr.PendingItemIDs(), 3)

	_, err := tr.ApproveItems(actor, []uuid.UUID{tr.Items[0].ID})
	require.NoError(t, err)
	assert.Len(t, tr.PendingItemIDs(), 2)
	assert.Len(t, tr.StockItemIDs(), 3)
}
