package location

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input    string
		expected Kind
		wantErr  bool
	}{
		{"BRANCH", KindBranch, false},
		{"branch", KindBranch, false},
		{"WORKSHOP", KindWorkshop, false},
		{"workshop", KindWorkshop, false},
		{"FACTORY", KindFactory, false},
		{"factory", KindFactory, false},
		{"warehouse", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, err := ParseKind(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, kind)
		})
	}
}

func TestNewRef(t *testing.T) {
	t.Run("creates ref with valid inputs", func(t *testing.T) {
		id := uuid.New()
		ref, err := NewRef(KindBranch, id)
		require.NoError(t, err)
		assert.Equal(t, KindBranch, ref.Kind)
		assert.Equal(t, id, ref.ID)
	})

	t.Run("fails with invalid kind", func(t *testing.T) {
		_, err := NewRef(Kind("STORE"), uuid.New())
		require.Error(t, err)
	})

	t.Run("fails with nil ID", func(t *testing.T) {
		_, err := NewRef(KindFactory, uuid.Nil)
		require.Error(t, err)
	})
}

func TestRef_Equals(t *testing.T) {
	id := uuid.New()
	a := Ref{Kind: KindBranch, ID: id}
	b := Ref{Kind: KindBranch, ID: id}
	c := Ref{Kind: KindWorkshop, ID: id}
	d := Ref{Kind: KindBranch, ID: uuid.New()}

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
	assert.False(t, a.Equals(d))
}

func TestNewLocation(t *testing.T) {
	t.Run("creates location", func(t *testing.T) {
		loc, err := NewLocation(KindWorkshop, "Heliopolis Workshop")
		require.NoError(t, err)
		assert.Equal(t, KindWorkshop, loc.Kind)
		assert.Equal(t, "Heliopolis Workshop", loc.Name)
		assert.NotEmpty(t, loc.ID)
		assert.Equal(t, 1, loc.GetVersion())
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewLocation(KindBranch, "")
		require.Error(t, err)
	})

	t.Run("fails with invalid kind", func(t *testing.T) {
		_, err := NewLocation(Kind(""), "Somewhere")
		require.Error(t, err)
	})
}

func TestLocation_Ref(t *testing.T) {
	loc, err := NewLocation(KindFactory, "Main Factory")
	require.NoError(t, err)
	ref := loc.Ref()
	assert.Equal(t, KindFactory, ref.Kind)
	assert.Equal(t, loc.ID, ref.ID)
}

func TestStockItem_ReserveRelease(t *testing.T) {
	item, err := NewStockItem("GWN-001", "Evening Gown", uuid.New())
	require.NoError(t, err)
	assert.True(t, item.IsAvailable())

	require.NoError(t, item.Reserve())
	assert.False(t, item.IsAvailable())

	err = item.Reserve()
	require.Error(t, err)

	item.Release()
	assert.True(t, item.IsAvailable())
}

func TestNewStockItem_Validation(t *testing.T) {
	t.Run("fails with empty sku", func(t *testing.T) {
		_, err := NewStockItem("", "Suit", uuid.New())
		require.Error(t, err)
	})
	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewStockItem("SUIT-01", "", uuid.New())
		require.Error(t, err)
	})
	t.Run("fails with nil location", func(t *testing.T) {
		_, err := NewStockItem("SUIT-01", "Suit", uuid.Nil)
		require.Error(t, err)
	})
}
