package order

import (
	"testing"
	"time"

	"github.com/atelier/backend/internal/domain/location"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSource() location.Ref {
	return location.Ref{Kind: location.KindBranch, ID: uuid.New()}
}

func buyItem(t *testing.T, price float64, quantity int, discount *valueobject.Discount) OrderItem {
	t.Helper()
	item, err := NewOrderItem(uuid.New(), ItemTypeBuy, valueobject.NewMoneyEGPFromFloat(price), quantity, discount, nil)
	require.NoError(t, err)
	return *item
}

func rentItem(t *testing.T, price float64, days int) OrderItem {
	t.Helper()
	terms := &RentalTerms{DeliveryDate: time.Now().Add(48 * time.Hour), Days: days}
	item, err := NewOrderItem(uuid.New(), ItemTypeRent, valueobject.NewMoneyEGPFromFloat(price), 1, nil, terms)
	require.NoError(t, err)
	return *item
}

func percent(t *testing.T, v int64) *valueobject.Discount {
	t.Helper()
	d, err := valueobject.NewPercentageDiscount(decimal.NewFromInt(v))
	require.NoError(t, err)
	return &d
}

func fixed(t *testing.T, v int64) *valueobject.Discount {
	t.Helper()
	d, err := valueobject.NewFixedDiscount(decimal.NewFromInt(v))
	require.NoError(t, err)
	return &d
}

// ============================================
// NewOrderItem Tests
// ============================================

func TestNewOrderItem(t *testing.T) {
	t.Run("computes subtotal and discounted total", func(t *testing.T) {
		item, err := NewOrderItem(uuid.New(), ItemTypeBuy, valueobject.NewMoneyEGPFromFloat(100), 2, percent(t, 10), nil)
		require.NoError(t, err)
		assert.True(t, item.Subtotal.Equal(decimal.NewFromInt(200)))
		assert.True(t, item.Total.Equal(decimal.NewFromInt(180)))
	})

	t.Run("fails with zero quantity", func(t *testing.T) {
		_, err := NewOrderItem(uuid.New(), ItemTypeBuy, valueobject.NewMoneyEGPFromFloat(100), 0, nil, nil)
		require.Error(t, err)
	})

	t.Run("fails with unknown type", func(t *testing.T) {
		_, err := NewOrderItem(uuid.New(), ItemType("LEASE"), valueobject.NewMoneyEGPFromFloat(100), 1, nil, nil)
		require.Error(t, err)
	})

	t.Run("rent item requires delivery date", func(t *testing.T) {
		_, err := NewOrderItem(uuid.New(), ItemTypeRent, valueobject.NewMoneyEGPFromFloat(100), 1, nil, &RentalTerms{Days: 3})
		require.Error(t, err)
	})

	t.Run("rent item requires positive duration", func(t *testing.T) {
		terms := &RentalTerms{DeliveryDate: time.Now(), Days: 0}
		_, err := NewOrderItem(uuid.New(), ItemTypeRent, valueobject.NewMoneyEGPFromFloat(100), 1, nil, terms)
		require.Error(t, err)
	})

	t.Run("rent item without terms fails", func(t *testing.T) {
		_, err := NewOrderItem(uuid.New(), ItemTypeRent, valueobject.NewMoneyEGPFromFloat(100), 1, nil, nil)
		require.Error(t, err)
	})
}

// ============================================
// Pricing Tests
// ============================================

func TestNewOrder_Pricing(t *testing.T) {
	clientID := uuid.New()

	t.Run("item discount first then order discount on discounted sum", func(t *testing.T) {
		// price=100, item discount 10% -> 90; order discount fixed 20 -> 70
		item := buyItem(t, 100, 1, percent(t, 10))
		o, err := NewOrder(clientID, "Mona Hassan", testSource(), []OrderItem{item}, fixed(t, 20), decimal.Zero)
		require.NoError(t, err)
		assert.True(t, o.TotalPrice.Equal(decimal.NewFromInt(70)), "got %s", o.TotalPrice)
	})

	t.Run("full payment at creation yields PAID and zero remaining", func(t *testing.T) {
		item := buyItem(t, 100, 1, percent(t, 10))
		o, err := NewOrder(clientID, "Mona Hassan", testSource(), []OrderItem{item}, fixed(t, 20), decimal.NewFromInt(70))
		require.NoError(t, err)
		assert.Equal(t, StatusPaid, o.Status)
		assert.True(t, o.Remaining.IsZero())
	})

	t.Run("sums multiple item totals", func(t *testing.T) {
		items := []OrderItem{
			buyItem(t, 50, 2, nil),           // 100
			buyItem(t, 200, 1, fixed(t, 50)), // 150
		}
		o, err := NewOrder(clientID, "Mona Hassan", testSource(), items, nil, decimal.Zero)
		require.NoError(t, err)
		assert.True(t, o.TotalPrice.Equal(decimal.NewFromInt(250)))
	})

	t.Run("percentage order discount applies to discounted sum", func(t *testing.T) {
		// (100 - 20) = 80, then 25% off -> 60
		item := buyItem(t, 100, 1, fixed(t, 20))
		o, err := NewOrder(clientID, "Mona Hassan", testSource(), []OrderItem{item}, percent(t, 25), decimal.Zero)
		require.NoError(t, err)
		assert.True(t, o.TotalPrice.Equal(decimal.NewFromInt(60)))
	})
}

func TestNewOrder_Validation(t *testing.T) {
	t.Run("fails with no items", func(t *testing.T) {
		_, err := NewOrder(uuid.New(), "Client", testSource(), nil, nil, decimal.Zero)
		require.Error(t, err)
	})

	t.Run("fails with negative initial paid", func(t *testing.T) {
		item := buyItem(t, 100, 1, nil)
		_, err := NewOrder(uuid.New(), "Client", testSource(), []OrderItem{item}, nil, decimal.NewFromInt(-1))
		require.Error(t, err)
	})

	t.Run("fails with invalid source", func(t *testing.T) {
		item := buyItem(t, 100, 1, nil)
		_, err := NewOrder(uuid.New(), "Client", location.Ref{}, []OrderItem{item}, nil, decimal.Zero)
		require.Error(t, err)
	})

	t.Run("fails with nil client", func(t *testing.T) {
		item := buyItem(t, 100, 1, nil)
		_, err := NewOrder(uuid.Nil, "Client", testSource(), []OrderItem{item}, nil, decimal.Zero)
		require.Error(t, err)
	})
}

// ============================================
// Status derivation Tests
// ============================================

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name     string
		paid     int64
		total    int64
		expected Status
	}{
		{"zero paid", 0, 100, StatusCreated},
		{"partial", 40, 100, StatusPartiallyPaid},
		{"exact", 100, 100, StatusPaid},
		{"overpaid", 120, 100, StatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deriveStatus(decimal.NewFromInt(tt.paid), decimal.NewFromInt(tt.total))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestOrder_ApplyLedger(t *testing.T) {
	newOrder := func(t *testing.T) *Order {
		item := buyItem(t, 100, 1, nil)
		o, err := NewOrder(uuid.New(), "Client", testSource(), []OrderItem{item}, nil, decimal.Zero)
		require.NoError(t, err)
		return o
	}

	t.Run("maintains remaining invariant", func(t *testing.T) {
		o := newOrder(t)
		o.ApplyLedger(decimal.NewFromInt(30))
		assert.True(t, o.Remaining.Equal(decimal.NewFromInt(70)))
		assert.Equal(t, StatusPartiallyPaid, o.Status)

		o.ApplyLedger(decimal.NewFromInt(100))
		assert.True(t, o.Remaining.IsZero())
		assert.Equal(t, StatusPaid, o.Status)

		o.ApplyLedger(decimal.Zero)
		assert.True(t, o.Remaining.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, StatusCreated, o.Status)
	})

	t.Run("floors remaining at zero", func(t *testing.T) {
		o := newOrder(t)
		o.ApplyLedger(decimal.NewFromInt(150))
		assert.True(t, o.Remaining.IsZero())
	})

	t.Run("never regresses past delivered", func(t *testing.T) {
		o := newOrder(t)
		o.ApplyLedger(decimal.NewFromInt(100))
		require.NoError(t, o.Deliver(1))

		o.ApplyLedger(decimal.Zero)
		assert.Equal(t, StatusDelivered, o.Status)
		assert.True(t, o.Remaining.Equal(decimal.NewFromInt(100)))
	})
}

// ============================================
// Transition Tests
// ============================================

func TestOrder_Deliver(t *testing.T) {
	paidOrder := func(t *testing.T) *Order {
		item := buyItem(t, 100, 1, nil)
		o, err := NewOrder(uuid.New(), "Client", testSource(), []OrderItem{item}, nil, decimal.NewFromInt(100))
		require.NoError(t, err)
		return o
	}

	t.Run("delivers a paid order with custody", func(t *testing.T) {
		o := paidOrder(t)
		require.NoError(t, o.Deliver(1))
		assert.Equal(t, StatusDelivered, o.Status)
		assert.NotNil(t, o.DeliveredAt)
	})

	t.Run("fails without custody", func(t *testing.T) {
		o := paidOrder(t)
		err := o.Deliver(0)
		require.Error(t, err)
		assert.Equal(t, StatusPaid, o.Status)
	})

	t.Run("fails when not fully paid", func(t *testing.T) {
		item := buyItem(t, 100, 1, nil)
		o, err := NewOrder(uuid.New(), "Client", testSource(), []OrderItem{item}, nil, decimal.NewFromInt(50))
		require.NoError(t, err)
		require.Error(t, o.Deliver(1))
	})
}

func TestOrder_Finish(t *testing.T) {
	deliveredOrder := func(t *testing.T) *Order {
		item := buyItem(t, 100, 1, nil)
		o, err := NewOrder(uuid.New(), "Client", testSource(), []OrderItem{item}, nil, decimal.NewFromInt(100))
		require.NoError(t, err)
		require.NoError(t, o.Deliver(1))
		return o
	}

	t.Run("finishes when custody settled", func(t *testing.T) {
		o := deliveredOrder(t)
		require.NoError(t, o.Finish(0))
		assert.Equal(t, StatusFinished, o.Status)
		assert.NotNil(t, o.FinishedAt)
	})

	t.Run("pending custody blocks completion", func(t *testing.T) {
		o := deliveredOrder(t)
		err := o.Finish(2)
		require.Error(t, err)
		assert.Equal(t, StatusDelivered, o.Status)
	})

	t.Run("outstanding balance blocks completion", func(t *testing.T) {
		item := buyItem(t, 100, 1, nil)
		o, err := NewOrder(uuid.New(), "Client", testSource(), []OrderItem{item}, nil, decimal.NewFromInt(100))
		require.NoError(t, err)
		o.ApplyLedger(decimal.NewFromInt(40))
		require.Error(t, o.Finish(0))
	})

	t.Run("cannot finish a cancelled order", func(t *testing.T) {
		item := buyItem(t, 100, 1, nil)
		o, err := NewOrder(uuid.New(), "Client", testSource(), []OrderItem{item}, nil, decimal.Zero)
		require.NoError(t, err)
		require.NoError(t, o.Cancel())
		require.Error(t, o.Finish(0))
	})
}

func TestOrder_Cancel(t *testing.T) {
	t.Run("cancels from created", func(t *testing.T) {
		item := buyItem(t, 100, 1, nil)
		o, err := NewOrder(uuid.New(), "Client", testSource(), []OrderItem{item}, nil, decimal.Zero)
		require.NoError(t, err)
		require.NoError(t, o.Cancel())
		assert.Equal(t, StatusCancelled, o.Status)
	})

	t.Run("cancel keeps balance untouched", func(t *testing.T) {
		item := buyItem(t, 100, 1, nil)
		o, err := NewOrder(uuid.New(), "Client", testSource(), []OrderItem{item}, nil, decimal.NewFromInt(40))
		require.NoError(t, err)
		require.NoError(t, o.Cancel())
		assert.True(t, o.Paid.Equal(decimal.NewFromInt(40)))
		assert.True(t, o.Remaining.Equal(decimal.NewFromInt(60)))
	})

	t.Run("cannot cancel twice", func(t *testing.T) {
		item := buyItem(t, 100, 1, nil)
		o, err := NewOrder(uuid.New(), "Client", testSource(), []OrderItem{item}, nil, decimal.Zero)
		require.NoError(t, err)
		require.NoError(t, o.Cancel())
		require.Error(t, o.Cancel())
	})
}

func TestOrder_RentalStockItemIDs(t *testing.T) {
	rental := rentItem(t, 300, 3)
	items := []OrderItem{buyItem(t, 100, 1, nil), rental}
	o, err := NewOrder(uuid.New(), "Client", testSource(), items, nil, decimal.Zero)
	require.NoError(t, err)

	ids := o.RentalStockItemIDs()
	require.Len(t, ids, 1)
	assert.Equal(t, rental.StockItemID, ids[0])
	assert.Len(t, o.StockItemIDs(), 2)
}
