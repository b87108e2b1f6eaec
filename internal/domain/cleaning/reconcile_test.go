package cleaning

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techlogistics/backend/internal/domain/dataset"
	"github.com/techlogistics/backend/internal/domain/quality"
)

func TestReconcile(t *testing.T) {
	c := testCleaner(t)
	rep := quality.NewDatasetReport("transactions")

	inv := inventoryOf(
		dataset.InventoryRecord{SKU: "SKU-1"},
		dataset.InventoryRecord{SKU: "SKU-2"},
	)
	tx := transactionsOf(
		dataset.TransactionRecord{ID: "T1", SKU: "SKU-1", Quantity: int64Ptr(2), UnitPrice: decPtr(100)},
		dataset.TransactionRecord{ID: "T2", SKU: "X999", Quantity: int64Ptr(1), UnitPrice: decPtr(300)},
		dataset.TransactionRecord{ID: "T3", SKU: "X999", Quantity: int64Ptr(1), UnitPrice: decPtr(200)},
		dataset.TransactionRecord{ID: "T4", SKU: "SKU-2", Quantity: int64Ptr(5), UnitPrice: decPtr(100)},
	)

	stats := c.Reconcile(tx, inv, rep)

	assert.Equal(t, 2, stats.Matched)
	assert.Equal(t, 2, stats.Phantom)
	assert.Equal(t, []string{"X999"}, stats.PhantomSKUs)
	assert.True(t, stats.PhantomRevenue.Equal(decimal.NewFromInt(500)))
	assert.True(t, stats.TotalRevenue.Equal(decimal.NewFromInt(1200)))
	assert.InDelta(t, 500.0/1200.0, stats.PhantomRevenueShare, 1e-9)

	// Phantom rows are tagged, never dropped
	require.Len(t, tx.Rows, 4)
	assert.False(t, tx.Rows[0].Phantom)
	assert.True(t, tx.Rows[1].Phantom)
	assert.True(t, tx.Rows[2].Phantom)
	assert.False(t, tx.Rows[3].Phantom)
}

func TestReconcile_EmptySKUIsPhantom(t *testing.T) {
	c := testCleaner(t)
	rep := quality.NewDatasetReport("transactions")

	inv := inventoryOf(dataset.InventoryRecord{SKU: "SKU-1"})
	tx := transactionsOf(dataset.TransactionRecord{ID: "T1", SKU: ""})

	stats := c.Reconcile(tx, inv, rep)

	assert.Equal(t, 0, stats.Matched)
	assert.Equal(t, 1, stats.Phantom)
	assert.Empty(t, stats.PhantomSKUs)
	assert.True(t, tx.Rows[0].Phantom)
}

func TestReconcile_Deterministic(t *testing.T) {
	c := testCleaner(t)

	inv := inventoryOf(dataset.InventoryRecord{SKU: "SKU-1"})
	tx := transactionsOf(
		dataset.TransactionRecord{ID: "T1", SKU: "SKU-1", Quantity: int64Ptr(1), UnitPrice: decPtr(10)},
		dataset.TransactionRecord{ID: "T2", SKU: "GHOST", Quantity: int64Ptr(1), UnitPrice: decPtr(10)},
	)

	first := c.Reconcile(tx, inv, quality.NewDatasetReport("transactions"))
	second := c.Reconcile(tx, inv, quality.NewDatasetReport("transactions"))

	assert.Equal(t, first.Matched, second.Matched)
	assert.Equal(t, first.Phantom, second.Phantom)
	assert.Equal(t, first.PhantomSKUs, second.PhantomSKUs)
	assert.True(t, first.PhantomRevenue.Equal(second.PhantomRevenue))
}
