package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techlogistics/backend/internal/domain/dataset"
)

func filterFixture() []Row {
	laptops := dataset.InventoryRecord{SKU: "L1", Category: "Laptops", Warehouse: "Norte"}
	audio := dataset.InventoryRecord{SKU: "A1", Category: "Audio", Warehouse: "Sur", CostOutlier: true}

	jan := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	return []Row{
		{Tx: &dataset.TransactionRecord{ID: "T1", SKU: "L1", Channel: "Online", City: "Bogotá", SaleDate: tPtr(jan)}, Inv: &laptops},
		{Tx: &dataset.TransactionRecord{ID: "T2", SKU: "A1", Channel: "Retail", City: "Cali", SaleDate: tPtr(jun)}, Inv: &audio},
		{Tx: &dataset.TransactionRecord{ID: "T3", SKU: "GHOST", Channel: "Online", City: "Cali", SaleDate: tPtr(jun), Phantom: true}},
	}
}

func TestFilterSpec_Default(t *testing.T) {
	rows := filterFixture()
	out := DefaultFilterSpec().Apply(rows)
	assert.Len(t, out, 3)
}

func TestFilterSpec_Phantom(t *testing.T) {
	rows := filterFixture()

	spec := DefaultFilterSpec()
	spec.IncludePhantom = false
	out := spec.Apply(rows)

	require.Len(t, out, 2)
	for _, r := range out {
		assert.False(t, r.Tx.Phantom)
	}
}

func TestFilterSpec_Outliers(t *testing.T) {
	rows := filterFixture()

	spec := DefaultFilterSpec()
	spec.IncludeOutliers = false
	out := spec.Apply(rows)

	require.Len(t, out, 2)
	for _, r := range out {
		assert.False(t, r.HasOutlier())
	}
}

func TestFilterSpec_DateRange(t *testing.T) {
	rows := filterFixture()

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	spec := DefaultFilterSpec()
	spec.From = &from
	out := spec.Apply(rows)

	require.Len(t, out, 2)
	assert.Equal(t, "T2", out[0].Tx.ID)

	to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	spec = DefaultFilterSpec()
	spec.To = &to
	out = spec.Apply(rows)

	require.Len(t, out, 1)
	assert.Equal(t, "T1", out[0].Tx.ID)
}

func TestFilterSpec_Segments(t *testing.T) {
	rows := filterFixture()

	t.Run("channel is case-insensitive", func(t *testing.T) {
		spec := DefaultFilterSpec()
		spec.Channels = []string{"ONLINE"}
		assert.Len(t, spec.Apply(rows), 2)
	})

	t.Run("city", func(t *testing.T) {
		spec := DefaultFilterSpec()
		spec.Cities = []string{"cali"}
		assert.Len(t, spec.Apply(rows), 2)
	})

	t.Run("category excludes phantom rows", func(t *testing.T) {
		// A category restriction needs the inventory side of the join,
		// which phantom rows do not have.
		spec := DefaultFilterSpec()
		spec.Categories = []string{"Laptops"}
		out := spec.Apply(rows)
		require.Len(t, out, 1)
		assert.Equal(t, "T1", out[0].Tx.ID)
	})

	t.Run("warehouse", func(t *testing.T) {
		spec := DefaultFilterSpec()
		spec.Warehouses = []string{"Sur"}
		out := spec.Apply(rows)
		require.Len(t, out, 1)
		assert.Equal(t, "T2", out[0].Tx.ID)
	})
}

func TestFilterSpec_ApplyIsPure(t *testing.T) {
	rows := filterFixture()

	specA := DefaultFilterSpec()
	specA.Channels = []string{"Online"}
	specB := DefaultFilterSpec()
	specB.IncludePhantom = false

	firstA := specA.Apply(rows)
	_ = specB.Apply(rows)
	secondA := specA.Apply(rows)

	assert.Equal(t, firstA, secondA)
	assert.Len(t, rows, 3)
}
