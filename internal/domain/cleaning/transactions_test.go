package cleaning

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techlogistics/backend/internal/domain/dataset"
	"github.com/techlogistics/backend/internal/domain/quality"
)

func transactionsOf(rows ...dataset.TransactionRecord) *dataset.Transactions {
	return &dataset.Transactions{Rows: rows}
}

func TestCleanTransactions_Dedupe(t *testing.T) {
	c := testCleaner(t)
	rep := quality.NewDatasetReport("transactions")

	out := c.CleanTransactions(transactionsOf(
		dataset.TransactionRecord{ID: "T1", Quantity: int64Ptr(2)},
		dataset.TransactionRecord{ID: "T1", Quantity: int64Ptr(9)},
		dataset.TransactionRecord{ID: "T2", Quantity: int64Ptr(1)},
	), rep)

	require.Len(t, out.Rows, 2)
	assert.Equal(t, int64(2), *out.Rows[0].Quantity)
	assert.Equal(t, 1, rep.DuplicatesRemoved)
}

func TestCleanTransactions_Normalization(t *testing.T) {
	c := testCleaner(t)
	rep := quality.NewDatasetReport("transactions")

	out := c.CleanTransactions(transactionsOf(
		dataset.TransactionRecord{ID: "T1", Channel: "ventas_web", City: "med"},
		dataset.TransactionRecord{ID: "T2", Channel: "???", City: "Leticia"},
	), rep)

	assert.Equal(t, "Online", out.Rows[0].Channel)
	assert.Equal(t, "Medellín", out.Rows[0].City)

	assert.Equal(t, UnknownLabel, out.Rows[1].Channel)
	assert.Equal(t, "Leticia", out.Rows[1].City)
	assert.Equal(t, 1, rep.Fields["city"].Unmapped)
}

func TestCleanTransactions_QuantityAndDates(t *testing.T) {
	c := testCleaner(t)
	rep := quality.NewDatasetReport("transactions")

	past := testNow.AddDate(0, -1, 0)
	future := testNow.AddDate(0, 0, 7)

	out := c.CleanTransactions(transactionsOf(
		dataset.TransactionRecord{ID: "T1", Quantity: int64Ptr(-4), SaleDate: timePtr(past)},
		dataset.TransactionRecord{ID: "T2", Quantity: int64Ptr(3), SaleDate: timePtr(future)},
	), rep)

	assert.Equal(t, int64(4), *out.Rows[0].Quantity)
	assert.True(t, out.Rows[0].NegativeQuantity)
	assert.False(t, out.Rows[0].FutureSaleDate)

	assert.True(t, out.Rows[1].FutureSaleDate)
	assert.Equal(t, int64(3), *out.Rows[1].Quantity)

	assert.Equal(t, 1, rep.Fields["quantity"].Corrected)
	assert.Equal(t, 1, rep.Fields["sale_date"].Corrected)
}

func TestCleanTransactions_DeliveryCap(t *testing.T) {
	c := testCleaner(t)
	rep := quality.NewDatasetReport("transactions")

	out := c.CleanTransactions(transactionsOf(
		dataset.TransactionRecord{ID: "T1", DeliveryDays: floatPtr(120)},
		dataset.TransactionRecord{ID: "T2", DeliveryDays: floatPtr(5)},
	), rep)

	assert.Equal(t, 90.0, *out.Rows[0].DeliveryDays)
	assert.True(t, out.Rows[0].DeliveryCapped)
	assert.Equal(t, 5.0, *out.Rows[1].DeliveryDays)
	assert.False(t, out.Rows[1].DeliveryCapped)
}

func TestCleanTransactions_ShippingImputation(t *testing.T) {
	c := testCleaner(t)
	rep := quality.NewDatasetReport("transactions")

	out := c.CleanTransactions(transactionsOf(
		dataset.TransactionRecord{ID: "T1", City: "bogota", ShippingCost: decPtr(10)},
		dataset.TransactionRecord{ID: "T2", City: "bogota", ShippingCost: decPtr(14)},
		dataset.TransactionRecord{ID: "T3", City: "bogota"},
		dataset.TransactionRecord{ID: "T4", City: "cali"},
	), rep)

	require.NotNil(t, out.Rows[2].ShippingCost)
	assert.True(t, out.Rows[2].ShippingCost.Equal(decimal.NewFromInt(12)))
	assert.True(t, out.Rows[2].ShippingImputed)

	// Cali has no observed costs, the global median applies
	require.NotNil(t, out.Rows[3].ShippingCost)
	assert.True(t, out.Rows[3].ShippingCost.Equal(decimal.NewFromInt(12)))

	require.Len(t, rep.Imputations, 1)
	assert.Equal(t, "shipping_cost", rep.Imputations[0].Field)
	assert.Equal(t, 2, rep.Imputations[0].Count)
	assert.Equal(t, 1, rep.Imputations[0].Fallbacks)
}

func TestCleanTransactions_DeliveryOutliers(t *testing.T) {
	c := testCleaner(t)
	rep := quality.NewDatasetReport("transactions")

	rows := make([]dataset.TransactionRecord, 0, 6)
	for i, days := range []float64{1, 2, 3, 4, 5, 80} {
		rows = append(rows, dataset.TransactionRecord{
			ID:           string(rune('A' + i)),
			DeliveryDays: floatPtr(days),
		})
	}

	out := c.CleanTransactions(transactionsOf(rows...), rep)

	assert.True(t, out.Rows[5].DeliveryOutlier)
	for i := 0; i < 5; i++ {
		assert.False(t, out.Rows[i].DeliveryOutlier, "row %d", i)
	}
	assert.Equal(t, 1, rep.Outliers["delivery_days"].Count)
}

func TestCleanTransactions_Idempotent(t *testing.T) {
	c := testCleaner(t)

	in := transactionsOf(
		dataset.TransactionRecord{ID: "T1", Channel: "web", City: "bog", Quantity: int64Ptr(-2), UnitPrice: decPtr(100), ShippingCost: decPtr(10), DeliveryDays: floatPtr(120)},
		dataset.TransactionRecord{ID: "T1", Channel: "web", City: "bog", Quantity: int64Ptr(1)},
		dataset.TransactionRecord{ID: "T2", Channel: "app", City: "cali", Quantity: int64Ptr(1), UnitPrice: decPtr(50), ShippingCost: decPtr(8), DeliveryDays: floatPtr(3)},
		dataset.TransactionRecord{ID: "T3", Channel: "tienda", City: "bog", Quantity: int64Ptr(2), UnitPrice: decPtr(20)},
	)

	firstRep := quality.NewDatasetReport("transactions")
	once := c.CleanTransactions(in, firstRep)
	require.Positive(t, firstRep.TotalDefects())

	secondRep := quality.NewDatasetReport("transactions")
	twice := c.CleanTransactions(once, secondRep)

	assert.Equal(t, 0, secondRep.TotalDefects(), "second pass found defects: %+v", secondRep.Fields)
	assert.Equal(t, once.Rows, twice.Rows)
}
