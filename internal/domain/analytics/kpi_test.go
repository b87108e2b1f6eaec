package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/techlogistics/backend/internal/domain/dataset"
)

func TestComputeKPIs(t *testing.T) {
	inv := []dataset.InventoryRecord{
		{SKU: "S1", UnitCost: dPtr(40), Stock: iPtr(20), LeadTimeDays: fPtr(6)},
		{SKU: "S2", UnitCost: dPtr(10), Stock: iPtr(0), LeadTimeDays: fPtr(2)},
	}
	rows := []Row{
		{
			Tx:  &dataset.TransactionRecord{ID: "T1", SKU: "S1", Quantity: iPtr(2), UnitPrice: dPtr(100), DeliveryDays: fPtr(4)},
			Inv: &inv[0],
			Fb:  &dataset.FeedbackRecord{ID: "F1", NPS: fPtr(60), NPSCategory: dataset.NPSPromoter, ProductRating: fPtr(4), LogisticsRating: fPtr(5), SupportTicket: bPtr(false)},
		},
		{
			Tx:  &dataset.TransactionRecord{ID: "T2", SKU: "S2", Quantity: iPtr(1), UnitPrice: dPtr(50), DeliveryDays: fPtr(8)},
			Inv: &inv[1],
			Fb:  &dataset.FeedbackRecord{ID: "F2", NPS: fPtr(-30), NPSCategory: dataset.NPSDetractor, ProductRating: fPtr(2), LogisticsRating: fPtr(1), SupportTicket: bPtr(true)},
		},
		{
			Tx: &dataset.TransactionRecord{ID: "T3", SKU: "GHOST", Quantity: iPtr(1), UnitPrice: dPtr(50), Phantom: true},
		},
	}

	k := ComputeKPIs(rows, inv)

	assert.Equal(t, 3, k.TotalOrders)
	assert.Equal(t, int64(4), k.TotalUnits)
	assert.True(t, k.TotalRevenue.Equal(decimal.NewFromInt(300)))
	assert.True(t, k.AvgOrderValue.Equal(decimal.NewFromInt(100)))

	// margin: T1 200-80=120, T2 50-10=40, T3 50-0=50
	assert.True(t, k.TotalMargin.Equal(decimal.NewFromInt(210)))

	assert.Equal(t, 1, k.PhantomOrders)
	assert.True(t, k.PhantomRevenue.Equal(decimal.NewFromInt(50)))
	assert.InDelta(t, 50.0/300.0, k.PhantomRevenueShare, 1e-9)

	assert.InDelta(t, 6, k.AvgDeliveryDays, 1e-9)
	assert.InDelta(t, 4, k.AvgLeadTimeDays, 1e-9)

	// gaps: T1 4-6=-2 early, T2 8-2=6 critical, T3 not computable
	assert.Equal(t, map[string]int{TierEarly: 1, TierCriticalDelay: 1}, k.DeliveryTiers)
	assert.InDelta(t, 2.0/3.0, k.FeedbackMatchRate, 1e-9)

	assert.InDelta(t, 15, k.AvgNPS, 1e-9)
	assert.InDelta(t, 0.5, k.PromoterShare, 1e-9)
	assert.InDelta(t, 0.5, k.DetractorShare, 1e-9)
	assert.InDelta(t, 3, k.AvgProductRating, 1e-9)
	assert.InDelta(t, 3, k.AvgLogisticsRating, 1e-9)
	assert.InDelta(t, 0.5, k.SupportTicketRate, 1e-9)

	assert.InDelta(t, 0.5, k.StockoutRate, 1e-9)
}

func TestComputeKPIs_Empty(t *testing.T) {
	k := ComputeKPIs(nil, nil)
	assert.Zero(t, k.TotalOrders)
	assert.True(t, k.TotalRevenue.IsZero())
	assert.True(t, k.AvgOrderValue.IsZero())
	assert.Zero(t, k.StockoutRate)
}
