package cleaning

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/techlogistics/backend/internal/domain/dataset"
	"github.com/techlogistics/backend/internal/domain/quality"
)

// ReconcileStats summarizes the referential check between transactions and
// the inventory master.
type ReconcileStats struct {
	Matched             int             `json:"matched"`
	Phantom             int             `json:"phantom"`
	PhantomSKUs         []string        `json:"phantom_skus,omitempty"`
	PhantomRevenue      decimal.Decimal `json:"phantom_revenue"`
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	PhantomRevenueShare float64         `json:"phantom_revenue_share"`
}

// Reconcile classifies each transaction as matched or phantom against the
// inventory master. Phantom rows are tagged and kept; revenue that cannot
// be traced to a known SKU is a finding, not noise to discard.
func (c *Cleaner) Reconcile(tx *dataset.Transactions, inv *dataset.Inventory, rep *quality.DatasetReport) ReconcileStats {
	known := inv.BySKU()
	stats := ReconcileStats{
		PhantomRevenue: decimal.Zero,
		TotalRevenue:   decimal.Zero,
	}
	phantomSKUs := make(map[string]bool)

	for i := range tx.Rows {
		r := &tx.Rows[i]
		revenue := r.Revenue()
		stats.TotalRevenue = stats.TotalRevenue.Add(revenue)

		if _, ok := known[r.SKU]; ok && r.SKU != "" {
			r.Phantom = false
			stats.Matched++
			continue
		}
		r.Phantom = true
		stats.Phantom++
		stats.PhantomRevenue = stats.PhantomRevenue.Add(revenue)
		if r.SKU != "" && !phantomSKUs[r.SKU] {
			phantomSKUs[r.SKU] = true
			stats.PhantomSKUs = append(stats.PhantomSKUs, r.SKU)
		}
	}

	if stats.TotalRevenue.IsPositive() {
		stats.PhantomRevenueShare = stats.PhantomRevenue.Div(stats.TotalRevenue).InexactFloat64()
	}
	if stats.Phantom > 0 {
		rep.Action("tagged %d phantom transactions across %d unknown SKUs",
			stats.Phantom, len(stats.PhantomSKUs))
		c.logger.Info("reconciliation found phantom sales",
			zap.Int("transactions", stats.Phantom),
			zap.Int("skus", len(stats.PhantomSKUs)),
			zap.String("revenue", stats.PhantomRevenue.String()))
	}
	return stats
}
