package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/techlogistics/backend/internal/domain/dataset"
)

// Row is one transaction joined with its inventory master record and, when
// present, the customer feedback tied to the transaction. Inv is nil for
// phantom transactions and Fb is nil when no feedback was filed; analyses
// that need either must skip rows missing it.
type Row struct {
	Tx  *dataset.TransactionRecord
	Inv *dataset.InventoryRecord
	Fb  *dataset.FeedbackRecord
}

// Enrich joins the cleaned datasets into analysis rows. Transactions drive
// the join: every transaction yields exactly one row.
func Enrich(tx *dataset.Transactions, inv *dataset.Inventory, fb *dataset.Feedback) []Row {
	bySKU := inv.BySKU()
	byTxID := fb.ByTransactionID()
	rows := make([]Row, 0, len(tx.Rows))
	for i := range tx.Rows {
		t := &tx.Rows[i]
		rows = append(rows, Row{
			Tx:  t,
			Inv: bySKU[t.SKU],
			Fb:  byTxID[t.ID],
		})
	}
	return rows
}

// Revenue returns quantity times unit price for the transaction.
func (r *Row) Revenue() decimal.Decimal {
	return r.Tx.Revenue()
}

// TotalCost returns unit cost times quantity plus shipping. Zero when the
// inventory record is missing (phantom rows have no known cost).
func (r *Row) TotalCost() decimal.Decimal {
	cost := decimal.Zero
	if r.Inv != nil && r.Inv.UnitCost != nil && r.Tx.Quantity != nil {
		cost = r.Inv.UnitCost.Mul(decimal.NewFromInt(*r.Tx.Quantity))
	}
	if r.Tx.ShippingCost != nil {
		cost = cost.Add(*r.Tx.ShippingCost)
	}
	return cost
}

// Margin returns revenue minus total cost.
func (r *Row) Margin() decimal.Decimal {
	return r.Revenue().Sub(r.TotalCost())
}

// DeliveryGap returns actual delivery days minus the promised lead time,
// false when either side is missing or the row is phantom.
func (r *Row) DeliveryGap() (float64, bool) {
	if r.Tx.DeliveryDays == nil || r.Inv == nil || r.Inv.LeadTimeDays == nil {
		return 0, false
	}
	return *r.Tx.DeliveryDays - *r.Inv.LeadTimeDays, true
}

// Delivery performance tiers derived from the delivery gap.
const (
	TierVeryEarly     = "very_early"
	TierEarly         = "early"
	TierOnTime        = "on_time"
	TierSlightDelay   = "slight_delay"
	TierCriticalDelay = "critical_delay"
)

// DeliveryTier classifies the delivery gap into a performance tier, false
// when the gap is not computable for the row.
func (r *Row) DeliveryTier() (string, bool) {
	gap, ok := r.DeliveryGap()
	if !ok {
		return "", false
	}
	switch {
	case gap <= -3:
		return TierVeryEarly, true
	case gap < 0:
		return TierEarly, true
	case gap == 0:
		return TierOnTime, true
	case gap <= 3:
		return TierSlightDelay, true
	default:
		return TierCriticalDelay, true
	}
}

// HasOutlier reports whether any flagged outlier touches the row.
func (r *Row) HasOutlier() bool {
	if r.Tx.DeliveryOutlier {
		return true
	}
	if r.Inv != nil && (r.Inv.CostOutlier || r.Inv.LeadTimeOutlier) {
		return true
	}
	return false
}
