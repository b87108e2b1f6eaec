package cleaning

import (
	"go.uber.org/zap"

	"github.com/techlogistics/backend/internal/domain/dataset"
	"github.com/techlogistics/backend/internal/domain/quality"
)

// CleanInventory repairs a cloned inventory snapshot and records every
// action in the dataset report. The input snapshot is left untouched.
func (c *Cleaner) CleanInventory(inv *dataset.Inventory, rep *quality.DatasetReport) *dataset.Inventory {
	out := c.dedupeInventory(inv, rep)
	now := c.cfg.Now()

	for i := range out.Rows {
		r := &out.Rows[i]

		res := c.categories.Normalize(firstNonEmpty(r.Category, r.CategoryRaw))
		countNormalization(rep.Field("category"), r.CategoryRaw, res)
		if r.CategoryRaw == "" {
			r.CategoryRaw = r.Category
		}
		r.Category = res.Label

		res = c.warehouses.Normalize(firstNonEmpty(r.Warehouse, r.WarehouseRaw))
		countNormalization(rep.Field("warehouse"), r.WarehouseRaw, res)
		if r.WarehouseRaw == "" {
			r.WarehouseRaw = r.Warehouse
		}
		r.Warehouse = res.Label

		// Lead times arrive as free text; parse only when a previous run
		// has not already produced a numeric value.
		if r.LeadTimeDays == nil && r.LeadTimeRaw != "" {
			if days, ok := ParseLeadTime(r.LeadTimeRaw); ok {
				r.LeadTimeDays = &days
				rep.Field("lead_time_days").Corrected++
			}
		}
	}

	c.imputeLeadTimes(out, rep)
	c.repairStock(out, rep)
	c.flagCostOutliers(out, rep)
	c.flagLeadTimeOutliers(out, rep)

	for i := range out.Rows {
		r := &out.Rows[i]
		if r.LastReview == nil {
			continue
		}
		if r.LastReview.After(now) {
			if !r.FutureReview {
				r.FutureReview = true
				rep.Field("last_review").Corrected++
			}
			continue
		}
		days := int(now.Sub(*r.LastReview).Hours() / 24)
		r.DaysSinceReview = &days
	}

	return out
}

func (c *Cleaner) dedupeInventory(inv *dataset.Inventory, rep *quality.DatasetReport) *dataset.Inventory {
	out := inv.Clone()
	seen := make(map[string]bool, len(out.Rows))
	kept := out.Rows[:0]
	for _, r := range out.Rows {
		if r.SKU != "" && seen[r.SKU] {
			rep.DuplicatesRemoved++
			continue
		}
		seen[r.SKU] = true
		kept = append(kept, r)
	}
	out.Rows = kept
	if rep.DuplicatesRemoved > 0 {
		rep.Action("removed %d duplicate SKU rows, first occurrence kept", rep.DuplicatesRemoved)
	}
	return out
}

// imputeLeadTimes fills missing lead times with the category median,
// falling back to the global median when the category has no valid values.
func (c *Cleaner) imputeLeadTimes(inv *dataset.Inventory, rep *quality.DatasetReport) {
	samples := make(map[string][]float64)
	for _, r := range inv.Rows {
		if r.LeadTimeDays != nil && !r.LeadTimeImputed {
			samples[r.Category] = append(samples[r.Category], *r.LeadTimeDays)
		}
	}
	medians := NewGroupMedians(samples)

	imp := quality.Imputation{Field: "lead_time_days", Strategy: "median by category"}
	for i := range inv.Rows {
		r := &inv.Rows[i]
		if r.LeadTimeDays != nil {
			continue
		}
		v, fallback, ok := medians.Lookup(r.Category)
		if !ok {
			continue
		}
		r.LeadTimeDays = &v
		r.LeadTimeImputed = true
		imp.Count++
		if fallback {
			imp.Fallbacks++
			c.logger.Warn("lead time imputed from global median",
				zap.String("sku", r.SKU),
				zap.String("category", r.Category))
		}
	}
	if imp.Count > 0 {
		rep.AddImputation(imp)
	}
}

// repairStock turns missing stock into an explicit stockout and corrects
// negative counts to zero.
func (c *Cleaner) repairStock(inv *dataset.Inventory, rep *quality.DatasetReport) {
	stockouts, negatives := 0, 0
	for i := range inv.Rows {
		r := &inv.Rows[i]
		if r.Stock == nil {
			zero := int64(0)
			r.Stock = &zero
			r.StockoutImputed = true
			stockouts++
			continue
		}
		if *r.Stock < 0 {
			*r.Stock = 0
			r.NegativeStock = true
			negatives++
		}
	}
	if stockouts > 0 {
		rep.Field("stock").Imputed += stockouts
		rep.Action("treated %d missing stock values as stockouts", stockouts)
	}
	if negatives > 0 {
		rep.Field("stock").Corrected += negatives
		rep.Action("corrected %d negative stock counts to zero", negatives)
	}
}

func (c *Cleaner) flagCostOutliers(inv *dataset.Inventory, rep *quality.DatasetReport) {
	var values []float64
	for _, r := range inv.Rows {
		if r.UnitCost != nil {
			values = append(values, r.UnitCost.InexactFloat64())
		}
	}
	bounds, ok := c.detector.Bounds(values)
	if !ok {
		return
	}
	flagged := 0
	for i := range inv.Rows {
		r := &inv.Rows[i]
		if r.UnitCost == nil {
			continue
		}
		if !bounds.Contains(r.UnitCost.InexactFloat64()) && !r.CostOutlier {
			r.CostOutlier = true
			flagged++
		}
	}
	if flagged > 0 {
		rep.AddOutliers("unit_cost", flagged, bounds)
	}
}

// flagLeadTimeOutliers computes IQR bounds per category because lead-time
// distributions differ by product line; a pooled fence would flag every
// slow-moving category wholesale.
func (c *Cleaner) flagLeadTimeOutliers(inv *dataset.Inventory, rep *quality.DatasetReport) {
	samples := make(map[string][]float64)
	for _, r := range inv.Rows {
		if r.LeadTimeDays != nil {
			samples[r.Category] = append(samples[r.Category], *r.LeadTimeDays)
		}
	}
	boundsByCategory := make(map[string]quality.Bounds, len(samples))
	var reference quality.Bounds
	largest := 0
	for category, values := range samples {
		b, ok := c.detector.Bounds(values)
		if !ok {
			continue
		}
		boundsByCategory[category] = b
		if len(values) > largest {
			largest = len(values)
			reference = b
		}
	}
	flagged := 0
	for i := range inv.Rows {
		r := &inv.Rows[i]
		bounds, ok := boundsByCategory[r.Category]
		if !ok || r.LeadTimeDays == nil {
			continue
		}
		if !bounds.Contains(*r.LeadTimeDays) && !r.LeadTimeOutlier {
			r.LeadTimeOutlier = true
			flagged++
		}
	}
	if flagged > 0 {
		// The summary carries the bounds of the best-sampled category;
		// per-category fences stay internal.
		rep.AddOutliers("lead_time_days", flagged, reference)
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
