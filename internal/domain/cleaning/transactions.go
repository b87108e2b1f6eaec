package cleaning

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/techlogistics/backend/internal/domain/dataset"
	"github.com/techlogistics/backend/internal/domain/quality"
)

// CleanTransactions repairs a cloned transactions snapshot. Rows are never
// dropped for referential problems; only exact duplicate IDs are removed.
func (c *Cleaner) CleanTransactions(tx *dataset.Transactions, rep *quality.DatasetReport) *dataset.Transactions {
	out := c.dedupeTransactions(tx, rep)
	now := c.cfg.Now()

	negatives, futures, capped := 0, 0, 0
	for i := range out.Rows {
		r := &out.Rows[i]

		res := c.channels.Normalize(firstNonEmpty(r.Channel, r.ChannelRaw))
		countNormalization(rep.Field("channel"), r.ChannelRaw, res)
		if r.ChannelRaw == "" {
			r.ChannelRaw = r.Channel
		}
		r.Channel = res.Label

		res = c.cities.Normalize(firstNonEmpty(r.City, r.CityRaw))
		countNormalization(rep.Field("city"), r.CityRaw, res)
		if r.CityRaw == "" {
			r.CityRaw = r.City
		}
		r.City = res.Label

		// Negative quantities are data-entry sign errors, not returns;
		// returns come through a separate feed.
		if r.Quantity != nil && *r.Quantity < 0 {
			*r.Quantity = -*r.Quantity
			r.NegativeQuantity = true
			negatives++
		}

		if r.SaleDate != nil && r.SaleDate.After(now) && !r.FutureSaleDate {
			r.FutureSaleDate = true
			futures++
		}

		if r.DeliveryDays != nil && *r.DeliveryDays > c.cfg.DeliveryCapDays {
			*r.DeliveryDays = c.cfg.DeliveryCapDays
			r.DeliveryCapped = true
			capped++
		}
	}
	if negatives > 0 {
		rep.Field("quantity").Corrected += negatives
		rep.Action("corrected %d negative quantities by absolute value", negatives)
	}
	if futures > 0 {
		rep.Field("sale_date").Corrected += futures
		rep.Action("flagged %d future sale dates", futures)
	}
	if capped > 0 {
		rep.Field("delivery_days").Corrected += capped
		rep.Action("capped %d delivery times at %.0f days", capped, c.cfg.DeliveryCapDays)
	}

	c.imputeShipping(out, rep)
	c.flagDeliveryOutliers(out, rep)
	return out
}

func (c *Cleaner) dedupeTransactions(tx *dataset.Transactions, rep *quality.DatasetReport) *dataset.Transactions {
	out := tx.Clone()
	seen := make(map[string]bool, len(out.Rows))
	kept := out.Rows[:0]
	for _, r := range out.Rows {
		if r.ID != "" && seen[r.ID] {
			rep.DuplicatesRemoved++
			continue
		}
		seen[r.ID] = true
		kept = append(kept, r)
	}
	out.Rows = kept
	if rep.DuplicatesRemoved > 0 {
		rep.Action("removed %d duplicate transaction IDs, first occurrence kept", rep.DuplicatesRemoved)
	}
	return out
}

// imputeShipping fills missing shipping costs with the destination-city
// median, falling back to the global median for unseen cities.
func (c *Cleaner) imputeShipping(tx *dataset.Transactions, rep *quality.DatasetReport) {
	samples := make(map[string][]decimal.Decimal)
	for _, r := range tx.Rows {
		if r.ShippingCost != nil && !r.ShippingImputed {
			samples[r.City] = append(samples[r.City], *r.ShippingCost)
		}
	}
	medians := NewDecimalGroupMedians(samples)

	imp := quality.Imputation{Field: "shipping_cost", Strategy: "median by city"}
	for i := range tx.Rows {
		r := &tx.Rows[i]
		if r.ShippingCost != nil {
			continue
		}
		v, fallback, ok := medians.Lookup(r.City)
		if !ok {
			continue
		}
		cost := v
		r.ShippingCost = &cost
		r.ShippingImputed = true
		imp.Count++
		if fallback {
			imp.Fallbacks++
			c.logger.Warn("shipping cost imputed from global median",
				zap.String("transaction_id", r.ID),
				zap.String("city", r.City))
		}
	}
	if imp.Count > 0 {
		rep.AddImputation(imp)
	}
}

func (c *Cleaner) flagDeliveryOutliers(tx *dataset.Transactions, rep *quality.DatasetReport) {
	var values []float64
	for _, r := range tx.Rows {
		if r.DeliveryDays != nil {
			values = append(values, *r.DeliveryDays)
		}
	}
	bounds, ok := c.detector.Bounds(values)
	if !ok {
		return
	}
	flagged := 0
	for i := range tx.Rows {
		r := &tx.Rows[i]
		if r.DeliveryDays == nil {
			continue
		}
		if !bounds.Contains(*r.DeliveryDays) && !r.DeliveryOutlier {
			r.DeliveryOutlier = true
			flagged++
		}
	}
	if flagged > 0 {
		rep.AddOutliers("delivery_days", flagged, bounds)
	}
}
