package analytics

import (
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/techlogistics/backend/internal/domain/dataset"
)

// DefaultMinSample is the row count below which a result is flagged
// low-confidence.
const DefaultMinSample = 30

// DefaultBlindThresholdDays is the review-age threshold that marks a
// warehouse as blind.
const DefaultBlindThresholdDays = 180

// Stock tier boundaries.
const (
	TierStockout = "stockout"
	TierLow      = "low"
	TierNormal   = "normal"
	TierHigh     = "high"

	lowStockMax    = 10
	normalStockMax = 50
)

// Meta carries the transparency fields every analysis result reports.
type Meta struct {
	RowCount      int  `json:"row_count"`
	LowConfidence bool `json:"low_confidence"`
}

// Engine computes the fixed business analyses over filtered rows.
type Engine struct {
	minSample          int
	blindThresholdDays int
	logger             *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMinSample overrides the low-confidence threshold.
func WithMinSample(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.minSample = n
		}
	}
}

// WithBlindThreshold overrides the blind-warehouse review-age threshold.
func WithBlindThreshold(days int) EngineOption {
	return func(e *Engine) {
		if days > 0 {
			e.blindThresholdDays = days
		}
	}
}

// WithEngineLogger attaches a logger.
func WithEngineLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine builds an Engine with the default thresholds.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		minSample:          DefaultMinSample,
		blindThresholdDays: DefaultBlindThresholdDays,
		logger:             zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) meta(rowCount int) Meta {
	return Meta{RowCount: rowCount, LowConfidence: rowCount < e.minSample}
}

// Result bundles everything one analytical query returns.
type Result struct {
	Filter            FilterSpec              `json:"filter"`
	KPIs              KPISet                  `json:"kpis"`
	MarginLeak        MarginLeakResult        `json:"margin_leak"`
	Logistics         LogisticsResult         `json:"logistics_correlation"`
	InvisibleSales    InvisibleSalesResult    `json:"invisible_sales"`
	StockSatisfaction StockSatisfactionResult `json:"stock_satisfaction"`
	BlindWarehouses   BlindWarehousesResult   `json:"blind_warehouses"`
}

// Run applies the filter and computes the KPI set plus the five analyses.
func (e *Engine) Run(rows []Row, inv *dataset.Inventory, spec FilterSpec) Result {
	filtered := spec.Apply(rows)
	scopedInv := e.scopeInventory(inv, spec)
	e.logger.Debug("analytical run",
		zap.Int("rows_in", len(rows)),
		zap.Int("rows_filtered", len(filtered)))
	return Result{
		Filter:            spec,
		KPIs:              ComputeKPIs(filtered, scopedInv),
		MarginLeak:        e.MarginLeak(filtered),
		Logistics:         e.LogisticsCorrelation(filtered),
		InvisibleSales:    e.InvisibleSales(filtered),
		StockSatisfaction: e.StockSatisfaction(filtered),
		BlindWarehouses:   e.BlindWarehouses(scopedInv),
	}
}

// scopeInventory restricts the inventory master to the filter's warehouse
// and category sets. Date and channel filters do not apply to the master.
func (e *Engine) scopeInventory(inv *dataset.Inventory, spec FilterSpec) []dataset.InventoryRecord {
	categories := newMemberSet(spec.Categories)
	warehouses := newMemberSet(spec.Warehouses)
	out := make([]dataset.InventoryRecord, 0, len(inv.Rows))
	for i := range inv.Rows {
		r := &inv.Rows[i]
		if !categories.contains(r.Category) || !warehouses.contains(r.Warehouse) {
			continue
		}
		if !spec.IncludeOutliers && (r.CostOutlier || r.LeadTimeOutlier) {
			continue
		}
		out = append(out, *r)
	}
	return out
}

// SKUMargin is one entry in the margin-leak ranking.
type SKUMargin struct {
	SKU      string          `json:"sku"`
	Category string          `json:"category"`
	Orders   int             `json:"orders"`
	Revenue  decimal.Decimal `json:"revenue"`
	Cost     decimal.Decimal `json:"cost"`
	Margin   decimal.Decimal `json:"margin"`
}

// MarginLeakResult lists SKUs whose aggregate margin is negative.
type MarginLeakResult struct {
	Meta
	Losing    []SKUMargin     `json:"losing,omitempty"`
	TotalLoss decimal.Decimal `json:"total_loss"`
}

// MarginLeak aggregates margin per SKU over matched rows and ranks the
// loss-makers worst first. Phantom rows have no known cost and are covered
// by the invisible-sales analysis instead.
func (e *Engine) MarginLeak(rows []Row) MarginLeakResult {
	type agg struct {
		category string
		orders   int
		revenue  decimal.Decimal
		cost     decimal.Decimal
	}
	perSKU := make(map[string]*agg)
	matched := 0
	for i := range rows {
		r := &rows[i]
		if r.Inv == nil {
			continue
		}
		matched++
		a := perSKU[r.Tx.SKU]
		if a == nil {
			a = &agg{category: r.Inv.Category, revenue: decimal.Zero, cost: decimal.Zero}
			perSKU[r.Tx.SKU] = a
		}
		a.orders++
		a.revenue = a.revenue.Add(r.Revenue())
		a.cost = a.cost.Add(r.TotalCost())
	}

	res := MarginLeakResult{Meta: e.meta(matched), TotalLoss: decimal.Zero}
	for sku, a := range perSKU {
		margin := a.revenue.Sub(a.cost)
		if margin.IsNegative() {
			res.Losing = append(res.Losing, SKUMargin{
				SKU:      sku,
				Category: a.category,
				Orders:   a.orders,
				Revenue:  a.revenue,
				Cost:     a.cost,
				Margin:   margin,
			})
			res.TotalLoss = res.TotalLoss.Add(margin)
		}
	}
	sort.Slice(res.Losing, func(i, j int) bool {
		if c := res.Losing[i].Margin.Cmp(res.Losing[j].Margin); c != 0 {
			return c < 0
		}
		return res.Losing[i].SKU < res.Losing[j].SKU
	})
	return res
}

// LogisticsResult reports the delivery-gap / NPS correlation.
type LogisticsResult struct {
	Meta
	Coefficient float64 `json:"coefficient"`
	Computable  bool    `json:"computable"`
	AvgGapDays  float64 `json:"avg_gap_days"`
}

// LogisticsCorrelation correlates the delivery-time gap, actual minus
// promised, with the NPS score. Only matched rows that carry both sides
// enter the sample.
func (e *Engine) LogisticsCorrelation(rows []Row) LogisticsResult {
	var gaps, scores []float64
	var gapSum float64
	for i := range rows {
		r := &rows[i]
		if r.Tx.Phantom || r.Fb == nil || r.Fb.NPS == nil {
			continue
		}
		gap, ok := r.DeliveryGap()
		if !ok {
			continue
		}
		gaps = append(gaps, gap)
		scores = append(scores, *r.Fb.NPS)
		gapSum += gap
	}
	res := LogisticsResult{Meta: e.meta(len(gaps))}
	if len(gaps) > 0 {
		res.AvgGapDays = gapSum / float64(len(gaps))
	}
	res.Coefficient, res.Computable = Pearson(gaps, scores)
	return res
}

// SegmentImpact is the phantom share within one channel or city.
type SegmentImpact struct {
	Segment        string          `json:"segment"`
	Orders         int             `json:"orders"`
	PhantomOrders  int             `json:"phantom_orders"`
	Revenue        decimal.Decimal `json:"revenue"`
	PhantomRevenue decimal.Decimal `json:"phantom_revenue"`
	OrderShare     float64         `json:"order_share"`
	RevenueShare   float64         `json:"revenue_share"`
}

// InvisibleSalesResult quantifies revenue booked against unknown SKUs.
type InvisibleSalesResult struct {
	Meta
	PhantomOrders  int             `json:"phantom_orders"`
	PhantomRevenue decimal.Decimal `json:"phantom_revenue"`
	RevenueShare   float64         `json:"revenue_share"`
	ByChannel      []SegmentImpact `json:"by_channel,omitempty"`
	ByCity         []SegmentImpact `json:"by_city,omitempty"`
}

// InvisibleSales segments phantom order and revenue share by channel and by
// city. With phantoms filtered out the result is legitimately all zeros.
func (e *Engine) InvisibleSales(rows []Row) InvisibleSalesResult {
	res := InvisibleSalesResult{Meta: e.meta(len(rows)), PhantomRevenue: decimal.Zero}
	total := decimal.Zero
	byChannel := make(map[string]*SegmentImpact)
	byCity := make(map[string]*SegmentImpact)

	bump := func(m map[string]*SegmentImpact, key string, revenue decimal.Decimal, phantom bool) {
		s := m[key]
		if s == nil {
			s = &SegmentImpact{Segment: key, Revenue: decimal.Zero, PhantomRevenue: decimal.Zero}
			m[key] = s
		}
		s.Orders++
		s.Revenue = s.Revenue.Add(revenue)
		if phantom {
			s.PhantomOrders++
			s.PhantomRevenue = s.PhantomRevenue.Add(revenue)
		}
	}

	for i := range rows {
		r := &rows[i]
		revenue := r.Revenue()
		total = total.Add(revenue)
		if r.Tx.Phantom {
			res.PhantomOrders++
			res.PhantomRevenue = res.PhantomRevenue.Add(revenue)
		}
		bump(byChannel, r.Tx.Channel, revenue, r.Tx.Phantom)
		bump(byCity, r.Tx.City, revenue, r.Tx.Phantom)
	}
	if total.IsPositive() {
		res.RevenueShare = res.PhantomRevenue.Div(total).InexactFloat64()
	}
	res.ByChannel = finishSegments(byChannel)
	res.ByCity = finishSegments(byCity)
	return res
}

func finishSegments(m map[string]*SegmentImpact) []SegmentImpact {
	out := make([]SegmentImpact, 0, len(m))
	for _, s := range m {
		if s.Orders > 0 {
			s.OrderShare = float64(s.PhantomOrders) / float64(s.Orders)
		}
		if s.Revenue.IsPositive() {
			s.RevenueShare = s.PhantomRevenue.Div(s.Revenue).InexactFloat64()
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PhantomRevenue.Cmp(out[j].PhantomRevenue) > 0
	})
	return out
}

// StockTier is the mean satisfaction within one stock bucket.
type StockTier struct {
	Tier       string  `json:"tier"`
	Rows       int     `json:"rows"`
	MeanRating float64 `json:"mean_rating"`
}

// StockSatisfactionResult relates stock tiers to product ratings.
type StockSatisfactionResult struct {
	Meta
	Tiers   []StockTier `json:"tiers"`
	Paradox bool        `json:"paradox"`
}

// StockSatisfaction buckets rows by the SKU's current stock and reports the
// mean product rating per tier. The paradox flag fires when the stockout or
// low tier rates at least as well as the high tier, meaning scarce products
// are not the unpopular ones.
func (e *Engine) StockSatisfaction(rows []Row) StockSatisfactionResult {
	sums := map[string]float64{}
	counts := map[string]int{}
	sampled := 0
	for i := range rows {
		r := &rows[i]
		if r.Inv == nil || r.Inv.Stock == nil || r.Fb == nil || r.Fb.ProductRating == nil {
			continue
		}
		tier := stockTier(*r.Inv.Stock)
		sums[tier] += *r.Fb.ProductRating
		counts[tier]++
		sampled++
	}

	res := StockSatisfactionResult{Meta: e.meta(sampled)}
	for _, tier := range []string{TierStockout, TierLow, TierNormal, TierHigh} {
		if counts[tier] == 0 {
			continue
		}
		res.Tiers = append(res.Tiers, StockTier{
			Tier:       tier,
			Rows:       counts[tier],
			MeanRating: sums[tier] / float64(counts[tier]),
		})
	}

	mean := func(tier string) (float64, bool) {
		if counts[tier] == 0 {
			return 0, false
		}
		return sums[tier] / float64(counts[tier]), true
	}
	if high, ok := mean(TierHigh); ok {
		if scarce, ok := mean(TierStockout); ok && scarce >= high {
			res.Paradox = true
		}
		if low, ok := mean(TierLow); ok && low >= high {
			res.Paradox = true
		}
	}
	return res
}

func stockTier(stock int64) string {
	switch {
	case stock <= 0:
		return TierStockout
	case stock <= lowStockMax:
		return TierLow
	case stock <= normalStockMax:
		return TierNormal
	default:
		return TierHigh
	}
}

// BlindWarehouse is one warehouse past the review-age threshold.
type BlindWarehouse struct {
	Warehouse     string  `json:"warehouse"`
	SKUs          int     `json:"skus"`
	AvgReviewDays float64 `json:"avg_review_days"`
	StockoutRate  float64 `json:"stockout_rate"`
}

// BlindWarehousesResult ranks warehouses by average review age.
type BlindWarehousesResult struct {
	Meta
	ThresholdDays int              `json:"threshold_days"`
	Warehouses    []BlindWarehouse `json:"warehouses,omitempty"`
}

// BlindWarehouses finds warehouses whose stock reviews have gone stale,
// worst first, with the stockout rate of each.
func (e *Engine) BlindWarehouses(inv []dataset.InventoryRecord) BlindWarehousesResult {
	type agg struct {
		skus      int
		reviewSum float64
		reviewed  int
		stockouts int
		stocked   int
	}
	perWarehouse := make(map[string]*agg)
	for i := range inv {
		r := &inv[i]
		a := perWarehouse[r.Warehouse]
		if a == nil {
			a = &agg{}
			perWarehouse[r.Warehouse] = a
		}
		a.skus++
		if r.DaysSinceReview != nil {
			a.reviewSum += float64(*r.DaysSinceReview)
			a.reviewed++
		}
		if r.Stock != nil {
			a.stocked++
			if *r.Stock == 0 {
				a.stockouts++
			}
		}
	}

	res := BlindWarehousesResult{
		Meta:          e.meta(len(inv)),
		ThresholdDays: e.blindThresholdDays,
	}
	for name, a := range perWarehouse {
		if a.reviewed == 0 {
			continue
		}
		avg := a.reviewSum / float64(a.reviewed)
		if avg <= float64(e.blindThresholdDays) {
			continue
		}
		w := BlindWarehouse{Warehouse: name, SKUs: a.skus, AvgReviewDays: avg}
		if a.stocked > 0 {
			w.StockoutRate = float64(a.stockouts) / float64(a.stocked)
		}
		res.Warehouses = append(res.Warehouses, w)
	}
	sort.Slice(res.Warehouses, func(i, j int) bool {
		return res.Warehouses[i].AvgReviewDays > res.Warehouses[j].AvgReviewDays
	})
	return res
}
