package cleaning

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Median returns the median of values, false when the slice is empty.
func Median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2], true
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2, true
}

// DecimalMedian returns the median of decimal values, false when empty.
func DecimalMedian(values []decimal.Decimal) (decimal.Decimal, bool) {
	if len(values) == 0 {
		return decimal.Zero, false
	}
	sorted := append([]decimal.Decimal(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Cmp(sorted[j]) < 0 })
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2], true
	}
	return sorted[n/2-1].Add(sorted[n/2]).Div(decimal.NewFromInt(2)), true
}

// GroupMedians computes per-group medians for imputation. Samples carry the
// group key of every observed value; groups with no observations fall back
// to the global median at lookup time.
type GroupMedians struct {
	byGroup map[string]float64
	global  float64
	hasAny  bool
}

// NewGroupMedians collects observed values keyed by group.
func NewGroupMedians(samples map[string][]float64) *GroupMedians {
	g := &GroupMedians{byGroup: make(map[string]float64, len(samples))}
	var all []float64
	for group, values := range samples {
		if m, ok := Median(values); ok {
			g.byGroup[group] = m
		}
		all = append(all, values...)
	}
	if m, ok := Median(all); ok {
		g.global = m
		g.hasAny = true
	}
	return g
}

// Lookup returns the group median, or the global median with fallback=true
// when the group has no observed values. ok is false only when no values
// were observed anywhere.
func (g *GroupMedians) Lookup(group string) (value float64, fallback bool, ok bool) {
	if m, found := g.byGroup[group]; found {
		return m, false, true
	}
	return g.global, true, g.hasAny
}

// DecimalGroupMedians is the decimal counterpart for monetary fields.
type DecimalGroupMedians struct {
	byGroup map[string]decimal.Decimal
	global  decimal.Decimal
	hasAny  bool
}

// NewDecimalGroupMedians collects observed decimal values keyed by group.
func NewDecimalGroupMedians(samples map[string][]decimal.Decimal) *DecimalGroupMedians {
	g := &DecimalGroupMedians{byGroup: make(map[string]decimal.Decimal, len(samples))}
	var all []decimal.Decimal
	for group, values := range samples {
		if m, ok := DecimalMedian(values); ok {
			g.byGroup[group] = m
		}
		all = append(all, values...)
	}
	if m, ok := DecimalMedian(all); ok {
		g.global = m
		g.hasAny = true
	}
	return g
}

// Lookup mirrors GroupMedians.Lookup for decimal values.
func (g *DecimalGroupMedians) Lookup(group string) (value decimal.Decimal, fallback bool, ok bool) {
	if m, found := g.byGroup[group]; found {
		return m, false, true
	}
	return g.global, true, g.hasAny
}
