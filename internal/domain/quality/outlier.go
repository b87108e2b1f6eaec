package quality

import "sort"

// DefaultMultiplier is the IQR fence multiplier. It is deliberately wide so
// only extreme anomalies are flagged, not natural spread.
const DefaultMultiplier = 3.0

// Bounds are the IQR fences for one numeric field (or one group of it).
type Bounds struct {
	Q1   float64 `json:"q1"`
	Q3   float64 `json:"q3"`
	IQR  float64 `json:"iqr"`
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Contains reports whether v falls inside the fences.
func (b Bounds) Contains(v float64) bool {
	return v >= b.Low && v <= b.High
}

// Detector classifies extreme values per numeric field using the
// interquartile range. It is a pure classifier: it never removes values,
// inclusion is a caller-controlled policy.
type Detector struct {
	K float64
}

// NewDetector creates a detector with the given fence multiplier. A zero or
// negative multiplier falls back to the default.
func NewDetector(k float64) Detector {
	if k <= 0 {
		k = DefaultMultiplier
	}
	return Detector{K: k}
}

// Bounds computes the IQR fences over the given values, ignoring nothing:
// callers pass non-missing values only. Returns false when there are fewer
// than two values to interpolate over.
func (d Detector) Bounds(values []float64) (Bounds, bool) {
	if len(values) < 2 {
		return Bounds{}, false
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1
	return Bounds{
		Q1:   q1,
		Q3:   q3,
		IQR:  iqr,
		Low:  q1 - d.K*iqr,
		High: q3 + d.K*iqr,
	}, true
}

// Flag returns a mask marking the values outside the IQR fences. When bounds
// cannot be computed every value is unflagged.
func (d Detector) Flag(values []float64) ([]bool, Bounds) {
	mask := make([]bool, len(values))
	bounds, ok := d.Bounds(values)
	if !ok {
		return mask, bounds
	}
	for i, v := range values {
		mask[i] = !bounds.Contains(v)
	}
	return mask, bounds
}

// quantile interpolates linearly between closest ranks over sorted values,
// matching the estimator the source datasets were profiled with.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	lo := int(pos)
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
