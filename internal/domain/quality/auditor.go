package quality

import (
	"go.uber.org/zap"
)

// Auditor computes health scores for dataset snapshots. It runs once on the
// raw snapshot before any cleaning stage executes (the baseline) and again
// on the cleaned snapshot, so the cleaning report can state before/after.
type Auditor struct {
	weights Weights
	logger  *zap.Logger
}

// AuditorOption is a functional option for Auditor configuration
type AuditorOption func(*Auditor)

// WithWeights overrides the default unweighted score composition
func WithWeights(w Weights) AuditorOption {
	return func(a *Auditor) {
		a.weights = w
	}
}

// WithLogger sets the auditor logger
func WithLogger(logger *zap.Logger) AuditorOption {
	return func(a *Auditor) {
		a.logger = logger
	}
}

// NewAuditor creates an auditor
func NewAuditor(opts ...AuditorOption) *Auditor {
	a := &Auditor{
		weights: DefaultWeights(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Audit scores one dataset snapshot.
func (a *Auditor) Audit(t Table) Score {
	s := computeScore(t, a.weights)
	a.logger.Debug("dataset audited",
		zap.String("dataset", s.Dataset),
		zap.Int("rows", s.Rows),
		zap.Int("missing_cells", s.MissingCells),
		zap.Int("duplicate_rows", s.DuplicateRows),
		zap.Int("invalid_rows", s.InvalidRows),
		zap.Float64("health", s.Health),
	)
	return s
}

// Aggregate returns the mean health across dataset scores.
func Aggregate(scores []Score) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range scores {
		sum += s.Health
	}
	return sum / float64(len(scores))
}
