package cleaning

import (
	"time"

	"go.uber.org/zap"

	"github.com/techlogistics/backend/internal/domain/quality"
)

// Config holds the cleaning thresholds. Zero values are replaced by the
// defaults so partially populated configs stay usable.
type Config struct {
	// OutlierK is the IQR fence multiplier.
	OutlierK float64
	// DeliveryCapDays caps implausible delivery times.
	DeliveryCapDays float64
	// PlausibleAgeMin and PlausibleAgeMax bound ages used for the median
	// and accepted as-is; out-of-range ages are imputed.
	PlausibleAgeMin float64
	PlausibleAgeMax float64
	// Now supplies the reference time for future-date checks. Injectable
	// so repeated runs over the same bytes stay deterministic.
	Now func() time.Time
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		OutlierK:        quality.DefaultMultiplier,
		DeliveryCapDays: 90,
		PlausibleAgeMin: 18,
		PlausibleAgeMax: 100,
		Now:             time.Now,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.OutlierK <= 0 {
		c.OutlierK = d.OutlierK
	}
	if c.DeliveryCapDays <= 0 {
		c.DeliveryCapDays = d.DeliveryCapDays
	}
	if c.PlausibleAgeMin <= 0 {
		c.PlausibleAgeMin = d.PlausibleAgeMin
	}
	if c.PlausibleAgeMax <= c.PlausibleAgeMin {
		c.PlausibleAgeMax = d.PlausibleAgeMax
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Cleaner applies the audit-and-repair rules to the three datasets. Every
// repair is counted in the dataset report; nothing is silently dropped
// except exact duplicate keys.
type Cleaner struct {
	cfg        Config
	detector   quality.Detector
	categories Mapping
	warehouses Mapping
	cities     Mapping
	channels   Mapping
	recommend  Mapping
	logger     *zap.Logger
}

// Option configures a Cleaner.
type Option func(*Cleaner)

// WithConfig overrides the default thresholds.
func WithConfig(cfg Config) Option {
	return func(c *Cleaner) { c.cfg = cfg.withDefaults() }
}

// WithLogger attaches a logger for repair diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cleaner) { c.logger = logger }
}

// WithCityMapping replaces the default city table.
func WithCityMapping(m Mapping) Option {
	return func(c *Cleaner) { c.cities = m }
}

// WithWarehouseMapping replaces the default warehouse table.
func WithWarehouseMapping(m Mapping) Option {
	return func(c *Cleaner) { c.warehouses = m }
}

// WithCategoryMapping replaces the default category table.
func WithCategoryMapping(m Mapping) Option {
	return func(c *Cleaner) { c.categories = m }
}

// WithChannelMapping replaces the default channel table.
func WithChannelMapping(m Mapping) Option {
	return func(c *Cleaner) { c.channels = m }
}

// NewCleaner builds a Cleaner with the default mappings and thresholds.
func NewCleaner(opts ...Option) *Cleaner {
	c := &Cleaner{
		cfg:        DefaultConfig(),
		categories: DefaultCategoryMapping(),
		warehouses: DefaultWarehouseMapping(),
		cities:     DefaultCityMapping(),
		channels:   DefaultChannelMapping(),
		recommend:  DefaultRecommendMapping(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.detector = quality.NewDetector(c.cfg.OutlierK)
	return c
}

func countNormalization(fc *quality.FieldCounts, raw string, res Result) {
	switch res.Outcome {
	case OutcomeUnknown:
		fc.Unknown++
	case OutcomeUnmapped:
		fc.Unmapped++
	case OutcomeCanonical:
		if res.Label != raw {
			fc.Normalized++
		}
	}
}
