package dto

import (
	"time"

	"github.com/techlogistics/backend/internal/domain/analytics"
)

// FilterRequest is the wire form of an analytical filter. The include
// flags are pointers so an absent field means "include", matching the
// retain-by-default policy for phantom and outlier rows.
type FilterRequest struct {
	From            *time.Time `json:"from,omitempty"`
	To              *time.Time `json:"to,omitempty"`
	Categories      []string   `json:"categories,omitempty"`
	Warehouses      []string   `json:"warehouses,omitempty"`
	Cities          []string   `json:"cities,omitempty"`
	Channels        []string   `json:"channels,omitempty"`
	IncludePhantom  *bool      `json:"include_phantom,omitempty"`
	IncludeOutliers *bool      `json:"include_outliers,omitempty"`
}

// ToFilterSpec converts the request into the domain filter value.
func (r FilterRequest) ToFilterSpec() analytics.FilterSpec {
	spec := analytics.DefaultFilterSpec()
	spec.From = r.From
	spec.To = r.To
	spec.Categories = r.Categories
	spec.Warehouses = r.Warehouses
	spec.Cities = r.Cities
	spec.Channels = r.Channels
	if r.IncludePhantom != nil {
		spec.IncludePhantom = *r.IncludePhantom
	}
	if r.IncludeOutliers != nil {
		spec.IncludeOutliers = *r.IncludeOutliers
	}
	return spec
}

// RunSummary is the response body of a completed pipeline run.
type RunSummary struct {
	RunID        string  `json:"run_id"`
	Fingerprint  string  `json:"fingerprint"`
	StartedAt    string  `json:"started_at"`
	DurationMS   int64   `json:"duration_ms"`
	HealthBefore float64 `json:"health_before"`
	HealthAfter  float64 `json:"health_after"`

	Datasets []DatasetRunSummary `json:"datasets"`

	PhantomTransactions int     `json:"phantom_transactions"`
	PhantomRevenue      string  `json:"phantom_revenue"`
	PhantomRevenueShare float64 `json:"phantom_revenue_share"`
}

// DatasetRunSummary is the per-dataset slice of a run summary.
type DatasetRunSummary struct {
	Dataset           string   `json:"dataset"`
	Failed            bool     `json:"failed"`
	FailureReason     string   `json:"failure_reason,omitempty"`
	Rows              int      `json:"rows"`
	HealthBefore      float64  `json:"health_before"`
	HealthAfter       float64  `json:"health_after"`
	DuplicatesRemoved int      `json:"duplicates_removed"`
	Actions           []string `json:"actions,omitempty"`
}
