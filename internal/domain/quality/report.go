package quality

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FieldCounts tracks per-field cleaning activity for the report.
type FieldCounts struct {
	Missing        int `json:"missing,omitempty"`
	Imputed        int `json:"imputed,omitempty"`
	Normalized     int `json:"normalized,omitempty"`
	Unmapped       int `json:"unmapped,omitempty"`
	Unknown        int `json:"unknown,omitempty"`
	FlaggedOutlier int `json:"flagged_outlier,omitempty"`
	Corrected      int `json:"corrected,omitempty"`
}

// Imputation records one applied imputation strategy.
type Imputation struct {
	Field     string `json:"field"`
	Strategy  string `json:"strategy"`
	Count     int    `json:"count"`
	Fallbacks int    `json:"fallbacks,omitempty"` // group had no valid values, global median used
}

// OutlierSummary records IQR flagging activity for one field.
type OutlierSummary struct {
	Count  int    `json:"count"`
	Bounds Bounds `json:"bounds"`
}

// DatasetReport is the cleaning record for one dataset within a run.
type DatasetReport struct {
	Dataset           string                    `json:"dataset"`
	Failed            bool                      `json:"failed,omitempty"`
	FailureReason     string                    `json:"failure_reason,omitempty"`
	Before            Score                     `json:"before"`
	After             Score                     `json:"after"`
	DuplicatesRemoved int                       `json:"duplicates_removed"`
	Actions           []string                  `json:"actions,omitempty"`
	Fields            map[string]*FieldCounts   `json:"fields,omitempty"`
	Imputations       []Imputation              `json:"imputations,omitempty"`
	Outliers          map[string]OutlierSummary `json:"outliers,omitempty"`
}

// NewDatasetReport creates an empty dataset report.
func NewDatasetReport(dataset string) *DatasetReport {
	return &DatasetReport{
		Dataset:  dataset,
		Fields:   make(map[string]*FieldCounts),
		Outliers: make(map[string]OutlierSummary),
	}
}

// Field returns the mutable counts bucket for a field, creating it on first
// use.
func (r *DatasetReport) Field(name string) *FieldCounts {
	if r.Fields[name] == nil {
		r.Fields[name] = &FieldCounts{}
	}
	return r.Fields[name]
}

// Action appends a human-readable cleaning action.
func (r *DatasetReport) Action(format string, args ...any) {
	r.Actions = append(r.Actions, fmt.Sprintf(format, args...))
}

// AddImputation records an applied imputation and mirrors it into the field
// counts.
func (r *DatasetReport) AddImputation(imp Imputation) {
	r.Imputations = append(r.Imputations, imp)
	r.Field(imp.Field).Imputed += imp.Count
}

// AddOutliers records IQR flagging for a field.
func (r *DatasetReport) AddOutliers(field string, count int, bounds Bounds) {
	r.Outliers[field] = OutlierSummary{Count: count, Bounds: bounds}
	r.Field(field).FlaggedOutlier += count
}

// Improvement returns the health score delta of the cleaning run.
func (r *DatasetReport) Improvement() float64 {
	return r.After.Health - r.Before.Health
}

// TotalDefects counts every recorded defect across fields. An all-zero
// report means the input was already clean.
func (r *DatasetReport) TotalDefects() int {
	total := r.DuplicatesRemoved
	for _, f := range r.Fields {
		total += f.Missing + f.Imputed + f.Unmapped + f.FlaggedOutlier + f.Corrected
	}
	return total
}

// Report is the immutable cleaning report for one pipeline run.
type Report struct {
	RunID       uuid.UUID        `json:"run_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Datasets    []*DatasetReport `json:"datasets"`
}

// NewReport creates a report shell for a run.
func NewReport(runID uuid.UUID) *Report {
	return &Report{
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
	}
}

// Dataset returns the report for a named dataset, or nil.
func (r *Report) Dataset(name string) *DatasetReport {
	for _, d := range r.Datasets {
		if d.Dataset == name {
			return d
		}
	}
	return nil
}

// AggregateBefore returns the mean raw health across non-failed datasets.
func (r *Report) AggregateBefore() float64 {
	return r.aggregate(func(d *DatasetReport) Score { return d.Before })
}

// AggregateAfter returns the mean cleaned health across non-failed datasets.
func (r *Report) AggregateAfter() float64 {
	return r.aggregate(func(d *DatasetReport) Score { return d.After })
}

func (r *Report) aggregate(pick func(*DatasetReport) Score) float64 {
	var scores []Score
	for _, d := range r.Datasets {
		if d.Failed {
			continue
		}
		scores = append(scores, pick(d))
	}
	return Aggregate(scores)
}
