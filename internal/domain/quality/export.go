package quality

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
)

// WriteCSV renders the report as a flat CSV artifact, one metric per row, so
// the report can be downloaded and inspected outside any rendering layer.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{"dataset", "section", "metric", "before", "after"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	pct := func(v float64) string { return fmt.Sprintf("%.4f", v) }
	num := func(v int) string { return fmt.Sprintf("%d", v) }

	for _, d := range r.Datasets {
		if d.Failed {
			_ = cw.Write([]string{d.Dataset, "status", "failed", d.FailureReason, ""})
			continue
		}
		rows := [][]string{
			{d.Dataset, "health", "score", pct(d.Before.Health), pct(d.After.Health)},
			{d.Dataset, "health", "completeness", pct(d.Before.Completeness), pct(d.After.Completeness)},
			{d.Dataset, "health", "uniqueness", pct(d.Before.Uniqueness), pct(d.After.Uniqueness)},
			{d.Dataset, "health", "validity", pct(d.Before.Validity), pct(d.After.Validity)},
			{d.Dataset, "health", "rows", num(d.Before.Rows), num(d.After.Rows)},
			{d.Dataset, "health", "missing_cells", num(d.Before.MissingCells), num(d.After.MissingCells)},
			{d.Dataset, "health", "duplicate_rows", num(d.Before.DuplicateRows), num(d.After.DuplicateRows)},
		}
		for _, row := range rows {
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write report row: %w", err)
			}
		}

		for _, field := range sortedFieldNames(d.Fields) {
			c := d.Fields[field]
			fieldRows := [][]string{
				{d.Dataset, "field:" + field, "missing", num(c.Missing), ""},
				{d.Dataset, "field:" + field, "imputed", num(c.Imputed), ""},
				{d.Dataset, "field:" + field, "normalized", num(c.Normalized), ""},
				{d.Dataset, "field:" + field, "unmapped", num(c.Unmapped), ""},
				{d.Dataset, "field:" + field, "flagged_outlier", num(c.FlaggedOutlier), ""},
				{d.Dataset, "field:" + field, "corrected", num(c.Corrected), ""},
			}
			for _, row := range fieldRows {
				if err := cw.Write(row); err != nil {
					return fmt.Errorf("failed to write report row: %w", err)
				}
			}
		}

		for _, imp := range d.Imputations {
			row := []string{d.Dataset, "imputation:" + imp.Field, imp.Strategy, num(imp.Count), num(imp.Fallbacks)}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write report row: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func sortedFieldNames(fields map[string]*FieldCounts) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
