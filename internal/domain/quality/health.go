package quality

// Table is the read surface the auditor needs from a dataset snapshot. Both
// raw and cleaned snapshots implement it; the auditor is the only component
// that reads both at once.
type Table interface {
	Name() string
	RowCount() int
	ColumnCount() int
	MissingByColumn() map[string]int
	DuplicateKeyRows() int
	InvalidRows() int
}

// Weights configure the health score composition. The default is an
// unweighted mean of the three metrics.
type Weights struct {
	Completeness float64
	Uniqueness   float64
	Validity     float64
}

// DefaultWeights returns the unweighted composition.
func DefaultWeights() Weights {
	return Weights{Completeness: 1, Uniqueness: 1, Validity: 1}
}

// Score summarises the quality of one dataset snapshot. All ratios are in
// [0, 1].
type Score struct {
	Dataset         string         `json:"dataset"`
	Rows            int            `json:"rows"`
	Columns         int            `json:"columns"`
	MissingCells    int            `json:"missing_cells"`
	DuplicateRows   int            `json:"duplicate_rows"`
	InvalidRows     int            `json:"invalid_rows"`
	Completeness    float64        `json:"completeness"`
	Uniqueness      float64        `json:"uniqueness"`
	Validity        float64        `json:"validity"`
	Health          float64        `json:"health"`
	MissingByColumn map[string]int `json:"missing_by_column,omitempty"`
}

// computeScore derives the composite score for one table.
func computeScore(t Table, w Weights) Score {
	byColumn := t.MissingByColumn()
	missing := 0
	for _, n := range byColumn {
		missing += n
	}

	rows := t.RowCount()
	cells := rows * t.ColumnCount()
	dups := t.DuplicateKeyRows()
	invalid := t.InvalidRows()

	s := Score{
		Dataset:         t.Name(),
		Rows:            rows,
		Columns:         t.ColumnCount(),
		MissingCells:    missing,
		DuplicateRows:   dups,
		InvalidRows:     invalid,
		Completeness:    1,
		Uniqueness:      1,
		Validity:        1,
		MissingByColumn: byColumn,
	}
	if cells > 0 {
		s.Completeness = 1 - float64(missing)/float64(cells)
	}
	if rows > 0 {
		s.Uniqueness = 1 - float64(dups)/float64(rows)
		s.Validity = 1 - float64(invalid)/float64(rows)
	}

	total := w.Completeness + w.Uniqueness + w.Validity
	if total <= 0 {
		w = DefaultWeights()
		total = 3
	}
	s.Health = (s.Completeness*w.Completeness + s.Uniqueness*w.Uniqueness + s.Validity*w.Validity) / total
	return s
}
