package analytics

import (
	"strings"
	"time"
)

// FilterSpec is an immutable set of query parameters scoping one analysis
// run. Applying it is a pure selection over the enriched rows; the cleaned
// datasets are never mutated. Membership checks are case-insensitive.
type FilterSpec struct {
	From            *time.Time `json:"from,omitempty"`
	To              *time.Time `json:"to,omitempty"`
	Categories      []string   `json:"categories,omitempty"`
	Warehouses      []string   `json:"warehouses,omitempty"`
	Cities          []string   `json:"cities,omitempty"`
	Channels        []string   `json:"channels,omitempty"`
	IncludePhantom  bool       `json:"include_phantom"`
	IncludeOutliers bool       `json:"include_outliers"`
}

// DefaultFilterSpec selects everything: all dates, all segments, phantom
// and outlier rows included.
func DefaultFilterSpec() FilterSpec {
	return FilterSpec{IncludePhantom: true, IncludeOutliers: true}
}

type memberSet map[string]bool

func newMemberSet(values []string) memberSet {
	if len(values) == 0 {
		return nil
	}
	s := make(memberSet, len(values))
	for _, v := range values {
		s[strings.ToLower(strings.TrimSpace(v))] = true
	}
	return s
}

// contains reports membership; a nil set matches everything.
func (s memberSet) contains(v string) bool {
	if s == nil {
		return true
	}
	return s[strings.ToLower(v)]
}

// compiled is the pre-lowered form of a FilterSpec used during selection.
type compiled struct {
	spec       FilterSpec
	categories memberSet
	warehouses memberSet
	cities     memberSet
	channels   memberSet
}

func (f FilterSpec) compile() compiled {
	return compiled{
		spec:       f,
		categories: newMemberSet(f.Categories),
		warehouses: newMemberSet(f.Warehouses),
		cities:     newMemberSet(f.Cities),
		channels:   newMemberSet(f.Channels),
	}
}

func (c compiled) match(row *Row) bool {
	if !c.spec.IncludePhantom && row.Tx.Phantom {
		return false
	}
	if !c.spec.IncludeOutliers && row.HasOutlier() {
		return false
	}
	if c.spec.From != nil && (row.Tx.SaleDate == nil || row.Tx.SaleDate.Before(*c.spec.From)) {
		return false
	}
	if c.spec.To != nil && (row.Tx.SaleDate == nil || row.Tx.SaleDate.After(*c.spec.To)) {
		return false
	}
	if !c.channels.contains(row.Tx.Channel) {
		return false
	}
	if !c.cities.contains(row.Tx.City) {
		return false
	}
	if c.categories != nil {
		if row.Inv == nil || !c.categories.contains(row.Inv.Category) {
			return false
		}
	}
	if c.warehouses != nil {
		if row.Inv == nil || !c.warehouses.contains(row.Inv.Warehouse) {
			return false
		}
	}
	return true
}

// Apply selects the rows matching the filter. The input slice is not
// modified; the result shares the row pointers.
func (f FilterSpec) Apply(rows []Row) []Row {
	c := f.compile()
	out := make([]Row, 0, len(rows))
	for i := range rows {
		if c.match(&rows[i]) {
			out = append(out, rows[i])
		}
	}
	return out
}
