package dataset

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryRecord is one row of the product inventory master. Nullable fields
// are pointers; nil means the cell is missing (either absent in the source or
// failed type coercion during ingest). Cleaning never mutates a record in
// place; cleaners work on a cloned dataset and set the audit flags as they go.
type InventoryRecord struct {
	SKU          string           `json:"sku"`
	Category     string           `json:"category"`
	CategoryRaw  string           `json:"category_raw,omitempty"`
	Warehouse    string           `json:"warehouse"`
	WarehouseRaw string           `json:"warehouse_raw,omitempty"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty"`
	Stock        *int64           `json:"stock,omitempty"`
	LeadTimeRaw  string           `json:"lead_time_raw,omitempty"`
	LeadTimeDays *float64         `json:"lead_time_days,omitempty"`
	LastReview   *time.Time       `json:"last_review,omitempty"`

	// Derived during cleaning.
	DaysSinceReview *int `json:"days_since_review,omitempty"`

	// Audit flags set by the cleaning pipeline.
	NegativeStock   bool `json:"negative_stock,omitempty"`
	StockoutImputed bool `json:"stockout_imputed,omitempty"`
	LeadTimeImputed bool `json:"lead_time_imputed,omitempty"`
	CostOutlier     bool `json:"cost_outlier,omitempty"`
	LeadTimeOutlier bool `json:"lead_time_outlier,omitempty"`
	FutureReview    bool `json:"future_review,omitempty"`
}

// Clone returns a deep copy of the record.
func (r InventoryRecord) Clone() InventoryRecord {
	c := r
	c.UnitCost = cloneDecimal(r.UnitCost)
	c.Stock = cloneInt64(r.Stock)
	c.LeadTimeDays = cloneFloat(r.LeadTimeDays)
	c.LastReview = cloneTime(r.LastReview)
	c.DaysSinceReview = cloneInt(r.DaysSinceReview)
	return c
}

// Inventory is an immutable snapshot of the inventory master dataset.
type Inventory struct {
	Rows []InventoryRecord
	// CoercionFailures counts cells per column that failed type coercion
	// during ingest and were recovered as missing values.
	CoercionFailures map[string]int
}

// Clone returns a deep copy of the dataset.
func (d *Inventory) Clone() *Inventory {
	rows := make([]InventoryRecord, len(d.Rows))
	for i, r := range d.Rows {
		rows[i] = r.Clone()
	}
	return &Inventory{Rows: rows, CoercionFailures: cloneCounts(d.CoercionFailures)}
}

// Name implements quality.Table.
func (d *Inventory) Name() string { return "inventory" }

// RowCount implements quality.Table.
func (d *Inventory) RowCount() int { return len(d.Rows) }

// ColumnCount implements quality.Table.
func (d *Inventory) ColumnCount() int { return 7 }

// MissingByColumn implements quality.Table.
func (d *Inventory) MissingByColumn() map[string]int {
	counts := make(map[string]int)
	for _, r := range d.Rows {
		if r.SKU == "" {
			counts["sku"]++
		}
		if r.Category == "" && r.CategoryRaw == "" {
			counts["category"]++
		}
		if r.Warehouse == "" && r.WarehouseRaw == "" {
			counts["warehouse"]++
		}
		if r.UnitCost == nil {
			counts["unit_cost"]++
		}
		if r.Stock == nil {
			counts["stock"]++
		}
		if r.LeadTimeDays == nil {
			counts["lead_time_days"]++
		}
		if r.LastReview == nil {
			counts["last_review"]++
		}
	}
	return counts
}

// DuplicateKeyRows implements quality.Table. The SKU is the dataset key.
func (d *Inventory) DuplicateKeyRows() int {
	seen := make(map[string]bool, len(d.Rows))
	dups := 0
	for _, r := range d.Rows {
		if r.SKU == "" {
			continue
		}
		if seen[r.SKU] {
			dups++
		}
		seen[r.SKU] = true
	}
	return dups
}

// InvalidRows implements quality.Table. A row is invalid when it violates a
// domain rule: negative stock or a non-numeric lead time.
func (d *Inventory) InvalidRows() int {
	invalid := 0
	for _, r := range d.Rows {
		switch {
		case r.Stock != nil && *r.Stock < 0:
			invalid++
		case r.LeadTimeRaw != "" && r.LeadTimeDays == nil:
			invalid++
		}
	}
	return invalid
}

// BySKU indexes the rows by SKU. Later duplicates do not displace the first
// occurrence.
func (d *Inventory) BySKU() map[string]*InventoryRecord {
	idx := make(map[string]*InventoryRecord, len(d.Rows))
	for i := range d.Rows {
		r := &d.Rows[i]
		if r.SKU == "" {
			continue
		}
		if _, ok := idx[r.SKU]; !ok {
			idx[r.SKU] = r
		}
	}
	return idx
}
