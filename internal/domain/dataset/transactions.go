package dataset

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecord is one row of the sales/logistics transactions dataset.
// The SKU reference is not guaranteed to resolve against the inventory
// master; reconciliation classifies each row as matched or phantom.
type TransactionRecord struct {
	ID           string           `json:"id"`
	SKU          string           `json:"sku"`
	SaleDate     *time.Time       `json:"sale_date,omitempty"`
	SaleDateRaw  string           `json:"sale_date_raw,omitempty"`
	Channel      string           `json:"channel"`
	ChannelRaw   string           `json:"channel_raw,omitempty"`
	City         string           `json:"city"`
	CityRaw      string           `json:"city_raw,omitempty"`
	Quantity     *int64           `json:"quantity,omitempty"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty"`
	ShippingCost *decimal.Decimal `json:"shipping_cost,omitempty"`
	DeliveryDays *float64         `json:"delivery_days,omitempty"`

	// Audit flags set by the cleaning pipeline and reconciler.
	Phantom          bool `json:"phantom,omitempty"`
	FutureSaleDate   bool `json:"future_sale_date,omitempty"`
	NegativeQuantity bool `json:"negative_quantity,omitempty"`
	DeliveryOutlier  bool `json:"delivery_outlier,omitempty"`
	DeliveryCapped   bool `json:"delivery_capped,omitempty"`
	ShippingImputed  bool `json:"shipping_imputed,omitempty"`
}

// Clone returns a deep copy of the record.
func (r TransactionRecord) Clone() TransactionRecord {
	c := r
	c.SaleDate = cloneTime(r.SaleDate)
	c.Quantity = cloneInt64(r.Quantity)
	c.UnitPrice = cloneDecimal(r.UnitPrice)
	c.ShippingCost = cloneDecimal(r.ShippingCost)
	c.DeliveryDays = cloneFloat(r.DeliveryDays)
	return c
}

// Revenue returns quantity times unit price, or zero when either is missing.
func (r *TransactionRecord) Revenue() decimal.Decimal {
	if r.Quantity == nil || r.UnitPrice == nil {
		return decimal.Zero
	}
	return r.UnitPrice.Mul(decimal.NewFromInt(*r.Quantity))
}

// Transactions is an immutable snapshot of the transactions dataset.
type Transactions struct {
	Rows             []TransactionRecord
	CoercionFailures map[string]int
}

// Clone returns a deep copy of the dataset.
func (d *Transactions) Clone() *Transactions {
	rows := make([]TransactionRecord, len(d.Rows))
	for i, r := range d.Rows {
		rows[i] = r.Clone()
	}
	return &Transactions{Rows: rows, CoercionFailures: cloneCounts(d.CoercionFailures)}
}

// Name implements quality.Table.
func (d *Transactions) Name() string { return "transactions" }

// RowCount implements quality.Table.
func (d *Transactions) RowCount() int { return len(d.Rows) }

// ColumnCount implements quality.Table.
func (d *Transactions) ColumnCount() int { return 9 }

// MissingByColumn implements quality.Table.
func (d *Transactions) MissingByColumn() map[string]int {
	counts := make(map[string]int)
	for _, r := range d.Rows {
		if r.ID == "" {
			counts["transaction_id"]++
		}
		if r.SKU == "" {
			counts["sku"]++
		}
		if r.SaleDate == nil {
			counts["sale_date"]++
		}
		if r.Channel == "" && r.ChannelRaw == "" {
			counts["channel"]++
		}
		if r.City == "" && r.CityRaw == "" {
			counts["city"]++
		}
		if r.Quantity == nil {
			counts["quantity"]++
		}
		if r.UnitPrice == nil {
			counts["unit_price"]++
		}
		if r.ShippingCost == nil {
			counts["shipping_cost"]++
		}
		if r.DeliveryDays == nil {
			counts["delivery_days"]++
		}
	}
	return counts
}

// DuplicateKeyRows implements quality.Table. The transaction ID is the key.
func (d *Transactions) DuplicateKeyRows() int {
	seen := make(map[string]bool, len(d.Rows))
	dups := 0
	for _, r := range d.Rows {
		if r.ID == "" {
			continue
		}
		if seen[r.ID] {
			dups++
		}
		seen[r.ID] = true
	}
	return dups
}

// InvalidRows implements quality.Table. Negative quantities and future sale
// dates violate domain rules.
func (d *Transactions) InvalidRows() int {
	now := time.Now()
	invalid := 0
	for _, r := range d.Rows {
		switch {
		case r.Quantity != nil && *r.Quantity < 0:
			invalid++
		case r.SaleDate != nil && r.SaleDate.After(now):
			invalid++
		}
	}
	return invalid
}
