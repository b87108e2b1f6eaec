package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/techlogistics/backend/internal/domain/dataset"
)

// fieldReader reads typed cells from a row through a contract, counting every
// coercion failure per field. A failed coercion is recovered as a missing
// cell, never an error.
type fieldReader struct {
	contract Contract
	defects  map[string]int
}

func newFieldReader(c Contract) *fieldReader {
	return &fieldReader{contract: c, defects: make(map[string]int)}
}

func (fr *fieldReader) raw(row *Row, field string) string {
	col, ok := fr.contract.column(field)
	if !ok {
		return ""
	}
	return row.Get(col.Header)
}

func (fr *fieldReader) str(row *Row, field string) string {
	v := fr.raw(row, field)
	if isMissingToken(v) {
		return ""
	}
	return v
}

func (fr *fieldReader) int64(row *Row, field string) *int64 {
	v := fr.raw(row, field)
	if isMissingToken(v) {
		return nil
	}
	// Integer columns exported through spreadsheet tools often carry a
	// trailing ".0".
	v = strings.TrimSuffix(v, ".0")
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		if f, ferr := strconv.ParseFloat(v, 64); ferr == nil && f == float64(int64(f)) {
			i := int64(f)
			return &i
		}
		fr.defects[field]++
		return nil
	}
	return &n
}

func (fr *fieldReader) float(row *Row, field string) *float64 {
	v := fr.raw(row, field)
	if isMissingToken(v) {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		fr.defects[field]++
		return nil
	}
	return &f
}

func (fr *fieldReader) decimal(row *Row, field string) *decimal.Decimal {
	v := fr.raw(row, field)
	if isMissingToken(v) {
		return nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		fr.defects[field]++
		return nil
	}
	return &d
}

func (fr *fieldReader) date(row *Row, field string) *time.Time {
	v := fr.raw(row, field)
	if isMissingToken(v) {
		return nil
	}
	col, _ := fr.contract.column(field)
	layout := col.DateFormat
	if layout == "" {
		layout = "2006-01-02"
	}
	t, err := time.Parse(layout, v)
	if err != nil {
		fr.defects[field]++
		return nil
	}
	return &t
}

// DecodeInventory maps parsed rows into an inventory snapshot.
func DecodeInventory(rows []*Row, c Contract) *dataset.Inventory {
	fr := newFieldReader(c)
	out := make([]dataset.InventoryRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, dataset.InventoryRecord{
			SKU:          fr.str(row, "sku"),
			CategoryRaw:  fr.raw(row, "category"),
			WarehouseRaw: fr.raw(row, "warehouse"),
			UnitCost:     fr.decimal(row, "unit_cost"),
			Stock:        fr.int64(row, "stock"),
			LeadTimeRaw:  fr.raw(row, "lead_time_days"),
			LastReview:   fr.date(row, "last_review"),
		})
	}
	return &dataset.Inventory{Rows: out, CoercionFailures: fr.defects}
}

// DecodeTransactions maps parsed rows into a transactions snapshot.
func DecodeTransactions(rows []*Row, c Contract) *dataset.Transactions {
	fr := newFieldReader(c)
	out := make([]dataset.TransactionRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, dataset.TransactionRecord{
			ID:           fr.str(row, "transaction_id"),
			SKU:          fr.str(row, "sku"),
			SaleDate:     fr.date(row, "sale_date"),
			SaleDateRaw:  fr.raw(row, "sale_date"),
			ChannelRaw:   fr.raw(row, "channel"),
			CityRaw:      fr.raw(row, "city"),
			Quantity:     fr.int64(row, "quantity"),
			UnitPrice:    fr.decimal(row, "unit_price"),
			ShippingCost: fr.decimal(row, "shipping_cost"),
			DeliveryDays: fr.float(row, "delivery_days"),
		})
	}
	return &dataset.Transactions{Rows: out, CoercionFailures: fr.defects}
}

// DecodeFeedback maps parsed rows into a feedback snapshot.
func DecodeFeedback(rows []*Row, c Contract) *dataset.Feedback {
	fr := newFieldReader(c)
	out := make([]dataset.FeedbackRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, dataset.FeedbackRecord{
			ID:              fr.str(row, "feedback_id"),
			CustomerID:      fr.str(row, "customer_id"),
			TransactionID:   fr.str(row, "transaction_id"),
			SKU:             fr.str(row, "sku"),
			Age:             fr.float(row, "age"),
			ProductRating:   fr.float(row, "product_rating"),
			LogisticsRating: fr.float(row, "logistics_rating"),
			NPS:             fr.float(row, "nps"),
			SupportRaw:      fr.raw(row, "support_ticket"),
			RecommendRaw:    fr.raw(row, "recommend"),
		})
	}
	return &dataset.Feedback{Rows: out, CoercionFailures: fr.defects}
}
