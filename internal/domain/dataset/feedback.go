package dataset

// NPS categories derived from the score.
const (
	NPSPromoter  = "promoter"
	NPSPassive   = "passive"
	NPSDetractor = "detractor"
	NPSUnknown   = "unknown"
)

// FeedbackRecord is one row of the customer feedback dataset, linked to a
// transaction (and through it to a SKU).
type FeedbackRecord struct {
	ID              string   `json:"id"`
	CustomerID      string   `json:"customer_id"`
	TransactionID   string   `json:"transaction_id"`
	SKU             string   `json:"sku,omitempty"`
	Age             *float64 `json:"age,omitempty"`
	ProductRating   *float64 `json:"product_rating,omitempty"`
	LogisticsRating *float64 `json:"logistics_rating,omitempty"`
	NPS             *float64 `json:"nps,omitempty"`
	SupportTicket   *bool    `json:"support_ticket,omitempty"`
	SupportRaw      string   `json:"support_raw,omitempty"`
	RecommendRaw    string   `json:"recommend_raw,omitempty"`
	Recommend       string   `json:"recommend,omitempty"`

	// Derived during cleaning.
	NPSCategory string `json:"nps_category,omitempty"`
	AgeSegment  string `json:"age_segment,omitempty"`

	// Audit flags set by the cleaning pipeline.
	AgeImplausible bool `json:"age_implausible,omitempty"`
	AgeImputed     bool `json:"age_imputed,omitempty"`
	RatingClamped  bool `json:"rating_clamped,omitempty"`
	NPSClamped     bool `json:"nps_clamped,omitempty"`
}

// Clone returns a deep copy of the record.
func (r FeedbackRecord) Clone() FeedbackRecord {
	c := r
	c.Age = cloneFloat(r.Age)
	c.ProductRating = cloneFloat(r.ProductRating)
	c.LogisticsRating = cloneFloat(r.LogisticsRating)
	c.NPS = cloneFloat(r.NPS)
	c.SupportTicket = cloneBool(r.SupportTicket)
	return c
}

// Feedback is an immutable snapshot of the customer feedback dataset.
type Feedback struct {
	Rows             []FeedbackRecord
	CoercionFailures map[string]int
}

// Clone returns a deep copy of the dataset.
func (d *Feedback) Clone() *Feedback {
	rows := make([]FeedbackRecord, len(d.Rows))
	for i, r := range d.Rows {
		rows[i] = r.Clone()
	}
	return &Feedback{Rows: rows, CoercionFailures: cloneCounts(d.CoercionFailures)}
}

// Name implements quality.Table.
func (d *Feedback) Name() string { return "feedback" }

// RowCount implements quality.Table.
func (d *Feedback) RowCount() int { return len(d.Rows) }

// ColumnCount implements quality.Table.
func (d *Feedback) ColumnCount() int { return 8 }

// MissingByColumn implements quality.Table.
func (d *Feedback) MissingByColumn() map[string]int {
	counts := make(map[string]int)
	for _, r := range d.Rows {
		if r.ID == "" {
			counts["feedback_id"]++
		}
		if r.CustomerID == "" {
			counts["customer_id"]++
		}
		if r.TransactionID == "" {
			counts["transaction_id"]++
		}
		if r.Age == nil {
			counts["age"]++
		}
		if r.ProductRating == nil {
			counts["product_rating"]++
		}
		if r.LogisticsRating == nil {
			counts["logistics_rating"]++
		}
		if r.NPS == nil {
			counts["nps"]++
		}
		if r.SupportTicket == nil {
			counts["support_ticket"]++
		}
	}
	return counts
}

// DuplicateKeyRows implements quality.Table. The feedback ID is the key.
func (d *Feedback) DuplicateKeyRows() int {
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

// InvalidRows implements quality.Table. Implausible ages and out-of-scale
// ratings violate domain rules.
func (d *Feedback) InvalidRows() int {
	invalid := 0
	for _, r := range d.Rows {
		switch {
		case r.Age != nil && (*r.Age <= 0 || *r.Age > 120):
			invalid++
		case r.ProductRating != nil && (*r.ProductRating < 1 || *r.ProductRating > 5):
			invalid++
		case r.NPS != nil && (*r.NPS < -100 || *r.NPS > 100):
			invalid++
		}
	}
	return invalid
}

// ByTransactionID indexes the rows by transaction ID, first occurrence wins.
func (d *Feedback) ByTransactionID() map[string]*FeedbackRecord {
	idx := make(map[string]*FeedbackRecord, len(d.Rows))
	for i := range d.Rows {
		r := &d.Rows[i]
		if r.TransactionID == "" {
			continue
		}
		if _, ok := idx[r.TransactionID]; !ok {
			idx[r.TransactionID] = r
		}
	}
	return idx
}
