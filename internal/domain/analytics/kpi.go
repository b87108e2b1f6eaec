package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/techlogistics/backend/internal/domain/dataset"
)

// KPISet is the dashboard headline metrics computed over the filtered rows.
// Monetary figures stay decimal; rates and averages are plain floats.
type KPISet struct {
	TotalOrders   int             `json:"total_orders"`
	TotalUnits    int64           `json:"total_units"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalMargin   decimal.Decimal `json:"total_margin"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`

	PhantomOrders       int             `json:"phantom_orders"`
	PhantomRevenue      decimal.Decimal `json:"phantom_revenue"`
	PhantomRevenueShare float64         `json:"phantom_revenue_share"`

	AvgDeliveryDays    float64        `json:"avg_delivery_days"`
	AvgLeadTimeDays    float64        `json:"avg_lead_time_days"`
	DeliveryTiers      map[string]int `json:"delivery_tiers"`
	AvgNPS             float64        `json:"avg_nps"`
	PromoterShare      float64        `json:"promoter_share"`
	DetractorShare     float64        `json:"detractor_share"`
	AvgProductRating   float64        `json:"avg_product_rating"`
	AvgLogisticsRating float64        `json:"avg_logistics_rating"`
	SupportTicketRate  float64        `json:"support_ticket_rate"`

	FeedbackMatchRate float64 `json:"feedback_match_rate"`
	StockoutRate      float64 `json:"stockout_rate"`
}

// ComputeKPIs aggregates the headline metrics. Transaction KPIs come from
// the filtered rows; the stockout rate comes from the inventory master,
// which the filter scopes only by warehouse and category.
func ComputeKPIs(rows []Row, inv []dataset.InventoryRecord) KPISet {
	k := KPISet{
		TotalRevenue:   decimal.Zero,
		TotalMargin:    decimal.Zero,
		AvgOrderValue:  decimal.Zero,
		PhantomRevenue: decimal.Zero,
		DeliveryTiers:  make(map[string]int),
	}

	var deliverySum, npsSum, ratingSum, logisticsSum float64
	var deliveryN, npsN, ratingN, logisticsN, promoters, detractors int
	var withFeedback, tickets, ticketsKnown int
	for i := range rows {
		r := &rows[i]
		k.TotalOrders++
		if r.Tx.Quantity != nil {
			k.TotalUnits += *r.Tx.Quantity
		}
		revenue := r.Revenue()
		k.TotalRevenue = k.TotalRevenue.Add(revenue)
		k.TotalMargin = k.TotalMargin.Add(r.Margin())
		if r.Tx.Phantom {
			k.PhantomOrders++
			k.PhantomRevenue = k.PhantomRevenue.Add(revenue)
		}
		if r.Tx.DeliveryDays != nil {
			deliverySum += *r.Tx.DeliveryDays
			deliveryN++
		}
		if tier, ok := r.DeliveryTier(); ok {
			k.DeliveryTiers[tier]++
		}
		if r.Fb != nil {
			withFeedback++
			if r.Fb.NPS != nil {
				npsSum += *r.Fb.NPS
				npsN++
				switch r.Fb.NPSCategory {
				case dataset.NPSPromoter:
					promoters++
				case dataset.NPSDetractor:
					detractors++
				}
			}
			if r.Fb.ProductRating != nil {
				ratingSum += *r.Fb.ProductRating
				ratingN++
			}
			if r.Fb.LogisticsRating != nil {
				logisticsSum += *r.Fb.LogisticsRating
				logisticsN++
			}
			if r.Fb.SupportTicket != nil {
				ticketsKnown++
				if *r.Fb.SupportTicket {
					tickets++
				}
			}
		}
	}

	if k.TotalOrders > 0 {
		k.AvgOrderValue = k.TotalRevenue.Div(decimal.NewFromInt(int64(k.TotalOrders)))
		k.FeedbackMatchRate = float64(withFeedback) / float64(k.TotalOrders)
	}
	if k.TotalRevenue.IsPositive() {
		k.PhantomRevenueShare = k.PhantomRevenue.Div(k.TotalRevenue).InexactFloat64()
	}
	if deliveryN > 0 {
		k.AvgDeliveryDays = deliverySum / float64(deliveryN)
	}
	if npsN > 0 {
		k.AvgNPS = npsSum / float64(npsN)
		k.PromoterShare = float64(promoters) / float64(npsN)
		k.DetractorShare = float64(detractors) / float64(npsN)
	}
	if ratingN > 0 {
		k.AvgProductRating = ratingSum / float64(ratingN)
	}
	if logisticsN > 0 {
		k.AvgLogisticsRating = logisticsSum / float64(logisticsN)
	}
	if ticketsKnown > 0 {
		k.SupportTicketRate = float64(tickets) / float64(ticketsKnown)
	}

	var leadSum float64
	var leadN, stockouts, stocked int
	for i := range inv {
		r := &inv[i]
		if r.LeadTimeDays != nil {
			leadSum += *r.LeadTimeDays
			leadN++
		}
		if r.Stock != nil {
			stocked++
			if *r.Stock == 0 {
				stockouts++
			}
		}
	}
	if leadN > 0 {
		k.AvgLeadTimeDays = leadSum / float64(leadN)
	}
	if stocked > 0 {
		k.StockoutRate = float64(stockouts) / float64(stocked)
	}
	return k
}
