package insight

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/techlogistics/backend/internal/domain/analytics"
	"github.com/techlogistics/backend/internal/domain/shared"
)

const systemPrompt = "You are a senior retail-logistics analyst. Write a short executive " +
	"summary in plain business language from the metrics you are given. Highlight margin " +
	"risks, logistics problems, and data trust issues. Do not invent numbers."

// Generator produces narrative text from a prompt.
type Generator interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Service turns an analytical result into a narrative insight. The core
// pipeline never depends on it; a generator failure yields an error the
// caller can surface while every numeric result stays valid.
type Service struct {
	generator Generator
	logger    *zap.Logger
}

// NewService creates an insight service.
func NewService(generator Generator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{generator: generator, logger: logger}
}

// Summary is the generated narrative plus the exact prompt context it was
// produced from, for auditability.
type Summary struct {
	Text   string `json:"text"`
	Prompt string `json:"prompt"`
}

// Generate builds the read-only KPI summary and asks the generator for a
// narrative. Failures come back as ExternalServiceError.
func (s *Service) Generate(ctx context.Context, result *analytics.Result) (*Summary, error) {
	prompt := BuildPrompt(result)
	text, err := s.generator.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		s.logger.Warn("insight generation failed", zap.Error(err))
		return nil, shared.NewExternalServiceError("insight-generator", err)
	}
	return &Summary{Text: text, Prompt: prompt}, nil
}

// BuildPrompt renders the aggregated KPIs and analysis highlights as plain
// text. Only aggregates cross this boundary, never row-level data.
func BuildPrompt(result *analytics.Result) string {
	var b strings.Builder
	k := result.KPIs

	fmt.Fprintf(&b, "Orders: %d (units %d)\n", k.TotalOrders, k.TotalUnits)
	fmt.Fprintf(&b, "Revenue: %s, margin: %s, avg order value: %s\n",
		k.TotalRevenue.StringFixed(2), k.TotalMargin.StringFixed(2), k.AvgOrderValue.StringFixed(2))
	fmt.Fprintf(&b, "Phantom sales: %d orders, %.1f%% of revenue\n",
		k.PhantomOrders, k.PhantomRevenueShare*100)
	fmt.Fprintf(&b, "Avg delivery: %.1f days against %.1f promised\n",
		k.AvgDeliveryDays, k.AvgLeadTimeDays)
	fmt.Fprintf(&b, "NPS: %.1f (promoters %.1f%%, detractors %.1f%%), product rating %.2f\n",
		k.AvgNPS, k.PromoterShare*100, k.DetractorShare*100, k.AvgProductRating)
	fmt.Fprintf(&b, "Stockout rate: %.1f%%\n", k.StockoutRate*100)

	ml := result.MarginLeak
	fmt.Fprintf(&b, "Margin leak: %d losing SKUs, total loss %s",
		len(ml.Losing), ml.TotalLoss.StringFixed(2))
	if n := len(ml.Losing); n > 0 {
		top := ml.Losing
		if len(top) > 3 {
			top = top[:3]
		}
		b.WriteString(", worst:")
		for _, s := range top {
			fmt.Fprintf(&b, " %s (%s)", s.SKU, s.Margin.StringFixed(2))
		}
	}
	b.WriteString("\n")

	lg := result.Logistics
	if lg.Computable {
		fmt.Fprintf(&b, "Delivery-gap vs NPS correlation: %.3f over %d rows\n",
			lg.Coefficient, lg.RowCount)
	} else {
		fmt.Fprintf(&b, "Delivery-gap vs NPS correlation: not computable (%d rows)\n", lg.RowCount)
	}

	if n := len(result.BlindWarehouses.Warehouses); n > 0 {
		b.WriteString("Blind warehouses:")
		for _, w := range result.BlindWarehouses.Warehouses {
			fmt.Fprintf(&b, " %s (%.0f days, stockout %.0f%%)",
				w.Warehouse, w.AvgReviewDays, w.StockoutRate*100)
		}
		b.WriteString("\n")
	}
	if result.StockSatisfaction.Paradox {
		b.WriteString("Stock-satisfaction paradox detected: scarce products rate as well as stocked ones\n")
	}

	lowConfidence := collectLowConfidence(result)
	if len(lowConfidence) > 0 {
		fmt.Fprintf(&b, "Low-confidence results (small samples): %s\n",
			strings.Join(lowConfidence, ", "))
	}
	return b.String()
}

func collectLowConfidence(result *analytics.Result) []string {
	var names []string
	if result.MarginLeak.LowConfidence {
		names = append(names, "margin leak")
	}
	if result.Logistics.LowConfidence {
		names = append(names, "logistics correlation")
	}
	if result.InvisibleSales.LowConfidence {
		names = append(names, "invisible sales")
	}
	if result.StockSatisfaction.LowConfidence {
		names = append(names, "stock satisfaction")
	}
	if result.BlindWarehouses.LowConfidence {
		names = append(names, "blind warehouses")
	}
	return names
}
