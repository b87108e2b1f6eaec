package cleaning

import (
	"go.uber.org/zap"

	"github.com/techlogistics/backend/internal/domain/dataset"
	"github.com/techlogistics/backend/internal/domain/quality"
)

// CleanFeedback repairs a cloned feedback snapshot: implausible ages are
// imputed from the plausible-age median, ratings and NPS scores are clamped
// to their scales, and the derived category columns are filled in.
func (c *Cleaner) CleanFeedback(fb *dataset.Feedback, rep *quality.DatasetReport) *dataset.Feedback {
	out := c.dedupeFeedback(fb, rep)

	c.imputeAges(out, rep)

	ratingsClamped, npsClamped := 0, 0
	for i := range out.Rows {
		r := &out.Rows[i]

		product := clampRating(r.ProductRating)
		logistics := clampRating(r.LogisticsRating)
		if product || logistics {
			if !r.RatingClamped {
				r.RatingClamped = true
				ratingsClamped++
			}
		}

		if r.NPS != nil {
			if v := clamp(*r.NPS, -100, 100); v != *r.NPS {
				*r.NPS = v
				if !r.NPSClamped {
					r.NPSClamped = true
					npsClamped++
				}
			}
		}
		r.NPSCategory = npsCategory(r.NPS)
		r.AgeSegment = ageSegment(r.Age)

		if r.SupportTicket == nil && r.SupportRaw != "" {
			if v := ParseTicket(r.SupportRaw); v != nil {
				r.SupportTicket = v
				rep.Field("support_ticket").Corrected++
			}
		}

		res := c.recommend.Normalize(firstNonEmpty(r.Recommend, r.RecommendRaw))
		countNormalization(rep.Field("recommend"), r.RecommendRaw, res)
		if r.RecommendRaw == "" {
			r.RecommendRaw = r.Recommend
		}
		r.Recommend = res.Label
	}
	if ratingsClamped > 0 {
		rep.Field("product_rating").Corrected += ratingsClamped
		rep.Action("clamped %d out-of-scale ratings to 1..5", ratingsClamped)
	}
	if npsClamped > 0 {
		rep.Field("nps").Corrected += npsClamped
		rep.Action("clamped %d NPS scores to -100..100", npsClamped)
	}

	return out
}

func (c *Cleaner) dedupeFeedback(fb *dataset.Feedback, rep *quality.DatasetReport) *dataset.Feedback {
	out := fb.Clone()
	seen := make(map[string]bool, len(out.Rows))
	kept := out.Rows[:0]
	for _, r := range out.Rows {
		if r.ID != "" && seen[r.ID] {
			rep.DuplicatesRemoved++
			continue
		}
		seen[r.ID] = true
		kept = append(kept, r)
	}
	out.Rows = kept
	if rep.DuplicatesRemoved > 0 {
		rep.Action("removed %d duplicate feedback IDs, first occurrence kept", rep.DuplicatesRemoved)
	}
	return out
}

// imputeAges replaces missing and implausible ages with the median of the
// plausible ones. The dataset has no grouping column reliable enough to
// segment by, so the median is global.
func (c *Cleaner) imputeAges(fb *dataset.Feedback, rep *quality.DatasetReport) {
	var plausible []float64
	for _, r := range fb.Rows {
		if r.Age != nil && !r.AgeImputed && c.plausibleAge(*r.Age) {
			plausible = append(plausible, *r.Age)
		}
	}
	median, ok := Median(plausible)
	if !ok {
		c.logger.Warn("no plausible ages observed, age imputation skipped")
		return
	}

	imp := quality.Imputation{Field: "age", Strategy: "global median of plausible ages"}
	for i := range fb.Rows {
		r := &fb.Rows[i]
		switch {
		case r.Age == nil:
			v := median
			r.Age = &v
			r.AgeImputed = true
			imp.Count++
		case !c.plausibleAge(*r.Age) && !r.AgeImputed:
			c.logger.Debug("implausible age replaced",
				zap.String("feedback_id", r.ID),
				zap.Float64("age", *r.Age))
			*r.Age = median
			r.AgeImplausible = true
			r.AgeImputed = true
			imp.Count++
		}
	}
	if imp.Count > 0 {
		rep.AddImputation(imp)
	}
}

func (c *Cleaner) plausibleAge(age float64) bool {
	return age >= c.cfg.PlausibleAgeMin && age <= c.cfg.PlausibleAgeMax
}

func clampRating(v *float64) bool {
	if v == nil {
		return false
	}
	if c := clamp(*v, 1, 5); c != *v {
		*v = c
		return true
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func npsCategory(nps *float64) string {
	switch {
	case nps == nil:
		return dataset.NPSUnknown
	case *nps >= 50:
		return dataset.NPSPromoter
	case *nps >= 0:
		return dataset.NPSPassive
	default:
		return dataset.NPSDetractor
	}
}

func ageSegment(age *float64) string {
	switch {
	case age == nil:
		return "unknown"
	case *age < 25:
		return "18-24"
	case *age < 35:
		return "25-34"
	case *age < 45:
		return "35-44"
	case *age < 55:
		return "45-54"
	case *age < 65:
		return "55-64"
	default:
		return "65+"
	}
}
