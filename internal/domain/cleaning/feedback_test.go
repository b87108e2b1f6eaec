package cleaning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techlogistics/backend/internal/domain/dataset"
	"github.com/techlogistics/backend/internal/domain/quality"
)

func feedbackOf(rows ...dataset.FeedbackRecord) *dataset.Feedback {
	return &dataset.Feedback{Rows: rows}
}

func TestCleanFeedback_AgeImputation(t *testing.T) {
	c := testCleaner(t)
	rep := quality.NewDatasetReport("feedback")

	out := c.CleanFeedback(feedbackOf(
		dataset.FeedbackRecord{ID: "F1", Age: floatPtr(30)},
		dataset.FeedbackRecord{ID: "F2", Age: floatPtr(40)},
		dataset.FeedbackRecord{ID: "F3", Age: floatPtr(50)},
		dataset.FeedbackRecord{ID: "F4", Age: floatPtr(250)},
		dataset.FeedbackRecord{ID: "F5"},
	), rep)

	// Implausible age replaced by the median of the plausible ones
	assert.Equal(t, 40.0, *out.Rows[3].Age)
	assert.True(t, out.Rows[3].AgeImplausible)
	assert.True(t, out.Rows[3].AgeImputed)

	// Missing age imputed without the implausible flag
	assert.Equal(t, 40.0, *out.Rows[4].Age)
	assert.False(t, out.Rows[4].AgeImplausible)
	assert.True(t, out.Rows[4].AgeImputed)

	require.Len(t, rep.Imputations, 1)
	assert.Equal(t, 2, rep.Imputations[0].Count)
}

func TestCleanFeedback_RatingAndNPSClamping(t *testing.T) {
	c := testCleaner(t)
	rep := quality.NewDatasetReport("feedback")

	out := c.CleanFeedback(feedbackOf(
		dataset.FeedbackRecord{ID: "F1", ProductRating: floatPtr(7), LogisticsRating: floatPtr(0)},
		dataset.FeedbackRecord{ID: "F2", ProductRating: floatPtr(4), NPS: floatPtr(150)},
		dataset.FeedbackRecord{ID: "F3", NPS: floatPtr(-130)},
	), rep)

	assert.Equal(t, 5.0, *out.Rows[0].ProductRating)
	assert.Equal(t, 1.0, *out.Rows[0].LogisticsRating)
	assert.True(t, out.Rows[0].RatingClamped)

	assert.Equal(t, 4.0, *out.Rows[1].ProductRating)
	assert.Equal(t, 100.0, *out.Rows[1].NPS)
	assert.True(t, out.Rows[1].NPSClamped)

	assert.Equal(t, -100.0, *out.Rows[2].NPS)

	assert.Equal(t, 1, rep.Fields["product_rating"].Corrected)
	assert.Equal(t, 2, rep.Fields["nps"].Corrected)
}

func TestCleanFeedback_DerivedCategories(t *testing.T) {
	c := testCleaner(t)
	rep := quality.NewDatasetReport("feedback")

	out := c.CleanFeedback(feedbackOf(
		dataset.FeedbackRecord{ID: "F1", Age: floatPtr(22), NPS: floatPtr(75)},
		dataset.FeedbackRecord{ID: "F2", Age: floatPtr(38), NPS: floatPtr(0)},
		dataset.FeedbackRecord{ID: "F3", Age: floatPtr(70), NPS: floatPtr(-20)},
	), rep)

	assert.Equal(t, dataset.NPSPromoter, out.Rows[0].NPSCategory)
	assert.Equal(t, "18-24", out.Rows[0].AgeSegment)

	assert.Equal(t, dataset.NPSPassive, out.Rows[1].NPSCategory)
	assert.Equal(t, "35-44", out.Rows[1].AgeSegment)

	assert.Equal(t, dataset.NPSDetractor, out.Rows[2].NPSCategory)
	assert.Equal(t, "65+", out.Rows[2].AgeSegment)
}

func TestNPSCategory_Boundaries(t *testing.T) {
	tests := []struct {
		name string
		nps  *float64
		want string
	}{
		{"nil", nil, dataset.NPSUnknown},
		{"promoter threshold", floatPtr(50), dataset.NPSPromoter},
		{"just below promoter", floatPtr(49.9), dataset.NPSPassive},
		{"passive threshold", floatPtr(0), dataset.NPSPassive},
		{"detractor", floatPtr(-0.1), dataset.NPSDetractor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, npsCategory(tt.nps))
		})
	}
}

func TestCleanFeedback_SupportAndRecommend(t *testing.T) {
	c := testCleaner(t)
	rep := quality.NewDatasetReport("feedback")

	out := c.CleanFeedback(feedbackOf(
		dataset.FeedbackRecord{ID: "F1", SupportRaw: "sí", RecommendRaw: "si"},
		dataset.FeedbackRecord{ID: "F2", SupportRaw: "no", RecommendRaw: "quizas"},
		dataset.FeedbackRecord{ID: "F3", SupportRaw: "n/a", RecommendRaw: ""},
	), rep)

	require.NotNil(t, out.Rows[0].SupportTicket)
	assert.True(t, *out.Rows[0].SupportTicket)
	assert.Equal(t, "Yes", out.Rows[0].Recommend)

	require.NotNil(t, out.Rows[1].SupportTicket)
	assert.False(t, *out.Rows[1].SupportTicket)
	assert.Equal(t, "Maybe", out.Rows[1].Recommend)

	assert.Nil(t, out.Rows[2].SupportTicket)
	assert.Equal(t, UnknownLabel, out.Rows[2].Recommend)

	assert.Equal(t, 2, rep.Fields["support_ticket"].Corrected)
}

func TestCleanFeedback_Idempotent(t *testing.T) {
	c := testCleaner(t)

	in := feedbackOf(
		dataset.FeedbackRecord{ID: "F1", Age: floatPtr(30), ProductRating: floatPtr(9), NPS: floatPtr(60), SupportRaw: "sí", RecommendRaw: "si"},
		dataset.FeedbackRecord{ID: "F1", Age: floatPtr(31)},
		dataset.FeedbackRecord{ID: "F2", Age: floatPtr(999), NPS: floatPtr(-150), RecommendRaw: "no"},
		dataset.FeedbackRecord{ID: "F3", RecommendRaw: "quizás"},
	)

	firstRep := quality.NewDatasetReport("feedback")
	once := c.CleanFeedback(in, firstRep)
	require.Positive(t, firstRep.TotalDefects())

	secondRep := quality.NewDatasetReport("feedback")
	twice := c.CleanFeedback(once, secondRep)

	assert.Equal(t, 0, secondRep.TotalDefects(), "second pass found defects: %+v", secondRep.Fields)
	assert.Equal(t, once.Rows, twice.Rows)
}
