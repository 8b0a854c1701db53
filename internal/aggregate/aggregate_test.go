package aggregate

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewpulse/reviewpulse/internal/model"
	"github.com/reviewpulse/reviewpulse/internal/store"
)

func processed(pid string, s model.Sentiment, aspects ...model.Aspect) model.ProcessedReview {
	return model.ProcessedReview{ProductID: pid, Sentiment: s, Aspects: aspects}
}

func TestSummarize(t *testing.T) {
	docs := []model.ProcessedReview{
		processed("p", model.SentimentPositive),
		processed("p", model.SentimentPositive),
		processed("p", model.SentimentNegative),
		processed("p", model.SentimentNeutral),
	}
	stats := Summarize(docs)

	assert.Equal(t, 4, stats.TotalReviews)
	assert.InDelta(t, 50.0, stats.PositivePct, 1e-9)
	assert.InDelta(t, 25.0, stats.NegativePct, 1e-9)
	assert.InDelta(t, 25.0, stats.NeutralPct, 1e-9)
	assert.InDelta(t, 25.0, stats.OverallScore, 1e-9)
}

func TestSummarize_Rounding(t *testing.T) {
	docs := []model.ProcessedReview{
		processed("p", model.SentimentPositive),
		processed("p", model.SentimentPositive),
		processed("p", model.SentimentNegative),
	}
	stats := Summarize(docs)
	assert.InDelta(t, 66.67, stats.PositivePct, 1e-9)
	assert.InDelta(t, 33.33, stats.NegativePct, 1e-9)
	assert.InDelta(t, 33.34, stats.OverallScore, 1e-9)
}

func TestSummarize_Empty(t *testing.T) {
	stats := Summarize(nil)
	assert.Zero(t, stats.TotalReviews)
	assert.Zero(t, stats.PositivePct)
	assert.Zero(t, stats.OverallScore)
}

func TestAspectStats(t *testing.T) {
	docs := []model.ProcessedReview{
		processed("p", model.SentimentPositive, model.AspectPrice, model.AspectQuality),
		processed("p", model.SentimentNegative, model.AspectPrice),
		processed("p", model.SentimentNeutral), // no aspects, ignored
		{ProductID: "p", Sentiment: "Garbage", Aspects: []model.Aspect{model.AspectPrice}},
	}
	agg := AspectStats(docs)

	require.Contains(t, agg, model.AspectPrice)
	price := agg[model.AspectPrice]
	assert.Equal(t, 1, price.Positive)
	assert.Equal(t, 1, price.Negative)
	assert.Equal(t, 2, price.Total, "unknown sentiment label contributes nothing")

	quality := agg[model.AspectQuality]
	assert.Equal(t, 1, quality.Positive)
	assert.Equal(t, 1, quality.Total)
}

func newComparerWithData(t *testing.T) *Comparer {
	t.Helper()
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()
	require.NoError(t, s.Migrate(ctx))

	seed := []model.ProcessedReview{
		// p1: 2 positive (one on Price), 1 negative on Quality
		{ProductID: "p1", Sentiment: model.SentimentPositive, Text: "a", Aspects: []model.Aspect{model.AspectPrice}},
		{ProductID: "p1", Sentiment: model.SentimentPositive, Text: "b"},
		{ProductID: "p1", Sentiment: model.SentimentNegative, Text: "c", Aspects: []model.Aspect{model.AspectQuality}},
		// p2: 1 negative on Price
		{ProductID: "p2", Sentiment: model.SentimentNegative, Text: "d", Aspects: []model.Aspect{model.AspectPrice}},
	}
	for _, d := range seed {
		_, err := s.InsertProcessedReview(ctx, d)
		require.NoError(t, err)
	}
	return NewComparer(s)
}

func TestComparer_Compare(t *testing.T) {
	c := newComparerWithData(t)
	cmp, err := c.Compare(context.Background(), []string{"p1", "p2", "p3"})
	require.NoError(t, err)

	assert.Equal(t, []string{"p1", "p2", "p3"}, cmp.ProductIDs)
	require.Len(t, cmp.Summary, 3)
	assert.Equal(t, "p1", cmp.Summary[0].ProductID)
	assert.InDelta(t, 66.67, cmp.Summary[0].PositivePct, 1e-9)
	assert.Zero(t, cmp.Summary[2].TotalReviews, "unknown product yields zero stats, not an error")

	require.Contains(t, cmp.AspectTable, model.AspectPrice)
	price := cmp.AspectTable[model.AspectPrice]
	assert.Equal(t, 1, price["p1"].Positive)
	assert.Equal(t, 1, price["p2"].Negative)
	assert.Zero(t, price["p3"].Total, "missing combinations are zero-filled")

	// Quality appears only for p1 but is still keyed for every product.
	quality := cmp.AspectTable[model.AspectQuality]
	require.Len(t, quality, 3)
	assert.Zero(t, quality["p2"].Total)
}

func TestAspectWinners(t *testing.T) {
	cmp := &model.Comparison{
		AspectTable: map[model.Aspect]map[string]model.AspectCounts{
			model.AspectPrice: {
				"p1": {Positive: 3, Negative: 1, Total: 4},
				"p2": {Positive: 1, Negative: 2, Total: 3},
			},
			model.AspectQuality: {
				"p1": {Positive: 2, Negative: 1, Total: 3},
				"p2": {Positive: 1, Total: 1},
			},
			model.AspectDelivery: {
				"p1": {Positive: 1, Negative: 1, Total: 2},
				"p2": {Total: 0},
			},
		},
	}
	winners := AspectWinners(cmp)

	assert.Equal(t, "p1", winners[model.AspectPrice].Winner)
	assert.Equal(t, 2, winners[model.AspectPrice].Scores["p1"])
	assert.Equal(t, -1, winners[model.AspectPrice].Scores["p2"])
	assert.Equal(t, TieWinner, winners[model.AspectQuality].Winner, "equal net scores tie")
	assert.Equal(t, TieWinner, winners[model.AspectDelivery].Winner)
}

func TestAspectWinners_ThreeWay(t *testing.T) {
	cmp := &model.Comparison{
		AspectTable: map[model.Aspect]map[string]model.AspectCounts{
			model.AspectPrice: {
				"p1": {Positive: 1, Total: 1},
				"p2": {Positive: 4, Total: 4},
				"p3": {Positive: 1, Total: 1},
			},
			model.AspectQuality: {
				"p1": {Positive: 2, Total: 2},
				"p2": {Positive: 2, Total: 2},
				"p3": {Negative: 1, Total: 1},
			},
		},
	}
	winners := AspectWinners(cmp)
	assert.Equal(t, "p2", winners[model.AspectPrice].Winner)
	assert.Equal(t, TieWinner, winners[model.AspectQuality].Winner, "shared max ties even with a loser present")
}

func TestOverallWinner(t *testing.T) {
	winner, scores := OverallWinner([]model.ProductSummaryRow{
		{ProductID: "p1", ProductStats: model.ProductStats{OverallScore: 40.0}},
		{ProductID: "p2", ProductStats: model.ProductStats{OverallScore: 12.5}},
	})
	assert.Equal(t, "p1", winner)
	assert.InDelta(t, 40.0, scores["p1"], 1e-9)

	winner, _ = OverallWinner([]model.ProductSummaryRow{
		{ProductID: "p1", ProductStats: model.ProductStats{OverallScore: 30}},
		{ProductID: "p2", ProductStats: model.ProductStats{OverallScore: 30}},
	})
	assert.Equal(t, TieWinner, winner)

	winner, _ = OverallWinner([]model.ProductSummaryRow{
		{ProductID: "p1", ProductStats: model.ProductStats{OverallScore: 30}},
	})
	assert.Equal(t, TieWinner, winner, "a single product cannot win a comparison")
}
