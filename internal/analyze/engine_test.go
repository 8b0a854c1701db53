package analyze

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewpulse/reviewpulse/internal/apperr"
	"github.com/reviewpulse/reviewpulse/internal/model"
	"github.com/reviewpulse/reviewpulse/internal/store"
)

func newTestEngine(t *testing.T) (*Engine, store.Store) {
	t.Helper()
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return NewEngine(s, NewLexiconScorer()), s
}

func seedRaw(t *testing.T, st store.Store, productID string, texts ...string) {
	t.Helper()
	reviews := make([]model.RawReview, len(texts))
	for i, text := range texts {
		reviews[i] = model.RawReview{ProductID: productID, Source: "bestbuy", Text: text}
	}
	_, err := st.InsertRawReviews(context.Background(), reviews)
	require.NoError(t, err)
}

func TestEngine_Process(t *testing.T) {
	e, st := newTestEngine(t)
	seedRaw(t, st, "7654321",
		"I love the quality of this thing",
		"Terrible, arrived broken and shipping was late",
		"It has a power cord",
	)

	docs, err := e.Process(context.Background(), "7654321", false)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	bySentiment := map[model.Sentiment]model.ProcessedReview{}
	for _, d := range docs {
		bySentiment[d.Sentiment] = d
	}

	pos := bySentiment[model.SentimentPositive]
	assert.Contains(t, pos.Text, "love")
	assert.Contains(t, pos.Aspects, model.AspectQuality)
	assert.Greater(t, pos.Confidence, 0.05)

	neg := bySentiment[model.SentimentNegative]
	assert.Contains(t, neg.Aspects, model.AspectDelivery)

	neu := bySentiment[model.SentimentNeutral]
	assert.Zero(t, neu.Confidence)
	assert.Empty(t, neu.Aspects)
}

func TestEngine_Process_CachedSkipsRerun(t *testing.T) {
	e, st := newTestEngine(t)
	seedRaw(t, st, "7654321", "great product")

	first, err := e.Process(context.Background(), "7654321", false)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// New raw data arrives, but the processed cache short-circuits.
	seedRaw(t, st, "7654321", "terrible product")
	second, err := e.Process(context.Background(), "7654321", false)
	require.NoError(t, err)
	assert.Len(t, second, 1)

	// force re-analyzes everything, keeping existing rows.
	forced, err := e.Process(context.Background(), "7654321", true)
	require.NoError(t, err)
	assert.Len(t, forced, 2)
}

func TestEngine_Process_NoRawData(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Process(context.Background(), "7654321", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNoRawData)
}

func TestEngine_Process_SkipsEmptyText(t *testing.T) {
	e, st := newTestEngine(t)
	seedRaw(t, st, "7654321", "good one", "   ")

	docs, err := e.Process(context.Background(), "7654321", false)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}
