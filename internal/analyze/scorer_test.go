package analyze

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reviewpulse/reviewpulse/internal/model"
)

func TestLexiconScorer_Polarity(t *testing.T) {
	s := NewLexiconScorer()

	assert.Greater(t, s.Compound("I love this product"), 0.05)
	assert.Less(t, s.Compound("Terrible quality, it broke in a week"), -0.05)
	assert.Zero(t, s.Compound("It is a phone with a screen"))
}

func TestLexiconScorer_Negation(t *testing.T) {
	s := NewLexiconScorer()

	plain := s.Compound("This is good")
	negated := s.Compound("This is not good")
	assert.Greater(t, plain, 0.0)
	assert.Less(t, negated, 0.0, "negation flips polarity")
	assert.Less(t, -negated, plain, "flipped valence is dampened, not mirrored")
}

func TestLexiconScorer_Boosters(t *testing.T) {
	s := NewLexiconScorer()
	assert.Greater(t, s.Compound("really great"), s.Compound("great"))
	assert.Less(t, s.Compound("somewhat good"), s.Compound("good"))
	assert.Less(t, s.Compound("extremely bad"), s.Compound("bad"))
}

func TestLexiconScorer_ExclamationEmphasis(t *testing.T) {
	s := NewLexiconScorer()
	assert.Greater(t, s.Compound("great!!"), s.Compound("great"))
	// Punctuation alone carries no sentiment.
	assert.Zero(t, s.Compound("!!!"))
}

func TestLexiconScorer_Bounded(t *testing.T) {
	s := NewLexiconScorer()
	c := s.Compound("love love love great great amazing awesome best perfect excellent!!!!")
	assert.Greater(t, c, 0.9)
	assert.LessOrEqual(t, c, 1.0)
}

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		compound float64
		want     model.Sentiment
	}{
		{0.05, model.SentimentPositive},
		{0.0499, model.SentimentNeutral},
		{0.0, model.SentimentNeutral},
		{-0.0499, model.SentimentNeutral},
		{-0.05, model.SentimentNegative},
		{0.9, model.SentimentPositive},
		{-0.9, model.SentimentNegative},
	}
	for _, tt := range tests {
		sentiment, confidence := Classify(tt.compound)
		assert.Equal(t, tt.want, sentiment, "compound %v", tt.compound)
		assert.InDelta(t, math.Abs(tt.compound), confidence, 1e-9, "confidence is |compound|")
	}
}
