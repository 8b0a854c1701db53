package analyze

import (
	"math"

	"github.com/reviewpulse/reviewpulse/internal/model"
)

// Thresholds on the compound score. Scores inside the open interval
// (-0.05, 0.05) are neutral; the boundaries themselves are not.
const (
	positiveThreshold = 0.05
	negativeThreshold = -0.05
)

// Classify maps a compound score to a sentiment label and a confidence,
// where confidence is the magnitude of the score.
func Classify(compound float64) (model.Sentiment, float64) {
	confidence := math.Abs(compound)
	switch {
	case compound >= positiveThreshold:
		return model.SentimentPositive, confidence
	case compound <= negativeThreshold:
		return model.SentimentNegative, confidence
	default:
		return model.SentimentNeutral, confidence
	}
}
