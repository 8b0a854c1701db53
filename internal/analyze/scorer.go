// Package analyze turns raw review text into sentiment labels and aspect
// tags.
package analyze

import (
	"math"
	"strings"
)

// SentimentScorer produces a compound polarity score in [-1, 1] for a text.
type SentimentScorer interface {
	Compound(text string) float64
}

// Valence lexicon for review vocabulary, roughly on the VADER scale of
// [-4, 4]. Reviews lean on a narrow emotional vocabulary, so a small
// lexicon covers most of the signal.
var lexicon = map[string]float64{
	// positive
	"love": 3.2, "loved": 2.9, "loves": 2.9,
	"great": 3.1, "excellent": 2.7, "amazing": 2.8, "awesome": 3.1,
	"fantastic": 2.6, "wonderful": 2.7, "perfect": 2.7, "best": 3.2,
	"good": 1.9, "nice": 1.8, "happy": 2.7, "pleased": 2.1,
	"satisfied": 1.9, "impressive": 2.2, "recommend": 1.5, "recommended": 1.5,
	"easy": 1.9, "fast": 1.3, "quick": 1.3, "smooth": 1.5,
	"sturdy": 1.6, "durable": 1.7, "reliable": 1.9, "solid": 1.5,
	"comfortable": 1.5, "value": 1.5, "works": 1.4, "worked": 1.4,
	"cheap": 0.4,

	// negative
	"bad": -2.5, "terrible": -2.1, "awful": -2.0, "horrible": -2.5,
	"poor": -2.1, "worst": -3.1, "hate": -2.7, "hated": -2.9,
	"broken": -2.0, "broke": -1.8, "breaks": -1.8, "faulty": -1.9,
	"defective": -2.1, "damaged": -1.7, "flimsy": -1.6, "useless": -1.8,
	"disappointed": -2.1, "disappointing": -2.2, "waste": -1.8,
	"slow": -1.2, "late": -1.1, "noisy": -1.2, "leaked": -1.4,
	"missing": -1.4, "wrong": -1.4, "problem": -1.4, "problems": -1.4,
	"issue": -0.8, "issues": -0.8, "refund": -0.9, "scam": -2.2,
}

var negations = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "none": {}, "neither": {}, "nor": {},
	"cannot": {}, "can't": {}, "don't": {}, "doesn't": {}, "didn't": {},
	"won't": {}, "wouldn't": {}, "isn't": {}, "wasn't": {}, "aren't": {},
	"couldn't": {},
}

// boosters raise or dampen the valence of the word they precede.
var boosters = map[string]float64{
	"very": 0.293, "really": 0.293, "extremely": 0.293,
	"absolutely": 0.293, "incredibly": 0.293, "totally": 0.293,
	"slightly": -0.293, "somewhat": -0.293, "barely": -0.293,
}

const (
	negationScalar = -0.74
	// negationWindow is how many preceding tokens a negation reaches over.
	negationWindow = 3
	exclamationAmp = 0.292
	maxExclamation = 4
	// normalizationAlpha shapes the sum-to-[-1,1] squash.
	normalizationAlpha = 15
)

// LexiconScorer is a dictionary-based sentiment scorer with negation and
// booster handling.
type LexiconScorer struct{}

// NewLexiconScorer creates a LexiconScorer.
func NewLexiconScorer() *LexiconScorer { return &LexiconScorer{} }

// Compound scores the text. Zero means no sentiment-bearing words.
func (s *LexiconScorer) Compound(text string) float64 {
	tokens := tokenize(text)
	var sum float64
	for i, tok := range tokens {
		valence, ok := lexicon[tok]
		if !ok {
			continue
		}
		for j := max(0, i-negationWindow); j < i; j++ {
			if _, neg := negations[tokens[j]]; neg {
				valence *= negationScalar
				break
			}
			if boost, ok := boosters[tokens[j]]; ok {
				if valence < 0 {
					valence -= boost
				} else {
					valence += boost
				}
			}
		}
		sum += valence
	}
	if sum != 0 {
		ep := strings.Count(text, "!")
		if ep > maxExclamation {
			ep = maxExclamation
		}
		amp := float64(ep) * exclamationAmp
		if sum < 0 {
			sum -= amp
		} else {
			sum += amp
		}
	}
	return normalize(sum)
}

// normalize squashes a valence sum into [-1, 1].
func normalize(sum float64) float64 {
	return sum / math.Sqrt(sum*sum+normalizationAlpha)
}

func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?\"'()[]{}")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
