package analyze

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/reviewpulse/reviewpulse/internal/apperr"
	"github.com/reviewpulse/reviewpulse/internal/model"
	"github.com/reviewpulse/reviewpulse/internal/store"
)

// Engine runs sentiment and aspect analysis over stored raw reviews.
type Engine struct {
	store  store.Store
	scorer SentimentScorer
}

// NewEngine creates an analysis engine.
func NewEngine(st store.Store, scorer SentimentScorer) *Engine {
	return &Engine{store: st, scorer: scorer}
}

// Process analyzes every raw review for the product and stores the results,
// skipping (product_id, text) pairs that were already processed. Unless
// force is set, an existing processed set short-circuits the run entirely.
// Returns the full processed set for the product.
func (e *Engine) Process(ctx context.Context, productID string, force bool) ([]model.ProcessedReview, error) {
	if !force {
		count, err := e.store.CountProcessedReviews(ctx, productID)
		if err != nil {
			return nil, eris.Wrapf(err, "analyze: count processed for %s", productID)
		}
		if count > 0 {
			zap.L().Info("processed reviews cached, skipping analysis",
				zap.String("product_id", productID),
				zap.Int("count", count),
			)
			return e.store.ListProcessedReviews(ctx, productID)
		}
	}

	raw, err := e.store.ListRawReviews(ctx, productID)
	if err != nil {
		return nil, eris.Wrapf(err, "analyze: list raw for %s", productID)
	}
	if len(raw) == 0 {
		return nil, eris.Wrapf(apperr.ErrNoRawData, "product %s", productID)
	}

	inserted := 0
	for _, r := range raw {
		text := strings.TrimSpace(r.Text)
		if text == "" {
			continue
		}

		compound := e.scorer.Compound(text)
		sentiment, confidence := Classify(compound)

		written, err := e.store.InsertProcessedReview(ctx, model.ProcessedReview{
			ProductID:  r.ProductID,
			Source:     r.Source,
			Reviewer:   r.Reviewer,
			Rating:     r.Rating,
			Title:      r.Title,
			Text:       text,
			Date:       r.Date,
			Sentiment:  sentiment,
			Confidence: confidence,
			Aspects:    DetectAspects(text),
		})
		if err != nil {
			return nil, eris.Wrapf(err, "analyze: store processed review for %s", productID)
		}
		if written {
			inserted++
		}
	}

	zap.L().Info("analysis finished",
		zap.String("product_id", productID),
		zap.Int("raw", len(raw)),
		zap.Int("inserted", inserted),
	)
	return e.store.ListProcessedReviews(ctx, productID)
}
