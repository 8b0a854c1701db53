// Package acquire turns product references into stored raw reviews, cache
// first and upstream second.
package acquire

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/reviewpulse/reviewpulse/internal/apperr"
	"github.com/reviewpulse/reviewpulse/internal/extract"
	"github.com/reviewpulse/reviewpulse/internal/model"
	"github.com/reviewpulse/reviewpulse/internal/store"
	"github.com/reviewpulse/reviewpulse/pkg/bestbuy"
)

// Result is the outcome of an acquisition run.
type Result struct {
	ProductID string
	Reviews   []model.RawReview
	Inserted  int
	// FromCache reports that the store already held reviews for the
	// product and no upstream call was made.
	FromCache bool
}

// BestBuyConfig tunes the paginated API walk.
type BestBuyConfig struct {
	PageSize  int
	PageDelay time.Duration
}

// BestBuyPipeline acquires reviews through the BestBuy developer API.
type BestBuyPipeline struct {
	store  store.Store
	client bestbuy.Client
	cfg    BestBuyConfig
}

// NewBestBuyPipeline creates a BestBuy acquisition pipeline.
func NewBestBuyPipeline(st store.Store, client bestbuy.Client, cfg BestBuyConfig) *BestBuyPipeline {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	return &BestBuyPipeline{store: st, client: client, cfg: cfg}
}

// Acquire resolves the SKU from a URL or bare code, returns cached reviews
// when any exist, and otherwise walks every API page, storing each page as
// it lands. A page that keeps failing after retries is skipped, not fatal.
func (p *BestBuyPipeline) Acquire(ctx context.Context, linkOrSKU string) (*Result, error) {
	sku, err := extract.SKU(linkOrSKU)
	if err != nil {
		return nil, err
	}

	cached, err := p.store.ListRawReviews(ctx, sku)
	if err != nil {
		return nil, eris.Wrapf(err, "acquire: cache lookup for sku %s", sku)
	}
	if len(cached) > 0 {
		zap.L().Info("serving cached reviews",
			zap.String("sku", sku),
			zap.Int("count", len(cached)),
		)
		return &Result{ProductID: sku, Reviews: cached, FromCache: true}, nil
	}

	first, err := p.client.ReviewsPage(ctx, sku, 1, p.cfg.PageSize)
	if err != nil {
		// A misconfigured key is the operator's problem; an upstream that
		// keeps failing after retries just means no data this run.
		if eris.Is(err, apperr.ErrMissingCredential) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "acquire: bestbuy walk canceled")
		}
		zap.L().Warn("first reviews page unavailable, returning empty",
			zap.String("sku", sku),
			zap.Error(err),
		)
		return &Result{ProductID: sku}, nil
	}
	zap.L().Info("fetching reviews from bestbuy",
		zap.String("sku", sku),
		zap.Int("total", first.Total),
		zap.Int("total_pages", first.TotalPages),
	)

	result := &Result{ProductID: sku}
	totalPages := first.TotalPages
	if totalPages < 1 {
		totalPages = 1
	}
	for page := 1; page <= totalPages; page++ {
		data := first
		if page > 1 {
			data, err = p.client.ReviewsPage(ctx, sku, page, p.cfg.PageSize)
			if err != nil {
				if ctx.Err() != nil {
					return nil, eris.Wrap(ctx.Err(), "acquire: bestbuy walk canceled")
				}
				zap.L().Warn("skipping reviews page",
					zap.String("sku", sku),
					zap.Int("page", page),
					zap.Error(err),
				)
				continue
			}
		}

		batch := make([]model.RawReview, 0, len(data.Reviews))
		for _, r := range data.Reviews {
			batch = append(batch, fromAPIReview(r, sku))
		}
		inserted, err := p.store.InsertRawReviews(ctx, batch)
		if err != nil {
			return nil, eris.Wrapf(err, "acquire: store page %d for sku %s", page, sku)
		}
		result.Inserted += inserted
		result.Reviews = append(result.Reviews, batch...)

		if page < totalPages && p.cfg.PageDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, eris.Wrap(ctx.Err(), "acquire: bestbuy walk canceled")
			case <-time.After(p.cfg.PageDelay):
			}
		}
	}

	zap.L().Info("bestbuy acquisition done",
		zap.String("sku", sku),
		zap.Int("fetched", len(result.Reviews)),
		zap.Int("inserted", result.Inserted),
	)
	return result, nil
}

func fromAPIReview(r bestbuy.Review, sku string) model.RawReview {
	// The store assigns its own row IDs.
	rev := model.RawReview{
		ProductID: sku,
		Source:    "bestbuy",
		Reviewer:  r.Reviewer.Name,
		Rating:    r.Rating,
		Title:     r.Title,
		Text:      r.Comment,
		Date:      r.SubmissionTime,
	}
	rev.Normalize(sku, "bestbuy")
	return rev
}
