package acquire

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/reviewpulse/reviewpulse/internal/extract"
	"github.com/reviewpulse/reviewpulse/internal/model"
	"github.com/reviewpulse/reviewpulse/internal/store"
	"github.com/reviewpulse/reviewpulse/pkg/scraperapi"
)

// Tier is one strategy for pulling eBay feedback. Tiers run in order until
// one yields reviews; a failing tier is logged and skipped. The returned
// body is the last page the tier fetched, kept for the diagnostic artifact
// when every tier comes back empty.
type Tier interface {
	Name() string
	Fetch(ctx context.Context, productURL, itemID string) (reviews []model.RawReview, body []byte, err error)
}

// EbayConfig tunes the eBay acquisition pipeline.
type EbayConfig struct {
	// MaxPages bounds the item-page pagination walk of the first tier.
	MaxPages int
}

// EbayPipeline acquires reviews by scraping eBay through the rendering
// proxy, falling through product HTML, the mweb profile endpoint, and the
// seller feedback profile.
type EbayPipeline struct {
	store store.Store
	proxy scraperapi.Client
	tiers []Tier
}

// NewEbayPipeline creates an eBay acquisition pipeline with the standard
// tier order.
func NewEbayPipeline(st store.Store, proxy scraperapi.Client, cfg EbayConfig) *EbayPipeline {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 2
	}
	return &EbayPipeline{
		store: st,
		proxy: proxy,
		tiers: []Tier{
			&productHTMLTier{proxy: proxy, maxPages: cfg.MaxPages},
			&mwebProfileTier{proxy: proxy},
			&sellerFeedbackTier{proxy: proxy},
		},
	}
}

// NewEbayPipelineWithTiers creates a pipeline with an explicit tier chain.
func NewEbayPipelineWithTiers(st store.Store, proxy scraperapi.Client, tiers ...Tier) *EbayPipeline {
	return &EbayPipeline{store: st, proxy: proxy, tiers: tiers}
}

// Acquire resolves the item number from the URL, returns cached reviews
// when any exist, and otherwise walks the tier chain. When every tier is
// empty the last fetched page body is stored as a scrape artifact and an
// empty result is returned; no reviews is not an error.
func (p *EbayPipeline) Acquire(ctx context.Context, productURL string) (*Result, error) {
	itemID := extract.ItemID(productURL)

	cached, err := p.store.ListRawReviews(ctx, itemID)
	if err != nil {
		return nil, eris.Wrapf(err, "acquire: cache lookup for item %s", itemID)
	}
	if len(cached) > 0 {
		zap.L().Info("serving cached reviews",
			zap.String("item_id", itemID),
			zap.Int("count", len(cached)),
		)
		return &Result{ProductID: itemID, Reviews: cached, FromCache: true}, nil
	}

	var (
		reviews  []model.RawReview
		lastBody []byte
	)
	for _, tier := range p.tiers {
		got, body, err := tier.Fetch(ctx, productURL, itemID)
		if len(body) > 0 {
			lastBody = body
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, eris.Wrap(ctx.Err(), "acquire: ebay walk canceled")
			}
			zap.L().Warn("scrape tier failed, trying next",
				zap.String("tier", tier.Name()),
				zap.String("item_id", itemID),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("scrape tier finished",
			zap.String("tier", tier.Name()),
			zap.String("item_id", itemID),
			zap.Int("count", len(got)),
		)
		if len(got) > 0 {
			reviews = got
			break
		}
	}

	if len(reviews) == 0 {
		if err := p.store.SaveScrapeArtifact(ctx, itemID, "ebay", lastBody); err != nil {
			zap.L().Warn("failed to save scrape artifact",
				zap.String("item_id", itemID),
				zap.Error(err),
			)
		}
		return &Result{ProductID: itemID}, nil
	}

	unique := dedupeByText(reviews)
	inserted, err := p.store.InsertRawReviews(ctx, unique)
	if err != nil {
		return nil, eris.Wrapf(err, "acquire: store reviews for item %s", itemID)
	}
	return &Result{ProductID: itemID, Reviews: unique, Inserted: inserted}, nil
}

// FetchTitle returns the product title for an item URL, from the title
// cache when possible. Scrape failures degrade to "Unknown Product" so
// comparison flows keep working for products without reviews.
func (p *EbayPipeline) FetchTitle(ctx context.Context, productURL string) string {
	itemID := extract.ItemID(productURL)

	cached, err := p.store.GetProductTitle(ctx, itemID)
	if err == nil && cached != "" {
		return cached
	}

	body, err := p.proxy.Fetch(ctx, productURL, false)
	if err != nil {
		zap.L().Warn("title fetch failed",
			zap.String("item_id", itemID),
			zap.Error(err),
		)
		return "Unknown Product"
	}
	title := parseItemTitle(body)
	if title == "" {
		return "Unknown Product"
	}
	if err := p.store.SetProductTitle(ctx, itemID, title); err != nil {
		zap.L().Warn("title cache write failed",
			zap.String("item_id", itemID),
			zap.Error(err),
		)
	}
	return title
}

// dedupeByText keeps the first occurrence of each normalized review text.
func dedupeByText(reviews []model.RawReview) []model.RawReview {
	seen := make(map[string]struct{}, len(reviews))
	unique := make([]model.RawReview, 0, len(reviews))
	for _, r := range reviews {
		key := model.NormalizeText(r.Text)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, r)
	}
	return unique
}

// productHTMLTier walks the item page's own feedback section, one ?pgn=N
// page at a time, stopping at the first page with cards.
type productHTMLTier struct {
	proxy    scraperapi.Client
	maxPages int
}

func (t *productHTMLTier) Name() string { return "product_html" }

func (t *productHTMLTier) Fetch(ctx context.Context, productURL, itemID string) ([]model.RawReview, []byte, error) {
	var (
		all      []model.RawReview
		lastBody []byte
	)
	for page := 1; page <= t.maxPages; page++ {
		body, err := t.proxy.Fetch(ctx, fmt.Sprintf("%s?pgn=%d", productURL, page), false)
		if err != nil {
			if len(all) == 0 {
				return nil, lastBody, err
			}
			break
		}
		lastBody = body

		reviews, err := parseFeedbackCards(itemID, "ebay_product_html", body)
		if err != nil {
			return nil, lastBody, err
		}
		all = append(all, reviews...)
		if len(reviews) > 0 {
			break
		}
	}
	return all, lastBody, nil
}

// mwebProfileTier queries the mobile feedback endpoint for the item,
// scoped to its seller.
type mwebProfileTier struct {
	proxy scraperapi.Client
}

func (t *mwebProfileTier) Name() string { return "mweb_profile" }

func (t *mwebProfileTier) Fetch(ctx context.Context, productURL, itemID string) ([]model.RawReview, []byte, error) {
	itemBody, err := t.proxy.Fetch(ctx, productURL, false)
	if err != nil {
		return nil, nil, err
	}
	seller := sellerHandle(itemBody)
	if seller == "" {
		return nil, itemBody, nil
	}

	mwebURL := fmt.Sprintf(
		"https://www.ebay.com/fdbk/mweb_profile?fdbkType=FeedbackReceivedAsSeller&item_id=%s&username=%s&filter=feedback_page:RECEIVED_AS_SELLER&q=%s&sort=RELEVANCEV2",
		itemID, url.QueryEscape(seller), itemID,
	)
	body, err := t.proxy.Fetch(ctx, mwebURL, false)
	if err != nil {
		return nil, itemBody, err
	}
	reviews, err := parseFeedbackCards(itemID, "mweb_profile", body)
	return reviews, body, err
}

// sellerFeedbackTier falls all the way back to the seller's full feedback
// profile, which mixes in feedback for other items but is rarely empty.
type sellerFeedbackTier struct {
	proxy scraperapi.Client
}

func (t *sellerFeedbackTier) Name() string { return "seller_feedback_profile" }

func (t *sellerFeedbackTier) Fetch(ctx context.Context, productURL, itemID string) ([]model.RawReview, []byte, error) {
	itemBody, err := t.proxy.Fetch(ctx, productURL, false)
	if err != nil {
		return nil, nil, err
	}
	seller := sellerHandle(itemBody)
	if seller == "" {
		return nil, itemBody, nil
	}

	fbURL := fmt.Sprintf(
		"https://www.ebay.com/fdbk/feedback_profile/%s?filter=feedback_page:RECEIVED_AS_SELLER",
		url.PathEscape(seller),
	)
	body, err := t.proxy.Fetch(ctx, fbURL, false)
	if err != nil {
		return nil, itemBody, err
	}
	reviews, err := parseFeedbackCards(itemID, "seller_feedback_profile", body)
	return reviews, body, err
}
