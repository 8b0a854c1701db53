// Package store persists raw and processed reviews, product titles,
// generated summaries, and scrape diagnostic artifacts.
package store

import (
	"context"
	"time"

	"github.com/reviewpulse/reviewpulse/internal/model"
)

// Store defines the persistence interface for the review pipeline. Both
// review tables are keyed by the content-addressed (product_id, text) pair;
// inserts against an existing pair are silently skipped, never updated.
// Implementations must be safe for concurrent readers.
type Store interface {
	// Raw reviews
	ListRawReviews(ctx context.Context, productID string) ([]model.RawReview, error)
	// InsertRawReviews inserts records whose (product_id, text) pair is not
	// already present and returns the number actually inserted.
	InsertRawReviews(ctx context.Context, reviews []model.RawReview) (int, error)

	// Processed reviews
	ListProcessedReviews(ctx context.Context, productID string) ([]model.ProcessedReview, error)
	// ListRecentProcessedReviews returns the most recently stored processed
	// reviews first, bounded by limit (0 means no bound).
	ListRecentProcessedReviews(ctx context.Context, productID string, limit int) ([]model.ProcessedReview, error)
	CountProcessedReviews(ctx context.Context, productID string) (int, error)
	// InsertProcessedReview inserts unless the (product_id, text) pair
	// exists; reports whether a row was written.
	InsertProcessedReview(ctx context.Context, review model.ProcessedReview) (bool, error)

	// Product title cache (upsert-only, populated lazily)
	GetProductTitle(ctx context.Context, productID string) (string, error)
	SetProductTitle(ctx context.Context, productID, title string) error

	// Summaries (one per product, overwritten on regeneration)
	GetSummary(ctx context.Context, productID string) (*model.SummaryDocument, error)
	UpsertSummary(ctx context.Context, doc model.SummaryDocument) error

	// SaveScrapeArtifact persists a raw page body for offline inspection
	// when every acquisition tier came back empty.
	SaveScrapeArtifact(ctx context.Context, productID, source string, body []byte) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// ScrapeArtifact is a persisted diagnostic page body.
type ScrapeArtifact struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Source    string    `json:"source"`
	Body      []byte    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
