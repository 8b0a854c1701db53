// Package model defines the review records flowing through the acquisition
// and analysis pipelines, and the normalization applied at the store boundary.
package model

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Sentiment is the classification assigned to a review text.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
)

// Valid reports whether s is one of the recognized sentiment labels.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

// RawReview is an unprocessed review as acquired from a source. Records are
// immutable once stored; re-acquisition only inserts new (ProductID, Text)
// pairs.
type RawReview struct {
	ID        string   `json:"id,omitempty"`
	ProductID string   `json:"product_id"`
	Source    string   `json:"source"`
	Reviewer  string   `json:"reviewer"`
	Rating    *float64 `json:"rating,omitempty"`
	Title     string   `json:"title,omitempty"`
	Text      string   `json:"text"`
	Date      string   `json:"date"`
}

// DedupKey returns the content-addressed uniqueness key for the review.
// Text is NFC-normalized so visually identical reviews scraped from
// different page encodings collapse to one record.
func (r RawReview) DedupKey() string {
	return r.ProductID + "\x00" + NormalizeText(r.Text)
}

// Normalize backfills legacy field shapes on a record read from the store
// or scraped from a page: a missing ProductID is filled from the lookup
// key, and empty reviewer/source fields get their historical defaults.
func (r *RawReview) Normalize(productID, defaultSource string) {
	if r.ProductID == "" {
		r.ProductID = productID
	}
	if strings.TrimSpace(r.Reviewer) == "" {
		r.Reviewer = "Anonymous"
	}
	if r.Source == "" {
		r.Source = defaultSource
	}
	r.Text = NormalizeText(r.Text)
}

// ProcessedReview is a RawReview augmented with sentiment and aspect
// signals. One exists per (ProductID, Text) pair; derived deterministically
// from the text, so recomputation is skipped when a record already exists.
type ProcessedReview struct {
	ID        string    `json:"id,omitempty"`
	ProductID string    `json:"product_id"`
	Source    string    `json:"source"`
	Reviewer  string    `json:"reviewer"`
	Rating    *float64  `json:"rating,omitempty"`
	Title     string    `json:"title,omitempty"`
	Text      string    `json:"text"`
	Date      string    `json:"date"`
	Sentiment Sentiment `json:"sentiment"`
	// Confidence is the absolute value of the underlying polarity score,
	// not a calibrated probability.
	Confidence float64  `json:"confidence"`
	Aspects    []Aspect `json:"aspects"`
}

// SummaryDocument holds the generated summary for one product. Regeneration
// overwrites the previous document (upsert by ProductID).
type SummaryDocument struct {
	ProductID   string    `json:"product_id"`
	Summary     string    `json:"summary"`
	GeneratedAt time.Time `json:"generated_at"`
}

// NormalizeText applies NFC normalization and trims surrounding whitespace.
// Both the dedup key and the analysis input go through this.
func NormalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
