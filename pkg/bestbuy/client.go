// Package bestbuy provides a client for the BestBuy developer reviews API.
package bestbuy

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/reviewpulse/reviewpulse/internal/apperr"
)

// Client defines the BestBuy reviews API operations.
type Client interface {
	// ReviewsPage fetches one page of reviews for a SKU.
	ReviewsPage(ctx context.Context, sku string, page, pageSize int) (*ReviewsPage, error)
}

// ReviewsPage is the parsed reviews API response.
type ReviewsPage struct {
	Total       int      `json:"total"`
	TotalPages  int      `json:"totalPages"`
	CurrentPage int      `json:"currentPage"`
	Reviews     []Review `json:"reviews"`
}

// Review is a single review record as the API returns it.
type Review struct {
	ID             int64    `json:"id"`
	Rating         *float64 `json:"rating"`
	Title          string   `json:"title"`
	Comment        string   `json:"comment"`
	SubmissionTime string   `json:"submissionTime"`
	Reviewer       Reviewer `json:"reviewer"`
}

// Reviewer identifies the review author.
type Reviewer struct {
	Name string `json:"name"`
}

// Getter is the HTTP surface the client needs. Satisfied by
// fetcher.HTTPFetcher.
type Getter interface {
	GetJSON(ctx context.Context, rawURL string, out any) error
}

// Option configures the BestBuy client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	get     Getter
}

// NewClient creates a new BestBuy reviews client.
func NewClient(apiKey string, get Getter, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.bestbuy.com/v1",
		get:     get,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) ReviewsPage(ctx context.Context, sku string, page, pageSize int) (*ReviewsPage, error) {
	if c.apiKey == "" {
		return nil, eris.Wrap(apperr.ErrMissingCredential, "bestbuy: BESTBUY_API_KEY not set")
	}

	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("format", "json")
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))
	reqURL := fmt.Sprintf("%s/reviews(sku=%s)?%s", c.baseURL, sku, params.Encode())

	var out ReviewsPage
	if err := c.get.GetJSON(ctx, reqURL, &out); err != nil {
		return nil, eris.Wrapf(err, "bestbuy: reviews page %d for sku %s", page, sku)
	}
	return &out, nil
}
