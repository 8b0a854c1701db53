// Package scraperapi provides a client for the ScraperAPI rendering proxy.
package scraperapi

import (
	"context"
	"net/url"

	"github.com/rotisserie/eris"

	"github.com/reviewpulse/reviewpulse/internal/apperr"
	"github.com/reviewpulse/reviewpulse/internal/resilience"
)

// Client proxies page fetches through ScraperAPI.
type Client interface {
	// Fetch retrieves the target URL through the proxy and returns the raw
	// HTML. Set render to execute JavaScript before capture.
	Fetch(ctx context.Context, targetURL string, render bool) ([]byte, error)
}

// Getter is the HTTP surface the client needs. Satisfied by
// fetcher.HTTPFetcher.
type Getter interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
}

// Option configures the ScraperAPI client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithCircuitBreaker overrides the default breaker (for testing).
func WithCircuitBreaker(cb *resilience.CircuitBreaker) Option {
	return func(c *httpClient) {
		c.breaker = cb
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	get     Getter
	breaker *resilience.CircuitBreaker
}

// NewClient creates a new ScraperAPI client. The proxy fronts every scrape
// tier, so a circuit breaker stops hammering it once it starts failing.
func NewClient(apiKey string, get Getter, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.scraperapi.com",
		get:     get,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Fetch(ctx context.Context, targetURL string, render bool) ([]byte, error) {
	if c.apiKey == "" {
		return nil, eris.Wrap(apperr.ErrMissingCredential, "scraperapi: SCRAPER_API_KEY not set")
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("url", targetURL)
	if render {
		params.Set("render", "true")
	}
	reqURL := c.baseURL + "/?" + params.Encode()

	body, err := resilience.ExecuteVal(ctx, c.breaker, func(ctx context.Context) ([]byte, error) {
		return c.get.Get(ctx, reqURL)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "scraperapi: fetch %s", targetURL)
	}
	return body, nil
}
