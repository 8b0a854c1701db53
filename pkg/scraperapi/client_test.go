package scraperapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/reviewpulse/reviewpulse/internal/apperr"
	"github.com/reviewpulse/reviewpulse/internal/fetcher"
	"github.com/reviewpulse/reviewpulse/internal/resilience"
)

func testGetter() Getter {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		RateLimiters: map[string]*rate.Limiter{},
	})
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("api_key"))
		assert.Equal(t, "https://www.ebay.com/itm/123", q.Get("url"))
		assert.Equal(t, "true", q.Get("render"))
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	c := NewClient("test-key", testGetter(), WithBaseURL(srv.URL))
	body, err := c.Fetch(context.Background(), "https://www.ebay.com/itm/123", true)
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", string(body))
}

func TestFetch_NoRenderParam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("render"))
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient("test-key", testGetter(), WithBaseURL(srv.URL))
	_, err := c.Fetch(context.Background(), "https://example.com", false)
	require.NoError(t, err)
}

func TestFetch_MissingKey(t *testing.T) {
	c := NewClient("", testGetter())
	_, err := c.Fetch(context.Background(), "https://example.com", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrMissingCredential)
}

func TestFetch_CircuitOpensAfterFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 404 is not transient, so each call counts one breaker failure
		// without triggering the fetcher's retry backoff.
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{FailureThreshold: 2})
	c := NewClient("test-key", testGetter(), WithBaseURL(srv.URL), WithCircuitBreaker(cb))

	for i := 0; i < 2; i++ {
		_, err := c.Fetch(context.Background(), "https://example.com", false)
		require.Error(t, err)
	}
	assert.Equal(t, resilience.CircuitOpen, cb.State())

	_, err := c.Fetch(context.Background(), "https://example.com", false)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
}
