package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/reviewpulse/reviewpulse/internal/acquire"
	"github.com/reviewpulse/reviewpulse/internal/aggregate"
	"github.com/reviewpulse/reviewpulse/internal/analyze"
	"github.com/reviewpulse/reviewpulse/internal/fetcher"
	"github.com/reviewpulse/reviewpulse/internal/store"
	"github.com/reviewpulse/reviewpulse/internal/summarize"
	anthropicpkg "github.com/reviewpulse/reviewpulse/pkg/anthropic"
	"github.com/reviewpulse/reviewpulse/pkg/bestbuy"
	"github.com/reviewpulse/reviewpulse/pkg/scraperapi"
)

// appEnv holds the initialized store, pipelines, and services shared by
// the CLI commands and the HTTP server.
type appEnv struct {
	Store    store.Store
	BestBuy  *acquire.BestBuyPipeline
	Ebay     *acquire.EbayPipeline
	Engine   *analyze.Engine
	Comparer *aggregate.Comparer
	Summary  *summarize.Service
}

// Close releases resources held by the environment.
func (env *appEnv) Close() {
	if env.Store != nil {
		_ = env.Store.Close()
	}
}

// initStore opens the configured database backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// initEnv sets up the store and all pipeline components. Callers should
// defer env.Close().
func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	httpFetcher := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		MaxRetries: cfg.ScraperAPI.Retries,
		Timeout:    time.Duration(cfg.ScraperAPI.TimeoutSecs) * time.Second,
	})

	bbClient := bestbuy.NewClient(cfg.BestBuy.APIKey, httpFetcher,
		bestbuy.WithBaseURL(cfg.BestBuy.BaseURL))
	proxyClient := scraperapi.NewClient(cfg.ScraperAPI.Key, httpFetcher,
		scraperapi.WithBaseURL(cfg.ScraperAPI.BaseURL))

	bbPipeline := acquire.NewBestBuyPipeline(st, bbClient, acquire.BestBuyConfig{
		PageSize:  cfg.BestBuy.PageSize,
		PageDelay: time.Duration(cfg.BestBuy.PageDelayMS) * time.Millisecond,
	})
	ebayPipeline := acquire.NewEbayPipeline(st, proxyClient, acquire.EbayConfig{
		MaxPages: cfg.Ebay.MaxPages,
	})

	engine := analyze.NewEngine(st, analyze.NewLexiconScorer())
	comparer := aggregate.NewComparer(st)

	// The model backend is built lazily on first summary request, and only
	// when an API key is present. Without one the service falls back to
	// extractive summaries.
	var newBackend func() summarize.Summarizer
	if cfg.Anthropic.Key != "" {
		key, model := cfg.Anthropic.Key, cfg.Anthropic.Model
		newBackend = func() summarize.Summarizer {
			return summarize.NewAnthropicSummarizer(anthropicpkg.NewClient(key), model)
		}
	} else {
		zap.L().Info("REVIEWPULSE_ANTHROPIC_KEY not set, using extractive summaries")
	}

	summaryService := summarize.NewService(st, summarize.Config{
		Disabled:      cfg.Summary.Disabled,
		MaxReviews:    cfg.Summary.MaxReviews,
		MaxChars:      cfg.Summary.MaxChars,
		ChunkSize:     cfg.Summary.ChunkSize,
		FallbackChars: cfg.Summary.FallbackChars,
	}, newBackend)

	return &appEnv{
		Store:    st,
		BestBuy:  bbPipeline,
		Ebay:     ebayPipeline,
		Engine:   engine,
		Comparer: comparer,
		Summary:  summaryService,
	}, nil
}
