// Package api exposes the review pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/reviewpulse/reviewpulse/internal/acquire"
	"github.com/reviewpulse/reviewpulse/internal/apperr"
	"github.com/reviewpulse/reviewpulse/internal/model"
	"github.com/reviewpulse/reviewpulse/internal/summarize"
)

// BestBuyAcquirer runs the BestBuy acquisition pipeline.
type BestBuyAcquirer interface {
	Acquire(ctx context.Context, linkOrSKU string) (*acquire.Result, error)
}

// EbayAcquirer runs the eBay acquisition pipeline.
type EbayAcquirer interface {
	Acquire(ctx context.Context, productURL string) (*acquire.Result, error)
}

// Processor runs sentiment and aspect analysis.
type Processor interface {
	Process(ctx context.Context, productID string, force bool) ([]model.ProcessedReview, error)
}

// Comparer builds structured product comparisons.
type Comparer interface {
	Compare(ctx context.Context, productIDs []string) (*model.Comparison, error)
}

// SummaryService generates product and competitor summaries.
type SummaryService interface {
	ProductSummary(ctx context.Context, productID string) (string, error)
	CompetitorSummary(ctx context.Context, pid1, pid2, title1, title2 string) (*summarize.CompetitorSummary, error)
	BackendLoaded() bool
}

// Server bundles the pipeline components behind the HTTP routes.
type Server struct {
	bestbuy BestBuyAcquirer
	ebay    EbayAcquirer
	proc    Processor
	cmp     Comparer
	summary SummaryService
}

// NewServer creates a Server.
func NewServer(bb BestBuyAcquirer, eb EbayAcquirer, proc Processor, cmp Comparer, summary SummaryService) *Server {
	return &Server{bestbuy: bb, ebay: eb, proc: proc, cmp: cmp, summary: summary}
}

// Router builds the chi router with CORS open for the browser frontend.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/scrape_bestbuy", s.handleScrapeBestBuy)
		r.Post("/scrape_ebay", s.handleScrapeEbay)
		r.Get("/process/{productID}", s.handleProcess)
		r.Get("/summary/{productID}", s.handleSummary)
		r.Post("/compare", s.handleCompare)
		r.Get("/health", s.handleHealth)
	})
	return r
}

// requestLogger logs each request through the global zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

// writeError maps domain errors onto status codes: bad identifiers and
// missing credentials are the caller's fault, everything else is ours.
func writeError(w http.ResponseWriter, err error) {
	zap.L().Warn("request failed", zap.Error(err))
	writeJSON(w, apperr.HTTPStatus(err), map[string]string{"error": err.Error()})
}
