package summarize

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/reviewpulse/reviewpulse/internal/aggregate"
	"github.com/reviewpulse/reviewpulse/internal/apperr"
	"github.com/reviewpulse/reviewpulse/internal/model"
	"github.com/reviewpulse/reviewpulse/internal/store"
)

// NoReviewsMessage is returned as the summary for a product with nothing
// to summarize. Not an error: the UI renders it verbatim.
const NoReviewsMessage = "No processed reviews found for summarization."

// Config tunes the summary service.
type Config struct {
	// Disabled skips the model backend entirely and always falls back to
	// extractive summaries.
	Disabled bool
	// MaxReviews bounds how many processed reviews feed one summary.
	MaxReviews int
	// MaxChars hard-caps the combined review text.
	MaxChars int
	// ChunkSize is the per-model-call slice of the combined text.
	ChunkSize int
	// FallbackChars caps the extractive fallback summary.
	FallbackChars int
}

func (c *Config) applyDefaults() {
	if c.MaxReviews <= 0 {
		c.MaxReviews = 150
	}
	if c.MaxChars <= 0 {
		c.MaxChars = 120000
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = 2500
	}
	if c.FallbackChars <= 0 {
		c.FallbackChars = 1500
	}
}

// scoreEpsilon is the margin inside which two aspect or overall scores
// count as equal.
const scoreEpsilon = 0.05

// competitorMaxReviews bounds each side of a competitor summary.
const competitorMaxReviews = 100

// competitorFallbackChars caps each side's extractive competitor summary.
const competitorFallbackChars = 1200

// TieLabel marks an undecided head-to-head verdict. The narrative view
// capitalizes it, unlike the structured comparison's "tie".
const TieLabel = "Tie"

// Service produces and persists product summaries.
type Service struct {
	store store.Store
	cfg   Config

	// The backend is built on first use. Summarization is optional and
	// the construction is skipped entirely for deployments that never
	// call it.
	once       sync.Once
	backend    Summarizer
	loaded     atomic.Bool
	newBackend func() Summarizer
}

// NewService creates a summary service. newBackend may return nil, which
// selects the extractive fallback; it is invoked lazily on the first
// summary request.
func NewService(st store.Store, cfg Config, newBackend func() Summarizer) *Service {
	cfg.applyDefaults()
	return &Service{store: st, cfg: cfg, newBackend: newBackend}
}

// Backend returns the model backend, constructing it on first call.
// Nil when summarization is disabled or no backend factory was given.
func (s *Service) Backend() Summarizer {
	s.once.Do(func() {
		if s.cfg.Disabled || s.newBackend == nil {
			return
		}
		s.backend = s.newBackend()
		if s.backend != nil {
			s.loaded.Store(true)
			zap.L().Info("summary backend ready")
		}
	})
	return s.backend
}

// BackendLoaded reports whether the model backend has been constructed.
// It never triggers construction itself; health checks call it.
func (s *Service) BackendLoaded() bool {
	return s.loaded.Load()
}

// ProductSummary summarizes a product's processed reviews and stores the
// result, overwriting any earlier summary for the product.
func (s *Service) ProductSummary(ctx context.Context, productID string) (string, error) {
	docs, err := s.store.ListRecentProcessedReviews(ctx, productID, s.cfg.MaxReviews)
	if err != nil {
		return "", eris.Wrapf(err, "summarize: load reviews for %s", productID)
	}
	if len(docs) == 0 {
		return NoReviewsMessage, nil
	}

	allText := joinTexts(docs)
	if len(allText) > s.cfg.MaxChars {
		allText = allText[:s.cfg.MaxChars]
	}
	zap.L().Info("summarizing product reviews",
		zap.String("product_id", productID),
		zap.Int("reviews", len(docs)),
		zap.Int("chars", len(allText)),
	)

	var summary string
	if backend := s.Backend(); backend == nil {
		summary = extractiveSummary(docs, s.cfg.FallbackChars)
	} else {
		summary, err = s.chunkedSummary(ctx, backend, allText)
		if err != nil {
			return "", eris.Wrapf(err, "summarize: product %s", productID)
		}
	}

	if err := s.store.UpsertSummary(ctx, model.SummaryDocument{
		ProductID:   productID,
		Summary:     summary,
		GeneratedAt: time.Now().UTC(),
	}); err != nil {
		return "", eris.Wrapf(err, "summarize: save summary for %s", productID)
	}
	return summary, nil
}

// CachedSummary returns the stored summary for a product, nil when absent.
func (s *Service) CachedSummary(ctx context.Context, productID string) (*model.SummaryDocument, error) {
	return s.store.GetSummary(ctx, productID)
}

// chunkedSummary summarizes the text in ChunkSize slices and joins the
// partial summaries.
func (s *Service) chunkedSummary(ctx context.Context, backend Summarizer, text string) (string, error) {
	var parts []string
	for i, n := 0, 0; i < len(text); i, n = i+s.cfg.ChunkSize, n+1 {
		end := i + s.cfg.ChunkSize
		if end > len(text) {
			end = len(text)
		}
		zap.L().Debug("summarizing chunk", zap.Int("chunk", n+1))
		part, err := backend.Summarize(ctx, text[i:end])
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " "), nil
}

// CompetitorVerdict scores one aspect across both products.
type CompetitorVerdict struct {
	Aspect model.Aspect       `json:"aspect"`
	Scores map[string]float64 `json:"scores"`
	Winner string             `json:"winner"`
}

// CompetitorSummary is the narrative plus scored comparison of two
// products. Score maps are keyed by display title.
type CompetitorSummary struct {
	Summary       string              `json:"summary"`
	Verdicts      []CompetitorVerdict `json:"comparison"`
	Overall       map[string]float64  `json:"overall"`
	OverallWinner string              `json:"overall_winner"`
}

// CompetitorSummary compares two products head to head: a summary of each
// side's reviews plus per-aspect sentiment scores and winners. Fails with
// ErrInsufficientData unless both products have processed reviews.
func (s *Service) CompetitorSummary(ctx context.Context, pid1, pid2, title1, title2 string) (*CompetitorSummary, error) {
	if title1 == "" {
		title1 = pid1
	}
	if title2 == "" {
		title2 = pid2
	}

	docs1, err := s.store.ListRecentProcessedReviews(ctx, pid1, competitorMaxReviews)
	if err != nil {
		return nil, eris.Wrapf(err, "summarize: load reviews for %s", pid1)
	}
	docs2, err := s.store.ListRecentProcessedReviews(ctx, pid2, competitorMaxReviews)
	if err != nil {
		return nil, eris.Wrapf(err, "summarize: load reviews for %s", pid2)
	}
	if len(docs1) == 0 || len(docs2) == 0 {
		return nil, eris.Wrap(apperr.ErrInsufficientData, "both products need processed reviews")
	}

	summary1, err := s.sideSummary(ctx, docs1)
	if err != nil {
		return nil, eris.Wrapf(err, "summarize: competitor side %s", pid1)
	}
	summary2, err := s.sideSummary(ctx, docs2)
	if err != nil {
		return nil, eris.Wrapf(err, "summarize: competitor side %s", pid2)
	}

	scores1 := aspectScores(docs1)
	scores2 := aspectScores(docs2)

	verdicts := buildVerdicts(scores1, scores2, title1, title2)
	overall1 := meanScore(scores1)
	overall2 := meanScore(scores2)

	overallWinner := TieLabel
	switch {
	case math.Abs(overall1-overall2) < scoreEpsilon:
	case overall1 > overall2:
		overallWinner = title1
	default:
		overallWinner = title2
	}

	return &CompetitorSummary{
		Summary:       narrative(title1, title2, summary1, summary2, verdicts),
		Verdicts:      verdicts,
		Overall:       map[string]float64{title1: overall1, title2: overall2},
		OverallWinner: overallWinner,
	}, nil
}

// sideSummary condenses one product's reviews for the head-to-head view.
func (s *Service) sideSummary(ctx context.Context, docs []model.ProcessedReview) (string, error) {
	text := joinTexts(docs)
	backend := s.Backend()
	if backend == nil {
		if len(text) > competitorFallbackChars {
			text = text[:competitorFallbackChars] + "…"
		}
		if strings.TrimSpace(text) == "" {
			return "No summary available.", nil
		}
		return text, nil
	}
	if len(text) > s.cfg.ChunkSize {
		text = text[:s.cfg.ChunkSize]
	}
	return backend.Summarize(ctx, text)
}

// aspectScores computes (positive - negative) / total per aspect, rounded
// to three decimals. Aspects nobody mentioned are absent.
func aspectScores(docs []model.ProcessedReview) map[model.Aspect]float64 {
	counts := aggregate.AspectStats(docs)
	scores := make(map[model.Aspect]float64, len(counts))
	for aspect, c := range counts {
		if c.Total == 0 {
			continue
		}
		scores[aspect] = round3(float64(c.Positive-c.Negative) / float64(c.Total))
	}
	return scores
}

func buildVerdicts(scores1, scores2 map[model.Aspect]float64, title1, title2 string) []CompetitorVerdict {
	seen := make(map[model.Aspect]struct{}, len(scores1)+len(scores2))
	for a := range scores1 {
		seen[a] = struct{}{}
	}
	for a := range scores2 {
		seen[a] = struct{}{}
	}
	aspects := make([]model.Aspect, 0, len(seen))
	for a := range seen {
		aspects = append(aspects, a)
	}
	sort.Slice(aspects, func(i, j int) bool { return aspects[i] < aspects[j] })

	verdicts := make([]CompetitorVerdict, 0, len(aspects))
	for _, a := range aspects {
		s1, s2 := scores1[a], scores2[a]
		winner := TieLabel
		switch {
		case math.Abs(s1-s2) < scoreEpsilon:
		case s1 > s2:
			winner = title1
		default:
			winner = title2
		}
		verdicts = append(verdicts, CompetitorVerdict{
			Aspect: a,
			Scores: map[string]float64{title1: s1, title2: s2},
			Winner: winner,
		})
	}
	return verdicts
}

func meanScore(scores map[model.Aspect]float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, v := range scores {
		sum += v
	}
	return round3(sum / float64(len(scores)))
}

// narrative renders the combined comparison text shown above the score
// table.
func narrative(title1, title2, summary1, summary2 string, verdicts []CompetitorVerdict) string {
	var wins1, wins2 []string
	for _, v := range verdicts {
		switch v.Winner {
		case title1:
			if len(wins1) < 2 {
				wins1 = append(wins1, string(v.Aspect))
			}
		case title2:
			if len(wins2) < 2 {
				wins2 = append(wins2, string(v.Aspect))
			}
		}
	}
	strengths := func(wins []string) string {
		if len(wins) == 0 {
			return "overall balance"
		}
		return strings.Join(wins, ", ")
	}
	return fmt.Sprintf(
		"%s Summary:\n%s\n\n%s Summary:\n%s\n\nOverall Comparison:\nBoth products have unique strengths. %s may appeal more to users valuing %s, while %s performs better for %s.",
		title1, summary1, title2, summary2,
		title1, strengths(wins1), title2, strengths(wins2),
	)
}

// extractiveSummary is the no-model fallback: the first few review texts,
// capped.
func extractiveSummary(docs []model.ProcessedReview, maxChars int) string {
	n := len(docs)
	if n > 5 {
		n = 5
	}
	parts := make([]string, 0, n)
	for _, d := range docs[:n] {
		if t := strings.TrimSpace(d.Text); t != "" {
			parts = append(parts, t)
		}
	}
	out := strings.Join(parts, " ")
	if len(out) > maxChars {
		out = out[:maxChars] + "…"
	}
	return strings.TrimSpace(out)
}

func joinTexts(docs []model.ProcessedReview) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		if d.Text != "" {
			parts = append(parts, d.Text)
		}
	}
	return strings.Join(parts, " ")
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
