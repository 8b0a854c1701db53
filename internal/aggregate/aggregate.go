// Package aggregate computes sentiment statistics and cross-product
// comparisons from processed reviews.
package aggregate

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/reviewpulse/reviewpulse/internal/model"
	"github.com/reviewpulse/reviewpulse/internal/store"
)

// TieWinner marks an undecidable comparison.
const TieWinner = "tie"

// Summarize computes the sentiment distribution over one product's
// processed reviews.
func Summarize(docs []model.ProcessedReview) model.ProductStats {
	stats := model.ProductStats{TotalReviews: len(docs)}
	if len(docs) == 0 {
		return stats
	}

	var pos, neg, neu int
	for _, d := range docs {
		switch d.Sentiment {
		case model.SentimentPositive:
			pos++
		case model.SentimentNegative:
			neg++
		case model.SentimentNeutral:
			neu++
		}
	}
	total := float64(len(docs))
	stats.PositivePct = round2(100 * float64(pos) / total)
	stats.NegativePct = round2(100 * float64(neg) / total)
	stats.NeutralPct = round2(100 * float64(neu) / total)
	stats.OverallScore = round2(stats.PositivePct - stats.NegativePct)
	return stats
}

// AspectStats tallies sentiment counts per aspect. Reviews without aspects
// or with an unknown sentiment label contribute nothing.
func AspectStats(docs []model.ProcessedReview) map[model.Aspect]model.AspectCounts {
	agg := make(map[model.Aspect]model.AspectCounts)
	for _, d := range docs {
		if len(d.Aspects) == 0 || !d.Sentiment.Valid() {
			continue
		}
		for _, a := range d.Aspects {
			counts := agg[a]
			counts.Add(d.Sentiment)
			agg[a] = counts
		}
	}
	return agg
}

// Comparer builds structured comparisons across products.
type Comparer struct {
	store store.Store
}

// NewComparer creates a Comparer.
func NewComparer(st store.Store) *Comparer {
	return &Comparer{store: st}
}

// Compare loads every product's processed reviews concurrently and builds
// the per-product statistics plus the aspect table over the union of
// aspects seen anywhere. Products never analyzed contribute zero rows, not
// errors.
func (c *Comparer) Compare(ctx context.Context, productIDs []string) (*model.Comparison, error) {
	type productResult struct {
		stats   model.ProductStats
		aspects map[model.Aspect]model.AspectCounts
	}

	var mu sync.Mutex
	results := make(map[string]productResult, len(productIDs))

	g, gCtx := errgroup.WithContext(ctx)
	for _, pid := range productIDs {
		g.Go(func() error {
			docs, err := c.store.ListProcessedReviews(gCtx, pid)
			if err != nil {
				return eris.Wrapf(err, "aggregate: load processed reviews for %s", pid)
			}
			res := productResult{stats: Summarize(docs), aspects: AspectStats(docs)}
			mu.Lock()
			results[pid] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cmp := &model.Comparison{
		ProductIDs:  productIDs,
		AspectTable: make(map[model.Aspect]map[string]model.AspectCounts),
	}

	aspectSet := make(map[model.Aspect]struct{})
	for _, pid := range productIDs {
		res := results[pid]
		cmp.Summary = append(cmp.Summary, model.ProductSummaryRow{
			ProductID:    pid,
			ProductStats: res.stats,
		})
		for a := range res.aspects {
			aspectSet[a] = struct{}{}
		}
	}

	for a := range aspectSet {
		row := make(map[string]model.AspectCounts, len(productIDs))
		for _, pid := range productIDs {
			// Zero counts for products that never mention the aspect.
			row[pid] = results[pid].aspects[a]
		}
		cmp.AspectTable[a] = row
	}
	return cmp, nil
}

// AspectWinners decides a winner per aspect by net score (positive minus
// negative mentions). Equal scores are a tie; with more than two products
// the single highest score wins.
func AspectWinners(cmp *model.Comparison) map[model.Aspect]model.AspectWinner {
	winners := make(map[model.Aspect]model.AspectWinner, len(cmp.AspectTable))
	for aspect, byProduct := range cmp.AspectTable {
		scores := make(map[string]int, len(byProduct))
		for pid, counts := range byProduct {
			scores[pid] = counts.Net()
		}
		winners[aspect] = model.AspectWinner{
			Winner: pickWinner(scores),
			Scores: scores,
		}
	}
	return winners
}

func pickWinner(scores map[string]int) string {
	if len(scores) == 0 {
		return TieWinner
	}
	pids := make([]string, 0, len(scores))
	for pid := range scores {
		pids = append(pids, pid)
	}
	sort.Strings(pids)

	best, bestCount := pids[0], 1
	for _, pid := range pids[1:] {
		switch {
		case scores[pid] > scores[best]:
			best, bestCount = pid, 1
		case scores[pid] == scores[best]:
			bestCount++
		}
	}
	if bestCount > 1 {
		return TieWinner
	}
	return best
}

// OverallWinner decides the overall winner from per-product overall scores
// (positive% minus negative%). A shared top score is a tie.
func OverallWinner(summary []model.ProductSummaryRow) (string, map[string]float64) {
	scores := make(map[string]float64, len(summary))
	for _, row := range summary {
		scores[row.ProductID] = row.OverallScore
	}
	if len(scores) < 2 {
		return TieWinner, scores
	}

	type entry struct {
		pid   string
		score float64
	}
	entries := make([]entry, 0, len(scores))
	for pid, score := range scores {
		entries = append(entries, entry{pid, score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		return entries[i].pid < entries[j].pid
	})
	if entries[0].score == entries[1].score {
		return TieWinner, scores
	}
	return entries[0].pid, scores
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
