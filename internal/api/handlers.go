package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/reviewpulse/reviewpulse/internal/aggregate"
	"github.com/reviewpulse/reviewpulse/internal/apperr"
	"github.com/reviewpulse/reviewpulse/internal/model"
)

type scrapeRequest struct {
	URL string `json:"url"`
}

type scrapeResponse struct {
	ProductID string            `json:"product_id"`
	Count     int               `json:"count"`
	Inserted  int               `json:"inserted"`
	FromCache bool              `json:"from_cache"`
	Reviews   []model.RawReview `json:"reviews"`
}

func (s *Server) handleScrapeBestBuy(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "url is required"})
		return
	}
	res, err := s.bestbuy.Acquire(r.Context(), req.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scrapeResponse{
		ProductID: res.ProductID,
		Count:     len(res.Reviews),
		Inserted:  res.Inserted,
		FromCache: res.FromCache,
		Reviews:   res.Reviews,
	})
}

func (s *Server) handleScrapeEbay(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "url is required"})
		return
	}
	res, err := s.ebay.Acquire(r.Context(), req.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scrapeResponse{
		ProductID: res.ProductID,
		Count:     len(res.Reviews),
		Inserted:  res.Inserted,
		FromCache: res.FromCache,
		Reviews:   res.Reviews,
	})
}

// aspectExample is a short excerpt shown alongside aspect counts.
type aspectExample struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

type processResponse struct {
	ProductID      string                                               `json:"product_id"`
	TotalReviews   int                                                  `json:"total_reviews"`
	Sentiments     map[model.Sentiment]int                              `json:"sentiments"`
	Aspects        map[model.Aspect]*model.AspectCounts                 `json:"aspects"`
	AspectExamples map[model.Aspect]map[model.Sentiment][]aspectExample `json:"aspect_examples"`
	TopPositive    []aspectExample                                      `json:"top_positive"`
	TopNegative    []aspectExample                                      `json:"top_negative"`
}

const (
	maxAspectExamples = 3
	maxTopExamples    = 5
)

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	force := r.URL.Query().Get("force") == "true"

	reviews, err := s.proc.Process(r.Context(), productID, force)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildProcessResponse(productID, reviews))
}

func buildProcessResponse(productID string, reviews []model.ProcessedReview) processResponse {
	resp := processResponse{
		ProductID:      productID,
		TotalReviews:   len(reviews),
		Sentiments:     map[model.Sentiment]int{},
		Aspects:        map[model.Aspect]*model.AspectCounts{},
		AspectExamples: map[model.Aspect]map[model.Sentiment][]aspectExample{},
		TopPositive:    []aspectExample{},
		TopNegative:    []aspectExample{},
	}

	var positives, negatives, neutrals []model.ProcessedReview
	for _, rv := range reviews {
		resp.Sentiments[rv.Sentiment]++
		for _, a := range rv.Aspects {
			counts, ok := resp.Aspects[a]
			if !ok {
				counts = &model.AspectCounts{}
				resp.Aspects[a] = counts
			}
			counts.Add(rv.Sentiment)
		}
		switch rv.Sentiment {
		case model.SentimentPositive:
			positives = append(positives, rv)
		case model.SentimentNegative:
			negatives = append(negatives, rv)
		case model.SentimentNeutral:
			neutrals = append(neutrals, rv)
		}
	}

	byConfidence := func(rs []model.ProcessedReview) {
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].Confidence > rs[j].Confidence })
	}
	byConfidence(positives)
	byConfidence(negatives)
	byConfidence(neutrals)

	for _, bucket := range [][]model.ProcessedReview{positives, negatives, neutrals} {
		for _, rv := range bucket {
			for _, a := range rv.Aspects {
				perAspect, ok := resp.AspectExamples[a]
				if !ok {
					perAspect = map[model.Sentiment][]aspectExample{}
					resp.AspectExamples[a] = perAspect
				}
				if len(perAspect[rv.Sentiment]) < maxAspectExamples {
					perAspect[rv.Sentiment] = append(perAspect[rv.Sentiment], aspectExample{Text: rv.Text, Confidence: rv.Confidence})
				}
			}
		}
	}

	for i, rv := range positives {
		if i == maxTopExamples {
			break
		}
		resp.TopPositive = append(resp.TopPositive, aspectExample{Text: rv.Text, Confidence: rv.Confidence})
	}
	for i, rv := range negatives {
		if i == maxTopExamples {
			break
		}
		resp.TopNegative = append(resp.TopNegative, aspectExample{Text: rv.Text, Confidence: rv.Confidence})
	}
	return resp
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	summary, err := s.summary.ProductSummary(r.Context(), productID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"product_id": productID, "summary": summary})
}

type compareRequest struct {
	ProductID1 string `json:"pid1"`
	ProductID2 string `json:"pid2"`
	Title1     string `json:"title1"`
	Title2     string `json:"title2"`
}

type compareResponse struct {
	Comparison    string                              `json:"comparison"`
	AspectWinners map[model.Aspect]model.AspectWinner `json:"aspect_winners"`
	OverallScores map[string]float64                  `json:"overall_scores"`
	OverallWinner string                              `json:"overall_winner"`
	ProductIDs    []string                            `json:"product_ids"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID1 == "" || req.ProductID2 == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "pid1 and pid2 are required"})
		return
	}

	pids := []string{req.ProductID1, req.ProductID2}
	cmp, err := s.cmp.Compare(r.Context(), pids)
	if err != nil {
		writeError(w, err)
		return
	}

	narrative := ""
	cs, err := s.summary.CompetitorSummary(r.Context(), req.ProductID1, req.ProductID2, req.Title1, req.Title2)
	switch {
	case err == nil:
		narrative = cs.Summary
	case errors.Is(err, apperr.ErrNoRawData) || errors.Is(err, apperr.ErrInsufficientData):
		// Structured comparison still stands on its own.
		zap.L().Warn("competitor summary skipped", zap.Error(err))
	default:
		writeError(w, err)
		return
	}

	winner, scores := aggregate.OverallWinner(cmp.Summary)
	writeJSON(w, http.StatusOK, compareResponse{
		Comparison:    narrative,
		AspectWinners: aggregate.AspectWinners(cmp),
		OverallScores: scores,
		OverallWinner: winner,
		ProductIDs:    pids,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"summarizer_loaded": s.summary.BackendLoaded(),
	})
}
