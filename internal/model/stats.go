package model

// ProductStats summarizes the sentiment distribution across all processed
// reviews of one product. Percentages are rounded to two decimals; an
// empty product yields all zeros.
type ProductStats struct {
	TotalReviews int     `json:"total_reviews"`
	PositivePct  float64 `json:"positive_pct"`
	NegativePct  float64 `json:"negative_pct"`
	NeutralPct   float64 `json:"neutral_pct"`
	// OverallScore is PositivePct minus NegativePct.
	OverallScore float64 `json:"overall_score"`
}

// ProductSummaryRow is one product's statistics row inside a comparison.
type ProductSummaryRow struct {
	ProductID string `json:"product_id"`
	ProductStats
}

// Comparison is the structured result of comparing N products: per-product
// statistics plus an aspect table keyed by the union of aspects seen across
// all products. Missing (aspect, product) combinations hold zero counts.
type Comparison struct {
	Summary     []ProductSummaryRow                `json:"summary"`
	AspectTable map[Aspect]map[string]AspectCounts `json:"aspect_table"`
	ProductIDs  []string                           `json:"product_ids"`
}

// AspectWinner records the per-product net scores for one aspect and the
// resulting winner ("tie" when scores are equal).
type AspectWinner struct {
	Winner string         `json:"winner"`
	Scores map[string]int `json:"scores"`
}
