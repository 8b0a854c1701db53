package model

// Aspect is a topical category detected in review text by keyword match.
type Aspect string

const (
	AspectPrice     Aspect = "Price"
	AspectQuality   Aspect = "Quality"
	AspectDelivery  Aspect = "Delivery"
	AspectPackaging Aspect = "Packaging"
	AspectUsability Aspect = "Usability"
)

// AspectKeywords binds each aspect to its fixed keyword list. Matching is
// case-insensitive on word boundaries; a review may match several aspects
// or none.
var AspectKeywords = map[Aspect][]string{
	AspectPrice:     {"price", "cost", "expensive", "cheap", "value"},
	AspectQuality:   {"quality", "durable", "broken", "excellent", "bad"},
	AspectDelivery:  {"delivery", "shipping", "late", "fast", "slow"},
	AspectPackaging: {"packaging", "box", "seal", "damaged"},
	AspectUsability: {"use", "performance", "speed", "battery"},
}

// Aspects lists the vocabulary in a stable order.
func Aspects() []Aspect {
	return []Aspect{AspectPrice, AspectQuality, AspectDelivery, AspectPackaging, AspectUsability}
}

// AspectCounts accumulates per-sentiment counts for one aspect.
type AspectCounts struct {
	Positive int `json:"Positive"`
	Negative int `json:"Negative"`
	Neutral  int `json:"Neutral"`
	Total    int `json:"Total"`
}

// Add increments the bucket for the given sentiment.
func (c *AspectCounts) Add(s Sentiment) {
	switch s {
	case SentimentPositive:
		c.Positive++
	case SentimentNegative:
		c.Negative++
	case SentimentNeutral:
		c.Neutral++
	default:
		return
	}
	c.Total++
}

// Net returns the net aspect score: positive count minus negative count.
func (c AspectCounts) Net() int {
	return c.Positive - c.Negative
}
