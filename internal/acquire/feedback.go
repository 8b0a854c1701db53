package acquire

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/reviewpulse/reviewpulse/internal/model"
)

// eBay renders feedback the same way on item pages, the mweb profile
// endpoint, and seller feedback profiles, so one parser covers all tiers.
const (
	feedbackCardSel     = "li.fdbk-container"
	feedbackReviewerSel = ".fdbk-container__details__info__username span"
	feedbackTextSel     = ".fdbk-container__details__comment span"
	feedbackDateSel     = ".fdbk-container__details__info__divide__time span"
)

// parseFeedbackCards extracts review records from an eBay feedback listing.
// Cards without comment text are dropped.
func parseFeedbackCards(productID, source string, html []byte) ([]model.RawReview, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "acquire: parse feedback html")
	}

	var reviews []model.RawReview
	doc.Find(feedbackCardSel).Each(func(_ int, card *goquery.Selection) {
		text := strings.TrimSpace(card.Find(feedbackTextSel).First().Text())
		if text == "" {
			return
		}
		r := model.RawReview{
			ProductID: productID,
			Source:    source,
			Reviewer:  strings.TrimSpace(card.Find(feedbackReviewerSel).First().Text()),
			Text:      text,
			Date:      strings.TrimSpace(card.Find(feedbackDateSel).First().Text()),
		}
		r.Normalize(productID, source)
		reviews = append(reviews, r)
	})
	return reviews, nil
}

// sellerHandle finds the seller username from any /usr/ profile link on an
// item page. Empty when the page has no seller link.
func sellerHandle(html []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return ""
	}
	href, ok := doc.Find("a[href*='/usr/']").First().Attr("href")
	if !ok {
		return ""
	}
	handle := href[strings.LastIndex(href, "/usr/")+len("/usr/"):]
	if i := strings.IndexAny(handle, "?#"); i >= 0 {
		handle = handle[:i]
	}
	return handle
}

// parseItemTitle pulls the product title out of an item page, trying the
// legacy #itemTitle node, then heading spans, then the document title.
// Returns "" when nothing usable is present.
func parseItemTitle(html []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return ""
	}
	for _, sel := range []string{"#itemTitle", "h1 span", "h1"} {
		if title := strings.TrimSpace(doc.Find(sel).First().Text()); title != "" {
			title = strings.TrimSpace(strings.TrimPrefix(title, "Details about"))
			return title
		}
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return strings.TrimSpace(strings.TrimSuffix(title, "| eBay"))
	}
	return ""
}
