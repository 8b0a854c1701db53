package analyze

import (
	"regexp"
	"strings"

	"github.com/reviewpulse/reviewpulse/internal/model"
)

// aspectPatterns holds one word-boundary alternation per aspect, compiled
// once at init from the keyword lists.
var aspectPatterns = func() map[model.Aspect]*regexp.Regexp {
	patterns := make(map[model.Aspect]*regexp.Regexp, len(model.AspectKeywords))
	for aspect, keywords := range model.AspectKeywords {
		quoted := make([]string, len(keywords))
		for i, k := range keywords {
			quoted[i] = regexp.QuoteMeta(k)
		}
		patterns[aspect] = regexp.MustCompile(`\b(` + strings.Join(quoted, "|") + `)\b`)
	}
	return patterns
}()

// DetectAspects returns the aspects whose keywords appear as whole words in
// the text, in canonical aspect order. Matching is case-insensitive; a
// keyword inside a longer word does not count.
func DetectAspects(text string) []model.Aspect {
	lower := strings.ToLower(text)
	var found []model.Aspect
	for _, aspect := range model.Aspects() {
		if aspectPatterns[aspect].MatchString(lower) {
			found = append(found, aspect)
		}
	}
	return found
}
