package matcher

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// DescriptionSimilarity scores two free-text descriptions in [0,1].
// Containment counts as a full match because statement feeds routinely
// truncate or decorate counterparty names; otherwise the score is the
// normalized Levenshtein ratio.
func DescriptionSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 1
	}

	distance := levenshtein.DistanceForStrings([]rune(a), []rune(b), levenshtein.DefaultOptionsWithSub)
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}

	score := 1 - float64(distance)/float64(longest)
	if score < 0 {
		return 0
	}
	return score
}
