package matcher

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// SimilarityRatio returns the Ratcliff/Obershelp ratio 2*M/T between the
// lower-cased strings, compared rune by rune. Inputs are put in lexical order
// first because block matching breaks ties by position, which would otherwise
// make the ratio depend on argument order.
func SimilarityRatio(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if b < a {
		a, b = b, a
	}
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}
