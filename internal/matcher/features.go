package matcher

import (
	"regexp"
	"sort"
	"strings"
)

var yearRe = regexp.MustCompile(`\b(202[0-9]|2030)\b`)

const monthNames = `january|february|march|april|may|june|july|august|september|october|november|december`

var dateRes = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`),
	regexp.MustCompile(`(?i)\b(?:` + monthNames + `)\s+\d{1,2}(?:st|nd|rd|th)?,?\s*(?:\d{4})?\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?\s+(?:` + monthNames + `),?\s*(?:\d{4})?\b`),
	regexp.MustCompile(`\bQ[1-4]\s*\d{4}\b`),
}

var priceRe = regexp.MustCompile(`(?i)\$[\d,]+(?:\.\d+)?[kmb]?|\b[\d,]+(?:\.\d+)?\s*(?:dollars?|usd)\b`)

// TokenSet is an unordered set of extracted tokens.
type TokenSet map[string]struct{}

func newTokenSet(tokens []string) TokenSet {
	set := make(TokenSet, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Equal reports whether both sets hold exactly the same tokens.
func (s TokenSet) Equal(other TokenSet) bool {
	if len(s) != len(other) {
		return false
	}
	for t := range s {
		if !other.has(t) {
			return false
		}
	}
	return true
}

// has reports whether token is in the set.
func (s TokenSet) has(token string) bool {
	_, ok := s[token]
	return ok
}

// Sorted returns the tokens in lexical order, for logging.
func (s TokenSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// ExtractYears returns the whole-word years 2020-2030 found in text.
func ExtractYears(text string) TokenSet {
	return newTokenSet(yearRe.FindAllString(text, -1))
}

// ExtractDates returns date-like substrings in order of first occurrence.
// Duplicates are kept.
func ExtractDates(text string) []string {
	type hit struct {
		start int
		order int
		value string
	}
	var hits []hit
	for i, re := range dateRes {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			hits = append(hits, hit{start: loc[0], order: i, value: strings.TrimSpace(text[loc[0]:loc[1]])})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].start != hits[j].start {
			return hits[i].start < hits[j].start
		}
		return hits[i].order < hits[j].order
	})
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.value)
	}
	return out
}

// ExtractPriceTargets returns the lower-cased dollar amounts found in text,
// e.g. "$100k", "$1,000.50" or "500 usd".
func ExtractPriceTargets(text string) TokenSet {
	return newTokenSet(priceRe.FindAllString(strings.ToLower(text), -1))
}
