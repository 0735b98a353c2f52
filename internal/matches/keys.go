package matches

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/hetulpatel/crossarb/internal/collectors"
)

// Key identifies an opportunity by question and unordered venue pair, so the
// two directions of one matched pair collapse onto the same key.
func (o Opportunity) Key() string {
	return DedupKey(o.Question, o.Venue1, o.Venue2)
}

// DedupKey builds question|minVenue|maxVenue.
func DedupKey(question string, a, b collectors.Venue) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("%s|%s|%s", question, a, b)
}

// HashStrings returns a SHA256 hash of the provided strings with newline separators.
func HashStrings(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// VerdictCacheKey builds an order-independent key for a resolution verdict on
// two venue questions.
func VerdictCacheKey(o Opportunity) string {
	counter := o.CounterQuestion
	if counter == "" {
		counter = o.Question
	}
	left := fmt.Sprintf("%s:%s", o.Venue1, strings.ToLower(strings.TrimSpace(o.Question)))
	right := fmt.Sprintf("%s:%s", o.Venue2, strings.ToLower(strings.TrimSpace(counter)))
	parts := []string{left, right}
	sort.Strings(parts)
	return HashStrings(parts...)
}
