// Package score computes pattern hashes and similarity for duplicate
// detection and applies referee verdicts transactionally.
package score

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// stopWords are dropped during description normalization so the pattern hash
// keys on the distinctive vocabulary of a finding, not connective tissue.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "been": {}, "but": {}, "by": {}, "can": {}, "could": {},
	"did": {}, "do": {}, "does": {}, "for": {}, "from": {}, "had": {},
	"has": {}, "have": {}, "if": {}, "in": {}, "into": {}, "is": {},
	"it": {}, "its": {}, "may": {}, "might": {}, "not": {}, "of": {},
	"on": {}, "or": {}, "should": {}, "so": {}, "that": {}, "the": {},
	"their": {}, "then": {}, "there": {}, "these": {}, "this": {},
	"to": {}, "was": {}, "were": {}, "when": {}, "where": {}, "which": {},
	"will": {}, "with": {}, "would": {},
}

// NormalizeTokens lowercases the description, strips non-alphanumerics,
// drops stop words and words of two characters or fewer, and returns the
// unique tokens sorted. The result is order-independent by construction.
func NormalizeTokens(description string) []string {
	lower := strings.ToLower(description)
	mapped := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return ' '
	}, lower)

	seen := make(map[string]struct{})
	for _, w := range strings.Fields(mapped) {
		if len(w) <= 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		seen[w] = struct{}{}
	}

	tokens := make([]string, 0, len(seen))
	for w := range seen {
		tokens = append(tokens, w)
	}
	sort.Strings(tokens)
	return tokens
}

// BucketRange rounds a line range outward to multiples of ten, so findings
// that shift a few lines within the same region still collide.
func BucketRange(start, end int) (int, int) {
	bStart := (start / 10) * 10
	bEnd := end
	if end%10 != 0 {
		bEnd = (end/10 + 1) * 10
	}
	return bStart, bEnd
}

// PatternHash returns the 16-hex-char digest keyed on file path, bucketed
// line range and normalized description tokens.
func PatternHash(filePath string, lineStart, lineEnd int, description string) string {
	bStart, bEnd := BucketRange(lineStart, lineEnd)
	tokens := NormalizeTokens(description)
	input := fmt.Sprintf("%s:%d-%d:%s", filePath, bStart, bEnd, strings.Join(tokens, " "))
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])[:16]
}
