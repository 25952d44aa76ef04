package score

import "github.com/boneshq/bones/internal/game"

// SimilarityThreshold is the score above which two findings are treated as
// describing the same issue.
const SimilarityThreshold = 0.5

// Similarity returns a 0-1 score combining line-range overlap (weight 0.6)
// and description-token overlap (weight 0.4). Findings in different files
// never match.
func Similarity(a, b *game.Finding) float64 {
	if a.FilePath != b.FilePath {
		return 0
	}

	lineOverlap := rangeOverlap(a.LineStart, a.LineEnd, b.LineStart, b.LineEnd)
	descOverlap := tokenOverlap(NormalizeTokens(a.Description), NormalizeTokens(b.Description))

	return 0.6*lineOverlap + 0.4*descOverlap
}

// FindBestDuplicateMatch returns the existing finding most similar to the
// candidate, if any clears the threshold. Candidates are compared in order,
// so with equal scores the earliest finding wins.
func FindBestDuplicateMatch(candidate *game.Finding, existing []*game.Finding) (*game.Finding, float64) {
	var (
		best      *game.Finding
		bestScore float64
	)
	for _, f := range existing {
		if f.ID == candidate.ID {
			continue
		}
		if s := Similarity(candidate, f); s > bestScore {
			best, bestScore = f, s
		}
	}
	if bestScore < SimilarityThreshold {
		return nil, 0
	}
	return best, bestScore
}

// rangeOverlap returns |intersection| / max(len1, len2) for two inclusive
// line ranges.
func rangeOverlap(aStart, aEnd, bStart, bEnd int) float64 {
	lo := aStart
	if bStart > lo {
		lo = bStart
	}
	hi := aEnd
	if bEnd < hi {
		hi = bEnd
	}
	if hi < lo {
		return 0
	}
	overlap := hi - lo + 1
	len1 := aEnd - aStart + 1
	len2 := bEnd - bStart + 1
	max := len1
	if len2 > max {
		max = len2
	}
	return float64(overlap) / float64(max)
}

// tokenOverlap returns |a ∩ b| / max(|a|, |b|). Two empty token sets count
// as identical; one empty set counts as disjoint.
func tokenOverlap(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	var shared int
	for _, t := range b {
		if _, ok := set[t]; ok {
			shared++
		}
	}
	max := len(a)
	if len(b) > max {
		max = len(b)
	}
	return float64(shared) / float64(max)
}
