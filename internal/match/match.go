// Package match resolves free-form spoken phrases to known catalog
// entries using string similarity.
package match

import "strings"

// DefaultThreshold is the minimum similarity score for a phrase to be
// considered a match. Below it the resolver reports no match rather
// than guessing.
const DefaultThreshold = 0.55

// Match is a resolved candidate with its similarity score.
type Match struct {
	Name  string
	Score float64
}

// Resolve finds the candidate most similar to phrase. Scores must be
// strictly greater than all other candidates to win; on a tie the
// earlier candidate is kept, so candidate order is part of the contract.
// Returns false when no candidate reaches the threshold.
func Resolve(phrase string, candidates []string, threshold float64) (Match, bool) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	best := Match{Score: -1}
	for _, cand := range candidates {
		score := Similarity(phrase, cand)
		if score > best.Score {
			best = Match{Name: cand, Score: score}
		}
	}

	if best.Score < threshold {
		return Match{}, false
	}
	return best, true
}

// Similarity scores how close two strings are on a 0..1 scale.
// Exact matches (case-insensitive) score 1.0, substring containment
// scores a flat 0.8, anything else falls back to normalized edit
// distance.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.8
	}

	distance := levenshteinDistance(a, b)
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	return 1.0 - float64(distance)/float64(maxLen)
}

// levenshteinDistance computes the edit distance between two strings
// using two rolling rows instead of the full matrix.
func levenshteinDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}
