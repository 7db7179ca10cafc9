// Package guard provides the hint-similarity policy that keeps an encryptor
// from leaking the secret word verbatim or near-verbatim.
package guard

import "strings"

// DefaultThreshold is the edit-distance ceiling at or below which a
// candidate hint is considered too similar to the secret word.
const DefaultThreshold = 2

// Distance computes the Levenshtein edit distance between a and b,
// measured in runes.
//
// Postcondition: Returns a value in [abs(len(a)-len(b)), max(len(a), len(b))].
func Distance(a, b string) int {
	if a == b {
		return 0
	}
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Single-row DP; prev holds the cost of transforming a[:i] into b[:j-1].
	row := make([]int, len(rb)+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		prev := row[0]
		row[0] = i
		for j := 1; j <= len(rb); j++ {
			subst := prev
			if ra[i-1] != rb[j-1] {
				subst++
			}
			prev = row[j]
			row[j] = min(subst, min(row[j]+1, row[j-1]+1))
		}
	}
	return row[len(rb)]
}

// TooSimilar reports whether candidate is close enough to secret that
// sending it as a hint would effectively reveal the word.
//
// The comparison is case-insensitive over the full trimmed candidate versus
// the full secret word. An empty secret or an empty/whitespace-only
// candidate never blocks.
//
// Precondition: threshold must be >= 0.
// Postcondition: Returns true iff Distance(lower(trim(candidate)), lower(secret)) <= threshold.
func TooSimilar(candidate, secret string, threshold int) bool {
	c := strings.TrimSpace(candidate)
	if c == "" || secret == "" {
		return false
	}
	return Distance(strings.ToLower(c), strings.ToLower(secret)) <= threshold
}
