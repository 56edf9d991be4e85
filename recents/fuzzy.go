package recents

import "strings"

// Bonus points awarded on top of the single point per matched character.
const (
	wordStartBonus   = 5
	consecutiveBonus = 5
)

// MatchResult is the outcome of a fuzzy match
type MatchResult struct {
	Matched bool
	Score   int
}

// FuzzyMatch performs a greedy case-insensitive subsequence match of query
// against text. Characters of query must appear in text in order; each
// consumed character scores 1 point, plus a bonus when it sits at a word
// start (index 0 or right after a space or hyphen) and another when the
// previous text character was also consumed.
//
// The scan is a single left-to-right pass: the first eligible character
// wins, so the score is not guaranteed to be the best achievable alignment.
// An empty query matches everything with score 0; a failed match always
// reports score 0.
func FuzzyMatch(query, text string) MatchResult {
	if query == "" {
		return MatchResult{Matched: true, Score: 0}
	}

	q := []rune(strings.ToLower(query))
	t := []rune(strings.ToLower(text))

	qi := 0
	score := 0
	prevConsumed := false

	for ti := 0; ti < len(t) && qi < len(q); ti++ {
		if t[ti] != q[qi] {
			prevConsumed = false
			continue
		}
		score++
		if ti == 0 || t[ti-1] == ' ' || t[ti-1] == '-' {
			score += wordStartBonus
		}
		if prevConsumed {
			score += consecutiveBonus
		}
		prevConsumed = true
		qi++
	}

	if qi < len(q) {
		return MatchResult{}
	}
	return MatchResult{Matched: true, Score: score}
}
