package usecase

import (
	"strings"
	"unicode"
)

// SimilarityScorer scores how alike two normalized names are, from 0 (nothing
// in common) to 1 (identical).
type SimilarityScorer interface {
	Score(a, b string) float64
}

// Scorer names accepted by NewScorer
const (
	ScorerDice        = "dice"
	ScorerLevenshtein = "levenshtein"
)

// NewScorer returns the scorer registered under name, defaulting to Dice.
func NewScorer(name string) SimilarityScorer {
	if name == ScorerLevenshtein {
		return LevenshteinScorer{}
	}
	return DiceScorer{}
}

// DiceScorer is the Sørensen–Dice coefficient over character bigrams with
// whitespace removed. Repeated bigrams count as many times as they occur.
type DiceScorer struct{}

// Score implements SimilarityScorer
func (DiceScorer) Score(a, b string) float64 {
	ra := []rune(stripWhitespace(a))
	rb := []rune(stripWhitespace(b))

	if string(ra) == string(rb) {
		return 1
	}
	if len(ra) < 2 || len(rb) < 2 {
		return 0
	}

	bigrams := make(map[string]int, len(ra)-1)
	for i := 0; i < len(ra)-1; i++ {
		bigrams[string(ra[i:i+2])]++
	}

	intersection := 0
	for i := 0; i < len(rb)-1; i++ {
		bigram := string(rb[i : i+2])
		if count := bigrams[bigram]; count > 0 {
			bigrams[bigram] = count - 1
			intersection++
		}
	}

	return 2 * float64(intersection) / float64(len(ra)+len(rb)-2)
}

// LevenshteinScorer is 1 - editDistance/maxLength over runes.
type LevenshteinScorer struct{}

// Score implements SimilarityScorer
func (LevenshteinScorer) Score(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshteinDistance(a, b))/float64(longest)
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	// Two rows instead of the full matrix
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}
