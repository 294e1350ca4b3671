package scanner

import (
	"strings"
	"unicode/utf8"

	"github.com/anime-shed/barcode-studio-go/pkg/models"

	"github.com/arbovm/levenshtein"
	"github.com/codycollier/wer"
)

// DefaultMatchThreshold is the similarity at which decoded text counts as a match.
const DefaultMatchThreshold = 0.9

// MatchText compares decoded text against what the caller expected. Exact is
// a literal comparison; similarity and word error rate ignore surrounding
// whitespace and letter case.
func MatchText(expected, actual string, threshold float64) *models.TextMatch {
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}
	a := strings.ToLower(strings.TrimSpace(expected))
	b := strings.ToLower(strings.TrimSpace(actual))

	dist := levenshtein.Distance(a, b)
	sim := Similarity(a, b)

	m := &models.TextMatch{
		Expected:       expected,
		Exact:          expected == actual,
		Similarity:     sim,
		WordErrorRate:  wordErrorRate(a, b),
		EditDistance:   dist,
		MatchThreshold: threshold,
	}
	m.Matched = m.Exact || sim >= threshold
	return m
}

// Similarity is 1 - levenshtein(a, b) / max(len(a), len(b)) over runes.
// Two empty strings are identical.
func Similarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.Distance(a, b))/float64(longest)
}

func wordErrorRate(reference, candidate string) float64 {
	ref := strings.Fields(reference)
	if len(ref) == 0 {
		if len(strings.Fields(candidate)) == 0 {
			return 0
		}
		return 1
	}
	rate, _ := wer.WER(ref, strings.Fields(candidate))
	return rate
}
