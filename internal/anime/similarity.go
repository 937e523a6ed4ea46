package anime

import (
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// Similarity returns 1 - levenshtein(a, b) / max(len(a), len(b)) over runes.
// Two empty strings are identical.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 1.0
	}

	// edlib keeps one column sized by its first argument
	if la > lb {
		a, b = b, a
	}
	distance := edlib.LevenshteinDistance(a, b)
	return 1.0 - float64(distance)/float64(maxLen)
}
