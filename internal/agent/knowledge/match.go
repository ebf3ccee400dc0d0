package knowledge

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// containsWord reports whether needle occurs in haystack bounded by
// non-word runes or the string ends.
func containsWord(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	from := 0
	for {
		i := strings.Index(haystack[from:], needle)
		if i < 0 {
			return false
		}
		i += from
		end := i + len(needle)

		before, _ := utf8.DecodeLastRuneInString(haystack[:i])
		after, _ := utf8.DecodeRuneInString(haystack[end:])
		if (i == 0 || !isWordRune(before)) && (end == len(haystack) || !isWordRune(after)) {
			return true
		}
		_, size := utf8.DecodeRuneInString(haystack[i:])
		from = i + size
	}
}

// keywordScore is 1 per keyword found as a substring plus 0.5 when it is
// also a whole word. Keywords are lowercased at load time.
func keywordScore(lowered string, keywords []string) float64 {
	var score float64
	for _, k := range keywords {
		if k == "" || !strings.Contains(lowered, k) {
			continue
		}
		score++
		if containsWord(lowered, k) {
			score += 0.5
		}
	}
	return score
}
