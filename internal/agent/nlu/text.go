package nlu

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// token is a maximal run of word runes or of separator runes.
type token struct {
	text string
	word bool
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func tokenize(s string) []token {
	var (
		out   []token
		start int
		cur   bool
	)
	for i, r := range s {
		w := isWordRune(r)
		if i == 0 {
			cur = w
			continue
		}
		if w != cur {
			out = append(out, token{text: s[start:i], word: cur})
			start, cur = i, w
		}
	}
	if start < len(s) {
		out = append(out, token{text: s[start:], word: cur})
	}
	return out
}

func join(tokens []token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.text)
	}
	return b.String()
}

// words returns the lowercased word tokens of s.
func words(s string) []string {
	var out []string
	for _, t := range tokenize(s) {
		if t.word {
			out = append(out, strings.ToLower(t.text))
		}
	}
	return out
}

// matchCase upper-cases the first rune of repl when original starts with
// an upper-case rune.
func matchCase(original, repl string) string {
	first, _ := utf8.DecodeRuneInString(original)
	if !unicode.IsUpper(first) {
		return repl
	}
	r, size := utf8.DecodeRuneInString(repl)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return repl
	}
	return string(unicode.ToUpper(r)) + repl[size:]
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
