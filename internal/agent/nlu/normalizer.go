package nlu

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/catalog"
	errx "github.com/Chative-core-poc-v1/salesbot/internal/core/error"
)

// Normalizer rewrites a raw message into canonical lexical form: keyboard
// layout repair, typo and slang canonicalization, then splitting of
// run-together phrases. Normalize is a fixed point after one pass; the
// constructor rejects tables that would break that.
type Normalizer struct {
	layout map[string]string
	typos  map[string]string
	splits map[string]string

	maxTypoWords int
}

func NewNormalizer(t catalog.NormalizerTables) (*Normalizer, error) {
	n := &Normalizer{
		layout:       lowerKeys(t.Layout),
		typos:        lowerKeys(t.Typos),
		splits:       lowerKeys(t.Splits),
		maxTypoWords: 1,
	}
	for k := range n.typos {
		if c := len(strings.Fields(k)); c > n.maxTypoWords {
			n.maxTypoWords = c
		}
	}
	if err := n.validate(); err != nil {
		return nil, err
	}
	return n, nil
}

// Normalize never fails; text without a matching rule is returned as is.
func (n *Normalizer) Normalize(text string) string {
	text = norm.NFC.String(text)
	if text == "" {
		return text
	}
	text = n.replaceWords(text, n.layout, true)
	text = n.replacePhrases(text)
	text = n.replaceWords(text, n.splits, false)
	return text
}

func (n *Normalizer) replaceWords(text string, table map[string]string, asciiOnly bool) string {
	tokens := tokenize(text)
	changed := false
	for i, t := range tokens {
		if !t.word || (asciiOnly && !isASCII(t.text)) {
			continue
		}
		if repl, ok := table[strings.ToLower(t.text)]; ok {
			tokens[i].text = matchCase(t.text, repl)
			changed = true
		}
	}
	if !changed {
		return text
	}
	return join(tokens)
}

// replacePhrases applies the typo table with the longest multi-word key
// winning. Words of a phrase must be separated by whitespace only.
func (n *Normalizer) replacePhrases(text string) string {
	tokens := tokenize(text)
	out := make([]token, 0, len(tokens))
	changed := false

	for i := 0; i < len(tokens); {
		if !tokens[i].word {
			out = append(out, tokens[i])
			i++
			continue
		}
		matched := false
		for size := n.maxTypoWords; size >= 1; size-- {
			key, end, ok := phraseAt(tokens, i, size)
			if !ok {
				continue
			}
			if repl, found := n.typos[key]; found {
				out = append(out, token{text: matchCase(tokens[i].text, repl), word: true})
				i = end
				matched, changed = true, true
				break
			}
		}
		if !matched {
			out = append(out, tokens[i])
			i++
		}
	}
	if !changed {
		return text
	}
	return join(out)
}

// phraseAt joins size word tokens starting at tokens[i]. end is the index
// just past the last word used.
func phraseAt(tokens []token, i, size int) (key string, end int, ok bool) {
	parts := make([]string, 0, size)
	j := i
	for {
		parts = append(parts, strings.ToLower(tokens[j].text))
		j++
		if len(parts) == size {
			return strings.Join(parts, " "), j, true
		}
		if j+1 >= len(tokens) || strings.TrimSpace(tokens[j].text) != "" || !tokens[j+1].word {
			return "", 0, false
		}
		j++
	}
}

// validate checks that no output can be rewritten again by a second pass.
func (n *Normalizer) validate() error {
	var problems []error

	single := make(map[string]string)
	var multi [][]string
	outputs := make(map[string]string)

	tables := []struct {
		name  string
		table map[string]string
	}{
		{"layout", n.layout},
		{"typos", n.typos},
		{"splits", n.splits},
	}
	for _, tbl := range tables {
		for k, v := range tbl.table {
			kw := words(k)
			if strings.Join(kw, " ") != k {
				problems = append(problems, fmt.Errorf("normalizer.%s: key %q must be words separated by single spaces", tbl.name, k))
				continue
			}
			if len(kw) > 1 && tbl.name != "typos" {
				problems = append(problems, fmt.Errorf("normalizer.%s: key %q must be a single word", tbl.name, k))
			}
			if tbl.name == "layout" && !isASCII(k) {
				problems = append(problems, fmt.Errorf("normalizer.layout: key %q is not ASCII", k))
			}
			if len(kw) == 1 {
				single[k] = tbl.name
			} else {
				multi = append(multi, kw)
			}
			outputs[k] = strings.ToLower(v)
		}
	}

	first := make(map[string]bool)
	last := make(map[string]bool)
	inner := make(map[string]bool)
	for key, out := range outputs {
		ow := words(out)
		if len(ow) == 0 {
			problems = append(problems, fmt.Errorf("normalizer: key %q maps to no words", key))
			continue
		}
		first[ow[0]], last[ow[len(ow)-1]] = true, true
		for _, w := range ow {
			inner[w] = true
			if tbl, ok := single[w]; ok {
				problems = append(problems, fmt.Errorf("normalizer: output %q of %q is itself a %s key", w, key, tbl))
			}
		}
		joined := " " + strings.Join(ow, " ") + " "
		for _, m := range multi {
			if strings.Contains(joined, " "+strings.Join(m, " ")+" ") {
				problems = append(problems, fmt.Errorf("normalizer: output of %q contains phrase %q", key, strings.Join(m, " ")))
			}
		}
	}
	for _, m := range multi {
		phrase := strings.Join(m, " ")
		if last[m[0]] {
			problems = append(problems, fmt.Errorf("normalizer: phrase %q starts with a word that ends an output", phrase))
		}
		if first[m[len(m)-1]] {
			problems = append(problems, fmt.Errorf("normalizer: phrase %q ends with a word that starts an output", phrase))
		}
		for _, w := range m[1 : len(m)-1] {
			if inner[w] {
				problems = append(problems, fmt.Errorf("normalizer: phrase %q contains output word %q", phrase, w))
			}
		}
	}

	return errx.WrapConfig(catalog.LexiconFile, problems...)
}

func lowerKeys(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}
