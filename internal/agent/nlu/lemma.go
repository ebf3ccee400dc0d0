package nlu

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
	"github.com/kljensen/snowball/russian"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/catalog"
	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
)

// Lemmatizer reduces the words of a text to a normal form.
type Lemmatizer interface {
	Lemmas(text string) []string
	// Available is false for the null strategy; the lemma classifier then
	// always answers unclear.
	Available() bool
}

const (
	LemmatizerSnowball = "snowball"
	LemmatizerNone     = "none"
)

// NewLemmatizer selects a strategy by name.
func NewLemmatizer(name string) (Lemmatizer, error) {
	switch strings.ToLower(name) {
	case LemmatizerSnowball, "":
		return SnowballLemmatizer{}, nil
	case LemmatizerNone:
		return NopLemmatizer{}, nil
	}
	return nil, fmt.Errorf("unknown lemmatizer %q", name)
}

// SnowballLemmatizer stems Cyrillic words with the Russian Snowball stemmer
// and Latin words with the English one.
type SnowballLemmatizer struct{}

func (SnowballLemmatizer) Available() bool { return true }

func (SnowballLemmatizer) Lemmas(text string) []string {
	ws := words(text)
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		switch {
		case hasCyrillic(w):
			out = append(out, russian.Stem(w, false))
		case isASCII(w):
			out = append(out, english.Stem(w, false))
		default:
			out = append(out, w)
		}
	}
	return out
}

type NopLemmatizer struct{}

func (NopLemmatizer) Available() bool { return false }

func (NopLemmatizer) Lemmas(text string) []string { return words(text) }

func hasCyrillic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}

type lemmaPhrase struct {
	lemmas []string
}

type lemmaIntent struct {
	intent  model.Intent
	phrases []lemmaPhrase
}

// LemmaClassifier matches the lemmatized message against lemmatized
// reference phrases. Phrases are lemmatized once at construction.
type LemmaClassifier struct {
	lemmatizer Lemmatizer
	intents    []lemmaIntent
	weight     float64
}

func NewLemmaClassifier(phrases []catalog.IntentPhrases, lem Lemmatizer, weight float64) *LemmaClassifier {
	c := &LemmaClassifier{lemmatizer: lem, weight: weight}
	for _, p := range phrases {
		li := lemmaIntent{intent: p.Intent}
		for _, phrase := range p.Phrases {
			if lemmas := lem.Lemmas(phrase); len(lemmas) > 0 {
				li.phrases = append(li.phrases, lemmaPhrase{lemmas: lemmas})
			}
		}
		c.intents = append(c.intents, li)
	}
	return c
}

func (c *LemmaClassifier) Classify(text string) Result {
	if !c.lemmatizer.Available() {
		return unclear()
	}
	msg := c.lemmatizer.Lemmas(text)
	if len(msg) == 0 {
		return unclear()
	}
	present := make(map[string]bool, len(msg))
	for _, l := range msg {
		present[l] = true
	}

	scores := make(map[model.Intent]float64)
	var (
		best      model.Intent
		bestScore float64
	)
	for _, in := range c.intents {
		intentBest := 0.0
		for _, p := range in.phrases {
			full := float64(len(p.lemmas)) * c.weight
			var score float64
			switch {
			case containsSequence(msg, p.lemmas):
				score = full
			case allPresent(present, p.lemmas):
				score = 0.8 * full
			}
			intentBest = math.Max(intentBest, score)
		}
		if intentBest == 0 {
			continue
		}
		scores[in.intent] = intentBest
		if intentBest > bestScore {
			best, bestScore = in.intent, intentBest
		}
	}
	if best == "" {
		return unclear()
	}
	return Result{Intent: best, Confidence: math.Min(bestScore/4, 1.0), Scores: scores}
}

func containsSequence(haystack, needle []string) bool {
	if len(needle) > len(haystack) {
		return false
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, n := range needle {
			if haystack[i+j] != n {
				continue outer
			}
		}
		return true
	}
	return false
}

func allPresent(set map[string]bool, lemmas []string) bool {
	for _, l := range lemmas {
		if !set[l] {
			return false
		}
	}
	return true
}
