package nlu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/catalog"
	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
)

// mapLemmatizer lowercases words and applies a fixed normal-form table.
type mapLemmatizer map[string]string

func (m mapLemmatizer) Available() bool { return true }

func (m mapLemmatizer) Lemmas(text string) []string {
	ws := words(text)
	for i, w := range ws {
		if l, ok := m[w]; ok {
			ws[i] = l
		}
	}
	return ws
}

func TestLemmaClassifierScoring(t *testing.T) {
	lem := mapLemmatizer{"тарифы": "тариф", "тарифов": "тариф", "какие": "какой"}
	c := NewLemmaClassifier([]catalog.IntentPhrases{
		{Intent: model.IntentPriceQuestion, Phrases: []string{"какие тарифы"}},
		{Intent: model.IntentGreeting, Phrases: []string{"добрый день"}},
	}, lem, 1.0)

	// contiguous phrase: 2 lemmas x weight
	res := c.Classify("а какие тарифов у вас")
	assert.Equal(t, model.IntentPriceQuestion, res.Intent)
	assert.InDelta(t, 0.5, res.Confidence, 1e-9)

	// all lemmas present out of order: 0.8 x 2
	res = c.Classify("тарифы у вас какие")
	assert.Equal(t, model.IntentPriceQuestion, res.Intent)
	assert.InDelta(t, 0.4, res.Confidence, 1e-9)

	res = c.Classify("просто текст")
	assert.Equal(t, model.IntentUnclear, res.Intent)
	assert.Zero(t, res.Confidence)
}

func TestLemmaClassifierDegradesWithoutAnalyzer(t *testing.T) {
	c := NewLemmaClassifier([]catalog.IntentPhrases{
		{Intent: model.IntentPriceQuestion, Phrases: []string{"какие тарифы"}},
	}, NopLemmatizer{}, 1.0)

	res := c.Classify("какие тарифы")
	assert.Equal(t, model.IntentUnclear, res.Intent)
	assert.Zero(t, res.Confidence)
}

func TestSnowballLemmatizer(t *testing.T) {
	lem, err := NewLemmatizer("snowball")
	require.NoError(t, err)
	require.True(t, lem.Available())

	a := lem.Lemmas("Тарифы")
	b := lem.Lemmas("тарифов")
	require.Len(t, a, 1)
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a[0], "тариф"))

	assert.Equal(t, lem.Lemmas("reports"), lem.Lemmas("report"))
}

func TestRootClassifier(t *testing.T) {
	c := NewRootClassifier([]catalog.IntentRoots{
		{Intent: model.IntentPriceQuestion, Roots: []string{"сколько", "стоит", "цен"}},
		{Intent: model.IntentAgreement, Roots: []string{"давай", "хорошо"}},
		{Intent: model.IntentGreeting, Roots: []string{"привет"}},
	}, 1.5)

	res := c.Classify("Сколько стоит")
	assert.Equal(t, model.IntentPriceQuestion, res.Intent)
	assert.Equal(t, 1.0, res.Confidence)

	// one root: 1 x 1.5 / 3
	res = c.Classify("привет")
	assert.InDelta(t, 0.5, res.Confidence, 1e-9)

	// tie goes to the first declared intent
	res = c.Classify("давай, сколько")
	assert.Equal(t, model.IntentPriceQuestion, res.Intent)

	// gap of two or more earns the bonus
	c = NewRootClassifier([]catalog.IntentRoots{
		{Intent: model.IntentPriceQuestion, Roots: []string{"сколько", "стоит", "цен"}},
		{Intent: model.IntentGreeting, Roots: []string{"привет"}},
	}, 0.5)
	res = c.Classify("привет, сколько стоит цена")
	assert.Equal(t, model.IntentPriceQuestion, res.Intent)
	assert.InDelta(t, 0.7, res.Confidence, 1e-9)

	res = c.Classify("")
	assert.Equal(t, model.IntentUnclear, res.Intent)
	assert.Zero(t, res.Confidence)
}
