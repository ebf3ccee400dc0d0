package catalog

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/salesbot/internal/core/error"
)

func TestLoadEmbedded(t *testing.T) {
	c, err := LoadEmbedded()
	require.NoError(t, err)

	assert.Equal(t, model.StateID("greeting"), c.States.Initial)
	assert.NotEmpty(t, c.Lexicon.Roots)
	assert.Equal(t, model.IntentGreeting, c.Lexicon.Roots[0].Intent)
	assert.Equal(t, "сколько", c.Lexicon.Normalizer.Typos["скока"])
	assert.Equal(t, []string{"pricing"}, c.Knowledge.IntentCategories[model.IntentPriceQuestion])
	assert.Empty(t, c.Knowledge.IntentCategories[model.IntentGreeting])

	for _, s := range c.Knowledge.Sections {
		for _, k := range s.Keywords {
			assert.Equal(t, strings.ToLower(k), k)
		}
	}
}

func TestParseKnowledgeReportsAllProblems(t *testing.T) {
	data := []byte(`
intent_categories:
  price_question: [pricing, nowhere]
sections:
  - category: pricing
    topic: tariffs
    priority: 11
    keywords: []
    facts: ""
`)
	_, err := ParseKnowledge(data)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errx.ErrInvalidConfig))
	msg := err.Error()
	assert.Contains(t, msg, "priority 11")
	assert.Contains(t, msg, "no keywords")
	assert.Contains(t, msg, "empty facts")
	assert.Contains(t, msg, `unknown category "nowhere"`)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := ParseStates([]byte("initial: greeting\nstates:\n  - id: greeting\n    gaol: typo\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errx.ErrInvalidConfig))
}

func TestParseLexiconChecksRoots(t *testing.T) {
	data := []byte(`
roots:
  - intent: greeting
    roots: [привет]
  - intent: greeting
    roots: []
context:
  by_phase:
    discovery: {affirmative: agreement}
`)
	_, err := ParseLexicon(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `intent "greeting" declared twice`)
	assert.Contains(t, err.Error(), `unknown phase "discovery"`)
}

func TestLoadJoinsMissingFiles(t *testing.T) {
	fsys := fstest.MapFS{
		StatesFile: {Data: []byte("initial: greeting\nstates:\n  - id: greeting\n")},
	}
	_, err := Load(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), LexiconFile)
	assert.Contains(t, err.Error(), KnowledgeFile)
}
