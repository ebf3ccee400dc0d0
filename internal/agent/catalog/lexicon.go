package catalog

import (
	"fmt"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/salesbot/internal/core/error"
)

// Lexicon holds the normalizer, context and classifier tables.
type Lexicon struct {
	Normalizer    NormalizerTables `yaml:"normalizer"`
	Context       ContextTables    `yaml:"context"`
	Clarification Clarification    `yaml:"clarification"`
	Priority      []IntentPatterns `yaml:"priority"`
	Roots         []IntentRoots    `yaml:"roots"`
	Phrases       []IntentPhrases  `yaml:"phrases"`
}

type NormalizerTables struct {
	Layout map[string]string `yaml:"layout"`
	Typos  map[string]string `yaml:"typos"`
	Splits map[string]string `yaml:"splits"`
}

// Polarity maps a bare affirmative or negative reply to an intent. An empty
// field means the reply is not remapped.
type Polarity struct {
	Affirmative model.Intent `yaml:"affirmative"`
	Negative    model.Intent `yaml:"negative"`
}

type ContextTables struct {
	Affirmative     []string                 `yaml:"affirmative"`
	Negative        []string                 `yaml:"negative"`
	ByLastBotIntent map[string]Polarity      `yaml:"by_last_bot_intent"`
	ByPhase         map[model.Phase]Polarity `yaml:"by_phase"`
	Default         Polarity                 `yaml:"default"`
}

// Clarification recognises "no, but tell me more" replies.
type Clarification struct {
	NegativeLead    string `yaml:"negative_lead"`
	Interest        string `yaml:"interest"`
	NegatedInterest string `yaml:"negated_interest"`
}

type IntentPatterns struct {
	Intent   model.Intent `yaml:"intent"`
	Patterns []string     `yaml:"patterns"`
}

type IntentRoots struct {
	Intent model.Intent `yaml:"intent"`
	Roots  []string     `yaml:"roots"`
}

type IntentPhrases struct {
	Intent  model.Intent `yaml:"intent"`
	Phrases []string     `yaml:"phrases"`
}

// ParseLexicon decodes a lexicon table and checks its shape. Regular
// expressions and normalizer consistency are checked by their consumers.
func ParseLexicon(data []byte) (*Lexicon, error) {
	var lex Lexicon
	if err := decodeStrict(LexiconFile, data, &lex); err != nil {
		return nil, err
	}

	var problems []error
	if len(lex.Roots) == 0 {
		problems = append(problems, fmt.Errorf("roots: table is empty"))
	}
	seen := make(map[model.Intent]bool)
	for i, r := range lex.Roots {
		if err := checkIntent(fmt.Sprintf("roots[%d]", i), r.Intent); err != nil {
			problems = append(problems, err)
			continue
		}
		if seen[r.Intent] {
			problems = append(problems, fmt.Errorf("roots: intent %q declared twice", r.Intent))
		}
		seen[r.Intent] = true
		if len(r.Roots) == 0 {
			problems = append(problems, fmt.Errorf("roots: intent %q has no roots", r.Intent))
		}
	}
	for i, p := range lex.Priority {
		if err := checkIntent(fmt.Sprintf("priority[%d]", i), p.Intent); err != nil {
			problems = append(problems, err)
		}
		if len(p.Patterns) == 0 {
			problems = append(problems, fmt.Errorf("priority: intent %q has no patterns", p.Intent))
		}
	}
	for i, p := range lex.Phrases {
		if err := checkIntent(fmt.Sprintf("phrases[%d]", i), p.Intent); err != nil {
			problems = append(problems, err)
		}
	}
	for phase := range lex.Context.ByPhase {
		if !phase.Valid() {
			problems = append(problems, fmt.Errorf("context: unknown phase %q", phase))
		}
	}

	if err := errx.WrapConfig(LexiconFile, problems...); err != nil {
		return nil, err
	}
	return &lex, nil
}
