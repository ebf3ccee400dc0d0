package catalog

import (
	"fmt"
	"strings"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/salesbot/internal/core/error"
)

// Knowledge is the knowledge base plus the intent to category gating map.
type Knowledge struct {
	IntentCategories map[model.Intent][]string `yaml:"intent_categories"`
	Sections         []model.KnowledgeSection  `yaml:"sections"`
}

func ParseKnowledge(data []byte) (*Knowledge, error) {
	var kb Knowledge
	if err := decodeStrict(KnowledgeFile, data, &kb); err != nil {
		return nil, err
	}

	var problems []error
	categories := make(map[string]bool)
	for i, s := range kb.Sections {
		owner := fmt.Sprintf("sections[%d] (%s/%s)", i, s.Category, s.Topic)
		if s.Category == "" {
			problems = append(problems, fmt.Errorf("%s: empty category", owner))
		}
		if strings.TrimSpace(s.Facts) == "" {
			problems = append(problems, fmt.Errorf("%s: empty facts", owner))
		}
		if len(s.Keywords) == 0 {
			problems = append(problems, fmt.Errorf("%s: no keywords", owner))
		}
		if s.Priority < 1 || s.Priority > 10 {
			problems = append(problems, fmt.Errorf("%s: priority %d outside 1..10", owner, s.Priority))
		}
		categories[s.Category] = true
	}
	for intent, cats := range kb.IntentCategories {
		for _, c := range cats {
			if !categories[c] {
				problems = append(problems, fmt.Errorf("intent %q: unknown category %q", intent, c))
			}
		}
	}

	if err := errx.WrapConfig(KnowledgeFile, problems...); err != nil {
		return nil, err
	}
	// Keyword matching is case-insensitive against a lowercased message.
	for i := range kb.Sections {
		for j, k := range kb.Sections[i].Keywords {
			kb.Sections[i].Keywords[j] = strings.ToLower(strings.TrimSpace(k))
		}
		kb.Sections[i].Facts = strings.TrimSpace(kb.Sections[i].Facts)
	}
	return &kb, nil
}
