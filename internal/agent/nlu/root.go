package nlu

import (
	"math"
	"strings"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/catalog"
	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
)

// Result is the outcome of a single classifier.
type Result struct {
	Intent     model.Intent
	Confidence float64
	Scores     map[model.Intent]float64
}

func unclear() Result {
	return Result{Intent: model.IntentUnclear}
}

// RootClassifier scores intents by the number of distinct lexical roots
// found in the message.
type RootClassifier struct {
	intents []catalog.IntentRoots
	weight  float64
}

func NewRootClassifier(roots []catalog.IntentRoots, weight float64) *RootClassifier {
	intents := make([]catalog.IntentRoots, len(roots))
	for i, r := range roots {
		uniq := make([]string, 0, len(r.Roots))
		seen := make(map[string]bool)
		for _, root := range r.Roots {
			root = strings.ToLower(root)
			if root != "" && !seen[root] {
				seen[root] = true
				uniq = append(uniq, root)
			}
		}
		intents[i] = catalog.IntentRoots{Intent: r.Intent, Roots: uniq}
	}
	return &RootClassifier{intents: intents, weight: weight}
}

func (c *RootClassifier) Classify(text string) Result {
	text = strings.ToLower(text)

	scores := make(map[model.Intent]float64)
	var (
		best        model.Intent
		first, next float64
	)
	for _, in := range c.intents {
		score := 0.0
		for _, root := range in.Roots {
			if strings.Contains(text, root) {
				score++
			}
		}
		if score == 0 {
			continue
		}
		scores[in.Intent] = score
		// strict comparison keeps the first declared intent on ties
		switch {
		case score > first:
			next, first, best = first, score, in.Intent
		case score > next:
			next = score
		}
	}
	if best == "" {
		return unclear()
	}

	confidence := math.Min(first*c.weight/3, 1.0)
	if len(scores) > 1 && first-next >= 2 {
		confidence = math.Min(confidence+0.2, 1.0)
	}
	return Result{Intent: best, Confidence: confidence, Scores: scores}
}
