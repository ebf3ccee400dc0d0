package nlu

import (
	"strings"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/catalog"
	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
)

const (
	contextConfidence = 0.9
	defaultConfidence = 0.8
)

// contextResolver remaps bare "yes"/"no" replies using what the bot last
// did or the active discovery phase.
type contextResolver struct {
	affirmative map[string]bool
	negative    map[string]bool
	byLastBot   map[string]catalog.Polarity
	byPhase     map[model.Phase]catalog.Polarity
	fallback    catalog.Polarity
}

func newContextResolver(t catalog.ContextTables) *contextResolver {
	set := func(phrases []string) map[string]bool {
		m := make(map[string]bool, len(phrases))
		for _, p := range phrases {
			m[strings.Join(words(p), " ")] = true
		}
		return m
	}
	return &contextResolver{
		affirmative: set(t.Affirmative),
		negative:    set(t.Negative),
		byLastBot:   t.ByLastBotIntent,
		byPhase:     t.ByPhase,
		fallback:    t.Default,
	}
}

func (r *contextResolver) resolve(ws []string, ctx model.ClassifyContext) (model.Intent, float64, bool) {
	key := strings.Join(ws, " ")
	yes, no := r.affirmative[key], r.negative[key]
	if !yes && !no {
		return "", 0, false
	}
	pick := func(p catalog.Polarity) model.Intent {
		if yes {
			return p.Affirmative
		}
		return p.Negative
	}

	if p, ok := r.byLastBot[ctx.LastBotIntent]; ok && ctx.LastBotIntent != "" {
		if intent := pick(p); intent != "" {
			return intent, contextConfidence, true
		}
	}
	if p, ok := r.byPhase[ctx.Phase]; ok {
		if intent := pick(p); intent != "" {
			return intent, contextConfidence, true
		}
	}
	// inside a phase an unmapped "no" answers the question, it is not a
	// rejection of the conversation
	if ctx.Phase == model.PhaseNone {
		if intent := pick(r.fallback); intent != "" {
			return intent, defaultConfidence, true
		}
	}
	return "", 0, false
}
