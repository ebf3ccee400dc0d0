// Package dialogue implements the sales dialogue state machine: a validated
// state table, per-conversation sessions and the rule cascade that moves a
// session between states.
package dialogue

import (
	"fmt"
	"sort"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/catalog"
	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/salesbot/internal/core/error"
)

// Table is the validated, read-only state configuration. It can be shared
// by any number of sessions.
type Table struct {
	states    map[model.StateID]*model.StateConfig
	order     []model.StateID
	initial   model.StateID
	questions map[model.Intent]struct{}
	fields    map[model.Field]struct{}
	byPhase   map[model.Phase]model.StateID
}

// NewTable validates the raw table. All integrity problems are reported
// together.
func NewTable(raw *catalog.States) (*Table, error) {
	t := &Table{
		states:    make(map[model.StateID]*model.StateConfig, len(raw.States)),
		initial:   raw.Initial,
		questions: make(map[model.Intent]struct{}, len(raw.QuestionIntents)),
		byPhase:   make(map[model.Phase]model.StateID),
	}
	var problems []error

	for i := range raw.States {
		cfg := raw.States[i]
		if _, dup := t.states[cfg.ID]; dup {
			problems = append(problems, fmt.Errorf("state %q declared twice", cfg.ID))
			continue
		}
		t.states[cfg.ID] = &cfg
		t.order = append(t.order, cfg.ID)
	}
	for _, q := range raw.QuestionIntents {
		t.questions[q] = struct{}{}
	}

	if _, ok := t.states[t.initial]; !ok {
		problems = append(problems, fmt.Errorf("initial state %q is not declared", t.initial))
	}

	var all [][]model.Field
	for _, id := range t.order {
		cfg := t.states[id]
		for _, trigger := range sortedIntents(cfg.Transitions) {
			target := cfg.Transitions[trigger]
			if _, ok := t.states[target]; !ok {
				problems = append(problems, fmt.Errorf("state %q: transition %q points to unknown state %q", id, trigger, target))
			}
		}
		if cfg.Phase != model.PhaseNone {
			if !cfg.Phase.Valid() {
				problems = append(problems, fmt.Errorf("state %q: unknown discovery phase %q", id, cfg.Phase))
			} else if other, dup := t.byPhase[cfg.Phase]; dup {
				problems = append(problems, fmt.Errorf("state %q: phase %q already owned by %q", id, cfg.Phase, other))
			} else {
				t.byPhase[cfg.Phase] = id
			}
		}
		for _, f := range append(append([]model.Field{}, cfg.RequiredData...), cfg.OptionalData...) {
			if !model.IsKnownField(f) {
				problems = append(problems, fmt.Errorf("state %q: unknown field %q", id, f))
			}
		}
		if cfg.IsFinal && len(cfg.Transitions) > 0 {
			problems = append(problems, fmt.Errorf("state %q: final state declares transitions", id))
		}
		all = append(all, cfg.RequiredData, cfg.OptionalData)
	}

	t.fields = model.FieldSet(all...)

	if err := errx.WrapConfig(catalog.StatesFile, problems...); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) Initial() model.StateID { return t.initial }

// State returns the config of id. Every id reachable through a session is
// declared, so the boolean only matters for caller-supplied ids.
func (t *Table) State(id model.StateID) (*model.StateConfig, bool) {
	cfg, ok := t.states[id]
	return cfg, ok
}

func (t *Table) IsQuestion(i model.Intent) bool {
	_, ok := t.questions[i]
	return ok
}

// Fields is the union of all declared required and optional fields.
func (t *Table) Fields() []model.Field {
	return model.SortedFields(t.fields)
}

// StateForPhase returns the state owning phase p.
func (t *Table) StateForPhase(p model.Phase) (model.StateID, bool) {
	id, ok := t.byPhase[p]
	return id, ok
}

func sortedIntents(m map[model.Intent]model.StateID) []model.Intent {
	out := make([]model.Intent, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
