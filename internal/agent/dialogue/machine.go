package dialogue

import (
	"github.com/rs/zerolog"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/salesbot/pkg/logger"
)

// Machine applies the rule cascade to sessions. It holds no per-session
// state and is safe to share.
type Machine struct {
	table  *Table
	logger zerolog.Logger
}

func NewMachine(t *Table) *Machine {
	return &Machine{table: t, logger: logx.Component("dialogue")}
}

// WithLogger returns a copy of m logging to l.
func (m *Machine) WithLogger(l zerolog.Logger) *Machine {
	cp := *m
	cp.logger = l
	return &cp
}

func (m *Machine) NewSession() *Session { return NewSession(m.table) }

// Reset restores the initial state and drops all collected data.
func (m *Machine) Reset(s *Session) { s.reset(m.table) }

// Context builds the classifier context for the session's next message.
func (m *Machine) Context(s *Session, lastBotIntent string) model.ClassifyContext {
	cfg := m.config(s)
	return model.ClassifyContext{
		LastBotIntent: lastBotIntent,
		Phase:         s.phase,
		MissingData:   s.collected.Missing(cfg.RequiredData),
		CollectedData: s.collected,
	}
}

// Process merges data into the session, resolves the next state and
// action, and moves the session.
func (m *Machine) Process(s *Session, intent model.Intent, data model.ExtractedData) model.StepResult {
	current := m.config(s)
	prev := s.state

	s.collected.Merge(data, m.table.fields)
	action, next := m.resolve(s, current, intent)

	nextCfg, ok := m.table.State(next)
	if !ok {
		// unreachable with a validated table
		nextCfg, next = current, prev
	}
	s.state = next
	s.phase = nextCfg.Phase

	res := model.StepResult{
		Action:        action,
		PrevState:     prev,
		NextState:     next,
		Goal:          nextCfg.Goal,
		CollectedData: s.collected,
		MissingData:   s.collected.Missing(nextCfg.RequiredData),
		OptionalData:  s.collected.Missing(nextCfg.OptionalData),
		IsFinal:       nextCfg.IsFinal,
		Phase:         nextCfg.Phase,
	}

	m.logger.Debug().
		Str("intent", intent.String()).
		Str("from", string(prev)).
		Str("to", string(next)).
		Str("action", string(action)).
		Msg("dialogue step")
	return res
}

// resolve evaluates the cascade in priority order; the first match wins.
func (m *Machine) resolve(s *Session, cfg *model.StateConfig, intent model.Intent) (model.Action, model.StateID) {
	if cfg.IsFinal {
		return model.ActionFinal, s.state
	}

	if m.table.IsQuestion(intent) {
		if next, ok := cfg.Transitions[intent]; ok {
			return model.ActionAnswerQuestion, next
		}
		return model.ActionAnswerQuestion, s.state
	}

	if intent == model.IntentRejection {
		if next, ok := cfg.Transitions[model.IntentRejection]; ok {
			return model.TransitionTo(next), next
		}
	}

	if cfg.Phase != model.PhaseNone {
		if next, ok := m.phaseProgress(cfg, intent); ok {
			next = m.advance(s, next)
			return model.TransitionTo(next), next
		}
		if next, ok := cfg.Transitions[model.TriggerDataComplete]; ok && m.complete(s, cfg) {
			next = m.advance(s, next)
			return model.TransitionTo(next), next
		}
	}

	if action, ok := cfg.Rules[intent]; ok {
		return action, s.state
	}

	if next, ok := cfg.Transitions[intent]; ok {
		return model.TransitionTo(next), next
	}

	if len(cfg.RequiredData) > 0 && m.complete(s, cfg) {
		if next, ok := cfg.Transitions[model.TriggerDataComplete]; ok {
			return model.TransitionTo(next), next
		}
	}

	if next, ok := cfg.Transitions[model.TriggerAny]; ok {
		return model.TransitionTo(next), next
	}

	if cfg.Phase != model.PhaseNone {
		return model.Action(cfg.Phase), s.state
	}
	return model.ActionContinue, s.state
}

// phaseProgress applies a phase-progress intent whose phase is the current
// one or a later one. An intent or state phase outside the known phases is
// no match.
func (m *Machine) phaseProgress(cfg *model.StateConfig, intent model.Intent) (model.StateID, bool) {
	intentPhase, ok := model.PhaseProgressIntents[intent]
	if !ok {
		return "", false
	}
	ip, cp := intentPhase.Index(), cfg.Phase.Index()
	if ip < 0 || cp < 0 || ip < cp {
		return "", false
	}
	next, ok := cfg.Transitions[intent]
	return next, ok
}

// advance follows a phase step. The next phase may be skipped once;
// after that, phases whose required data are already present are passed
// through via their own data_complete transition.
func (m *Machine) advance(s *Session, next model.StateID) model.StateID {
	if cfg, ok := m.table.State(next); ok && skippable(cfg.Phase, s.collected) {
		if skip, ok := cfg.Transitions[model.TriggerDataComplete]; ok {
			next = skip
		}
	}

	for range m.table.order {
		cfg, ok := m.table.State(next)
		if !ok || cfg.Phase == model.PhaseNone || len(cfg.RequiredData) == 0 || !m.complete(s, cfg) {
			break
		}
		through, ok := cfg.Transitions[model.TriggerDataComplete]
		if !ok {
			break
		}
		next = through
	}
	return next
}

// skippable reports whether the client is far enough along to skip p.
func skippable(p model.Phase, d model.ExtractedData) bool {
	switch p {
	case model.PhaseImplication:
		return d.HighInterest
	case model.PhaseNeedPayoff:
		return d.HighInterest || d.DesiredOutcome != ""
	}
	return false
}

func (m *Machine) complete(s *Session, cfg *model.StateConfig) bool {
	return len(s.collected.Missing(cfg.RequiredData)) == 0
}

// config returns the session's state config, repositioning sessions whose
// state is unknown to this table.
func (m *Machine) config(s *Session) *model.StateConfig {
	if cfg, ok := m.table.State(s.state); ok {
		return cfg
	}
	s.reset(m.table)
	cfg, _ := m.table.State(s.state)
	return cfg
}
