package dialogue

import "github.com/Chative-core-poc-v1/salesbot/internal/agent/model"

// Session is the mutable state of one conversation. It is owned by a single
// conversation and must not be processed concurrently; only Machine
// mutates it.
type Session struct {
	state     model.StateID
	collected model.ExtractedData
	phase     model.Phase
}

// NewSession returns a session positioned at the table's initial state.
func NewSession(t *Table) *Session {
	s := &Session{}
	s.reset(t)
	return s
}

func (s *Session) State() model.StateID { return s.state }

// Phase is the discovery phase of the current state, empty outside one.
func (s *Session) Phase() model.Phase { return s.phase }

// Collected returns a copy of the data gathered so far.
func (s *Session) Collected() model.ExtractedData { return s.collected }

func (s *Session) reset(t *Table) {
	s.state = t.Initial()
	s.collected = model.ExtractedData{}
	s.phase = model.PhaseNone
	if cfg, ok := t.State(s.state); ok {
		s.phase = cfg.Phase
	}
}
