package model

// Phase is one step of the four-phase discovery methodology.
type Phase string

const (
	PhaseNone        Phase = ""
	PhaseSituation   Phase = "situation"
	PhaseProblem     Phase = "problem"
	PhaseImplication Phase = "implication"
	PhaseNeedPayoff  Phase = "need_payoff"
)

// Phases lists the discovery phases in their fixed order.
var Phases = []Phase{PhaseSituation, PhaseProblem, PhaseImplication, PhaseNeedPayoff}

// Index returns the position of p in Phases, or -1 when p is not a phase.
func (p Phase) Index() int {
	for i, ph := range Phases {
		if ph == p {
			return i
		}
	}
	return -1
}

// Valid reports whether p names one of the four phases.
func (p Phase) Valid() bool {
	return p.Index() >= 0
}

func (p Phase) String() string {
	return string(p)
}

// PhaseProgressIntents maps the intents that signal progress to the phase
// they belong to.
var PhaseProgressIntents = map[Intent]Phase{
	IntentSituationProvided:       PhaseSituation,
	IntentProblemRevealed:         PhaseProblem,
	IntentImplicationAcknowledged: PhaseImplication,
	IntentNeedExpressed:           PhaseNeedPayoff,
}
