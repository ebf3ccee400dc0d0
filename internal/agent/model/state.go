package model

// StateID names a dialogue state declared in the state table.
type StateID string

// Action tells the response layer what to do this turn.
type Action string

const (
	ActionFinal          Action = "final"
	ActionAnswerQuestion Action = "answer_question"
	ActionContinue       Action = "continue_current_goal"
)

// TransitionTo is the action emitted when the dialogue moves to s.
func TransitionTo(s StateID) Action {
	return Action("transition_to_" + string(s))
}

// Pseudo-intents that may key a transition table.
const (
	TriggerAny          Intent = "any"
	TriggerDataComplete Intent = "data_complete"
)

// StateConfig is the declarative description of one dialogue state.
type StateConfig struct {
	ID           StateID            `yaml:"id" json:"id"`
	Goal         string             `yaml:"goal" json:"goal"`
	RequiredData []Field            `yaml:"required_data" json:"required_data,omitempty"`
	OptionalData []Field            `yaml:"optional_data" json:"optional_data,omitempty"`
	Transitions  map[Intent]StateID `yaml:"transitions" json:"transitions,omitempty"`
	Rules        map[Intent]Action  `yaml:"rules" json:"rules,omitempty"`
	IsFinal      bool               `yaml:"is_final" json:"is_final,omitempty"`
	Phase        Phase              `yaml:"discovery_phase" json:"discovery_phase,omitempty"`
}

// StepResult describes the outcome of processing one intent.
type StepResult struct {
	Action        Action        `json:"action"`
	PrevState     StateID       `json:"prev_state"`
	NextState     StateID       `json:"next_state"`
	Goal          string        `json:"goal"`
	CollectedData ExtractedData `json:"collected_data"`
	MissingData   []Field       `json:"missing_data"`
	OptionalData  []Field       `json:"optional_data"`
	IsFinal       bool          `json:"is_final"`
	Phase         Phase         `json:"discovery_phase,omitempty"`
}
