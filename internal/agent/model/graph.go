package model

// AppState is the graph local state of one turn.
// Concurrency model:
//   - Registered via compose.WithGenLocalState, so every Invoke gets its own.
//   - Read and written only inside state handlers or compose.ProcessState,
//     which Eino serializes.
type AppState struct {
	ConversationID string
	Query          string
	Classification Classification
	Step           StepResult
	Facts          string

	// accumulated response model cost (USD) for this turn
	TotalCostUSD float64
}

// QueryInput is the graph input: one user message of one conversation.
type QueryInput struct {
	ConversationID string `json:"conversation_id"`
	Query          string `json:"query"`
}

// TurnResult summarizes a finished turn for the caller.
type TurnResult struct {
	ConversationID string        `json:"conversation_id"`
	Reply          string        `json:"reply"`
	Intent         Intent        `json:"intent"`
	Confidence     float64       `json:"confidence"`
	Method         Method        `json:"method"`
	Action         Action        `json:"action"`
	PrevState      StateID       `json:"prev_state"`
	State          StateID       `json:"state"`
	Phase          Phase         `json:"discovery_phase,omitempty"`
	IsFinal        bool          `json:"is_final"`
	Collected      ExtractedData `json:"collected_data"`
	Missing        []Field       `json:"missing_data,omitempty"`
	Grounded       bool          `json:"grounded"`
	CostUSD        float64       `json:"cost_usd"`
}

// NewTurnResult assembles the result from the turn state.
func NewTurnResult(s *AppState) *TurnResult {
	return &TurnResult{
		ConversationID: s.ConversationID,
		Intent:         s.Classification.Intent,
		Confidence:     s.Classification.Confidence,
		Method:         s.Classification.Method,
		Action:         s.Step.Action,
		PrevState:      s.Step.PrevState,
		State:          s.Step.NextState,
		Phase:          s.Step.Phase,
		IsFinal:        s.Step.IsFinal,
		Collected:      s.Step.CollectedData,
		Missing:        s.Step.MissingData,
		Grounded:       s.Facts != "",
		CostUSD:        s.TotalCostUSD,
	}
}
