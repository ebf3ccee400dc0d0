package model

// Intent is the classified purpose of a user message. The vocabulary is
// open-ended: the lexicon tables may introduce labels not listed here.
type Intent string

const (
	IntentGreeting             Intent = "greeting"
	IntentFarewell             Intent = "farewell"
	IntentGratitude            Intent = "gratitude"
	IntentSmallTalk            Intent = "small_talk"
	IntentPriceQuestion        Intent = "price_question"
	IntentPricingDetails       Intent = "pricing_details"
	IntentQuestionFeatures     Intent = "question_features"
	IntentQuestionIntegrations Intent = "question_integrations"
	IntentComparison           Intent = "comparison"
	IntentObjectionPrice       Intent = "objection_price"
	IntentObjectionNoTime      Intent = "objection_no_time"
	IntentObjectionThink       Intent = "objection_think"
	IntentObjectionCompetitor  Intent = "objection_competitor"
	IntentAgreement            Intent = "agreement"
	IntentRejection            Intent = "rejection"
	IntentDemoRequest          Intent = "demo_request"
	IntentCallbackRequest      Intent = "callback_request"
	IntentConsultationRequest  Intent = "consultation_request"
	IntentInfoProvided         Intent = "info_provided"
	IntentContactProvided      Intent = "contact_provided"

	// discovery-phase progress
	IntentSituationProvided       Intent = "situation_provided"
	IntentProblemRevealed         Intent = "problem_revealed"
	IntentNoProblem               Intent = "no_problem"
	IntentImplicationAcknowledged Intent = "implication_acknowledged"
	IntentNeedExpressed           Intent = "need_expressed"

	IntentUnclear Intent = "unclear"
)

func (i Intent) String() string {
	return string(i)
}

// Method names the pipeline stage that resolved a classification.
type Method string

const (
	MethodContext Method = "context"
	MethodData    Method = "data"
	MethodPattern Method = "pattern"
	MethodRoot    Method = "root"
	MethodLemma   Method = "lemma"
)

// Classification is the outcome of one classify call. Confidence is advisory
// and only used for fallback routing.
type Classification struct {
	Intent        Intent             `json:"intent"`
	Confidence    float64            `json:"confidence"`
	ExtractedData ExtractedData      `json:"extracted_data"`
	Method        Method             `json:"method"`
	Scores        map[Intent]float64 `json:"scores,omitempty"`
}

// ClassifyContext is the caller-supplied dialogue context used to resolve
// short or ambiguous replies.
type ClassifyContext struct {
	LastBotIntent string        `json:"last_bot_intent,omitempty"`
	Phase         Phase         `json:"discovery_phase,omitempty"`
	MissingData   []Field       `json:"missing_data,omitempty"`
	CollectedData ExtractedData `json:"collected_data,omitempty"`
}

// Missing reports whether f is listed as pending in the context.
func (c ClassifyContext) Missing(f Field) bool {
	for _, m := range c.MissingData {
		if m == f {
			return true
		}
	}
	return false
}
