package model

// ================ Config ================
type ConversationConfig struct {
	// TTL bounds both the stored transcript and the in-memory session.
	TTL string `envconfig:"CONVERSATION_TTL" default:"30m"`
	// HistoryTurns counts user/assistant pairs sent to the response model.
	HistoryTurns int `envconfig:"CONVERSATION_HISTORY_TURNS" default:"6"`
	MaxRunSteps  int    `envconfig:"CONVERSATION_MAX_RUN_STEPS" default:"10"`
}

type ClassifierConfig struct {
	HighConfidence   float64 `envconfig:"CLASSIFIER_HIGH_CONFIDENCE" default:"0.7"`
	MinConfidence    float64 `envconfig:"CLASSIFIER_MIN_CONFIDENCE" default:"0.3"`
	RootWeight       float64 `envconfig:"CLASSIFIER_ROOT_WEIGHT" default:"1.5"`
	LemmaWeight      float64 `envconfig:"CLASSIFIER_LEMMA_WEIGHT" default:"1.0"`
	ShortAnswerWords int     `envconfig:"CLASSIFIER_SHORT_ANSWER_WORDS" default:"3"`
	// Lemmatizer selects the morphological strategy: "snowball" or "none".
	Lemmatizer string `envconfig:"CLASSIFIER_LEMMATIZER" default:"snowball"`
}

// DefaultClassifierConfig mirrors the envconfig defaults for callers that
// build a classifier without the environment.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		HighConfidence:   0.7,
		MinConfidence:    0.3,
		RootWeight:       1.5,
		LemmaWeight:      1.0,
		ShortAnswerWords: 3,
		Lemmatizer:       "snowball",
	}
}

type RetrieverConfig struct {
	TopK            int     `envconfig:"RETRIEVER_TOP_K" default:"2"`
	Semantic        bool    `envconfig:"RETRIEVER_SEMANTIC" default:"false"`
	SimilarityFloor float64 `envconfig:"RETRIEVER_SIMILARITY_FLOOR" default:"0.4"`
	EmbeddingModel  string  `envconfig:"RETRIEVER_EMBEDDING_MODEL" default:"text-embedding-004"`
}

type ResponseModelConfig struct {
	Model       string  `envconfig:"RESPONSE_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"RESPONSE_MAX_TOKENS" default:"1024"`
	Temperature float32 `envconfig:"RESPONSE_TEMPERATURE" default:"0.4"`
	// 0 disables thinking; a negative budget keeps the model default.
	ThinkingBudget int32 `envconfig:"RESPONSE_THINKING_BUDGET" default:"0"`
}

type ResponsePromptConfig struct {
	BusinessName string `envconfig:"PROMPT_BUSINESS_NAME" default:"Kassir Cloud"`
	BotName      string `envconfig:"PROMPT_BOT_NAME" default:"Алия"`
}
