// Package nlu classifies free-text customer messages into intents and
// extracts structured data from them.
package nlu

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/catalog"
	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/salesbot/internal/core/error"
	logx "github.com/Chative-core-poc-v1/salesbot/pkg/logger"
)

const (
	dataConfidence          = 0.95
	priorityConfidence      = 0.9
	clarificationConfidence = 0.85
)

// Classifier is the hybrid classifier. It is safe for concurrent use; all
// tables are read-only after construction.
type Classifier struct {
	normalizer *Normalizer
	root       *RootClassifier
	lemma      *LemmaClassifier
	extractor  *Extractor
	context    *contextResolver
	clarify    *clarification
	priority   []priorityFamily

	cfg    model.ClassifierConfig
	logger zerolog.Logger
}

type options struct {
	lemmatizer Lemmatizer
	logger     *zerolog.Logger
}

type Option func(*options)

// WithLemmatizer overrides the strategy named in the config.
func WithLemmatizer(l Lemmatizer) Option {
	return func(o *options) { o.lemmatizer = l }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = &l }
}

func NewClassifier(lex *catalog.Lexicon, cfg model.ClassifierConfig, opts ...Option) (*Classifier, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var problems []error
	if o.lemmatizer == nil {
		lem, err := NewLemmatizer(cfg.Lemmatizer)
		if err != nil {
			problems = append(problems, err)
			lem = NopLemmatizer{}
		}
		o.lemmatizer = lem
	}

	normalizer, err := NewNormalizer(lex.Normalizer)
	if err != nil {
		problems = append(problems, err)
	}
	priority, errs := compilePriority(lex.Priority)
	problems = append(problems, errs...)
	clarify, errs := compileClarification(lex.Clarification)
	problems = append(problems, errs...)

	if err := errx.WrapConfig(catalog.LexiconFile, problems...); err != nil {
		return nil, err
	}

	logger := logx.Component("nlu")
	if o.logger != nil {
		logger = *o.logger
	}

	return &Classifier{
		normalizer: normalizer,
		root:       NewRootClassifier(lex.Roots, cfg.RootWeight),
		lemma:      NewLemmaClassifier(lex.Phrases, o.lemmatizer, cfg.LemmaWeight),
		extractor:  NewExtractor(cfg.ShortAnswerWords),
		context:    newContextResolver(lex.Context),
		clarify:    clarify,
		priority:   priority,
		cfg:        cfg,
		logger:     logger,
	}, nil
}

// Classify never fails: empty or unrecognised input yields IntentUnclear.
func (c *Classifier) Classify(message string, ctx model.ClassifyContext) model.Classification {
	res := c.classify(message, ctx)
	c.logger.Debug().
		Str("intent", res.Intent.String()).
		Str("method", string(res.Method)).
		Float64("confidence", res.Confidence).
		Msg("message classified")
	return res
}

func (c *Classifier) classify(message string, ctx model.ClassifyContext) model.Classification {
	normalized := c.normalizer.Normalize(message)
	lower := strings.ToLower(strings.TrimSpace(normalized))
	ws := words(lower)

	data := c.extractor.Extract(message, ctx)
	result := func(intent model.Intent, confidence float64, method model.Method, scores map[model.Intent]float64) model.Classification {
		return model.Classification{
			Intent:        intent,
			Confidence:    confidence,
			ExtractedData: data,
			Method:        method,
			Scores:        scores,
		}
	}

	if len(ws) > 0 && len(ws) <= c.cfg.ShortAnswerWords {
		if intent, conf, ok := c.context.resolve(ws, ctx); ok {
			return result(intent, conf, model.MethodContext, nil)
		}
	}

	if c.clarify.matches(lower) {
		return result(model.IntentAgreement, clarificationConfidence, model.MethodPattern, nil)
	}

	if intent, ok := dataIntent(data, ctx.Phase); ok {
		return result(intent, dataConfidence, model.MethodData, nil)
	}

	for _, f := range c.priority {
		if f.match(lower) {
			return result(f.intent, priorityConfidence, model.MethodPattern, nil)
		}
	}

	root := c.root.Classify(lower)
	if root.Confidence >= c.cfg.HighConfidence {
		return result(root.Intent, root.Confidence, model.MethodRoot, root.Scores)
	}

	lemma := c.lemma.Classify(lower)
	if lemma.Confidence > root.Confidence {
		return result(lemma.Intent, lemma.Confidence, model.MethodLemma, lemma.Scores)
	}

	if root.Confidence < c.cfg.MinConfidence {
		return result(model.IntentUnclear, root.Confidence, model.MethodRoot, root.Scores)
	}
	return result(root.Intent, root.Confidence, model.MethodRoot, root.Scores)
}

// dataIntent maps extracted data to an intent. Inside a discovery phase the
// phase's own data yields the phase-progress intent.
func dataIntent(d model.ExtractedData, phase model.Phase) (model.Intent, bool) {
	switch phase {
	case model.PhaseSituation:
		if d.CompanySize > 0 || d.CurrentTools != "" || d.BusinessType != "" {
			return model.IntentSituationProvided, true
		}
	case model.PhaseProblem:
		if d.PainPoint != "" {
			return model.IntentProblemRevealed, true
		}
	case model.PhaseImplication:
		if d.PainImpact != "" {
			return model.IntentImplicationAcknowledged, true
		}
	case model.PhaseNeedPayoff:
		if d.DesiredOutcome != "" || d.ValueAcknowledged {
			return model.IntentNeedExpressed, true
		}
	}

	switch {
	case d.CompanySize > 0 || d.PainPoint != "":
		return model.IntentInfoProvided, true
	case d.ContactInfo != "":
		return model.IntentContactProvided, true
	}
	return "", false
}
