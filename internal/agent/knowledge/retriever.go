package knowledge

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/salesbot/pkg/logger"
)

// Separator joins the fact blocks of a retrieval result.
const Separator = "\n\n---\n\n"

// Match is one scored section.
type Match struct {
	Section model.KnowledgeSection
	Score   float64
}

type Retriever struct {
	base     *Base
	semantic *SemanticIndex
	logger   zerolog.Logger
}

type Option func(*Retriever)

// WithSemantic enables the embedding fallback used when no keyword hits.
func WithSemantic(idx *SemanticIndex) Option {
	return func(r *Retriever) { r.semantic = idx }
}

func WithLogger(l zerolog.Logger) Option {
	return func(r *Retriever) { r.logger = l }
}

func NewRetriever(base *Base, opts ...Option) *Retriever {
	r := &Retriever{base: base, logger: logx.Component("knowledge")}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve returns the facts of the topK best sections for message joined
// by Separator, or "" when nothing is relevant.
func (r *Retriever) Retrieve(ctx context.Context, message string, intent model.Intent, topK int) string {
	matches := r.Search(ctx, message, intent, topK)
	if len(matches) == 0 {
		return ""
	}
	facts := make([]string, len(matches))
	for i, m := range matches {
		facts[i] = m.Section.Facts
	}
	return strings.Join(facts, Separator)
}

// Search ranks the candidate sections for intent by score, then priority.
// Sections scoring zero are never returned.
func (r *Retriever) Search(ctx context.Context, message string, intent model.Intent, topK int) []Match {
	if topK <= 0 {
		return nil
	}
	candidates := r.base.candidates(intent)
	if len(candidates) == 0 {
		return nil
	}

	lowered := strings.ToLower(message)
	var matches []Match
	for _, i := range candidates {
		s := r.base.Section(i)
		if score := keywordScore(lowered, s.Keywords); score > 0 {
			matches = append(matches, Match{Section: s, Score: score})
		}
	}

	if len(matches) == 0 && r.semantic != nil {
		var err error
		matches, err = r.semantic.Search(ctx, message, candidates)
		if err != nil {
			// retrieval degrades to no facts
			r.logger.Warn().Err(err).Str("intent", intent.String()).Msg("semantic fallback failed")
			return nil
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Section.Priority > matches[j].Section.Priority
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}

	r.logger.Debug().
		Str("intent", intent.String()).
		Int("candidates", len(candidates)).
		Int("matches", len(matches)).
		Msg("knowledge search")
	return matches
}
