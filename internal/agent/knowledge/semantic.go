package knowledge

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/embedding"
)

// DefaultSimilarityFloor is the cosine similarity a section must exceed.
const DefaultSimilarityFloor = 0.4

// SemanticIndex holds one embedding per section. Sections are embedded
// once, on first use or on Warm, whichever comes first.
type SemanticIndex struct {
	embedder embedding.Embedder
	base     *Base
	floor    float64

	once    sync.Once
	vectors [][]float64
	err     error
}

func NewSemanticIndex(e embedding.Embedder, base *Base, floor float64) *SemanticIndex {
	if floor <= 0 {
		floor = DefaultSimilarityFloor
	}
	return &SemanticIndex{embedder: e, base: base, floor: floor}
}

// Warm embeds the knowledge base. A failure is remembered and returned by
// every later search.
func (s *SemanticIndex) Warm(ctx context.Context) error {
	s.once.Do(func() {
		texts := make([]string, s.base.Len())
		for i := range texts {
			sec := s.base.Section(i)
			texts[i] = sec.Topic + ": " + strings.Join(sec.Keywords, ", ") + "\n" + sec.Facts
		}
		vectors, err := s.embedder.EmbedStrings(ctx, texts)
		if err != nil {
			s.err = fmt.Errorf("embed knowledge base: %w", err)
			return
		}
		if len(vectors) != len(texts) {
			s.err = fmt.Errorf("embed knowledge base: got %d vectors for %d sections", len(vectors), len(texts))
			return
		}
		s.vectors = vectors
	})
	return s.err
}

// Search scores candidates by cosine similarity to message and keeps those
// above the floor. Ranking and truncation are left to the caller.
func (s *SemanticIndex) Search(ctx context.Context, message string, candidates []int) ([]Match, error) {
	if err := s.Warm(ctx); err != nil {
		return nil, err
	}
	q, err := s.embedder.EmbedStrings(ctx, []string{message})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(q) != 1 {
		return nil, errors.New("embed query: no vector returned")
	}

	var out []Match
	for _, i := range candidates {
		if sim := cosine(q[0], s.vectors[i]); sim > s.floor {
			out = append(out, Match{Section: s.base.Section(i), Score: sim})
		}
	}
	return out, nil
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
