package knowledge

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/embedding"
	"google.golang.org/genai"
)

// GeminiEmbedder adapts the Gemini embedding endpoint to eino's Embedder.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

var _ embedding.Embedder = (*GeminiEmbedder)(nil)

func NewGeminiEmbedder(client *genai.Client, model string) *GeminiEmbedder {
	return &GeminiEmbedder{client: client, model: model}
}

func (g *GeminiEmbedder) EmbedStrings(ctx context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	resp, err := g.client.Models.EmbedContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}

	out := make([][]float64, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		v := make([]float64, len(e.Values))
		for j, x := range e.Values {
			v[j] = float64(x)
		}
		out[i] = v
	}
	return out, nil
}
