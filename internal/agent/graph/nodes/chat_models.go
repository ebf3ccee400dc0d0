package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/salesbot/pkg/logger"
)

// NewGeminiClient builds the client shared by the response model and the
// knowledge embedder.
func NewGeminiClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions.BaseURL = baseURL
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}
	return client, nil
}

func NewResponseChatModel(ctx context.Context, client *genai.Client, cfg model.ResponseModelConfig) (*gemini.ChatModel, error) {
	gc := &gemini.Config{
		Client:      client,
		Model:       cfg.Model,
		Temperature: &cfg.Temperature,
		MaxTokens:   &cfg.MaxTokens,
	}
	if cfg.ThinkingBudget >= 0 {
		gc.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(cfg.ThinkingBudget)}
	}
	cm, err := gemini.NewChatModel(ctx, gc)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating response model")
		return nil, fmt.Errorf("error creating response model: %w", err)
	}
	return cm, nil
}
