package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/graph/conversations"
	"github.com/Chative-core-poc-v1/salesbot/internal/agent/graph/prompts"
	"github.com/Chative-core-poc-v1/salesbot/internal/agent/knowledge"
	"github.com/Chative-core-poc-v1/salesbot/internal/agent/metrics"
	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/salesbot/pkg/logger"
)

const (
	NodeClassifier        = "Classifier"
	NodeStateMachine      = "StateMachine"
	NodeResponseAssembler = "ResponseAssembler"
	NodeResponseChatModel = "ResponseChatModel"
)

// NewClassifierPreHandler seeds the turn state from the input.
func NewClassifierPreHandler() func(context.Context, model.QueryInput, *model.AppState) (model.QueryInput, error) {
	return func(ctx context.Context, in model.QueryInput, s *model.AppState) (model.QueryInput, error) {
		s.ConversationID = in.ConversationID
		s.Query = in.Query
		s.TotalCostUSD = 0
		return in, nil
	}
}

func NewClassifierNode(mm *conversations.Manager) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.QueryInput) (model.Classification, error) {
		return mm.Classify(in.ConversationID, in.Query), nil
	})
}

func NewClassifierPostHandler(m *metrics.Metrics) func(context.Context, model.Classification, *model.AppState) (model.Classification, error) {
	return func(ctx context.Context, out model.Classification, s *model.AppState) (model.Classification, error) {
		s.Classification = out
		m.ObserveClassification(out)
		logx.Debug().
			Str("conversation_id", s.ConversationID).
			Str("intent", out.Intent.String()).
			Float64("confidence", out.Confidence).
			Str("method", string(out.Method)).
			Msg("Message classified")
		return out, nil
	}
}

func NewStateMachineNode(mm *conversations.Manager) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.Classification) (model.StepResult, error) {
		var id string
		if err := compose.ProcessState(ctx, func(_ context.Context, s *model.AppState) error {
			id = s.ConversationID
			return nil
		}); err != nil {
			return model.StepResult{}, fmt.Errorf("failed to access state: %w", err)
		}
		return mm.Process(id, in), nil
	})
}

func NewStateMachinePostHandler(m *metrics.Metrics) func(context.Context, model.StepResult, *model.AppState) (model.StepResult, error) {
	return func(ctx context.Context, out model.StepResult, s *model.AppState) (model.StepResult, error) {
		s.Step = out
		m.ObserveStep(out)
		logx.Debug().
			Str("conversation_id", s.ConversationID).
			Str("from", string(out.PrevState)).
			Str("to", string(out.NextState)).
			Str("action", string(out.Action)).
			Bool("is_final", out.IsFinal).
			Msg("Dialogue step")
		return out, nil
	}
}

// AssemblerConfig groups what the response assembler needs besides the
// conversation manager.
type AssemblerConfig struct {
	Retriever *knowledge.Retriever
	TopK      int
	Prompt    model.ResponsePromptConfig
	Metrics   *metrics.Metrics
}

// NewResponseAssemblerNode retrieves facts for the turn and renders the
// response context.
func NewResponseAssemblerNode(mm *conversations.Manager, cfg AssemblerConfig) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, step model.StepResult) ([]*schema.Message, error) {
		var (
			id, query string
			intent    model.Intent
		)
		err := compose.ProcessState(ctx, func(_ context.Context, s *model.AppState) error {
			id, query, intent = s.ConversationID, s.Query, s.Classification.Intent
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		facts := cfg.Retriever.Retrieve(ctx, query, intent, cfg.TopK)
		cfg.Metrics.ObserveRetrieval(facts)
		if err := compose.ProcessState(ctx, func(_ context.Context, s *model.AppState) error {
			s.Facts = facts
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		sys, err := prompts.RenderResponseSystem(ctx, cfg.Prompt, prompts.ResponseVars{
			Intent: intent,
			Step:   step,
			Facts:  facts,
		})
		if err != nil {
			return nil, fmt.Errorf("generate response prompt: %w", err)
		}

		messages, err := mm.BuildResponseContext(ctx, id, sys, query)
		if err != nil {
			return nil, fmt.Errorf("build response context: %w", err)
		}
		return messages, nil
	})
}

// NewResponseChatModelPostHandler prices the reply, stores the turn in the
// transcript and stamps the turn summary into Extra. A transcript failure
// fails the turn.
func NewResponseChatModelPostHandler(
	mm *conversations.Manager,
	modelName string,
	m *metrics.Metrics,
) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AppState) (*schema.Message, error) {
		if out == nil {
			return nil, fmt.Errorf("response model returned no message")
		}

		if cost := recordUsage(out, modelName, state); cost != nil {
			m.AddCost(cost.TotalCost)
			logx.Debug().
				Str("conversation_id", state.ConversationID).
				Str("model", modelName).
				Int("prompt_tokens", cost.PromptTokens).
				Int("completion_tokens", cost.CompletionTokens).
				Float64("total_cost_usd", cost.TotalCost).
				Msg("LLM usage")
		}

		if err := mm.SaveTurn(ctx, state.ConversationID, state.Query, out.Content); err != nil {
			logx.Error().
				Str("conversation_id", state.ConversationID).
				Err(err).
				Msg("Error saving turn")
			return nil, err
		}

		setExtra(out, ExtraTurn, model.NewTurnResult(state))
		return out, nil
	}
}
