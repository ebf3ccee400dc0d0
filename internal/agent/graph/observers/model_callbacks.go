package observers

import (
	"context"
	"strings"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"
	"github.com/rs/zerolog"
)

// newModelHandler logs the user message and reply around model calls.
func newModelHandler(logger zerolog.Logger) *callbackHelper.ModelCallbackHandler {
	return &callbackHelper.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *model.CallbackInput) context.Context {
			ev := logger.Debug().Str("node", info.Name).Str("type", info.Type)
			if input != nil {
				ev = ev.Int("messages", len(input.Messages)).Str("user", lastUserContent(input.Messages))
			}
			ev.Msg("model start")
			return ctx
		},
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *model.CallbackOutput) context.Context {
			ev := logger.Debug().Str("node", info.Name)
			if output != nil && output.Message != nil {
				ev = ev.Str("assistant", strings.TrimSpace(output.Message.Content))
			}
			if output != nil && output.TokenUsage != nil {
				ev = ev.Int("total_tokens", output.TokenUsage.TotalTokens)
			}
			ev.Msg("model end")
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logger.Error().Err(err).Str("node", info.Name).Msg("model error")
			return ctx
		},
	}
}

func lastUserContent(msgs []*schema.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if m := msgs[i]; m != nil && m.Role == schema.User {
			return strings.TrimSpace(m.Content)
		}
	}
	return ""
}
