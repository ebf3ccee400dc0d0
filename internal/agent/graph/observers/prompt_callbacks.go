package observers

import (
	"context"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/prompt"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"
	"github.com/rs/zerolog"
)

func newPromptHandler(logger zerolog.Logger) *callbackHelper.PromptCallbackHandler {
	return &callbackHelper.PromptCallbackHandler{
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *prompt.CallbackOutput) context.Context {
			if output != nil && len(output.Result) > 0 && output.Result[0] != nil {
				logger.Trace().Str("node", info.Name).Str("rendered", output.Result[0].Content).Msg("prompt rendered")
			}
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logger.Error().Err(err).Str("node", info.Name).Msg("prompt error")
			return ctx
		},
	}
}
