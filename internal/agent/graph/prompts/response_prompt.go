package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
)

//go:embed template/response_prompt.txt
var coreSystemPrompt string

// ResponseVars is the dialogue position the response prompt is rendered for.
type ResponseVars struct {
	Intent model.Intent
	Step   model.StepResult
	Facts  string
}

// RenderResponseSystem renders the response system prompt through the eino
// prompt component so prompt callbacks fire.
func RenderResponseSystem(ctx context.Context, cfg model.ResponsePromptConfig, in ResponseVars) (string, error) {
	missing := make([]string, len(in.Step.MissingData))
	for i, f := range in.Step.MissingData {
		missing[i] = string(f)
	}

	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(coreSystemPrompt),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"BusinessName": cfg.BusinessName,
		"BotName":      cfg.BotName,
		"State":        string(in.Step.NextState),
		"Phase":        string(in.Step.Phase),
		"Goal":         in.Step.Goal,
		"Intent":       in.Intent.String(),
		"Action":       string(in.Step.Action),
		"Collected":    in.Step.CollectedData.AsMap(),
		"Missing":      strings.Join(missing, ", "),
		"Facts":        in.Facts,
		"IsFinal":      in.Step.IsFinal,
	})
	if err != nil {
		return "", fmt.Errorf("response prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("response prompt render: empty result")
	}
	return msgs[0].Content, nil
}
