package nodes

import (
	"github.com/cloudwego/eino/schema"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
)

// ExtraTurn is the Extra key of the final message carrying *model.TurnResult.
const ExtraTurn = "turn"

// ExtraUsageCost is the Extra key carrying *model.UsageCost.
const ExtraUsageCost = "usage_cost"

func setExtra(msg *schema.Message, key string, v any) {
	if msg.Extra == nil {
		msg.Extra = map[string]any{}
	}
	msg.Extra[key] = v
}

// recordUsage prices the message's token usage into state and Extra.
func recordUsage(out *schema.Message, modelName string, state *model.AppState) *model.UsageCost {
	if out.ResponseMeta == nil {
		return nil
	}
	cost := model.ComputeCost(modelName, out.ResponseMeta.Usage)
	if cost == nil {
		return nil
	}
	state.TotalCostUSD += cost.TotalCost
	setExtra(out, ExtraUsageCost, cost)
	return cost
}
