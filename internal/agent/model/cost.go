package model

import (
	"github.com/cloudwego/eino/schema"
)

// Pricing is the USD cost per 1M tokens.
type Pricing struct {
	InputPerM  float64
	OutputPerM float64
}

// Gemini text pricing, standard tier.
var defaultPricing = map[string]Pricing{
	"gemini-2.5-flash":      {InputPerM: 0.30, OutputPerM: 2.50},
	"gemini-2.5-flash-lite": {InputPerM: 0.10, OutputPerM: 0.40},
	"gemini-2.0-flash":      {InputPerM: 0.10, OutputPerM: 0.40},
}

// ResolvePricing returns the pricing of model, zero when unknown.
func ResolvePricing(model string) Pricing {
	return defaultPricing[model]
}

// UsageCost is the priced token usage of one model call.
type UsageCost struct {
	Model            string  `json:"model"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	InputCost        float64 `json:"input_cost"`
	OutputCost       float64 `json:"output_cost"`
	TotalCost        float64 `json:"total_cost"`
}

// ComputeCost prices usage. It returns nil when usage is nil.
func ComputeCost(model string, usage *schema.TokenUsage) *UsageCost {
	if usage == nil {
		return nil
	}
	p := ResolvePricing(model)
	in := p.InputPerM * float64(usage.PromptTokens) / 1_000_000.0
	out := p.OutputPerM * float64(usage.CompletionTokens) / 1_000_000.0
	return &UsageCost{
		Model:            model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
		InputCost:        in,
		OutputCost:       out,
		TotalCost:        in + out,
	}
}
