package usage

import (
	"strings"
)

// ModelPricing holds per-token USD rates for one model.
type ModelPricing struct {
	InputCostPerToken  float64
	OutputCostPerToken float64
}

var modelPricing = map[string]ModelPricing{
	"deepseek-chat": {
		InputCostPerToken:  2.7e-7,
		OutputCostPerToken: 1.1e-6,
	},
	"deepseek-reasoner": {
		InputCostPerToken:  5.5e-7,
		OutputCostPerToken: 2.19e-6,
	},
	"doubao-seed-1-8-251215": {
		InputCostPerToken:  1.1e-7,
		OutputCostPerToken: 1.1e-6,
	},
	"kimi-k2-turbo-preview": {
		InputCostPerToken:  1.15e-6,
		OutputCostPerToken: 8e-6,
	},
	"gpt-4o": {
		InputCostPerToken:  2.5e-6,
		OutputCostPerToken: 1e-5,
	},
	"gpt-4o-mini": {
		InputCostPerToken:  1.5e-7,
		OutputCostPerToken: 6e-7,
	},
	"gpt-4.1-mini": {
		InputCostPerToken:  4e-7,
		OutputCostPerToken: 1.6e-6,
	},
}

// normalizeModel strips provider prefixes and version suffixes so that
// routed ids like "openai/gpt-4o-mini" or dated snapshots resolve to a
// price table entry.
func normalizeModel(raw string) string {
	trimmed := strings.TrimSpace(raw)
	for _, prefix := range []string{"openai/", "deepseek/", "moonshotai/"} {
		trimmed = strings.TrimPrefix(trimmed, prefix)
	}
	if _, ok := modelPricing[trimmed]; ok {
		return trimmed
	}

	// Dated snapshot ids ("gpt-4o-2024-08-06") price as their base model.
	if idx := strings.LastIndex(trimmed, "-20"); idx > 0 {
		base := trimmed[:idx]
		if _, ok := modelPricing[base]; ok {
			return base
		}
	}

	return trimmed
}

// CostUSD returns the estimated cost of one call, or nil when the model is
// not in the price table. Callers must treat nil as unknown, not zero.
func CostUSD(model string, inputTokens, outputTokens int) *float64 {
	pricing, ok := modelPricing[normalizeModel(model)]
	if !ok {
		return nil
	}
	cost := float64(max(0, inputTokens))*pricing.InputCostPerToken +
		float64(max(0, outputTokens))*pricing.OutputCostPerToken
	return &cost
}
