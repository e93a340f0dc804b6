package models

// UsageMetrics is the aggregated token and cost accounting for one turn.
// CostUSD is nil when no priced model was seen; CostPartial is set when at
// least one model was missing from the price table, so the reported cost is
// a lower bound rather than silently wrong.
type UsageMetrics struct {
	Requests         int      `json:"requests"`
	PromptTokens     int      `json:"prompt_tokens"`
	CompletionTokens int      `json:"completion_tokens"`
	TotalTokens      int      `json:"total_tokens"`
	CostUSD          *float64 `json:"cost_usd,omitempty"`
	CostPartial      bool     `json:"cost_partial,omitempty"`
}
