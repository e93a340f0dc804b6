package usage

import (
	"github.com/cloudwego/eino/schema"

	"github.com/StefanoGysin/voxy/internal/models"
)

// Aggregate sums token usage across a turn from two sources: usage metadata
// embedded in the turn's assistant messages and events captured by the
// turn's recorder. Message metadata is authoritative; an event whose token
// counts match an unconsumed message usage is the same call observed twice
// and is merged rather than added, which keeps aggregation idempotent.
// Events left over after matching are tool-internal calls and are added.
func Aggregate(messages []*schema.Message, events []Event) models.UsageMetrics {
	type call struct {
		model            string
		promptTokens     int
		completionTokens int
		totalTokens      int
	}

	var calls []call
	for _, msg := range messages {
		if msg == nil || msg.Role != schema.Assistant {
			continue
		}
		if msg.ResponseMeta == nil || msg.ResponseMeta.Usage == nil {
			continue
		}
		u := msg.ResponseMeta.Usage
		calls = append(calls, call{
			promptTokens:     u.PromptTokens,
			completionTokens: u.CompletionTokens,
			totalTokens:      u.TotalTokens,
		})
	}

	consumed := make([]bool, len(events))
	for i := range calls {
		for j, e := range events {
			if consumed[j] {
				continue
			}
			if e.PromptTokens == calls[i].promptTokens && e.CompletionTokens == calls[i].completionTokens {
				// Same call, observed by both sources. Keep the event's
				// model id for pricing; the counts already agree.
				calls[i].model = e.Model
				consumed[j] = true
				break
			}
		}
	}

	for j, e := range events {
		if consumed[j] {
			continue
		}
		total := e.TotalTokens
		if total == 0 {
			total = e.PromptTokens + e.CompletionTokens
		}
		calls = append(calls, call{
			model:            e.Model,
			promptTokens:     e.PromptTokens,
			completionTokens: e.CompletionTokens,
			totalTokens:      total,
		})
	}

	metrics := models.UsageMetrics{}
	var costUSD float64
	priced := false

	for _, c := range calls {
		metrics.Requests++
		metrics.PromptTokens += c.promptTokens
		metrics.CompletionTokens += c.completionTokens
		if c.totalTokens > 0 {
			metrics.TotalTokens += c.totalTokens
		} else {
			metrics.TotalTokens += c.promptTokens + c.completionTokens
		}

		if c.model == "" {
			metrics.CostPartial = true
			continue
		}
		cost := CostUSD(c.model, c.promptTokens, c.completionTokens)
		if cost == nil {
			metrics.CostPartial = true
			continue
		}
		costUSD += *cost
		priced = true
	}

	if priced {
		metrics.CostUSD = &costUSD
	}
	return metrics
}
