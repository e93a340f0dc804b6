package correct

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/StefanoGysin/voxy/internal/service/tools"
	"github.com/StefanoGysin/voxy/internal/service/usage"
)

const systemPrompt = "You are a meticulous proofreader. Correct spelling, grammar, and punctuation in the user's text. Keep the meaning, tone, and formatting intact. Reply with the corrected text only."

// Proofreader corrects text with a dedicated LLM call and reports its token
// usage through the turn's recorder.
type Proofreader struct {
	provider tools.ModelProvider
	modelID  string
}

func (p *Proofreader) Invoke(ctx context.Context, params *Params) (string, error) {
	if params == nil || strings.TrimSpace(params.Text) == "" {
		return "", fmt.Errorf("text must be provided")
	}

	var request strings.Builder
	if params.Language != "" {
		fmt.Fprintf(&request, "Language: %s\n", params.Language)
	}
	fmt.Fprintf(&request, "Text:\n%s", params.Text)

	chatModel, err := p.provider.ChatModel(ctx, p.modelID)
	if err != nil {
		return "", err
	}

	response, err := chatModel.Generate(ctx, []*schema.Message{
		{Role: schema.System, Content: systemPrompt},
		{Role: schema.User, Content: request.String()},
	})
	if err != nil {
		return "", fmt.Errorf("correction failed: %w", err)
	}

	if response.ResponseMeta != nil && response.ResponseMeta.Usage != nil {
		u := response.ResponseMeta.Usage
		usage.Emit(ctx, usage.Event{
			Model:            p.modelID,
			Source:           ToolName,
			PromptTokens:     u.PromptTokens,
			CompletionTokens: u.CompletionTokens,
			TotalTokens:      u.TotalTokens,
		})
	}

	if strings.TrimSpace(response.Content) == "" {
		return "No corrections were produced for the given text.", nil
	}
	return response.Content, nil
}
