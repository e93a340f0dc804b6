package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/StefanoGysin/voxy/internal/service/tools"
	"github.com/StefanoGysin/voxy/internal/service/usage"
)

const systemPrompt = "You are a precise translator. Translate the user's text into the requested language. Preserve tone, register, and formatting. Reply with the translation only, no commentary."

// Translator performs translations with a dedicated LLM call. Its token
// usage never surfaces into the conversation, so it reports through the
// turn's usage recorder.
type Translator struct {
	provider tools.ModelProvider
	modelID  string
}

func (t *Translator) Invoke(ctx context.Context, params *Params) (string, error) {
	if params == nil || strings.TrimSpace(params.Text) == "" {
		return "", fmt.Errorf("text must be provided")
	}
	if strings.TrimSpace(params.TargetLanguage) == "" {
		return "", fmt.Errorf("target language must be provided")
	}

	var request strings.Builder
	fmt.Fprintf(&request, "Target language: %s\n", params.TargetLanguage)
	if params.SourceLanguage != "" {
		fmt.Fprintf(&request, "Source language: %s\n", params.SourceLanguage)
	}
	fmt.Fprintf(&request, "Text:\n%s", params.Text)

	chatModel, err := t.provider.ChatModel(ctx, t.modelID)
	if err != nil {
		return "", err
	}

	response, err := chatModel.Generate(ctx, []*schema.Message{
		{Role: schema.System, Content: systemPrompt},
		{Role: schema.User, Content: request.String()},
	})
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}

	if response.ResponseMeta != nil && response.ResponseMeta.Usage != nil {
		u := response.ResponseMeta.Usage
		usage.Emit(ctx, usage.Event{
			Model:            t.modelID,
			Source:           ToolName,
			PromptTokens:     u.PromptTokens,
			CompletionTokens: u.CompletionTokens,
			TotalTokens:      u.TotalTokens,
		})
	}

	if strings.TrimSpace(response.Content) == "" {
		return "No translation was produced for the given text.", nil
	}
	return response.Content, nil
}
