package vision

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/StefanoGysin/voxy/internal/service/tools"
	"github.com/StefanoGysin/voxy/internal/service/usage"
)

const systemPrompt = "You are an image analysis specialist. Describe what the image shows with precision: subjects, composition, text, notable details. Answer the user's question about the image when one is given. Be factual and structured."

const defaultQuery = "Describe this image in detail."

// Analyzer answers questions about images with a multimodal LLM call. The
// analysis prompt is tuned for precision; the conversational rewrite is a
// separate concern handled by the caller.
type Analyzer struct {
	provider tools.ModelProvider
	modelID  string
}

func (a *Analyzer) Invoke(ctx context.Context, params *Params) (string, error) {
	if params == nil || strings.TrimSpace(params.ImageURL) == "" {
		return "", fmt.Errorf("image url must be provided")
	}

	query := strings.TrimSpace(params.Query)
	if query == "" {
		query = defaultQuery
	}

	chatModel, err := a.provider.ChatModel(ctx, a.modelID)
	if err != nil {
		return "", err
	}

	response, err := chatModel.Generate(ctx, []*schema.Message{
		{Role: schema.System, Content: systemPrompt},
		{
			Role: schema.User,
			MultiContent: []schema.ChatMessagePart{
				{Type: schema.ChatMessagePartTypeText, Text: query},
				{
					Type: schema.ChatMessagePartTypeImageURL,
					ImageURL: &schema.ChatMessageImageURL{
						URL: params.ImageURL,
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("image analysis failed: %w", err)
	}

	if response.ResponseMeta != nil && response.ResponseMeta.Usage != nil {
		u := response.ResponseMeta.Usage
		usage.Emit(ctx, usage.Event{
			Model:            a.modelID,
			Source:           ToolName,
			PromptTokens:     u.PromptTokens,
			CompletionTokens: u.CompletionTokens,
			TotalTokens:      u.TotalTokens,
		})
	}

	if strings.TrimSpace(response.Content) == "" {
		return "The image could not be analyzed: the model returned no description.", nil
	}
	return response.Content, nil
}
