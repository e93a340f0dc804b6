package tools

import (
	"context"

	"github.com/cloudwego/eino/components/model"
)

// ModelProvider resolves a model id to a chat model client. LLM-backed
// tools depend on this narrow interface rather than the full registry.
type ModelProvider interface {
	ChatModel(ctx context.Context, modelID string) (model.ToolCallingChatModel, error)
}
