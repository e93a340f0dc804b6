package correct

import (
	"context"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/StefanoGysin/voxy/internal/service/tools"
)

const (
	ToolName        = "correct_text"
	AgentName       = "Proofreader"
	ToolDescription = "Corrects spelling, grammar, and punctuation in a text while preserving its meaning and style. Returns the corrected text."
)

type Params struct {
	Text     string `json:"text" jsonschema:"description=The text to correct."`
	Language string `json:"language,omitempty" jsonschema:"description=The language of the text. Detected automatically when omitted."`
}

// NewTool builds the correct_text tool backed by the given model.
func NewTool(ctx context.Context, provider tools.ModelProvider, modelID string) (*schema.ToolInfo, tool.InvokableTool, error) {
	proofreader := &Proofreader{provider: provider, modelID: modelID}

	t, err := utils.InferTool(ToolName, ToolDescription, proofreader.Invoke)
	if err != nil {
		return nil, nil, err
	}

	info, err := t.Info(ctx)
	if err != nil {
		return nil, nil, err
	}

	return info, t, nil
}
