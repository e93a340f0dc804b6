package vision

import (
	"context"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/StefanoGysin/voxy/internal/service/tools"
)

const (
	ToolName        = "analyze_image"
	AgentName       = "Vision"
	ToolDescription = "Analyzes an image from a URL and answers a question about it. Provide the image URL and, optionally, what to look for."
)

type Params struct {
	ImageURL string `json:"image_url" jsonschema:"description=The URL of the image to analyze."`
	Query    string `json:"query,omitempty" jsonschema:"description=What to look for or answer about the image."`
}

// NewTool builds the analyze_image tool backed by a multimodal model.
func NewTool(ctx context.Context, provider tools.ModelProvider, modelID string) (*schema.ToolInfo, tool.InvokableTool, error) {
	analyzer := &Analyzer{provider: provider, modelID: modelID}

	t, err := utils.InferTool(ToolName, ToolDescription, analyzer.Invoke)
	if err != nil {
		return nil, nil, err
	}

	info, err := t.Info(ctx)
	if err != nil {
		return nil, nil, err
	}

	return info, t, nil
}
