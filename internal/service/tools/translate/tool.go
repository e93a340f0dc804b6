package translate

import (
	"context"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/StefanoGysin/voxy/internal/service/tools"
)

const (
	ToolName        = "translate_text"
	AgentName       = "Translator"
	ToolDescription = "Translates text between languages. Provide the text and the target language; the source language is detected automatically when omitted."
)

type Params struct {
	Text           string `json:"text" jsonschema:"description=The text to translate."`
	TargetLanguage string `json:"target_language" jsonschema:"description=The language to translate into, e.g. Portuguese."`
	SourceLanguage string `json:"source_language,omitempty" jsonschema:"description=The source language. Detected automatically when omitted."`
}

// NewTool builds the translate_text tool backed by the given model.
func NewTool(ctx context.Context, provider tools.ModelProvider, modelID string) (*schema.ToolInfo, tool.InvokableTool, error) {
	translator := &Translator{provider: provider, modelID: modelID}

	t, err := utils.InferTool(ToolName, ToolDescription, translator.Invoke)
	if err != nil {
		return nil, nil, err
	}

	info, err := t.Info(ctx)
	if err != nil {
		return nil, nil, err
	}

	return info, t, nil
}
