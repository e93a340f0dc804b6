package calculate

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

const (
	ToolName        = "calculate"
	AgentName       = "Calculator"
	ToolDescription = "Evaluates an arithmetic expression with +, -, *, /, %, ^ and parentheses, e.g. \"25 * 4 + 10\". Returns the numeric result."
)

type Params struct {
	Expression string `json:"expression" jsonschema:"description=The arithmetic expression to evaluate."`
}

// NewTool builds the calculate tool.
func NewTool(ctx context.Context) (*schema.ToolInfo, tool.InvokableTool, error) {
	t, err := utils.InferTool(ToolName, ToolDescription, Invoke)
	if err != nil {
		return nil, nil, err
	}

	info, err := t.Info(ctx)
	if err != nil {
		return nil, nil, err
	}

	return info, t, nil
}

// Invoke evaluates the expression. Malformed expressions and division by
// zero are reported as descriptive text results so the model can recover.
func Invoke(_ context.Context, params *Params) (string, error) {
	if params == nil || strings.TrimSpace(params.Expression) == "" {
		return "", fmt.Errorf("expression must be provided")
	}

	result, err := Evaluate(params.Expression)
	if err != nil {
		return fmt.Sprintf("The expression %q could not be evaluated: %v.", params.Expression, err), nil
	}

	return fmt.Sprintf("%s = %s", strings.TrimSpace(params.Expression), FormatNumber(result)), nil
}
