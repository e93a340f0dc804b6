package weather

import (
	"context"
	"net/http"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

const (
	ToolName        = "get_weather"
	AgentName       = "Weather"
	ToolDescription = "Fetches the current weather for a location. Provide a city name, optionally with a country, e.g. \"Lisbon\" or \"Porto, Portugal\"."
)

type Params struct {
	Location string `json:"location" jsonschema:"description=The city to fetch weather for, optionally with a country."`
}

// NewTool builds the get_weather tool against the given wttr.in-compatible
// endpoint.
func NewTool(ctx context.Context, baseURL string, timeout time.Duration) (*schema.ToolInfo, tool.InvokableTool, error) {
	client := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}

	t, err := utils.InferTool(ToolName, ToolDescription, client.Invoke)
	if err != nil {
		return nil, nil, err
	}

	info, err := t.Info(ctx)
	if err != nil {
		return nil, nil, err
	}

	return info, t, nil
}
