package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/StefanoGysin/voxy/internal/models"
	"github.com/StefanoGysin/voxy/internal/service/tools"
	"github.com/StefanoGysin/voxy/internal/service/tools/vision"
	"github.com/StefanoGysin/voxy/internal/service/usage"
)

const conversationalUsageSource = "conversationalize"

// DirectPath handles turns with an explicitly supplied image: one vision
// tool call with no supervisor reasoning overhead, followed by a cheap
// rewrite pass that turns the technical analysis into a conversational
// reply. The rewrite is best-effort; the analysis itself is not.
type DirectPath struct {
	dispatcher          *tools.Dispatcher
	provider            tools.ModelProvider
	conversationalModel string
	visionModel         string
	requestTimeout      time.Duration
	logger              *slog.Logger
}

func NewDirectPath(dispatcher *tools.Dispatcher, provider tools.ModelProvider, visionModel, conversationalModel string, requestTimeout time.Duration, logger *slog.Logger) *DirectPath {
	return &DirectPath{
		dispatcher:          dispatcher,
		provider:            provider,
		conversationalModel: conversationalModel,
		visionModel:         visionModel,
		requestTimeout:      requestTimeout,
		logger:              logger,
	}
}

// Run invokes the vision tool exactly once and returns the assistant
// message to append to the thread. Vision failure is fatal for the turn:
// the supervisor needs the same capability and would not recover it
// differently.
func (d *DirectPath) Run(ctx context.Context, imageURL, query string, turnCtx *models.Context) (*schema.Message, error) {
	arguments, err := json.Marshal(vision.Params{ImageURL: imageURL, Query: query})
	if err != nil {
		return nil, models.NewToolError(vision.ToolName, err)
	}

	analysis, err := d.dispatcher.Dispatch(ctx, vision.ToolName, string(arguments))
	if err != nil {
		return nil, models.NewToolError(vision.ToolName, err)
	}

	turnCtx.ToolsUsed = append(turnCtx.ToolsUsed, vision.ToolName)
	turnCtx.Vision = &models.VisionAnalysis{
		ImageURL: imageURL,
		Analysis: analysis,
		Model:    d.visionModel,
	}

	reply, err := d.conversationalize(ctx, query, analysis)
	if err != nil {
		// Degrade to the raw analysis rather than failing the turn.
		d.logger.Warn("conversationalization failed, returning raw analysis", "error", err)
		return &schema.Message{Role: schema.Assistant, Content: analysis}, nil
	}
	return reply, nil
}

// conversationalize rewrites the precise-but-technical analysis into a
// natural reply with a second, cheaper model call. The returned message
// keeps its usage metadata so the aggregator sees it as authoritative.
func (d *DirectPath) conversationalize(ctx context.Context, query, analysis string) (*schema.Message, error) {
	callCtx := ctx
	if d.requestTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.requestTimeout)
		defer cancel()
	}

	chatModel, err := d.provider.ChatModel(callCtx, d.conversationalModel)
	if err != nil {
		return nil, err
	}

	var request strings.Builder
	if strings.TrimSpace(query) != "" {
		fmt.Fprintf(&request, "The user asked: %s\n\n", query)
	}
	fmt.Fprintf(&request, "Technical image analysis:\n%s", analysis)

	response, err := chatModel.Generate(callCtx, []*schema.Message{
		{Role: schema.System, Content: conversationalPrompt()},
		{Role: schema.User, Content: request.String()},
	})
	if err != nil {
		return nil, err
	}

	if response.ResponseMeta != nil && response.ResponseMeta.Usage != nil {
		u := response.ResponseMeta.Usage
		usage.Emit(ctx, usage.Event{
			Model:            d.conversationalModel,
			Source:           conversationalUsageSource,
			PromptTokens:     u.PromptTokens,
			CompletionTokens: u.CompletionTokens,
			TotalTokens:      u.TotalTokens,
		})
	}

	if strings.TrimSpace(response.Content) == "" {
		return nil, fmt.Errorf("conversationalization returned empty content")
	}
	return response, nil
}
