package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/StefanoGysin/voxy/internal/models"
	"github.com/StefanoGysin/voxy/internal/service/tools"
	"github.com/StefanoGysin/voxy/internal/service/usage"
)

const routerUsageSource = "router"

// Supervisor runs the bounded tool-calling loop: the router model proposes
// tool calls, the dispatcher executes them, results are appended, and the
// cycle repeats until the model produces a final answer or the step budget
// runs out.
type Supervisor struct {
	provider       tools.ModelProvider
	modelID        string
	systemPrompt   string
	toolInfos      []*schema.ToolInfo
	dispatcher     *tools.Dispatcher
	maxIterations  int
	requestTimeout time.Duration
	logger         *slog.Logger
}

func NewSupervisor(provider tools.ModelProvider, modelID, systemPrompt string, toolInfos []*schema.ToolInfo, dispatcher *tools.Dispatcher, maxIterations int, requestTimeout time.Duration, logger *slog.Logger) *Supervisor {
	return &Supervisor{
		provider:       provider,
		modelID:        modelID,
		systemPrompt:   systemPrompt,
		toolInfos:      toolInfos,
		dispatcher:     dispatcher,
		maxIterations:  maxIterations,
		requestTimeout: requestTimeout,
		logger:         logger,
	}
}

// turnResult carries the messages a turn produced. Only complete rounds are
// included: an assistant message with tool calls is always followed by all
// of its tool results, so a persisted checkpoint never contains a dangling
// unresolved tool call.
type turnResult struct {
	messages   []*schema.Message
	timestamps []int64
	finalText  string
	incomplete bool
}

// Run executes the loop over the prior thread history plus the new user
// message. The system prompt is prepended at runtime and never persisted.
func (s *Supervisor) Run(ctx context.Context, history []*schema.Message, userMessage *schema.Message, turnCtx *models.Context) (*turnResult, error) {
	working := make([]*schema.Message, 0, len(history)+8)
	if s.systemPrompt != "" {
		working = append(working, &schema.Message{Role: schema.System, Content: s.systemPrompt})
	}
	working = append(working, history...)
	working = append(working, userMessage)

	result := &turnResult{
		messages:   []*schema.Message{userMessage},
		timestamps: []int64{time.Now().UnixMilli()},
	}

	lastText := ""
	for iteration := 0; iteration < s.maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return nil, models.NewProviderError(true, "turn cancelled", err)
		}

		response, err := s.generate(ctx, working)
		if err != nil {
			return nil, classifyProviderError(err)
		}
		s.emitRouterUsage(ctx, response)

		if response.Content != "" {
			lastText = response.Content
		}

		if len(response.ToolCalls) == 0 {
			content := response.Content
			if content == "" {
				content = "Sorry, I couldn't generate a meaningful response."
			}
			result.messages = append(result.messages, response)
			result.timestamps = append(result.timestamps, time.Now().UnixMilli())
			result.finalText = content
			return result, nil
		}

		toolMessages, err := s.executeToolCalls(ctx, response.ToolCalls, turnCtx)
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			// Discard the in-progress round; nothing from it is committed.
			return nil, models.NewProviderError(true, "turn cancelled", err)
		}

		now := time.Now().UnixMilli()
		working = append(working, response)
		result.messages = append(result.messages, response)
		result.timestamps = append(result.timestamps, now)
		for _, toolMessage := range toolMessages {
			working = append(working, toolMessage)
			result.messages = append(result.messages, toolMessage)
			result.timestamps = append(result.timestamps, now)
		}
	}

	s.logger.Warn("step budget exhausted", "max_iterations", s.maxIterations)
	result.incomplete = true
	result.finalText = lastText
	if result.finalText == "" {
		result.finalText = fmt.Sprintf("Sorry, I've reached the maximum of %d reasoning steps and couldn't produce a final answer.", s.maxIterations)
	}
	return result, nil
}

func (s *Supervisor) generate(ctx context.Context, messages []*schema.Message) (*schema.Message, error) {
	callCtx := ctx
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	chatModel, err := s.provider.ChatModel(callCtx, s.modelID)
	if err != nil {
		return nil, err
	}

	modelWithTools, err := chatModel.WithTools(s.toolInfos)
	if err != nil {
		return nil, err
	}

	return modelWithTools.Generate(callCtx, messages)
}

// executeToolCalls fans the round's tool calls out concurrently and
// re-attaches the results in tool-call order, not completion order, so the
// conversation replays deterministically. A failed tool becomes an
// error-marked tool result the model can react to; an unknown tool name
// aborts the turn, since retrying would not change the model's behavior.
func (s *Supervisor) executeToolCalls(ctx context.Context, toolCalls []schema.ToolCall, turnCtx *models.Context) ([]*schema.Message, error) {
	type toolResult struct {
		call   schema.ToolCall
		result string
		err    error
	}

	resultChan := make(chan toolResult, len(toolCalls))
	for _, toolCall := range toolCalls {
		go func(tc schema.ToolCall) {
			result, err := s.dispatcher.Dispatch(ctx, tc.Function.Name, tc.Function.Arguments)
			resultChan <- toolResult{call: tc, result: result, err: err}
		}(toolCall)
	}

	resultsByID := make(map[string]toolResult, len(toolCalls))
	for range toolCalls {
		r := <-resultChan
		resultsByID[r.call.ID] = r
	}

	messages := make([]*schema.Message, 0, len(toolCalls))
	for _, tc := range toolCalls {
		res := resultsByID[tc.ID]
		if errors.Is(res.err, tools.ErrUnknownTool) {
			return nil, models.NewProviderError(false, fmt.Sprintf("model requested an unknown tool: %s", tc.Function.Name), res.err)
		}

		turnCtx.ToolsUsed = append(turnCtx.ToolsUsed, tc.Function.Name)

		content := res.result
		if res.err != nil {
			content = fmt.Sprintf("Tool %s call failed: %v", tc.Function.Name, res.err)
		}
		messages = append(messages, &schema.Message{
			Role:       schema.Tool,
			ToolCallID: tc.ID,
			Content:    content,
		})
	}
	return messages, nil
}

func (s *Supervisor) emitRouterUsage(ctx context.Context, response *schema.Message) {
	if response.ResponseMeta == nil || response.ResponseMeta.Usage == nil {
		return
	}
	u := response.ResponseMeta.Usage
	usage.Emit(ctx, usage.Event{
		Model:            s.modelID,
		Source:           routerUsageSource,
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	})
}

// classifyProviderError tags the router's own call failures so callers can
// tell retryable conditions from permanent ones.
func classifyProviderError(err error) *models.TurnError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return models.NewProviderError(true, "model call timed out", err)
	}
	text := strings.ToLower(err.Error())
	if strings.Contains(text, "429") || strings.Contains(text, "rate limit") || strings.Contains(text, "timeout") || strings.Contains(text, "overloaded") {
		return models.NewProviderError(true, "model call failed", err)
	}
	return models.NewProviderError(false, "model call failed", err)
}
