package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/StefanoGysin/voxy/internal/config"
)

const (
	routerModelID = "router-model"
	visionModelID = "vision-model"
	convModelID   = "conv-model"
)

// scriptedModel returns pre-recorded responses in order and captures every
// Generate input for later assertions. The optional started/block channels
// let a test hold a call open to provoke overlapping turns.
type scriptedModel struct {
	mu        sync.Mutex
	responses []scriptedResponse
	inputs    [][]*schema.Message

	started chan struct{}
	block   chan struct{}
}

type scriptedResponse struct {
	message *schema.Message
	err     error
}

func (m *scriptedModel) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	if m.started != nil {
		select {
		case m.started <- struct{}{}:
		default:
		}
	}
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.inputs = append(m.inputs, input)
	if len(m.responses) == 0 {
		return nil, errors.New("no scripted response left")
	}
	next := m.responses[0]
	m.responses = m.responses[1:]
	if next.err != nil {
		return nil, next.err
	}
	return next.message, nil
}

func (m *scriptedModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming is not supported")
}

func (m *scriptedModel) WithTools([]*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

func (m *scriptedModel) generateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}

func (m *scriptedModel) inputAt(i int) []*schema.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inputs[i]
}

type scriptedProvider struct {
	models map[string]*scriptedModel
}

func (p *scriptedProvider) ChatModel(_ context.Context, modelID string) (model.ToolCallingChatModel, error) {
	if m, ok := p.models[modelID]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("unknown model: %s", modelID)
}

func assistantText(content string, promptTokens, completionTokens int) *schema.Message {
	return &schema.Message{
		Role:    schema.Assistant,
		Content: content,
		ResponseMeta: &schema.ResponseMeta{
			Usage: &schema.TokenUsage{
				PromptTokens:     promptTokens,
				CompletionTokens: completionTokens,
				TotalTokens:      promptTokens + completionTokens,
			},
		},
	}
}

func assistantToolCalls(promptTokens, completionTokens int, calls ...schema.ToolCall) *schema.Message {
	msg := assistantText("", promptTokens, completionTokens)
	msg.ToolCalls = calls
	return msg
}

func toolCall(id, name, arguments string) schema.ToolCall {
	return schema.ToolCall{
		ID: id,
		Function: schema.FunctionCall{
			Name:      name,
			Arguments: arguments,
		},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		Models: config.ModelsConfig{
			Router:         routerModelID,
			Vision:         visionModelID,
			Conversational: convModelID,
		},
		Supervisor: config.SupervisorConfig{
			MaxIterations:  5,
			RequestTimeout: 5 * time.Second,
		},
		Weather: config.WeatherConfig{
			BaseURL: "http://127.0.0.1:1",
			Timeout: time.Second,
		},
	}
}
