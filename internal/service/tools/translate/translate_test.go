package translate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StefanoGysin/voxy/internal/service/tools/translate"
	"github.com/StefanoGysin/voxy/internal/service/usage"
)

// fixedModel returns one canned response and records the last input.
type fixedModel struct {
	response *schema.Message
	err      error
	lastIn   []*schema.Message
}

func (m *fixedModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.lastIn = input
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *fixedModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming is not supported")
}

func (m *fixedModel) WithTools([]*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

type fixedProvider struct {
	model *fixedModel
}

func (p *fixedProvider) ChatModel(context.Context, string) (model.ToolCallingChatModel, error) {
	return p.model, nil
}

func TestTranslateInvoke(t *testing.T) {
	chat := &fixedModel{response: &schema.Message{
		Role:    schema.Assistant,
		Content: "Olá mundo",
		ResponseMeta: &schema.ResponseMeta{
			Usage: &schema.TokenUsage{PromptTokens: 80, CompletionTokens: 40, TotalTokens: 120},
		},
	}}

	_, tool, err := translate.NewTool(context.Background(), &fixedProvider{model: chat}, "deepseek-chat")
	require.NoError(t, err)

	recorder := usage.NewRecorder()
	ctx := usage.WithRecorder(context.Background(), recorder)

	result, err := tool.InvokableRun(ctx, `{"text":"Hello world","target_language":"Portuguese"}`)
	require.NoError(t, err)
	assert.Equal(t, "Olá mundo", result)

	require.Len(t, chat.lastIn, 2)
	assert.Equal(t, schema.System, chat.lastIn[0].Role)
	assert.Contains(t, chat.lastIn[1].Content, "Target language: Portuguese")
	assert.Contains(t, chat.lastIn[1].Content, "Hello world")

	// The internal call's usage reaches the turn recorder.
	events := recorder.Events()
	require.Len(t, events, 1)
	assert.Equal(t, translate.ToolName, events[0].Source)
	assert.Equal(t, 120, events[0].TotalTokens)
}

func TestTranslateInvokeRequiresTargetLanguage(t *testing.T) {
	_, tool, err := translate.NewTool(context.Background(), &fixedProvider{model: &fixedModel{}}, "deepseek-chat")
	require.NoError(t, err)

	_, err = tool.InvokableRun(context.Background(), `{"text":"Hello world"}`)
	require.Error(t, err)
}

func TestTranslateInvokeEmptyCompletion(t *testing.T) {
	chat := &fixedModel{response: &schema.Message{Role: schema.Assistant, Content: "  "}}
	_, tool, err := translate.NewTool(context.Background(), &fixedProvider{model: chat}, "deepseek-chat")
	require.NoError(t, err)

	result, err := tool.InvokableRun(context.Background(), `{"text":"Hello","target_language":"French"}`)
	require.NoError(t, err)
	assert.Contains(t, result, "No translation")
}
