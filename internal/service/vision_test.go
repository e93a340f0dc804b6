package service

import (
	"context"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StefanoGysin/voxy/internal/models"
	"github.com/StefanoGysin/voxy/internal/service/tools"
	"github.com/StefanoGysin/voxy/internal/service/tools/vision"
	"github.com/StefanoGysin/voxy/internal/service/usage"
)

func newTestDirectPath(t *testing.T, visionID, convID string, provider *scriptedProvider) *DirectPath {
	t.Helper()
	registry := tools.NewRegistry()
	info, visionTool, err := vision.NewTool(context.Background(), provider, visionID)
	require.NoError(t, err)
	require.NoError(t, registry.Register(info, visionTool, vision.AgentName))

	dispatcher := tools.NewDispatcher(registry, tools.WithLogging(discardLogger()))
	return NewDirectPath(dispatcher, provider, visionID, convID, time.Second, discardLogger())
}

func TestDirectPathUsageIsFullyAttributed(t *testing.T) {
	visionChat := &scriptedModel{responses: []scriptedResponse{
		{message: assistantText("A tabby cat on a windowsill.", 30, 20)},
	}}
	convChat := &scriptedModel{responses: []scriptedResponse{
		{message: assistantText("It's a tabby cat!", 40, 10)},
	}}
	provider := &scriptedProvider{models: map[string]*scriptedModel{
		"gpt-4o-mini":   visionChat,
		"deepseek-chat": convChat,
	}}
	direct := newTestDirectPath(t, "gpt-4o-mini", "deepseek-chat", provider)

	recorder := usage.NewRecorder()
	ctx := usage.WithRecorder(context.Background(), recorder)

	turnCtx := &models.Context{}
	reply, err := direct.Run(ctx, "https://example.com/cat.png", "What is this?", turnCtx)
	require.NoError(t, err)
	assert.Equal(t, "It's a tabby cat!", reply.Content)

	// Both calls are observed with their model ids.
	events := recorder.Events()
	require.Len(t, events, 2)
	assert.Equal(t, vision.ToolName, events[0].Source)
	assert.Equal(t, "gpt-4o-mini", events[0].Model)
	assert.Equal(t, conversationalUsageSource, events[1].Source)
	assert.Equal(t, "deepseek-chat", events[1].Model)

	// Both models are priced, so the turn's cost is complete.
	metrics := usage.Aggregate([]*schema.Message{reply}, events)
	assert.Equal(t, 2, metrics.Requests)
	assert.Equal(t, 100, metrics.TotalTokens)
	assert.False(t, metrics.CostPartial)
	require.NotNil(t, metrics.CostUSD)
}

func TestDirectPathFallsBackToRawAnalysis(t *testing.T) {
	visionChat := &scriptedModel{responses: []scriptedResponse{
		{message: assistantText("A suspension bridge at dusk.", 30, 20)},
	}}
	// No conversational model configured; the rewrite fails.
	provider := &scriptedProvider{models: map[string]*scriptedModel{
		visionModelID: visionChat,
	}}
	direct := newTestDirectPath(t, visionModelID, convModelID, provider)

	turnCtx := &models.Context{}
	reply, err := direct.Run(context.Background(), "https://example.com/bridge.jpg", "", turnCtx)
	require.NoError(t, err)
	assert.Equal(t, "A suspension bridge at dusk.", reply.Content)

	require.NotNil(t, turnCtx.Vision)
	assert.Equal(t, visionModelID, turnCtx.Vision.Model)
	assert.Equal(t, []string{vision.ToolName}, turnCtx.ToolsUsed)
}
