package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StefanoGysin/voxy/internal/config"
)

func registryConfig() config.ModelsConfig {
	return config.ModelsConfig{
		Router:         DeepSeekChatModelID,
		Vision:         GPT4oMiniModelID,
		Conversational: DeepSeekChatModelID,
		DeepSeekAPIKey: "sk-deepseek",
		OpenAIAPIKey:   "sk-openai",
	}
}

func TestNewModelRegistry(t *testing.T) {
	registry, err := NewModelRegistry(registryConfig())
	require.NoError(t, err)

	assert.Equal(t, DeepSeekChatModelID, registry.RouterModel())
	assert.Equal(t, GPT4oMiniModelID, registry.VisionModel())
	assert.True(t, registry.IsAvailable(KimiK2TurboModelID))
	assert.False(t, registry.IsAvailable("gpt-2"))
	assert.NotEmpty(t, registry.AvailableModels())
}

func TestNewModelRegistryRejectsUnknownRole(t *testing.T) {
	cfg := registryConfig()
	cfg.Router = "gpt-2"
	_, err := NewModelRegistry(cfg)
	require.Error(t, err)
}

func TestNewModelRegistryRejectsTextOnlyVisionModel(t *testing.T) {
	cfg := registryConfig()
	cfg.Vision = DeepSeekChatModelID
	_, err := NewModelRegistry(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not accept images")
}

func TestChatModelRequiresAPIKey(t *testing.T) {
	cfg := registryConfig()
	cfg.MoonshotAPIKey = ""
	registry, err := NewModelRegistry(cfg)
	require.NoError(t, err)

	_, err = registry.ChatModel(context.Background(), KimiK2TurboModelID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no API key")
}

func TestChatModelUnknownID(t *testing.T) {
	registry, err := NewModelRegistry(registryConfig())
	require.NoError(t, err)

	_, err = registry.ChatModel(context.Background(), "gpt-2")
	require.Error(t, err)
}
