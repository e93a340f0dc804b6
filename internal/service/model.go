package service

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/StefanoGysin/voxy/internal/config"
)

const (
	DeepSeekChatModelID     = "deepseek-chat"
	DeepSeekReasonerModelID = "deepseek-reasoner"
	DoubaoSeed18ModelID     = "doubao-seed-1-8-251215"
	KimiK2TurboModelID      = "kimi-k2-turbo-preview"
	GPT4oModelID            = "gpt-4o"
	GPT4oMiniModelID        = "gpt-4o-mini"
	XGrok41FastModelID      = "x-ai/grok-4.1-fast"
)

const (
	DeepSeekModelProvider   = "DeepSeek"
	ByteDanceModelProvider  = "ByteDance"
	MoonshotModelProvider   = "Moonshot"
	OpenAIModelProvider     = "OpenAI"
	OpenRouterModelProvider = "OpenRouter"
)

const (
	DeepSeekModelBaseURL   = "https://api.deepseek.com"
	ByteDanceModelBaseURL  = "https://ark.cn-beijing.volces.com/api/v3/chat/completions"
	MoonshotModelBaseURL   = "https://api.moonshot.cn"
	OpenRouterModelBaseURL = "https://openrouter.ai/api/v1"
)

type ModelInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
	// Vision marks models that accept image content parts.
	Vision bool `json:"vision"`
}

type ModelConfig struct {
	Info    *ModelInfo
	APIKey  string
	BaseURL string
}

// ModelRegistry resolves model ids to chat model clients. It is built once
// from configuration and injected into the components that call models.
type ModelRegistry struct {
	configs map[string]*ModelConfig

	routerModel         string
	visionModel         string
	conversationalModel string
}

// NewModelRegistry builds the model table from configured provider keys and
// validates that the three configured roles resolve to known models.
func NewModelRegistry(cfg config.ModelsConfig) (*ModelRegistry, error) {
	configs := map[string]*ModelConfig{
		DeepSeekChatModelID: {
			Info:    &ModelInfo{ID: DeepSeekChatModelID, Name: "deepseek-chat", Provider: DeepSeekModelProvider},
			APIKey:  cfg.DeepSeekAPIKey,
			BaseURL: DeepSeekModelBaseURL,
		},
		DeepSeekReasonerModelID: {
			Info:    &ModelInfo{ID: DeepSeekReasonerModelID, Name: "deepseek-reasoner", Provider: DeepSeekModelProvider},
			APIKey:  cfg.DeepSeekAPIKey,
			BaseURL: DeepSeekModelBaseURL,
		},
		DoubaoSeed18ModelID: {
			Info:    &ModelInfo{ID: DoubaoSeed18ModelID, Name: "doubao-seed-1.8", Provider: ByteDanceModelProvider, Vision: true},
			APIKey:  cfg.ByteDanceAPIKey,
			BaseURL: ByteDanceModelBaseURL,
		},
		KimiK2TurboModelID: {
			Info:    &ModelInfo{ID: KimiK2TurboModelID, Name: "kimi-k2", Provider: MoonshotModelProvider},
			APIKey:  cfg.MoonshotAPIKey,
			BaseURL: MoonshotModelBaseURL,
		},
		GPT4oModelID: {
			Info:   &ModelInfo{ID: GPT4oModelID, Name: "gpt-4o", Provider: OpenAIModelProvider, Vision: true},
			APIKey: cfg.OpenAIAPIKey,
		},
		GPT4oMiniModelID: {
			Info:   &ModelInfo{ID: GPT4oMiniModelID, Name: "gpt-4o-mini", Provider: OpenAIModelProvider, Vision: true},
			APIKey: cfg.OpenAIAPIKey,
		},
		XGrok41FastModelID: {
			Info:    &ModelInfo{ID: XGrok41FastModelID, Name: "grok-4.1-fast", Provider: OpenRouterModelProvider},
			APIKey:  cfg.OpenRouterAPIKey,
			BaseURL: OpenRouterModelBaseURL,
		},
	}

	registry := &ModelRegistry{
		configs:             configs,
		routerModel:         cfg.Router,
		visionModel:         cfg.Vision,
		conversationalModel: cfg.Conversational,
	}

	for role, id := range map[string]string{
		"router":         cfg.Router,
		"vision":         cfg.Vision,
		"conversational": cfg.Conversational,
	} {
		if !registry.IsAvailable(id) {
			return nil, fmt.Errorf("%s model is not available: %s", role, id)
		}
	}
	if !configs[cfg.Vision].Info.Vision {
		return nil, fmt.Errorf("vision model does not accept images: %s", cfg.Vision)
	}

	return registry, nil
}

func (r *ModelRegistry) IsAvailable(modelID string) bool {
	_, ok := r.configs[modelID]
	return ok
}

func (r *ModelRegistry) RouterModel() string         { return r.routerModel }
func (r *ModelRegistry) VisionModel() string         { return r.visionModel }
func (r *ModelRegistry) ConversationalModel() string { return r.conversationalModel }

func (r *ModelRegistry) AvailableModels() []*ModelInfo {
	infos := make([]*ModelInfo, 0, len(r.configs))
	for _, cfg := range r.configs {
		infos = append(infos, cfg.Info)
	}
	return infos
}

// ChatModel constructs a tool-calling chat model client for the given id.
func (r *ModelRegistry) ChatModel(ctx context.Context, modelID string) (model.ToolCallingChatModel, error) {
	cfg, ok := r.configs[modelID]
	if !ok {
		return nil, fmt.Errorf("model not found: %s", modelID)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for model: %s", modelID)
	}

	switch cfg.Info.Provider {
	case DeepSeekModelProvider:
		return deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   modelID,
		})
	case ByteDanceModelProvider:
		return ark.NewChatModel(ctx, &ark.ChatModelConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   modelID,
		})
	case MoonshotModelProvider, OpenAIModelProvider, OpenRouterModelProvider:
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   modelID,
		})
	default:
	}

	return nil, fmt.Errorf("unsupported model provider: %s", cfg.Info.Provider)
}
