// Package service implements the orchestration core: routing, the
// supervisor loop, the direct vision path, and the conversation state
// manager that ties them to the checkpoint store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/StefanoGysin/voxy/internal/config"
	"github.com/StefanoGysin/voxy/internal/models"
	"github.com/StefanoGysin/voxy/internal/service/storage"
	"github.com/StefanoGysin/voxy/internal/service/tools"
	"github.com/StefanoGysin/voxy/internal/service/tools/calculate"
	"github.com/StefanoGysin/voxy/internal/service/tools/correct"
	"github.com/StefanoGysin/voxy/internal/service/tools/translate"
	"github.com/StefanoGysin/voxy/internal/service/tools/vision"
	"github.com/StefanoGysin/voxy/internal/service/tools/weather"
	"github.com/StefanoGysin/voxy/internal/service/usage"
)

const defaultThreadTitle = "New chat"

const apologyText = "I'm sorry, something went wrong while handling your message. Please try again in a moment."

// Orchestrator drives one conversation turn end to end: load checkpoint,
// decide the route, execute, aggregate usage, persist, respond. It holds no
// thread state between turns; the checkpoint store is the only cross-turn
// shared resource.
type Orchestrator struct {
	store               storage.Store
	provider            tools.ModelProvider
	router              *Router
	supervisor          *Supervisor
	direct              *DirectPath
	conversationalModel string
	logger              *slog.Logger

	mu     sync.Mutex
	active map[string]struct{}
}

// NewOrchestrator assembles the tool registry, dispatcher, router,
// supervisor, and direct path from configuration. All collaborators are
// constructed once here and injected; nothing is reached through globals.
func NewOrchestrator(ctx context.Context, cfg *config.Config, store storage.Store, provider tools.ModelProvider, logger *slog.Logger) (*Orchestrator, error) {
	registry := tools.NewRegistry()

	translateInfo, translateTool, err := translate.NewTool(ctx, provider, cfg.Models.Router)
	if err != nil {
		return nil, fmt.Errorf("build translate tool: %w", err)
	}
	if err := registry.Register(translateInfo, translateTool, translate.AgentName); err != nil {
		return nil, err
	}

	correctInfo, correctTool, err := correct.NewTool(ctx, provider, cfg.Models.Router)
	if err != nil {
		return nil, fmt.Errorf("build correct tool: %w", err)
	}
	if err := registry.Register(correctInfo, correctTool, correct.AgentName); err != nil {
		return nil, err
	}

	weatherInfo, weatherTool, err := weather.NewTool(ctx, cfg.Weather.BaseURL, cfg.Weather.Timeout)
	if err != nil {
		return nil, fmt.Errorf("build weather tool: %w", err)
	}
	if err := registry.Register(weatherInfo, weatherTool, weather.AgentName); err != nil {
		return nil, err
	}

	calcInfo, calcTool, err := calculate.NewTool(ctx)
	if err != nil {
		return nil, fmt.Errorf("build calculate tool: %w", err)
	}
	if err := registry.Register(calcInfo, calcTool, calculate.AgentName); err != nil {
		return nil, err
	}

	visionInfo, visionTool, err := vision.NewTool(ctx, provider, cfg.Models.Vision)
	if err != nil {
		return nil, fmt.Errorf("build vision tool: %w", err)
	}
	if err := registry.Register(visionInfo, visionTool, vision.AgentName); err != nil {
		return nil, err
	}

	dispatcher := tools.NewDispatcher(registry,
		tools.WithLogging(logger),
		tools.WithRecording(registry.AgentName),
	)

	supervisor := NewSupervisor(
		provider,
		cfg.Models.Router,
		buildRouterPrompt(),
		registry.Infos(),
		dispatcher,
		cfg.Supervisor.MaxIterations,
		cfg.Supervisor.RequestTimeout,
		logger,
	)

	direct := NewDirectPath(dispatcher, provider, cfg.Models.Vision, cfg.Models.Conversational, cfg.Supervisor.RequestTimeout, logger)

	return &Orchestrator{
		store:               store,
		provider:            provider,
		router:              NewRouter(nil, logger),
		supervisor:          supervisor,
		direct:              direct,
		conversationalModel: cfg.Models.Conversational,
		logger:              logger,
		active:              make(map[string]struct{}),
	}, nil
}

// ProcessTurn runs one turn. Turn-level failures come back as a structured
// response with an apologetic text and error metadata, never as a Go error:
// the caller always has something displayable.
func (o *Orchestrator) ProcessTurn(ctx context.Context, req models.TurnRequest) *models.TurnResponse {
	threadID := strings.TrimSpace(req.ThreadID)
	if threadID == "" {
		threadID = GenerateThreadID()
	}

	turnCtx := &models.Context{}
	route, err := o.router.DecideRoute(req, turnCtx)
	if err != nil {
		return o.failTurn(threadID, turnCtx, nil, err)
	}

	if !o.acquire(threadID) {
		return o.failTurn(threadID, turnCtx, nil, models.NewRoutingError("a turn is already in progress for thread %s", threadID))
	}
	defer o.release(threadID)

	record, err := o.store.LoadThread(ctx, threadID)
	if err != nil {
		return o.failTurn(threadID, turnCtx, nil, models.NewPersistenceError("load checkpoint", err))
	}
	if record == nil {
		now := time.Now().UnixMilli()
		record = &storage.ThreadRecord{
			Info: &models.ThreadInfo{
				ID:        threadID,
				UserID:    req.UserID,
				Title:     defaultThreadTitle,
				CreatedAt: now,
				UpdatedAt: now,
			},
			Stats: &models.ThreadStats{},
		}
	} else if record.Info.UserID != req.UserID {
		return o.failTurn(threadID, turnCtx, nil, models.NewRoutingError("thread %s belongs to another user", threadID))
	}
	if record.Stats == nil {
		record.Stats = &models.ThreadStats{}
	}

	recorder := usage.NewRecorder()
	ctx = usage.WithRecorder(ctx, recorder)

	userMessage := &schema.Message{Role: schema.User, Content: req.Message}

	var result *turnResult
	switch route {
	case models.RouteDirect:
		reply, derr := o.direct.Run(ctx, req.ImageURL, req.Message, turnCtx)
		if derr != nil {
			return o.failTurn(threadID, turnCtx, recorder, derr)
		}
		now := time.Now().UnixMilli()
		result = &turnResult{
			messages:   []*schema.Message{userMessage, reply},
			timestamps: []int64{now, now},
			finalText:  reply.Content,
		}
	default:
		var serr error
		result, serr = o.supervisor.Run(ctx, record.Messages, userMessage, turnCtx)
		if serr != nil {
			return o.failTurn(threadID, turnCtx, recorder, serr)
		}
	}

	metrics := usage.Aggregate(result.messages, recorder.Events())

	record.Messages = append(record.Messages, result.messages...)
	record.MessageTimestamps = append(record.MessageTimestamps, result.timestamps...)
	record.Context = turnCtx
	record.Info.UpdatedAt = time.Now().UnixMilli()
	record.Stats.Turns++
	record.Stats.Requests += metrics.Requests
	record.Stats.PromptTokens += metrics.PromptTokens
	record.Stats.CompletionTokens += metrics.CompletionTokens
	record.Stats.TotalTokens += metrics.TotalTokens

	if err := o.store.SaveThread(ctx, record); err != nil {
		return o.failTurn(threadID, turnCtx, recorder, models.NewPersistenceError("write checkpoint", err))
	}

	o.logger.Info("turn completed",
		"thread", threadID,
		"route", route,
		"tools", turnCtx.ToolsUsed,
		"requests", metrics.Requests,
		"total_tokens", metrics.TotalTokens,
	)

	// Best-effort: an untitled thread gets a title from its first exchange.
	if record.Info.Title == defaultThreadTitle {
		if _, err := o.GenerateThreadTitle(ctx, threadID); err != nil {
			o.logger.Warn("thread title generation failed", "thread", threadID, "error", err)
		}
	}

	return &models.TurnResponse{
		ThreadID:   threadID,
		Response:   result.finalText,
		Route:      route,
		ToolsUsed:  turnCtx.ToolsUsed,
		Usage:      metrics,
		Vision:     turnCtx.Vision,
		Incomplete: result.incomplete,
	}
}

func (o *Orchestrator) failTurn(threadID string, turnCtx *models.Context, recorder *usage.Recorder, err error) *models.TurnResponse {
	var turnErr *models.TurnError
	if !errors.As(err, &turnErr) {
		turnErr = &models.TurnError{Kind: models.ErrProvider, Msg: err.Error(), Err: err}
	}

	o.logger.Error("turn failed", "thread", threadID, "kind", turnErr.Kind, "error", err)

	metrics := models.UsageMetrics{}
	if recorder != nil {
		metrics = usage.Aggregate(nil, recorder.Events())
	}

	return &models.TurnResponse{
		ThreadID:  threadID,
		Response:  apologyText,
		Route:     turnCtx.Route,
		ToolsUsed: turnCtx.ToolsUsed,
		Usage:     metrics,
		Error: &models.TurnFailure{
			Kind:      turnErr.Kind,
			Message:   turnErr.Msg,
			Transient: turnErr.Transient,
		},
	}
}

// acquire claims the single-writer slot for a thread. A second concurrent
// turn against the same thread is rejected rather than queued: processing
// it against stale state would drop messages on checkpoint overwrite.
func (o *Orchestrator) acquire(threadID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.active[threadID]; busy {
		return false
	}
	o.active[threadID] = struct{}{}
	return true
}

func (o *Orchestrator) release(threadID string) {
	o.mu.Lock()
	delete(o.active, threadID)
	o.mu.Unlock()
}

// ListThreads returns the stored thread infos.
func (o *Orchestrator) ListThreads(ctx context.Context) ([]*models.ThreadInfo, error) {
	return o.store.ListThreads(ctx)
}

// DeleteThread removes a thread's checkpoint.
func (o *Orchestrator) DeleteThread(ctx context.Context, threadID string) error {
	if threadID == "" {
		return fmt.Errorf("thread id is required")
	}
	return o.store.DeleteThread(ctx, threadID)
}

// GetThreadMessages returns the display view of a thread's history.
func (o *Orchestrator) GetThreadMessages(ctx context.Context, threadID string) ([]*models.ThreadMessage, error) {
	record, err := o.store.LoadThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("thread not found: %s", threadID)
	}

	messages := make([]*models.ThreadMessage, 0, len(record.Messages))
	for i, msg := range record.Messages {
		if msg.Role == schema.System {
			continue
		}
		messages = append(messages, &models.ThreadMessage{
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: record.MessageTimestamps[i],
		})
	}
	return messages, nil
}
