package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/StefanoGysin/voxy/internal/service/usage"
)

// ErrUnknownTool marks a dispatch against a name no tool was registered
// under. The supervisor treats it as fatal for the round, unlike ordinary
// tool failures.
var ErrUnknownTool = errors.New("unknown tool")

// Invoker runs one tool call.
type Invoker func(ctx context.Context, name, arguments string) (string, error)

// Middleware wraps an Invoker with cross-cutting behavior. Middlewares are
// explicit objects composed around the dispatch point so the call graph
// stays traceable.
type Middleware func(next Invoker) Invoker

// Dispatcher resolves tool names against a registry and runs calls through
// the middleware chain.
type Dispatcher struct {
	registry *Registry
	invoke   Invoker
}

// NewDispatcher composes middlewares around the registry lookup. The first
// middleware is the outermost.
func NewDispatcher(registry *Registry, middlewares ...Middleware) *Dispatcher {
	invoke := func(ctx context.Context, name, arguments string) (string, error) {
		t, ok := registry.Lookup(name)
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
		}
		return t.InvokableRun(ctx, arguments)
	}
	for i := len(middlewares) - 1; i >= 0; i-- {
		invoke = middlewares[i](invoke)
	}
	return &Dispatcher{registry: registry, invoke: invoke}
}

func (d *Dispatcher) Dispatch(ctx context.Context, name, arguments string) (string, error) {
	return d.invoke(ctx, name, arguments)
}

func (d *Dispatcher) AgentName(name string) string {
	return d.registry.AgentName(name)
}

// WithLogging logs every dispatch with its outcome.
func WithLogging(logger *slog.Logger) Middleware {
	return func(next Invoker) Invoker {
		return func(ctx context.Context, name, arguments string) (string, error) {
			logger.Debug("dispatching tool", "tool", name)
			result, err := next(ctx, name, arguments)
			if err != nil {
				logger.Warn("tool failed", "tool", name, "error", err)
				return result, err
			}
			logger.Debug("tool finished", "tool", name)
			return result, nil
		}
	}
}

// WithRecording opens and finalizes a ToolInvocationRecord on the turn's
// recorder around every dispatch.
func WithRecording(agentName func(string) string) Middleware {
	return func(next Invoker) Invoker {
		return func(ctx context.Context, name, arguments string) (string, error) {
			recorder, ok := usage.FromContext(ctx)
			if !ok {
				return next(ctx, name, arguments)
			}
			handle := recorder.StartTool(name, agentName(name), arguments)
			result, err := next(ctx, name, arguments)
			recorder.FinishTool(handle, result, err)
			return result, err
		}
	}
}
