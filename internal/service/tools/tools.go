// Package tools holds the tool registry and the dispatch middleware chain
// shared by the supervisor loop and the direct vision path.
package tools

import (
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// Registry maps tool names to invokable tools. It is assembled explicitly
// at process start and injected wherever tools are dispatched.
type Registry struct {
	infos      []*schema.ToolInfo
	tools      map[string]tool.InvokableTool
	agentNames map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		tools:      make(map[string]tool.InvokableTool),
		agentNames: make(map[string]string),
	}
}

// Register adds a tool under its schema name with a display agent name
// used in invocation records.
func (r *Registry) Register(info *schema.ToolInfo, t tool.InvokableTool, agentName string) error {
	if info == nil || info.Name == "" {
		return fmt.Errorf("tools: tool info requires a name")
	}
	if _, exists := r.tools[info.Name]; exists {
		return fmt.Errorf("tools: tool already registered: %s", info.Name)
	}
	r.infos = append(r.infos, info)
	r.tools[info.Name] = t
	r.agentNames[info.Name] = agentName
	return nil
}

func (r *Registry) Infos() []*schema.ToolInfo {
	return r.infos
}

func (r *Registry) Lookup(name string) (tool.InvokableTool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// AgentName returns the display name for a tool, falling back to the tool
// name itself.
func (r *Registry) AgentName(name string) string {
	if display, ok := r.agentNames[name]; ok {
		return display
	}
	return name
}
