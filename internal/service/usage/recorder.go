// Package usage collects per-call token counts across a turn and aggregates
// them into a single accounting record with an estimated cost.
package usage

import (
	"context"
	"sync"

	"github.com/StefanoGysin/voxy/internal/models"
)

const previewLimit = 200

// Event is one LLM call's token usage as seen by the observer. Events
// cover calls whose usage never surfaces into the message list, typically
// LLM calls made inside tools.
type Event struct {
	Model            string
	Source           string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Recorder is attached to a turn's context for its duration. Tools and the
// supervisor report usage events and tool invocation records to it.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	tools  []models.ToolInvocationRecord
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) RecordEvent(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the captured events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// StartTool opens a tool invocation record and returns its handle.
func (r *Recorder) StartTool(tool, agentName, input string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools = append(r.tools, models.ToolInvocationRecord{
		Tool:         tool,
		AgentName:    agentName,
		InputPreview: truncatePreview(input),
	})
	return len(r.tools) - 1
}

// FinishTool finalizes a previously started tool invocation record.
func (r *Recorder) FinishTool(handle int, output string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if handle < 0 || handle >= len(r.tools) {
		return
	}
	record := &r.tools[handle]
	record.OutputPreview = truncatePreview(output)
	if err != nil {
		record.Error = err.Error()
		return
	}
	record.Completed = true
}

// ToolRecords returns a copy of the captured tool invocation records.
func (r *Recorder) ToolRecords() []models.ToolInvocationRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ToolInvocationRecord, len(r.tools))
	copy(out, r.tools)
	return out
}

func truncatePreview(s string) string {
	if len(s) <= previewLimit {
		return s
	}
	return s[:previewLimit] + "..."
}

type recorderCtxKey struct{}

// WithRecorder attaches a recorder to a turn's context.
func WithRecorder(ctx context.Context, r *Recorder) context.Context {
	return context.WithValue(ctx, recorderCtxKey{}, r)
}

// FromContext returns the turn's recorder, if one is attached.
func FromContext(ctx context.Context) (*Recorder, bool) {
	r, ok := ctx.Value(recorderCtxKey{}).(*Recorder)
	return r, ok
}

// Emit records an event on the context's recorder. It is a no-op when no
// recorder is attached, so tools never need to care whether they run
// inside an instrumented turn.
func Emit(ctx context.Context, e Event) {
	if r, ok := FromContext(ctx); ok {
		r.RecordEvent(e)
	}
}
