package models

// TurnRequest is the caller-facing input for one conversation turn.
// ThreadID may be empty, in which case a new thread is created.
type TurnRequest struct {
	ThreadID string `json:"thread_id"`
	UserID   string `json:"user_id"`
	Message  string `json:"message"`
	ImageURL string `json:"image_url,omitempty"`
}

// TurnResponse is the caller-facing output for one conversation turn.
// Turn-level failures are encoded in Error rather than returned as a Go
// error, so the caller always receives a displayable assistant response.
type TurnResponse struct {
	ThreadID   string          `json:"thread_id"`
	Response   string          `json:"response"`
	Route      Route           `json:"route_taken"`
	ToolsUsed  []string        `json:"tools_used"`
	Usage      UsageMetrics    `json:"usage"`
	Vision     *VisionAnalysis `json:"vision_analysis,omitempty"`
	Incomplete bool            `json:"incomplete"`
	Error      *TurnFailure    `json:"error,omitempty"`
}

// TurnFailure describes a turn-level failure with enough detail for the
// caller to decide on retry.
type TurnFailure struct {
	Kind      ErrorKind `json:"kind"`
	Message   string    `json:"message"`
	Transient bool      `json:"transient"`
}

// Context is the ephemeral per-turn scratch state. It is snapshotted into
// the checkpoint for observability but rebuilt fresh on every turn.
type Context struct {
	ImageURL  string          `json:"image_url,omitempty"`
	Route     Route           `json:"route_taken,omitempty"`
	Vision    *VisionAnalysis `json:"vision_analysis,omitempty"`
	ToolsUsed []string        `json:"tools_used,omitempty"`
}

// VisionAnalysis is the structured result of an image analysis call.
type VisionAnalysis struct {
	ImageURL string `json:"image_url"`
	Analysis string `json:"analysis"`
	Model    string `json:"model"`
}

// ToolInvocationRecord captures one tool call within a turn. Previews are
// truncated; records feed usage aggregation and logs, never the thread.
type ToolInvocationRecord struct {
	Tool          string `json:"tool"`
	AgentName     string `json:"agent_name"`
	InputPreview  string `json:"input_preview"`
	OutputPreview string `json:"output_preview"`
	Completed     bool   `json:"completed"`
	Error         string `json:"error,omitempty"`
}
