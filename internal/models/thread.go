package models

import (
	"github.com/cloudwego/eino/schema"
)

type ThreadInfo struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

type ThreadMessage struct {
	Role      schema.RoleType `json:"role"`
	Content   string          `json:"content"`
	Timestamp int64           `json:"timestamp"`
}

// ThreadStats carries per-thread counters accumulated across turns.
type ThreadStats struct {
	Turns            int `json:"turns"`
	Requests         int `json:"requests"`
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
