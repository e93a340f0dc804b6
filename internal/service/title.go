package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
)

const maxTitleRunes = 32

// GenerateThreadTitle asks the conversational model for a short title
// summarizing the thread and persists it. Callers treat failures as
// best-effort: the thread keeps its current title.
func (o *Orchestrator) GenerateThreadTitle(ctx context.Context, threadID string) (string, error) {
	record, err := o.store.LoadThread(ctx, threadID)
	if err != nil {
		return "", err
	}
	if record == nil {
		return "", fmt.Errorf("thread not found: %s", threadID)
	}

	var summary strings.Builder
	for _, msg := range record.Messages {
		switch msg.Role {
		case schema.User:
			summary.WriteString("User: ")
		case schema.Assistant:
			summary.WriteString("Assistant: ")
		default:
			continue
		}
		summary.WriteString(msg.Content)
		summary.WriteString("\n")
	}

	if summary.Len() == 0 {
		return record.Info.Title, nil
	}

	titleMessages := []*schema.Message{
		{
			Role:    schema.System,
			Content: "You are a helpful assistant that generates concise titles for conversations.",
		},
		{
			Role:    schema.User,
			Content: fmt.Sprintf("Based on the following conversation, generate a concise and descriptive title (at most six words). The title should capture the main topic or question. Only return the title text, nothing else.\nConversation:\n%s", summary.String()),
		},
	}

	chatModel, err := o.provider.ChatModel(ctx, o.conversationalModel)
	if err != nil {
		return "", fmt.Errorf("generate thread title: %w", err)
	}

	response, err := chatModel.Generate(ctx, titleMessages)
	if err != nil {
		return "", fmt.Errorf("generate thread title: %w", err)
	}

	title := cleanThreadTitle(response.Content)
	if title == record.Info.Title {
		return title, nil
	}

	record.Info.Title = title
	if err := o.store.SaveThread(ctx, record); err != nil {
		return "", fmt.Errorf("persist thread title: %w", err)
	}

	return title, nil
}

func cleanThreadTitle(title string) string {
	title = strings.TrimSpace(title)

	if len(title) >= 2 && title[0] == '"' && title[len(title)-1] == '"' {
		title = strings.TrimSpace(title[1 : len(title)-1])
	}

	if runes := []rune(title); len(runes) > maxTitleRunes {
		title = string(runes[:maxTitleRunes-3]) + "..."
	}

	if title == "" {
		return defaultThreadTitle
	}

	return title
}
