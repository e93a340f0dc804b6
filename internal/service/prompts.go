package service

import (
	_ "embed"
	"strings"
	"time"
)

//go:embed assets/prompts/router.txt
var routerPromptContent []byte

//go:embed assets/prompts/conversational.txt
var conversationalPromptContent []byte

func buildRouterPrompt() string {
	prompt := string(routerPromptContent)
	prompt = strings.ReplaceAll(prompt, "[SYSTEM_TIME]", time.Now().Format(time.RFC3339))
	return prompt
}

func conversationalPrompt() string {
	return string(conversationalPromptContent)
}
