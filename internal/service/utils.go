package service

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateThreadID returns a short random identifier for a new thread.
func GenerateThreadID() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return id[:8]
}
