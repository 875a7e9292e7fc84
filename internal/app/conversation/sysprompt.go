package conversation

import (
	"os"
	"strings"

	"github.com/lugia-ai/lugia/internal/observability"
)

// DefaultSystemPrompt is used when no system prompt file is available.
const DefaultSystemPrompt = "You are a Senior Engineer at a major Big Corp."

// LoadSystemPrompt reads the system prompt from path. A missing or
// unreadable file is a warning, never fatal: the hard-coded default
// keeps the service answering.
func LoadSystemPrompt(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		observability.Logger().Warn("system prompt file not found, using default prompt",
			"path", path, "error", err)
		return DefaultSystemPrompt
	}

	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		observability.Logger().Warn("system prompt file is empty, using default prompt", "path", path)
		return DefaultSystemPrompt
	}
	return prompt
}
