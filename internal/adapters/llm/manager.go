// Package llm holds the model-backend adapters. The core hands them an
// assembled two-message prompt; everything provider-specific stays
// here.
package llm

import (
	"context"

	"github.com/lugia-ai/lugia/internal/domain"
)

// maxOutputTokens bounds every completion request.
const maxOutputTokens = 4096

// modelShortcuts maps friendly names to full provider model ids.
var modelShortcuts = map[string]string{
	"claude-3-haiku":  "claude-3-haiku-20240307",
	"claude-3-opus":   "claude-3-opus-20240229",
	"claude-3-sonnet": "claude-3-sonnet-20240229",
	"claude-2":        "claude-2.1",
	"gpt-4":           "gpt-4-turbo-preview",
	"gpt-3.5":         "gpt-3.5-turbo",
}

// ResolveModel expands a shortcut to the full model id; unknown names
// pass through unchanged.
func ResolveModel(name string) string {
	if full, ok := modelShortcuts[name]; ok {
		return full
	}
	return name
}

// Manager wraps a ModelClient and resolves model shortcuts before
// delegating.
type Manager struct {
	client domain.ModelClient
}

func NewManager(client domain.ModelClient) *Manager {
	return &Manager{client: client}
}

func (m *Manager) Complete(ctx context.Context, model string, messages []domain.Message) (string, error) {
	return m.client.Complete(ctx, ResolveModel(model), messages)
}
