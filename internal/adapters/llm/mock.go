package llm

import (
	"context"
	"fmt"

	"github.com/lugia-ai/lugia/internal/domain"
)

// MockClient is a deterministic stand-in for local development and
// tests.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Complete(ctx context.Context, model string, messages []domain.Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("mock: empty prompt")
	}
	last := messages[len(messages)-1]
	return fmt.Sprintf("[%s] echo: %d chars of prompt", model, len(last.Content)), nil
}
