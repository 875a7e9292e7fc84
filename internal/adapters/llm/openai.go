package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/lugia-ai/lugia/internal/domain"
)

// OpenAIClient implements domain.ModelClient against the OpenAI chat
// API. Credentials come from OPENAI_API_KEY.
type OpenAIClient struct {
	llm *openai.LLM
}

func NewOpenAIClient() (*OpenAIClient, error) {
	client, err := openai.New()
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}
	return &OpenAIClient{llm: client}, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, model string, messages []domain.Message) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		var role llms.ChatMessageType
		switch msg.Role {
		case domain.RoleSystem:
			role = llms.ChatMessageTypeSystem
		case domain.RoleAssistant:
			role = llms.ChatMessageTypeAI
		default:
			role = llms.ChatMessageTypeHuman
		}
		content = append(content, llms.TextParts(role, msg.Content))
	}

	resp, err := c.llm.GenerateContent(ctx, content,
		llms.WithModel(model),
		llms.WithMaxTokens(maxOutputTokens),
	)
	if err != nil {
		return "", fmt.Errorf("openai generate content: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return "", fmt.Errorf("openai returned empty completion")
	}

	return resp.Choices[0].Content, nil
}
