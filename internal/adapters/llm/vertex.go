package llm

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"

	"github.com/lugia-ai/lugia/internal/domain"
)

// VertexClient implements domain.ModelClient on Vertex AI (Gemini).
type VertexClient struct {
	client *genai.Client
}

// NewVertexClient creates the Vertex AI backend. Project and region
// come from the environment to keep wiring simple.
func NewVertexClient(ctx context.Context) (*VertexClient, error) {
	projectID := os.Getenv("LUGIA_GCP_PROJECT")
	location := os.Getenv("LUGIA_GCP_LOCATION")
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("LUGIA_GCP_PROJECT and LUGIA_GCP_LOCATION must be set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &VertexClient{client: client}, nil
}

func (v *VertexClient) Complete(ctx context.Context, model string, messages []domain.Message) (string, error) {
	var system string
	var contents []*genai.Content

	for _, msg := range messages {
		switch msg.Role {
		case domain.RoleSystem:
			system = msg.Content
		case domain.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: maxOutputTokens,
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	res, err := v.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("vertex generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("vertex returned empty text")
	}
	return text, nil
}
