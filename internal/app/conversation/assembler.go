package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"github.com/lugia-ai/lugia/internal/domain"
	"github.com/lugia-ai/lugia/internal/observability"
	"github.com/lugia-ai/lugia/internal/tokens"
)

// userPromptTemplate wraps the truncated history for the model: user
// and assistant turns are tagged distinguishably, and the last turn is
// restated as the explicit trailing question. The question block is
// omitted entirely when truncation left no messages.
var userPromptTemplate = prompts.PromptTemplate{
	Template: `<conversation>
{{.history}}</conversation>
{{- if .question}}

<question>{{.question}}</question>
{{- end}}`,
	InputVariables: []string{"history", "question"},
	TemplateFormat: prompts.TemplateFormatGoTemplate,
}

// truncateHistory selects the most recent contiguous suffix of the
// conversation that fits the token budget, reading through the cache
// (and filling it from the store on a miss). The system prompt's cost
// is reserved first. The walk is newest to oldest and stops at the
// first message that would overflow: older messages are never
// considered once one is rejected, even if a smaller one would fit.
func (s *Service) truncateHistory(ctx context.Context, id domain.ConversationID, counter tokens.Counter, tokenLimit int) []domain.Message {
	history, ok := s.cache.Get(id)
	if !ok {
		var err error
		history, err = s.loadHistory(ctx, id)
		if err == nil {
			s.cache.Put(id, history)
		}
	}

	total := counter.Count(s.systemPrompt)

	var truncated []domain.Message
	for i := len(history) - 1; i >= 0; i-- {
		cost := counter.Count(history[i].Content)
		if total+cost > tokenLimit {
			break
		}
		truncated = append(truncated, history[i])
		total += cost
	}

	// Back to chronological order.
	for i, j := 0, len(truncated)-1; i < j; i, j = i+1, j-1 {
		truncated[i], truncated[j] = truncated[j], truncated[i]
	}
	return truncated
}

// AssemblePrompt builds the two-message sequence submitted to the model
// backend: the static system prompt, then a single user message
// embedding the token-budgeted suffix of the conversation. It performs
// no I/O beyond the cache fill and is idempotent for unchanged history.
func (s *Service) AssemblePrompt(ctx context.Context, id domain.ConversationID, model string, tokenLimit int) ([]domain.Message, error) {
	log := observability.LoggerFromContext(ctx).With("conversation", id, "model", model)

	counter, err := s.counters(model)
	if err != nil {
		log.Error("failed to resolve token counter", "error", err)
		return nil, err
	}

	truncated := s.truncateHistory(ctx, id, counter, tokenLimit)

	var history strings.Builder
	for _, msg := range truncated {
		switch msg.Role {
		case domain.RoleUser:
			fmt.Fprintf(&history, "<user>%s</user>\n", msg.Content)
		case domain.RoleAssistant:
			fmt.Fprintf(&history, "<engineer>%s</engineer>\n", msg.Content)
		}
	}

	question := ""
	if len(truncated) > 0 {
		question = truncated[len(truncated)-1].Content
	}

	userContent, err := userPromptTemplate.Format(map[string]any{
		"history":  history.String(),
		"question": question,
	})
	if err != nil {
		return nil, fmt.Errorf("formatting user prompt: %w", err)
	}

	now := s.now().UTC()
	return []domain.Message{
		{
			ID:        s.newMessageID(),
			Role:      domain.RoleSystem,
			Content:   s.systemPrompt,
			Timestamp: now,
		},
		{
			ID:        s.newMessageID(),
			Role:      domain.RoleUser,
			Content:   strings.TrimSpace(userContent),
			Timestamp: now,
		},
	}, nil
}
