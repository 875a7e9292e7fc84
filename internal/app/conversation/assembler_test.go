package conversation_test

import (
	"context"
	"strings"
	"testing"

	"github.com/lugia-ai/lugia/internal/adapters/storage/memory"
	"github.com/lugia-ai/lugia/internal/app/conversation"
	"github.com/lugia-ai/lugia/internal/cache"
	"github.com/lugia-ai/lugia/internal/domain"
	"github.com/lugia-ai/lugia/internal/tokens"
)

func newAssemblerService(t *testing.T, costs map[string]int) (*conversation.Service, domain.ConversationID) {
	t.Helper()

	store := memory.NewStore()
	histCache, err := cache.New(10)
	if err != nil {
		t.Fatalf("cache.New failed: %v", err)
	}

	svc := conversation.NewServiceWith(store, histCache, "system prompt", testCounters(costs))

	id, err := svc.CreateConversation(context.Background())
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	return svc, id
}

func seed(t *testing.T, svc *conversation.Service, id domain.ConversationID, turns ...domain.Message) {
	t.Helper()
	for _, turn := range turns {
		if err := svc.AddMessage(context.Background(), turn.Role, turn.Content, id); err != nil {
			t.Fatalf("AddMessage(%q) failed: %v", turn.Content, err)
		}
	}
}

func TestAssemblePromptShape(t *testing.T) {
	ctx := context.Background()
	svc, id := newAssemblerService(t, nil)
	seed(t, svc, id,
		domain.Message{Role: domain.RoleUser, Content: "how do I test this"},
		domain.Message{Role: domain.RoleAssistant, Content: "write a table test"},
	)

	msgs, err := svc.AssemblePrompt(ctx, id, "any-model", 1000)
	if err != nil {
		t.Fatalf("AssemblePrompt failed: %v", err)
	}

	if len(msgs) != 2 {
		t.Fatalf("expected exactly 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != domain.RoleSystem || msgs[0].Content != "system prompt" {
		t.Fatalf("first message should carry the system prompt: %+v", msgs[0])
	}
	if msgs[1].Role != domain.RoleUser {
		t.Fatalf("second message should be a user message: %+v", msgs[1])
	}

	body := msgs[1].Content
	if !strings.Contains(body, "<user>how do I test this</user>") {
		t.Fatalf("user turn missing from wrapper: %q", body)
	}
	if !strings.Contains(body, "<engineer>write a table test</engineer>") {
		t.Fatalf("assistant turn missing from wrapper: %q", body)
	}
	if !strings.Contains(body, "<question>write a table test</question>") {
		t.Fatalf("last turn not restated as question: %q", body)
	}
}

func TestTruncationStopsAtFirstOverflow(t *testing.T) {
	ctx := context.Background()

	// System prompt reserves 10 of the 50-token budget. Costs oldest to
	// newest are 20, 15, 10: the walk admits 10 (total 20) and 15
	// (total 35), then stops at 20 (would be 55).
	costs := map[string]int{
		"system prompt": 10,
		"oldest":        20,
		"middle":        15,
		"newest":        10,
	}
	svc, id := newAssemblerService(t, costs)
	seed(t, svc, id,
		domain.Message{Role: domain.RoleUser, Content: "oldest"},
		domain.Message{Role: domain.RoleAssistant, Content: "middle"},
		domain.Message{Role: domain.RoleUser, Content: "newest"},
	)

	msgs, err := svc.AssemblePrompt(ctx, id, "any-model", 50)
	if err != nil {
		t.Fatalf("AssemblePrompt failed: %v", err)
	}

	body := msgs[1].Content
	if strings.Contains(body, "oldest") {
		t.Fatalf("message beyond the budget was included: %q", body)
	}
	if !strings.Contains(body, "<engineer>middle</engineer>") || !strings.Contains(body, "<user>newest</user>") {
		t.Fatalf("expected the two newest messages, got %q", body)
	}

	// Chronological order inside the wrapper.
	if strings.Index(body, "middle") > strings.Index(body, "newest") {
		t.Fatalf("truncated history not in chronological order: %q", body)
	}
	if !strings.Contains(body, "<question>newest</question>") {
		t.Fatalf("question should restate the newest message: %q", body)
	}
}

func TestTruncationNeverSkipsPastAnOverflow(t *testing.T) {
	ctx := context.Background()

	// The middle message alone overflows. Even though the oldest one
	// would fit, the walk must stop: the result is always a contiguous
	// suffix, never a history with a hole in it.
	costs := map[string]int{
		"system prompt": 10,
		"oldest":        5,
		"middle":        100,
		"newest":        10,
	}
	svc, id := newAssemblerService(t, costs)
	seed(t, svc, id,
		domain.Message{Role: domain.RoleUser, Content: "oldest"},
		domain.Message{Role: domain.RoleAssistant, Content: "middle"},
		domain.Message{Role: domain.RoleUser, Content: "newest"},
	)

	msgs, err := svc.AssemblePrompt(ctx, id, "any-model", 50)
	if err != nil {
		t.Fatalf("AssemblePrompt failed: %v", err)
	}

	body := msgs[1].Content
	if strings.Contains(body, "oldest") || strings.Contains(body, "middle") {
		t.Fatalf("expected only the newest message, got %q", body)
	}
	if !strings.Contains(body, "<user>newest</user>") {
		t.Fatalf("newest message missing: %q", body)
	}
}

func TestAssembleWithNothingInBudget(t *testing.T) {
	ctx := context.Background()

	// The system prompt alone exhausts the budget: the truncated set is
	// empty and the question restatement must be skipped, not indexed.
	costs := map[string]int{"system prompt": 10}
	svc, id := newAssemblerService(t, costs)
	seed(t, svc, id,
		domain.Message{Role: domain.RoleUser, Content: "one two three"},
		domain.Message{Role: domain.RoleAssistant, Content: "four five"},
		domain.Message{Role: domain.RoleUser, Content: "six"},
	)

	msgs, err := svc.AssemblePrompt(ctx, id, "any-model", 10)
	if err != nil {
		t.Fatalf("AssemblePrompt failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}

	body := msgs[1].Content
	if !strings.Contains(body, "<conversation>") {
		t.Fatalf("wrapper missing: %q", body)
	}
	if strings.Contains(body, "<question>") {
		t.Fatalf("question block must be omitted for an empty truncation: %q", body)
	}
}

func TestAssembleEmptyConversation(t *testing.T) {
	ctx := context.Background()
	svc, id := newAssemblerService(t, nil)

	msgs, err := svc.AssemblePrompt(ctx, id, "any-model", 100)
	if err != nil {
		t.Fatalf("AssemblePrompt on empty conversation failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if strings.Contains(msgs[1].Content, "<question>") {
		t.Fatalf("no question expected for an empty conversation: %q", msgs[1].Content)
	}
}

func TestAssembleIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, id := newAssemblerService(t, nil)
	seed(t, svc, id,
		domain.Message{Role: domain.RoleUser, Content: "first"},
		domain.Message{Role: domain.RoleAssistant, Content: "second"},
	)

	a, err := svc.AssemblePrompt(ctx, id, "any-model", 1000)
	if err != nil {
		t.Fatalf("AssemblePrompt failed: %v", err)
	}
	b, err := svc.AssemblePrompt(ctx, id, "any-model", 1000)
	if err != nil {
		t.Fatalf("AssemblePrompt failed: %v", err)
	}

	for i := range a {
		if a[i].Role != b[i].Role || a[i].Content != b[i].Content {
			t.Fatalf("assembly not idempotent at %d:\n%+v\n%+v", i, a[i], b[i])
		}
	}
}

func TestAssembleUnknownModelFailsLoudly(t *testing.T) {
	store := memory.NewStore()
	histCache, err := cache.New(10)
	if err != nil {
		t.Fatalf("cache.New failed: %v", err)
	}
	svc := conversation.NewServiceWith(store, histCache, "system prompt", tokens.ForModel)

	if _, err := svc.AssemblePrompt(context.Background(), "conversation_x.json", "definitely-not-a-model", 100); err == nil {
		t.Fatalf("expected an error for an unknown model, got nil")
	}
}
