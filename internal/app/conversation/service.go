// Package conversation is the conversation-history core: it owns
// conversation lifecycle and message append, keeps the in-memory cache
// consistent with the blob store, tracks the active conversation, and
// assembles token-budgeted prompts for the model backend.
package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lugia-ai/lugia/internal/cache"
	"github.com/lugia-ai/lugia/internal/domain"
	"github.com/lugia-ai/lugia/internal/observability"
	"github.com/lugia-ai/lugia/internal/tokens"
)

// CounterProvider resolves a model identifier to its token counter.
type CounterProvider func(model string) (tokens.Counter, error)

type Service struct {
	store        domain.BlobStore
	cache        *cache.Cache
	active       ActiveConversation
	systemPrompt string
	counters     CounterProvider
	now          func() time.Time
	newMessageID func() domain.MessageID
}

func NewService(store domain.BlobStore, histCache *cache.Cache, systemPrompt string) *Service {
	return NewServiceWith(store, histCache, systemPrompt, tokens.ForModel)
}

// NewServiceWith lets callers supply the counter provider; tests use a
// deterministic counter instead of a real tokenizer.
func NewServiceWith(store domain.BlobStore, histCache *cache.Cache, systemPrompt string, counters CounterProvider) *Service {
	return &Service{
		store:        store,
		cache:        histCache,
		systemPrompt: systemPrompt,
		counters:     counters,
		now:          time.Now,
		newMessageID: func() domain.MessageID { return domain.MessageID(uuid.NewString()) },
	}
}

// ActiveConversation returns the conversation current requests should
// target, reporting false when none is selected.
func (s *Service) ActiveConversation() (domain.ConversationID, bool) {
	return s.active.Get()
}

func (s *Service) SetActiveConversation(id domain.ConversationID) {
	s.active.Set(id)
}

// CreateConversation persists a fresh, empty conversation and returns
// its id. The active pointer is deliberately untouched: selecting the
// new conversation is the caller's decision.
func (s *Service) CreateConversation(ctx context.Context) (domain.ConversationID, error) {
	log := observability.LoggerFromContext(ctx)

	id := domain.NewConversationID(s.now())

	// Second-resolution timestamps collide when two creates land in the
	// same second; disambiguate with a random suffix.
	if exists, err := s.store.Exists(ctx, id.Key()); err == nil && exists {
		id = id.WithSuffix(uuid.NewString()[:8])
	}

	if err := s.store.Put(ctx, id.Key(), []byte("[]")); err != nil {
		log.Error("failed to create conversation", "conversation", id, "error", err)
		return "", fmt.Errorf("%w: creating conversation: %v", domain.ErrBackendUnavailable, err)
	}

	s.cache.Invalidate(id)

	log.Info("conversation created", "conversation", id)
	return id, nil
}

// ListConversations enumerates every conversation known to the store,
// in id order (lexicographic, which the id format makes chronological).
// A store failure is non-fatal to the caller: it logs and returns an
// empty list.
func (s *Service) ListConversations(ctx context.Context) []domain.ConversationID {
	log := observability.LoggerFromContext(ctx)

	keys, err := s.store.List(ctx, domain.ConversationKeyPrefix)
	if err != nil {
		log.Error("failed to list conversations", "error", err)
		return nil
	}

	ids := make([]domain.ConversationID, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, domain.ConversationIDFromKey(key))
	}
	return ids
}

// LoadHistory is the authoritative read path: it bypasses the cache and
// reads the full message sequence from the store. Missing and corrupt
// payloads both come back as an empty history — for reads, "no history
// yet" and "never existed" are the same thing.
func (s *Service) LoadHistory(ctx context.Context, id domain.ConversationID) []domain.Message {
	messages, _ := s.loadHistory(ctx, id)
	return messages
}

// loadHistory additionally reports whether the store itself failed, so
// callers that fill the cache can avoid installing an empty history
// that only reflects an unreachable backend.
func (s *Service) loadHistory(ctx context.Context, id domain.ConversationID) ([]domain.Message, error) {
	log := observability.LoggerFromContext(ctx).With("conversation", id)

	data, err := s.store.Get(ctx, id.Key())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.Message{}, nil
		}
		log.Warn("failed to load conversation history", "error", err)
		return []domain.Message{}, err
	}

	var messages []domain.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		log.Warn("corrupt conversation payload, treating as empty history", "error", err)
		return []domain.Message{}, nil
	}
	return messages, nil
}

// AddMessage appends one turn to a conversation. The durable write is a
// read-modify-write of the whole payload and is not atomic across
// processes: two concurrent appends to the same conversation can lose
// the first write. Required hardening: serialize appends behind a
// per-conversation-id writer before running more than one instance.
func (s *Service) AddMessage(ctx context.Context, role domain.Role, content string, id domain.ConversationID) error {
	if id == "" {
		return fmt.Errorf("%w: conversation id not provided", domain.ErrNotAdded)
	}

	log := observability.LoggerFromContext(ctx).With("conversation", id, "role", role)

	data, err := s.store.Get(ctx, id.Key())
	if err != nil {
		log.Error("failed to read conversation before append", "error", err)
		return fmt.Errorf("%w: reading conversation: %v", domain.ErrNotAdded, err)
	}

	var messages []domain.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		log.Warn("corrupt conversation payload, starting from empty history", "error", err)
		messages = nil
	}

	msg := domain.Message{
		ID:        s.newMessageID(),
		Role:      role,
		Content:   content,
		Timestamp: s.now().UTC(),
	}
	messages = append(messages, msg)

	payload, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding conversation: %v", domain.ErrNotAdded, err)
	}

	if err := s.store.Put(ctx, id.Key(), payload); err != nil {
		log.Error("failed to persist message", "error", err)
		return fmt.Errorf("%w: writing conversation: %v", domain.ErrNotAdded, err)
	}

	// Write-through: the cached entry must reflect every append made
	// through this instance. On a miss, install the sequence we just
	// persisted rather than re-reading the store.
	if !s.cache.Append(id, msg) {
		s.cache.Put(id, messages)
	}

	log.Info("message added", "message_id", msg.ID)
	return nil
}

// SwitchConversation verifies the target exists (an existence check,
// not a full load) and clears the cache so no entry from the previous
// conversation survives under the refreshed pointer. A missing target
// is domain.ErrNotFound; the active pointer itself stays with the
// caller.
func (s *Service) SwitchConversation(ctx context.Context, id domain.ConversationID) error {
	log := observability.LoggerFromContext(ctx).With("conversation", id)

	exists, err := s.store.Exists(ctx, id.Key())
	if err != nil {
		log.Error("failed to check conversation existence", "error", err)
		return fmt.Errorf("%w: checking conversation: %v", domain.ErrBackendUnavailable, err)
	}
	if !exists {
		log.Warn("conversation not found on switch")
		return domain.ErrNotFound
	}

	s.cache.Clear()
	return nil
}

// DeleteConversation removes the conversation from the store, drops its
// cache entry, and clears the active pointer if it referenced the
// deleted conversation. Deleting a conversation that does not exist is
// a reported failure, not a no-op.
func (s *Service) DeleteConversation(ctx context.Context, id domain.ConversationID) error {
	log := observability.LoggerFromContext(ctx).With("conversation", id)

	if err := s.store.Delete(ctx, id.Key()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn("conversation not found on delete")
			return domain.ErrNotFound
		}
		log.Error("failed to delete conversation", "error", err)
		return fmt.Errorf("%w: deleting conversation: %v", domain.ErrBackendUnavailable, err)
	}

	s.cache.Invalidate(id)
	s.active.ClearIf(id)

	log.Info("conversation deleted")
	return nil
}
