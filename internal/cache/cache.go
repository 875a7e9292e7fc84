// Package cache holds the in-memory view of conversation histories: a
// bounded, least-recently-used map from conversation id to its ordered
// message sequence, as last observed by this process. It exists so the
// prompt assembler does not pay a store round trip on every call.
package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lugia-ai/lugia/internal/domain"
)

// DefaultCapacity is used when no capacity is configured.
const DefaultCapacity = 1000

// Cache wraps an LRU keyed by conversation id. Eviction drops exactly
// the least recently used entry and never touches the store. All
// operations are safe for concurrent use; none performs I/O.
type Cache struct {
	// mu serializes read-modify-write operations (Append); the LRU's
	// own lock only covers single calls. Held for in-memory work only.
	mu      sync.Mutex
	entries *lru.Cache[domain.ConversationID, []domain.Message]
}

func New(capacity int) (*Cache, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	entries, err := lru.New[domain.ConversationID, []domain.Message](capacity)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries}, nil
}

// Get returns the cached history and marks the entry most recently
// used.
func (c *Cache) Get(id domain.ConversationID) ([]domain.Message, bool) {
	return c.entries.Get(id)
}

// Put replaces the entry and marks it most recently used.
func (c *Cache) Put(id domain.ConversationID, messages []domain.Message) {
	c.entries.Add(id, messages)
}

// Append adds a message to an entry that is already present and
// reports whether it did. A miss is the caller's signal to load the
// authoritative history from the store and Put it instead; appending
// to a history the process has never observed would fabricate one.
func (c *Cache) Append(id domain.ConversationID, msg domain.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	messages, ok := c.entries.Get(id)
	if !ok {
		return false
	}
	c.entries.Add(id, append(messages, msg))
	return true
}

// Invalidate removes the entry, if present.
func (c *Cache) Invalidate(id domain.ConversationID) {
	c.entries.Remove(id)
}

// Clear drops every entry. Used when switching the active conversation
// so no stale cross-conversation history survives the switch.
func (c *Cache) Clear() {
	c.entries.Purge()
}

func (c *Cache) Len() int {
	return c.entries.Len()
}
