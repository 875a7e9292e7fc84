package domain

import (
	"strings"
	"time"
)

// Message is one immutable turn in a conversation. The JSON field names
// are the persisted representation and must not change: stored
// conversations are ordered arrays of these objects.
type Message struct {
	ID        MessageID `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	// ConversationKeyPrefix is where conversation payloads live in the
	// blob store.
	ConversationKeyPrefix = "conversation_history/"

	conversationIDPrefix = "conversation_"
	conversationIDSuffix = ".json"
)

// NewConversationID derives an identifier from the creation instant.
// Second resolution keeps lexicographic order aligned with creation
// order; callers that hit a collision append a suffix via WithSuffix.
func NewConversationID(t time.Time) ConversationID {
	return ConversationID(conversationIDPrefix + t.Format("20060102_150405") + conversationIDSuffix)
}

// WithSuffix returns the id with a distinguishing suffix inserted
// before the .json extension.
func (id ConversationID) WithSuffix(suffix string) ConversationID {
	base := strings.TrimSuffix(string(id), conversationIDSuffix)
	return ConversationID(base + "_" + suffix + conversationIDSuffix)
}

// Valid reports whether the id matches the conversation_<...>.json
// naming scheme.
func (id ConversationID) Valid() bool {
	s := string(id)
	return strings.HasPrefix(s, conversationIDPrefix) &&
		strings.HasSuffix(s, conversationIDSuffix) &&
		!strings.Contains(s, "/")
}

// Key is the blob-store key holding this conversation's history.
func (id ConversationID) Key() string {
	return ConversationKeyPrefix + string(id)
}

// ConversationIDFromKey strips the store prefix from a listed key.
func ConversationIDFromKey(key string) ConversationID {
	return ConversationID(strings.TrimPrefix(key, ConversationKeyPrefix))
}
