package conversation

import (
	"sync"

	"github.com/lugia-ai/lugia/internal/domain"
)

// ActiveConversation is the process-wide pointer to the conversation
// requests target when they do not name one. Concurrent Set calls are
// last-writer-wins; readers always observe a fully written value. The
// selector never creates a conversation on its own — a caller that
// finds no active conversation must refuse, not auto-create.
type ActiveConversation struct {
	mu sync.RWMutex
	id domain.ConversationID
}

// Get returns the current target, reporting false when none is set.
func (a *ActiveConversation) Get() (domain.ConversationID, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.id, a.id != ""
}

func (a *ActiveConversation) Set(id domain.ConversationID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.id = id
}

// ClearIf resets the pointer only if it currently references id, so a
// delete of conversation X cannot clobber a concurrent switch to Y.
func (a *ActiveConversation) ClearIf(id domain.ConversationID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.id != id {
		return false
	}
	a.id = ""
	return true
}
