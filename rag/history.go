package rag

import (
	"sync"

	"audiobook/types"
)

// Conversation is the append-only log of turns for one session. Turns are
// only ever appended after a successful answer; the log is wiped when the
// active document changes so history about one document cannot leak into
// another document's context.
type Conversation struct {
	mu    sync.RWMutex
	turns []types.ConversationTurn
}

func NewConversation() *Conversation {
	return &Conversation{}
}

func (c *Conversation) Append(turn types.ConversationTurn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, turn)
}

// Recent returns the last n turns in order, or fewer if the log is shorter.
func (c *Conversation) Recent(n int) []types.ConversationTurn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if n <= 0 || len(c.turns) == 0 {
		return nil
	}
	if n > len(c.turns) {
		n = len(c.turns)
	}
	out := make([]types.ConversationTurn, n)
	copy(out, c.turns[len(c.turns)-n:])
	return out
}

// Turns returns a copy of the full log.
func (c *Conversation) Turns() []types.ConversationTurn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.ConversationTurn, len(c.turns))
	copy(out, c.turns)
	return out
}

func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = nil
}
