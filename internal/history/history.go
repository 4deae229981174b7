package history

import (
	"sync"

	"music-chatter/internal/citation"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of a conversation. Assistant turns carry the citations
// extracted from the message.
type Turn struct {
	Role      Role                `json:"role"`
	Content   string              `json:"content"`
	Citations []citation.Citation `json:"citations,omitempty"`
}

// Log is an append-only conversation history owned by a single bot
// instance. It only ever grows; a process restart clears it.
type Log struct {
	mu    sync.RWMutex
	turns []Turn
}

func NewLog() *Log {
	return &Log{}
}

func (l *Log) AppendUser(content string) {
	l.append(Turn{Role: RoleUser, Content: content})
}

func (l *Log) AppendAssistant(content string, citations []citation.Citation) {
	l.append(Turn{Role: RoleAssistant, Content: content, Citations: citations})
}

func (l *Log) append(t Turn) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = append(l.turns, t)
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}

// Turns returns a copy of the log so callers cannot mutate internal state.
func (l *Log) Turns() []Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out
}
