package transcript

import (
	"time"

	"music-chatter/internal/citation"
)

// Event records a single chat turn: the user's message and the reply one
// bot produced for it, with the citations backing the reply.
// Events are expected to be appended in chronological order.
type Event struct {
	Timestamp   time.Time           `json:"timestamp"`
	Session     string              `json:"session"`
	Bot         string              `json:"bot"`
	UserMessage string              `json:"user_message"`
	BotMessage  string              `json:"bot_message"`
	Citations   []citation.Citation `json:"citations,omitempty"`
}

// Recorder abstracts persistence of chat events.
// Implementations must be safe for concurrent use.
type Recorder interface {
	Append(event Event) error
	Load() ([]Event, error)
}
