// Package bot normalizes the LLM backends behind one chat contract:
// a bot owns its conversation history, grounds replies in the music
// database and validates them through citation extraction.
package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"music-chatter/internal/citation"
	"music-chatter/internal/config"
	"music-chatter/internal/history"
	"music-chatter/internal/llm"
	"music-chatter/internal/music"
)

// Reply is the outcome of one chat turn. Message is always non-empty and
// safe to show to the user; Err carries the underlying backend failure for
// logging and is nil on a clean turn.
type Reply struct {
	Message   string              `json:"message"`
	Citations []citation.Citation `json:"citations"`
	Err       error               `json:"-"`
}

// Bot is a single-conversation chat bot bound to one backend at
// construction time. Implementations perform at most one in-flight backend
// call at a time and must not be shared across conversations.
type Bot interface {
	Chat(ctx context.Context, userMessage string, opts ...Option) Reply
	History() []history.Turn
	Name() string
}

// Option overrides per-call sampling parameters.
type Option func(*callOptions)

type callOptions struct {
	temperature *float32
}

// WithTemperature overrides the configured reply temperature for one call.
func WithTemperature(t float32) Option {
	return func(o *callOptions) { o.temperature = &t }
}

func applyOptions(opts []Option) callOptions {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// base carries the state and policy shared by every backend variant.
type base struct {
	name      string
	settings  *config.Settings
	store     music.Store
	extractor *citation.Extractor
	log       *history.Log

	// candidates is the pool of records offered to the backend so far.
	// It outlives the turn that fetched them: a follow-up turn can cite
	// the song recommended previously even when its own lookup is empty.
	candidates []music.Record
}

func newBase(name string, settings *config.Settings, store music.Store) (base, error) {
	if store == nil {
		return base{}, fmt.Errorf("music store is required")
	}
	ex, err := citation.New(settings.Citation.Pattern, settings.Citation.Field, *settings.Citation.Threshold)
	if err != nil {
		return base{}, err
	}
	return base{
		name:      name,
		settings:  settings,
		store:     store,
		extractor: ex,
		log:       history.NewLog(),
	}, nil
}

func (b *base) Name() string { return b.name }

func (b *base) History() []history.Turn { return b.log.Turns() }

// beginTurn validates the user message and appends it to history.
func (b *base) beginTurn(userMessage string) error {
	if strings.TrimSpace(userMessage) == "" {
		return fmt.Errorf("user message must not be empty")
	}
	b.log.AppendUser(userMessage)
	return nil
}

// failTurn reports a backend failure. The user turn stays in history; no
// assistant turn is recorded.
func (b *base) failTurn(err error) Reply {
	log.Printf("[%s] backend error: %v", b.name, err)
	return Reply{Message: b.settings.Errors.General, Err: err}
}

// finishTurn applies the grounding policy to the raw backend text, records
// the assistant turn and returns the final reply.
func (b *base) finishTurn(botMessage string, candidates []music.Record) Reply {
	botMessage = collapseWhitespace(botMessage)
	citations := b.extractor.Extract(botMessage, candidates)

	uncited := len(citations) == 0
	quoted := strings.Contains(botMessage, `"`)
	if (b.settings.Citation.FilterUncited && quoted && uncited) ||
		(b.settings.Citation.RequireCitations && uncited) {
		log.Printf("[%s] no citation found on bot message: %q", b.name, botMessage)
		botMessage = b.settings.Errors.NoCitation
		citations = nil
	}

	b.log.AppendAssistant(botMessage, citations)
	return Reply{Message: botMessage, Citations: citations}
}

// findOptions looks up a bounded set of matching records to inject as
// grounding context. Injecting the whole database would pay for every
// record on every request.
func (b *base) findOptions(ctx context.Context, c music.Criteria) []music.Record {
	if c.IsZero() {
		return nil
	}
	records, err := b.store.Find(ctx, c, b.settings.MaxOptions)
	if err != nil {
		log.Printf("[%s] database lookup failed: %v", b.name, err)
		return nil
	}
	return records
}

// rememberOptions folds this turn's lookup results into the candidate pool
// used for context injection and citation extraction, newest first, and
// returns the pool. An empty lookup keeps the previous pool.
func (b *base) rememberOptions(records []music.Record) []music.Record {
	if len(records) == 0 {
		return b.candidates
	}
	merged := make([]music.Record, 0, len(records)+len(b.candidates))
	merged = append(merged, records...)
	for _, r := range b.candidates {
		if !hasRecord(merged, r) {
			merged = append(merged, r)
		}
	}
	b.candidates = merged
	return b.candidates
}

func hasRecord(records []music.Record, r music.Record) bool {
	for _, x := range records {
		if x == r {
			return true
		}
	}
	return false
}

// optionsBlock renders the injected records the way they are presented to
// the backend, one JSON object per record.
func optionsBlock(records []music.Record) string {
	parts := make([]string, 0, len(records))
	for _, r := range records {
		raw, err := json.Marshal(r)
		if err != nil {
			continue
		}
		parts = append(parts, string(raw))
	}
	return strings.Join(parts, ";\n\n")
}

// priorMessages converts every turn before the current user turn into
// backend messages.
func (b *base) priorMessages() []llm.Message {
	turns := b.log.Turns()
	if len(turns) == 0 {
		return nil
	}
	turns = turns[:len(turns)-1]
	out := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		out = append(out, llm.Message{Role: string(t.Role), Content: t.Content})
	}
	return out
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
