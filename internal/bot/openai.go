package bot

import (
	"context"
	"fmt"
	"log"

	"music-chatter/internal/config"
	"music-chatter/internal/llm"
	"music-chatter/internal/music"
)

// OpenAIBot grounds replies with a two-phase flow: a criteria-extraction
// prompt first, then the actual chat completion with matching records
// injected into the user turn.
type OpenAIBot struct {
	base
	client llm.Client
}

func NewOpenAI(client llm.Client, settings *config.Settings, store music.Store) (*OpenAIBot, error) {
	if client == nil {
		return nil, fmt.Errorf("llm client is required")
	}
	b, err := newBase("OpenAI", settings, store)
	if err != nil {
		return nil, err
	}
	return &OpenAIBot{base: b, client: client}, nil
}

func (b *OpenAIBot) Chat(ctx context.Context, userMessage string, opts ...Option) Reply {
	if err := b.beginTurn(userMessage); err != nil {
		return Reply{Message: b.settings.Errors.General, Err: err}
	}
	o := applyOptions(opts)

	// Phase one: ask the model which search attributes the user provided.
	options := b.rememberOptions(b.lookupOptions(ctx, userMessage))

	userContent := userMessage
	if len(options) > 0 {
		log.Printf("[%s] injecting %d records into llm context", b.name, len(options))
		userContent = fmt.Sprintf("User message:\n%q\n\nAvailable options:\n%s", userMessage, optionsBlock(options))
	}

	messages := []llm.Message{{Role: "system", Content: b.settings.PromptBehavior}}
	messages = append(messages, b.priorMessages()...)
	messages = append(messages, llm.Message{Role: "user", Content: userContent})

	temp := *b.settings.OpenAI.Temperature
	if o.temperature != nil {
		temp = *o.temperature
	}
	resp, err := b.client.Generate(ctx, llm.Request{Messages: messages, Temperature: temp})
	if err != nil {
		return b.failTurn(err)
	}
	if resp.Content == "" {
		return b.failTurn(fmt.Errorf("backend returned empty message"))
	}

	return b.finishTurn(resp.Content, options)
}

// lookupOptions runs the criteria-extraction call and resolves the result
// against the database. Any failure here degrades to an ungrounded reply
// instead of failing the turn.
func (b *OpenAIBot) lookupOptions(ctx context.Context, userMessage string) []music.Record {
	prompt := b.settings.PromptRecommendations + "\n\nUser message: " + userMessage
	resp, err := b.client.Generate(ctx, llm.Request{
		Messages:    []llm.Message{{Role: "system", Content: prompt}},
		Temperature: *b.settings.OpenAI.FunctionsTemperature,
	})
	if err != nil {
		log.Printf("[%s] criteria extraction failed: %v", b.name, err)
		return nil
	}

	attrs, ok := extractJSON(resp.Content)
	if !ok {
		return nil
	}
	criteria := parseCriteria(attrs)
	log.Printf("[%s] user preferences: %+v", b.name, criteria)
	return b.findOptions(ctx, criteria)
}
