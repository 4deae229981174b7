package bot

import (
	"context"
	"fmt"
	"log"

	"music-chatter/internal/config"
	"music-chatter/internal/llm"
	"music-chatter/internal/music"
)

// YandexBot is the alternate-provider variant. Criteria extraction runs as
// a plain completion, then the chat call carries the behavior prompt (plus
// any matching records) as system context over the rolling history.
type YandexBot struct {
	base
	client llm.Client
}

func NewYandex(client llm.Client, settings *config.Settings, store music.Store) (*YandexBot, error) {
	if client == nil {
		return nil, fmt.Errorf("llm client is required")
	}
	b, err := newBase("YandexGPT", settings, store)
	if err != nil {
		return nil, err
	}
	return &YandexBot{base: b, client: client}, nil
}

func (b *YandexBot) Chat(ctx context.Context, userMessage string, opts ...Option) Reply {
	if err := b.beginTurn(userMessage); err != nil {
		return Reply{Message: b.settings.Errors.General, Err: err}
	}
	o := applyOptions(opts)

	options := b.rememberOptions(b.lookupOptions(ctx, userMessage))

	system := b.settings.PromptBehavior
	if len(options) > 0 {
		log.Printf("[%s] injecting %d records into llm context", b.name, len(options))
		system += "\n\nAvailable options:\n\n" + optionsBlock(options)
	}

	// The chat API expects strictly alternating turns; trim the oldest
	// message when the window starts on an assistant turn.
	prior := b.priorMessages()
	if len(prior)%2 != 0 {
		prior = prior[1:]
	}

	messages := []llm.Message{{Role: "system", Content: system}}
	messages = append(messages, prior...)
	messages = append(messages, llm.Message{Role: "user", Content: userMessage})

	temp := *b.settings.Yandex.Temperature
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

func (b *YandexBot) lookupOptions(ctx context.Context, userMessage string) []music.Record {
	resp, err := b.client.Generate(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: b.settings.PromptRecommendations},
			{Role: "user", Content: "User message: " + userMessage},
		},
		Temperature: *b.settings.Yandex.FunctionsTemperature,
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
