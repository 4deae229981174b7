package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"music-chatter/internal/config"
	"music-chatter/internal/llm"
	"music-chatter/internal/music"
)

const recommendationsTool = "get_music_recommendations"

// OpenAIFunctionBot lets the model itself ask for database records through
// a function-calling schema instead of a separate extraction prompt.
type OpenAIFunctionBot struct {
	base
	client llm.Client
}

func NewOpenAIFunctions(client llm.Client, settings *config.Settings, store music.Store) (*OpenAIFunctionBot, error) {
	if client == nil {
		return nil, fmt.Errorf("llm client is required")
	}
	b, err := newBase("OpenAI FC", settings, store)
	if err != nil {
		return nil, err
	}
	return &OpenAIFunctionBot{base: b, client: client}, nil
}

// recommendationTools describes the single lookup function offered to the
// model: every record field as an optional string attribute.
func recommendationTools() []llm.Tool {
	property := func(description string) map[string]interface{} {
		return map[string]interface{}{"type": "string", "description": description}
	}
	return []llm.Tool{{
		Name: recommendationsTool,
		Description: "Get music recommendations based on the following information provided by the user: " +
			"title, genre, authors, country, and/or year.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"title":   property("Music title"),
				"genre":   property("Music genre"),
				"authors": property("Music authors"),
				"country": property("Music country"),
				"year":    property("Music year"),
			},
			"required": []string{},
		},
	}}
}

func (b *OpenAIFunctionBot) Chat(ctx context.Context, userMessage string, opts ...Option) Reply {
	if err := b.beginTurn(userMessage); err != nil {
		return Reply{Message: b.settings.Errors.General, Err: err}
	}
	o := applyOptions(opts)

	messages := []llm.Message{{Role: "system", Content: b.settings.PromptBehavior}}
	messages = append(messages, b.priorMessages()...)
	messages = append(messages, llm.Message{Role: "user", Content: userMessage})

	// First pass: let the model decide whether it needs a lookup.
	first, err := b.client.Generate(ctx, llm.Request{
		Messages:    messages,
		Temperature: *b.settings.OpenAI.FunctionsTemperature,
		Tools:       recommendationTools(),
	})
	if err != nil {
		return b.failTurn(err)
	}

	var options []music.Record
	if call, ok := findToolCall(first, recommendationsTool); ok {
		criteria := parseCriteria(call.Arguments)
		log.Printf("[%s] user preferences: %+v", b.name, criteria)
		options = b.findOptions(ctx, criteria)

		content, merr := json.Marshal(options)
		if merr != nil {
			content = []byte("[]")
		}
		log.Printf("[%s] injecting %d records into llm context", b.name, len(options))
		messages = append(messages, llm.Message{
			Role:    "function",
			Name:    recommendationsTool,
			Content: string(content),
		})
	}

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

	return b.finishTurn(resp.Content, b.rememberOptions(options))
}

func findToolCall(resp llm.Response, name string) (llm.ToolCall, bool) {
	for _, tc := range resp.ToolCalls {
		if tc.Name == name {
			return tc, true
		}
	}
	return llm.ToolCall{}, false
}
