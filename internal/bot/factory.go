package bot

import (
	"fmt"

	"music-chatter/internal/config"
	"music-chatter/internal/llm"
	"music-chatter/internal/music"
)

// Variant names accepted by New.
const (
	KindOpenAI          = "openai"
	KindOpenAIFunctions = "openai-fc"
	KindYandex          = "yandex"
)

// Kinds lists every backend variant in presentation order.
func Kinds() []string {
	return []string{KindOpenAIFunctions, KindOpenAI, KindYandex}
}

// Factory builds bot instances of any variant from one configuration.
// Backend selection happens here, at construction time; individual bots
// never switch backends.
type Factory struct {
	cfg      *config.Config
	settings *config.Settings
	store    music.Store
	clients  llm.Factory
}

func NewFactory(cfg *config.Config, settings *config.Settings, store music.Store) *Factory {
	return &Factory{
		cfg:      cfg,
		settings: settings,
		store:    store,
		clients: llm.Factory{
			OpenaiAPIKey:       cfg.OpenAIAPIKey,
			OpenaiBaseURL:      cfg.OpenAIBaseURL,
			OpenRouterReferrer: cfg.OpenRouterReferrer,
			OpenRouterTitle:    cfg.OpenRouterTitle,
			YandexOAuthToken:   cfg.YandexOAuthToken,
			YandexFolderID:     cfg.YandexFolderID,
		},
	}
}

// New creates a bot of the requested variant. Missing credentials or
// malformed settings surface here, before the first chat turn.
func (f *Factory) New(kind string) (Bot, error) {
	switch kind {
	case KindOpenAI:
		client, err := f.clients.CreateClient(llm.ProviderOpenAI, f.settings.OpenAI.Model)
		if err != nil {
			return nil, fmt.Errorf("create %s bot: %w", kind, err)
		}
		return NewOpenAI(client, f.settings, f.store)
	case KindOpenAIFunctions:
		client, err := f.clients.CreateClient(llm.ProviderOpenAI, f.settings.OpenAI.FunctionModel)
		if err != nil {
			return nil, fmt.Errorf("create %s bot: %w", kind, err)
		}
		return NewOpenAIFunctions(client, f.settings, f.store)
	case KindYandex:
		client, err := f.clients.CreateClient(llm.ProviderYandex, "")
		if err != nil {
			return nil, fmt.Errorf("create %s bot: %w", kind, err)
		}
		return NewYandex(client, f.settings, f.store)
	default:
		return nil, fmt.Errorf("unknown bot variant: %s", kind)
	}
}

// Available returns the variants whose credentials are configured.
func (f *Factory) Available() []string {
	var out []string
	for _, kind := range Kinds() {
		switch kind {
		case KindOpenAI, KindOpenAIFunctions:
			if f.cfg.OpenAIAPIKey != "" {
				out = append(out, kind)
			}
		case KindYandex:
			if f.cfg.YandexOAuthToken != "" && f.cfg.YandexFolderID != "" {
				out = append(out, kind)
			}
		}
	}
	return out
}
