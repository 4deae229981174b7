package config

import (
	"log"

	"github.com/caarlos0/env/v6"
)

// Config carries process-level settings taken from the environment:
// backend credentials and file locations. Prompt and citation tuning lives
// in the YAML settings file (see Settings).
type Config struct {
	// LLM credentials
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string `env:"OPENAI_BASE_URL"`
	YandexOAuthToken string `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string `env:"YANDEX_FOLDER_ID"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Telegram front end
	TelegramBotToken string  `env:"TELEGRAM_BOT_TOKEN"`
	AllowedUsers     []int64 `env:"ALLOWED_USERS" envSeparator:":"`

	// Files
	SettingsPath   string `env:"SETTINGS_PATH" envDefault:"assets/settings.yml"`
	DatabasePath   string `env:"DATABASE_PATH" envDefault:"assets/database.json"`
	TranscriptPath string `env:"TRANSCRIPT_PATH"`

	// HTTP server
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
