package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the settings file leaves a value unset.
const (
	DefaultCitationPattern   = `"([^"]*)"`
	DefaultCitationThreshold = 0.75
	DefaultCitationField     = "title"
	DefaultMaxOptions        = 10

	defaultErrorGeneral = "Sorry, something went wrong. Please try again."
	defaultErrorUncited = "I could not back that answer with the catalog. Could you rephrase your request?"

	defaultPromptBehavior = `You are a music consultant. Only talk about music. ` +
		`Recommend exactly one song per reply and always put its title between double quotes.`

	defaultPromptRecommendations = `You are an excellent music consultant, capable of deeply understanding ` +
		`clients' preferences. Identify if the user is requesting a music recommendation, and if so, return a ` +
		`JSON object with the attributes 'title', 'genre', 'authors', 'country' and 'year'. ` +
		`Use null for attributes not identified in the user's message. ` +
		`If the user has not requested a music recommendation, do not return anything. ` +
		`Do not invent information not provided by the user.`
)

// CitationSettings tune the grounding check applied to every bot message.
// Numeric knobs are pointers so an explicit zero in the file is
// distinguishable from an absent key.
type CitationSettings struct {
	Pattern   string   `yaml:"pattern"`
	Threshold *float64 `yaml:"threshold"`
	Field     string   `yaml:"field"`
	// FilterUncited replaces a reply that contains quoted text but no valid
	// citation with the no-citation error message.
	FilterUncited bool `yaml:"filter_uncited"`
	// RequireCitations extends the filter to replies with no quoted text at
	// all: any reply with zero citations becomes a grounding failure.
	RequireCitations bool `yaml:"require_citations"`
}

type ErrorMessages struct {
	General    string `yaml:"general"`
	NoCitation string `yaml:"no_citation"`
}

type OpenAISettings struct {
	Model                string   `yaml:"model"`
	FunctionModel        string   `yaml:"function_model"`
	Temperature          *float32 `yaml:"temperature"`
	FunctionsTemperature *float32 `yaml:"functions_temperature"`
}

type YandexSettings struct {
	Temperature          *float32 `yaml:"temperature"`
	FunctionsTemperature *float32 `yaml:"functions_temperature"`
}

// Settings is the YAML-backed, read-only tuning of the bots: prompts,
// citation policy, error messages and per-backend model parameters.
type Settings struct {
	PromptBehavior        string           `yaml:"prompt_behavior"`
	PromptRecommendations string           `yaml:"prompt_recommendations"`
	Citation              CitationSettings `yaml:"citation"`
	Errors                ErrorMessages    `yaml:"errors"`
	MaxOptions            int              `yaml:"max_options"`
	OpenAI                OpenAISettings   `yaml:"openai"`
	Yandex                YandexSettings   `yaml:"yandex"`
}

// LoadSettings reads and validates the YAML settings file.
func LoadSettings(path string) (*Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	s := &Settings{}
	if err := yaml.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	s.applyDefaults()
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// DefaultSettings returns settings with every default applied. Used by
// tests and as a fallback when no settings file is configured.
func DefaultSettings() *Settings {
	s := &Settings{}
	s.applyDefaults()
	return s
}

func (s *Settings) applyDefaults() {
	if s.PromptBehavior == "" {
		s.PromptBehavior = defaultPromptBehavior
	}
	if s.PromptRecommendations == "" {
		s.PromptRecommendations = defaultPromptRecommendations
	}
	if s.Citation.Pattern == "" {
		s.Citation.Pattern = DefaultCitationPattern
	}
	if s.Citation.Threshold == nil {
		s.Citation.Threshold = ptr(DefaultCitationThreshold)
	}
	if s.Citation.Field == "" {
		s.Citation.Field = DefaultCitationField
	}
	if s.Errors.General == "" {
		s.Errors.General = defaultErrorGeneral
	}
	if s.Errors.NoCitation == "" {
		s.Errors.NoCitation = defaultErrorUncited
	}
	if s.MaxOptions == 0 {
		s.MaxOptions = DefaultMaxOptions
	}
	if s.OpenAI.Model == "" {
		s.OpenAI.Model = "gpt-4o-mini"
	}
	if s.OpenAI.FunctionModel == "" {
		s.OpenAI.FunctionModel = s.OpenAI.Model
	}
	if s.OpenAI.Temperature == nil {
		s.OpenAI.Temperature = ptr(float32(0.5))
	}
	if s.OpenAI.FunctionsTemperature == nil {
		s.OpenAI.FunctionsTemperature = ptr(float32(0.2))
	}
	if s.Yandex.Temperature == nil {
		s.Yandex.Temperature = ptr(float32(0.5))
	}
	if s.Yandex.FunctionsTemperature == nil {
		s.Yandex.FunctionsTemperature = ptr(float32(0.2))
	}
}

func ptr[T any](v T) *T { return &v }

func (s *Settings) validate() error {
	if t := *s.Citation.Threshold; t < 0 || t > 1 {
		return fmt.Errorf("citation threshold %v out of range [0,1]", t)
	}
	if s.MaxOptions < 0 {
		return fmt.Errorf("max_options must not be negative")
	}
	return nil
}
