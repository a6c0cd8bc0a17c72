package llm

import (
	"context"
	"fmt"
	"time"
)

// Provider names accepted by Config.Provider.
const (
	ProviderOpenAI = "openai"
	ProviderGoogle = "google"
)

// Config selects and configures the text provider. Speech always uses OpenAI.
type Config struct {
	Provider       string        `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey   string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL  string        `env:"OPENAI_BASE_URL"`
	GoogleAPIKey   string        `env:"GOOGLE_API_KEY"`
	TextModel      string        `env:"LLM_TEXT_MODEL"`
	SpeechModel    string        `env:"LLM_SPEECH_MODEL" envDefault:"gpt-4o-mini-tts"`
	MaxRetries     int           `env:"LLM_MAX_RETRIES" envDefault:"2"`
	RequestTimeout time.Duration `env:"LLM_REQUEST_TIMEOUT" envDefault:"2m"`
}

// New builds the text generator and speech synthesizer described by cfg.
func New(ctx context.Context, cfg Config) (TextGenerator, SpeechSynthesizer, error) {
	openAIOpts := []OpenAIOption{
		WithOpenAISpeechModel(cfg.SpeechModel),
		WithOpenAIMaxRetries(cfg.MaxRetries),
		WithOpenAIRequestTimeout(cfg.RequestTimeout),
		WithOpenAIBaseURL(cfg.OpenAIBaseURL),
	}

	switch cfg.Provider {
	case "", ProviderOpenAI:
		if cfg.TextModel != "" {
			openAIOpts = append(openAIOpts, WithOpenAITextModel(cfg.TextModel))
		}
		oa, err := NewOpenAI(cfg.OpenAIAPIKey, openAIOpts...)
		if err != nil {
			return nil, nil, err
		}
		return oa, oa, nil

	case ProviderGoogle:
		var googleOpts []GoogleOption
		if cfg.TextModel != "" {
			googleOpts = append(googleOpts, WithGoogleModel(cfg.TextModel))
		}
		g, err := NewGoogle(ctx, cfg.GoogleAPIKey, googleOpts...)
		if err != nil {
			return nil, nil, err
		}
		oa, err := NewOpenAI(cfg.OpenAIAPIKey, openAIOpts...)
		if err != nil {
			return nil, nil, err
		}
		return g, oa, nil

	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Provider)
	}
}
