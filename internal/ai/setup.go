package ai

import (
	"context"
	"time"
)

// Settings is the relay configuration handed over at startup.
type Settings struct {
	Provider string
	Timeout  time.Duration

	GeminiURL             string
	GeminiAPIKey          string
	GeminiBearerToken     string
	GeminiMaxOutputTokens int

	OllamaBaseURL string
	OllamaModel   string
}

var providerLabels = map[string]string{
	"gemini": "Gemini",
	"ollama": "Ollama",
}

// DefaultRegistry registers every backend the relay can talk to.
func DefaultRegistry(s Settings) *Registry {
	reg := NewRegistry()
	reg.Register("gemini", func(ctx context.Context, model string) (Provider, error) {
		return NewGeminiProvider(s.GeminiURL, s.GeminiAPIKey, s.GeminiBearerToken, s.GeminiMaxOutputTokens, s.Timeout), nil
	})
	reg.Register("ollama", func(ctx context.Context, model string) (Provider, error) {
		if model == "" {
			model = s.OllamaModel
		}
		return NewOllamaProvider(s.OllamaBaseURL, model, s.Timeout), nil
	})
	return reg
}

// NewRelayFromSettings picks the configured backend; an empty provider name means gemini.
func NewRelayFromSettings(ctx context.Context, s Settings) (*Relay, error) {
	name := s.Provider
	if name == "" {
		name = "gemini"
	}
	p, err := DefaultRegistry(s).Get(ctx, name, "")
	if err != nil {
		return nil, err
	}
	return NewRelay(p, providerLabels[name], s.Timeout), nil
}
