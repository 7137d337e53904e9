// Package llm adapts hosted language models to the abstractive summarizer port.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"NewsSearchEngine/internal/config"
	"NewsSearchEngine/internal/infrastructure/ml"
	"NewsSearchEngine/internal/ports"
)

const (
	ProviderHTTP      = "http"
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

var (
	// ErrMissingAPIKey is returned for hosted providers configured without a key.
	ErrMissingAPIKey = errors.New("summarizer api key not set")
	// ErrSummarizerDisabled is returned by the loader when the provider is "none".
	ErrSummarizerDisabled = errors.New("summarizer disabled")
	// ErrUnknownProvider is returned for provider names the factory does not know.
	ErrUnknownProvider = errors.New("unknown summarizer provider")
)

// NewSummarizer returns a loader for the configured provider. Configuration
// errors are reported by the loader so they surface on first use, where the
// summary builder degrades to its headline fallback.
func NewSummarizer(cfg config.SummarizerConfig) ports.SummarizerLoader {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderHTTP
	}

	return func(ctx context.Context) (ports.AbstractiveSummarizer, error) {
		switch provider {
		case ProviderNone:
			return nil, ErrSummarizerDisabled
		case ProviderHTTP:
			client := ml.NewClient(cfg.Endpoint, cfg.APIKey, ml.WithSummaryModel(cfg.Model))
			return client.LoadSummarizer(ctx)
		case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
			if strings.TrimSpace(cfg.APIKey) == "" {
				return nil, fmt.Errorf("%s: %w", provider, ErrMissingAPIKey)
			}
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
		}

		switch provider {
		case ProviderGemini:
			model, err := NewGeminiSummarizer(context.WithoutCancel(ctx), cfg)
			if err != nil {
				return nil, err
			}
			return model, nil
		case ProviderOpenAI:
			return NewOpenAISummarizer(cfg), nil
		default:
			return NewAnthropicSummarizer(cfg), nil
		}
	}
}
