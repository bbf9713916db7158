package ai

import (
	"fmt"

	"github.com/lazycommit/lazycommit/internal/pkg/config"
	apperrors "github.com/lazycommit/lazycommit/internal/pkg/errors"
	"github.com/lazycommit/lazycommit/internal/pkg/transport"
)

// ProviderName constants for supported providers.
const (
	ProviderNameOpenAI = "openai"
	ProviderNameOllama = "ollama"
)

// NewProvider creates the configured provider. Every request attempt goes
// through a circuit breaker, and the HTTP client comes from selector so LAN
// endpoints may skip the proxy. An empty model resolves to the provider default.
func NewProvider(cfg *config.ProviderConfig, selector transport.Selector) (Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("provider configuration is required")
	}

	pc := ProviderConfig{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		BaseURL:     cfg.BaseURL,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Retry:       apperrors.DefaultRetryConfig(),
	}

	var (
		provider Provider
		err      error
	)
	switch cfg.Name {
	case ProviderNameOpenAI, "":
		if pc.BaseURL == "" {
			pc.BaseURL = DefaultOpenAIBaseURL
		}
		if pc.Model == "" {
			pc.Model = DefaultOpenAIModel
		}
		pc.HTTPClient = selector.Client(pc.BaseURL)
		pc.Breaker = NewBreaker(ProviderNameOpenAI, DefaultBreakerSettings())
		provider, err = NewOpenAIProvider(pc)
	case ProviderNameOllama:
		if pc.BaseURL == "" {
			pc.BaseURL = DefaultOllamaBaseURL
		}
		if pc.Model == "" {
			pc.Model = DefaultOllamaModel
		}
		pc.HTTPClient = selector.Client(pc.BaseURL)
		pc.Breaker = NewBreaker(ProviderNameOllama, DefaultBreakerSettings())
		provider, err = NewOllamaProvider(pc)
	default:
		return nil, apperrors.NewInvalidConfigError(fmt.Sprintf("unknown provider: %s", cfg.Name))
	}
	if err != nil {
		return nil, err
	}

	apperrors.Debug("provider %s model %s at %s (transport: %s)",
		provider.Name(), pc.Model, pc.BaseURL, selector.Select(pc.BaseURL).ProxyMode)
	return provider, nil
}
