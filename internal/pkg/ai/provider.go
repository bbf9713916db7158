// Package ai talks to language models and turns their replies into commit messages.
package ai

import (
	"context"
	"net/http"

	apperrors "github.com/lazycommit/lazycommit/internal/pkg/errors"
)

// Prompt is one chat exchange sent to a model.
type Prompt struct {
	System string
	User   string
}

// ProviderConfig contains the settings shared by every provider.
type ProviderConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	MaxTokens   int
	// HTTPClient is the client chosen for BaseURL; nil uses a default client.
	HTTPClient *http.Client
	Retry      apperrors.RetryConfig
	// Breaker guards each request attempt; nil disables it.
	Breaker *Breaker
}

// Provider defines the interface for model backends.
// Complete returns the raw text of the model reply.
type Provider interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
	Name() string
}
