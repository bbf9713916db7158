package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/lazycommit/lazycommit/internal/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

const (
	// DefaultOpenAIBaseURL is the hosted OpenAI API.
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"

	// DefaultOpenAIModel is the default model for OpenAI.
	DefaultOpenAIModel = "gpt-4o-mini"

	// DefaultMaxTokens is the default max tokens for generation.
	DefaultMaxTokens = 500
)

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint.
type OpenAIProvider struct {
	client *openai.Client
	config ProviderConfig
}

// NewOpenAIProvider creates a new OpenAI-compatible provider.
func NewOpenAIProvider(config ProviderConfig) (*OpenAIProvider, error) {
	if config.Model == "" {
		config.Model = DefaultOpenAIModel
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultMaxTokens
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultOpenAIBaseURL
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.HTTPClient != nil {
		clientConfig.HTTPClient = config.HTTPClient
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return ProviderNameOpenAI
}

// Complete sends prompt as a chat completion that must answer with a JSON object.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt Prompt) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System},
			{Role: openai.ChatMessageRoleUser, Content: prompt.User},
		},
		Temperature: p.config.Temperature,
		MaxTokens:   p.config.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	apperrors.LogAPIRequest(p.Name(), p.config.BaseURL, p.config.Model, len(prompt.System)+len(prompt.User))
	startTime := time.Now()

	var resp openai.ChatCompletionResponse
	err := apperrors.Retry(ctx, p.config.Retry, func(ctx context.Context) error {
		return p.config.Breaker.Do(func() error {
			var callErr error
			resp, callErr = p.client.CreateChatCompletion(ctx, req)
			if callErr != nil {
				return wrapOpenAIError(p.Name(), callErr)
			}
			return nil
		})
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", apperrors.NewModelUnavailableError(p.Name(), errors.New("response contained no choices"))
	}

	content := resp.Choices[0].Message.Content
	apperrors.LogAPIResponse(p.Name(), http.StatusOK, len(content), time.Since(startTime))
	return content, nil
}

// wrapOpenAIError maps a go-openai error onto the application error taxonomy.
func wrapOpenAIError(provider string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusError(provider, apiErr.HTTPStatusCode, apiErr.Message, 0)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return statusError(provider, reqErr.HTTPStatusCode, reqErr.Error(), 0)
	}

	return transportError(provider, err)
}

// statusError classifies a non-2xx reply. 429 and 5xx come back retryable.
func statusError(provider string, status int, body string, retryAfter time.Duration) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.NewAuthenticationError(provider)
	case status == http.StatusTooManyRequests:
		return apperrors.NewRateLimitError(retryAfter)
	case status >= http.StatusInternalServerError:
		return apperrors.NewServerError(provider, status, body)
	default:
		return apperrors.NewModelUnavailableError(provider, fmt.Errorf("HTTP %d: %s", status, strings.TrimSpace(body))).
			WithContext("status", status)
	}
}

// transportError classifies a request that never produced an HTTP reply.
func transportError(provider string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.NewTimeoutError(err)
	}
	return apperrors.NewModelUnavailableError(provider, err)
}
