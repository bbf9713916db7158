package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"syscall"
	"time"

	apperrors "github.com/lazycommit/lazycommit/internal/pkg/errors"
)

const (
	// DefaultOllamaModel is the default model for Ollama.
	DefaultOllamaModel = "llama3.1"

	// DefaultOllamaBaseURL is the default API endpoint for Ollama.
	DefaultOllamaBaseURL = "http://localhost:11434"

	// OllamaAPIPath is the API path for chat completions.
	OllamaAPIPath = "/api/chat"
)

// OllamaProvider talks to the native Ollama chat API.
type OllamaProvider struct {
	httpClient *http.Client
	config     ProviderConfig
}

// OllamaChatRequest represents a request to the Ollama chat API.
type OllamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []OllamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
	Options  *OllamaOptions  `json:"options,omitempty"`
}

// OllamaMessage represents a message in the Ollama chat API.
type OllamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OllamaOptions represents optional parameters for Ollama requests.
type OllamaOptions struct {
	Temperature float32 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// OllamaChatResponse represents a response from the Ollama chat API.
type OllamaChatResponse struct {
	Model     string        `json:"model"`
	CreatedAt string        `json:"created_at"`
	Message   OllamaMessage `json:"message"`
	Done      bool          `json:"done"`
	Error     string        `json:"error,omitempty"`
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(config ProviderConfig) (*OllamaProvider, error) {
	if config.BaseURL == "" {
		config.BaseURL = DefaultOllamaBaseURL
	}
	if !strings.HasPrefix(config.BaseURL, "http://") && !strings.HasPrefix(config.BaseURL, "https://") {
		return nil, apperrors.NewInvalidConfigError("ollama base_url must start with http:// or https://")
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Model == "" {
		config.Model = DefaultOllamaModel
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultMaxTokens
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	return &OllamaProvider{
		httpClient: httpClient,
		config:     config,
	}, nil
}

// Name returns the provider name.
func (p *OllamaProvider) Name() string {
	return ProviderNameOllama
}

// Complete sends prompt to Ollama with JSON mode enabled.
func (p *OllamaProvider) Complete(ctx context.Context, prompt Prompt) (string, error) {
	chatReq := OllamaChatRequest{
		Model: p.config.Model,
		Messages: []OllamaMessage{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		Stream: false,
		Format: "json",
		Options: &OllamaOptions{
			Temperature: p.config.Temperature,
			NumPredict:  p.config.MaxTokens,
		},
	}

	apperrors.LogAPIRequest(p.Name(), p.config.BaseURL, p.config.Model, len(prompt.System)+len(prompt.User))
	startTime := time.Now()

	var resp *OllamaChatResponse
	err := apperrors.Retry(ctx, p.config.Retry, func(ctx context.Context) error {
		return p.config.Breaker.Do(func() error {
			var callErr error
			resp, callErr = p.doRequest(ctx, chatReq)
			return callErr
		})
	})
	if err != nil {
		return "", err
	}

	apperrors.LogAPIResponse(p.Name(), http.StatusOK, len(resp.Message.Content), time.Since(startTime))

	if resp.Error != "" {
		return "", apperrors.NewModelUnavailableError(p.Name(), errors.New(resp.Error))
	}
	return resp.Message.Content, nil
}

// doRequest performs one HTTP round trip and classifies its failure.
func (p *OllamaProvider) doRequest(ctx context.Context, chatReq OllamaChatRequest) (*OllamaChatResponse, error) {
	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+OllamaAPIPath, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewModelUnavailableError(p.Name(), err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)
	}

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, wrapOllamaTransportError(err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, apperrors.NewModelUnavailableError(p.Name(), fmt.Errorf("failed to read response: %w", err))
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, wrapOllamaStatus(httpResp, respBody)
	}

	var resp OllamaChatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, apperrors.NewModelUnavailableError(p.Name(), fmt.Errorf("failed to parse response: %w", err))
	}
	return &resp, nil
}

func wrapOllamaStatus(resp *http.Response, body []byte) error {
	err := statusError(ProviderNameOllama, resp.StatusCode, string(body),
		apperrors.ParseRetryAfterHeader(resp.Header.Get("Retry-After")))
	if resp.StatusCode == http.StatusNotFound {
		if appErr := apperrors.GetAppError(err); appErr != nil {
			appErr.WithSuggestion("Make sure the model is pulled: 'ollama pull <model>'")
		}
	}
	return err
}

func wrapOllamaTransportError(err error) error {
	wrapped := transportError(ProviderNameOllama, err)
	if errors.Is(err, syscall.ECONNREFUSED) {
		if appErr := apperrors.GetAppError(wrapped); appErr != nil {
			appErr.WithSuggestion("Make sure Ollama is running: 'ollama serve'")
		}
	}
	return wrapped
}
