// Package config provides configuration management for lazycommit.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config represents the complete lazycommit configuration.
type Config struct {
	Provider   ProviderConfig   `mapstructure:"provider"`
	Network    NetworkConfig    `mapstructure:"network"`
	Diff       DiffConfig       `mapstructure:"diff"`
	Generation GenerationConfig `mapstructure:"generation"`
	UI         UIConfig         `mapstructure:"ui"`
}

// ProviderConfig contains model endpoint settings.
type ProviderConfig struct {
	Name           string  `mapstructure:"name" validate:"required,oneof=openai ollama"`
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	BaseURL        string  `mapstructure:"base_url" validate:"omitempty,url"`
	Temperature    float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxTokens      int     `mapstructure:"max_tokens" validate:"gt=0"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"gt=0"`
}

// Timeout returns the per-request timeout.
func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// NetworkConfig contains transport settings.
type NetworkConfig struct {
	// BypassProxy sends requests for LAN endpoints directly, ignoring proxy variables.
	BypassProxy bool `mapstructure:"bypass_proxy"`
}

// DiffConfig contains diff collection and compression settings.
type DiffConfig struct {
	Budget          int `mapstructure:"budget" validate:"gte=512"`
	MaxPromptTokens int `mapstructure:"max_prompt_tokens" validate:"gt=0"`
	ContextLines    int `mapstructure:"context_lines" validate:"gte=0,lte=50"`
}

// GenerationConfig contains settings for the generate/validate loop.
type GenerationConfig struct {
	MaxRepairAttempts int `mapstructure:"max_repair_attempts" validate:"gte=0,lte=5"`
}

// UIConfig contains UI-related settings.
type UIConfig struct {
	ColorEnabled    bool `mapstructure:"color_enabled"`
	CopyToClipboard bool `mapstructure:"copy_to_clipboard"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field constraint and reports all violations at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	key := configKey(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", key)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", key, fe.Param(), fe.Value())
	case "url":
		return fmt.Sprintf("%s must be a valid URL, got %q", key, fe.Value())
	case "gt", "gte":
		return fmt.Sprintf("%s must be at least %s", key, minimumFor(fe))
	case "lte":
		return fmt.Sprintf("%s must be at most %s", key, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", key, fe.Tag())
	}
}

func minimumFor(fe validator.FieldError) string {
	if fe.Tag() == "gt" {
		return fe.Param() + " (exclusive)"
	}
	return fe.Param()
}

// configKey turns "Config.Diff.Budget" into "diff.budget".
func configKey(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = toSnake(p)
	}
	return strings.Join(parts, ".")
}

func toSnake(s string) string {
	switch s {
	case "APIKey":
		return "api_key"
	case "BaseURL":
		return "base_url"
	case "UI":
		return "ui"
	}
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Manager defines the interface for configuration management.
type Manager interface {
	Load() (*Config, error)
	Set(key string, value string) error
	Get(key string) (string, error)
	Init() error
	List() map[string]interface{}
	GetConfigPath() string
}
