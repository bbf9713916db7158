package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
)

// SetupStore is the part of the config manager the wizard writes to.
type SetupStore interface {
	Set(key, value string) error
	GetConfigPath() string
}

// SetupAnswers holds what the wizard collected.
type SetupAnswers struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	BypassProxy bool
}

// SetupDefaults returns the suggested model and base URL for provider.
func SetupDefaults(provider string) (model, baseURL string) {
	switch provider {
	case "ollama":
		return "llama3.1", "http://localhost:11434"
	default:
		return "gpt-4o-mini", ""
	}
}

// ValidateModel rejects an empty model name.
func ValidateModel(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	return nil
}

// ValidateBaseURL accepts an empty value or an http(s) URL.
func ValidateBaseURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return nil
	}
	return fmt.Errorf("base URL must start with http:// or https://")
}

// RunInteractiveSetup asks for provider settings with huh forms and saves them.
func RunInteractiveSetup(store SetupStore) error {
	answers := SetupAnswers{Provider: "openai"}

	err := huh.NewSelect[string]().
		Title("Select model provider").
		Options(
			huh.NewOption("OpenAI or OpenAI-compatible server", "openai"),
			huh.NewOption("Ollama (local)", "ollama"),
		).
		Value(&answers.Provider).
		Run()
	if err != nil {
		return err
	}

	answers.Model, answers.BaseURL = SetupDefaults(answers.Provider)

	var fields []huh.Field
	if answers.Provider == "openai" {
		fields = append(fields,
			huh.NewInput().
				Title("API Key").
				Description("Leave empty for self-hosted servers that need no key").
				Value(&answers.APIKey).
				Password(true),
		)
	}
	fields = append(fields,
		huh.NewInput().
			Title("Model").
			Value(&answers.Model).
			Validate(ValidateModel),
		huh.NewInput().
			Title("Base URL").
			Description("Empty uses the provider default").
			Value(&answers.BaseURL).
			Validate(ValidateBaseURL),
		huh.NewConfirm().
			Title("Bypass proxies for LAN endpoints?").
			Value(&answers.BypassProxy),
	)

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return err
	}

	if err := ApplySetup(store, answers); err != nil {
		return err
	}

	fmt.Printf("\nConfiguration saved to %s\n", store.GetConfigPath())
	return nil
}

// ApplySetup writes answers to store.
func ApplySetup(store SetupStore, answers SetupAnswers) error {
	values := []struct{ key, value string }{
		{"provider.name", answers.Provider},
		{"provider.model", strings.TrimSpace(answers.Model)},
		{"provider.base_url", strings.TrimSpace(answers.BaseURL)},
		{"network.bypass_proxy", strconv.FormatBool(answers.BypassProxy)},
	}
	if answers.APIKey != "" {
		values = append(values, struct{ key, value string }{"provider.api_key", strings.TrimSpace(answers.APIKey)})
	}

	for _, kv := range values {
		if err := store.Set(kv.key, kv.value); err != nil {
			return fmt.Errorf("failed to set %s: %w", kv.key, err)
		}
	}
	return nil
}
