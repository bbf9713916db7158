package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/lazycommit/lazycommit/internal/pkg/security"
)

const (
	// EnvPrefix is the prefix for every lazycommit environment variable.
	EnvPrefix = "LAZY_COMMIT"
	// DefaultConfigDir is the directory under $HOME holding the config file.
	DefaultConfigDir = ".lazycommit"
	// DefaultConfigFileExt is the default config file extension.
	DefaultConfigFileExt = "yaml"
)

// envBindings maps config keys to the environment variables consulted for
// them, in priority order. The OPENAI_* names are conventional fallbacks.
var envBindings = map[string][]string{
	"provider.name":                  {"LAZY_COMMIT_PROVIDER_NAME"},
	"provider.api_key":               {"LAZY_COMMIT_PROVIDER_API_KEY", "OPENAI_API_KEY"},
	"provider.model":                 {"LAZY_COMMIT_PROVIDER_MODEL", "OPENAI_MODEL"},
	"provider.base_url":              {"LAZY_COMMIT_PROVIDER_BASE_URL", "OPENAI_BASE_URL"},
	"provider.temperature":           {"LAZY_COMMIT_PROVIDER_TEMPERATURE"},
	"provider.max_tokens":            {"LAZY_COMMIT_PROVIDER_MAX_TOKENS"},
	"provider.timeout_seconds":       {"LAZY_COMMIT_PROVIDER_TIMEOUT_SECONDS"},
	"network.bypass_proxy":           {"LAZY_COMMIT_BYPASS_PROXY", "LAZY_COMMIT_NETWORK_BYPASS_PROXY"},
	"diff.budget":                    {"LAZY_COMMIT_DIFF_BUDGET"},
	"diff.max_prompt_tokens":         {"LAZY_COMMIT_DIFF_MAX_PROMPT_TOKENS"},
	"diff.context_lines":             {"LAZY_COMMIT_DIFF_CONTEXT_LINES"},
	"generation.max_repair_attempts": {"LAZY_COMMIT_GENERATION_MAX_REPAIR_ATTEMPTS"},
	"ui.color_enabled":               {"LAZY_COMMIT_UI_COLOR_ENABLED"},
	"ui.copy_to_clipboard":           {"LAZY_COMMIT_UI_COPY_TO_CLIPBOARD"},
}

// ViperManager implements the Manager interface using Viper.
type ViperManager struct {
	v          *viper.Viper
	configPath string
}

// NewManager creates a new configuration manager.
// If configPath is empty, it uses ~/.lazycommit/config.yaml.
func NewManager(configPath string) (*ViperManager, error) {
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(homeDir, DefaultConfigDir, "config.yaml")
	}

	v := viper.New()
	v.SetConfigType(DefaultConfigFileExt)
	v.SetConfigFile(configPath)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults before bindings, otherwise nested keys are invisible to Unmarshal.
	setDefaults(v)
	bindEnvVars(v)

	return &ViperManager{
		v:          v,
		configPath: configPath,
	}, nil
}

func bindEnvVars(v *viper.Viper) {
	for key, names := range envBindings {
		args := append([]string{key}, names...)
		_ = v.BindEnv(args...)
	}
}

// setDefaults sets the default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("provider.name", "openai")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.model", "")
	v.SetDefault("provider.base_url", "")
	v.SetDefault("provider.temperature", 0.2)
	v.SetDefault("provider.max_tokens", 500)
	v.SetDefault("provider.timeout_seconds", 60)

	v.SetDefault("network.bypass_proxy", false)

	v.SetDefault("diff.budget", 12000)
	v.SetDefault("diff.max_prompt_tokens", 16000)
	v.SetDefault("diff.context_lines", 6)

	v.SetDefault("generation.max_repair_attempts", 2)

	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.copy_to_clipboard", true)
}

// GetConfigPath returns the path to the configuration file.
func (m *ViperManager) GetConfigPath() string {
	return m.configPath
}

// readConfig reads the config file if present. A missing file is not an error.
func (m *ViperManager) readConfig() error {
	if err := m.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Load loads the configuration from file, environment, and defaults, then validates it.
// Priority: flags > env > .env > file > defaults
func (m *ViperManager) Load() (*Config, error) {
	if err := m.readConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Init creates a new configuration file with default values.
// Sets file permissions to 0600 since it may hold an API key.
func (m *ViperManager) Init() error {
	if _, err := os.Stat(m.configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", m.configPath)
	}

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := m.v.WriteConfigAs(m.configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if err := os.Chmod(m.configPath, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	return nil
}

// Save writes every field of cfg to the config file, creating it if needed.
func (m *ViperManager) Save(cfg *Config) error {
	if err := m.readConfig(); err != nil {
		return err
	}

	for key, value := range flatten(cfg) {
		m.v.Set(key, value)
	}

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := m.v.WriteConfigAs(m.configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Chmod(m.configPath, 0600)
}

func flatten(cfg *Config) map[string]interface{} {
	return map[string]interface{}{
		"provider.name":                  cfg.Provider.Name,
		"provider.api_key":               cfg.Provider.APIKey,
		"provider.model":                 cfg.Provider.Model,
		"provider.base_url":              cfg.Provider.BaseURL,
		"provider.temperature":           cfg.Provider.Temperature,
		"provider.max_tokens":            cfg.Provider.MaxTokens,
		"provider.timeout_seconds":       cfg.Provider.TimeoutSeconds,
		"network.bypass_proxy":           cfg.Network.BypassProxy,
		"diff.budget":                    cfg.Diff.Budget,
		"diff.max_prompt_tokens":         cfg.Diff.MaxPromptTokens,
		"diff.context_lines":             cfg.Diff.ContextLines,
		"generation.max_repair_attempts": cfg.Generation.MaxRepairAttempts,
		"ui.color_enabled":               cfg.UI.ColorEnabled,
		"ui.copy_to_clipboard":           cfg.UI.CopyToClipboard,
	}
}

// Set sets a configuration value by key and persists it.
// Only known keys are accepted; the value is converted to the key's type.
func (m *ViperManager) Set(key string, value string) error {
	if _, known := envBindings[key]; !known {
		return fmt.Errorf("unknown config key %q (known keys: %s)", key, strings.Join(KnownKeys(), ", "))
	}

	if err := m.readConfig(); err != nil {
		return err
	}

	converted, err := convertValue(value, m.v.Get(key))
	if err != nil {
		return fmt.Errorf("failed to convert value for key %s: %w", key, err)
	}
	m.v.Set(key, converted)

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := m.v.WriteConfigAs(m.configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Chmod(m.configPath, 0600)
}

// convertValue converts a string value to the type of the existing value.
func convertValue(value string, existingValue interface{}) (interface{}, error) {
	switch existingValue.(type) {
	case bool:
		return strconv.ParseBool(value)
	case int, int32, int64:
		n, err := strconv.ParseInt(value, 10, 64)
		return int(n), err
	case float32, float64:
		return strconv.ParseFloat(value, 64)
	default:
		return value, nil
	}
}

// Get retrieves a configuration value by key.
func (m *ViperManager) Get(key string) (string, error) {
	if err := m.readConfig(); err != nil {
		return "", err
	}

	value := m.v.Get(key)
	if value == nil {
		return "", fmt.Errorf("key not found: %s", key)
	}

	return fmt.Sprintf("%v", value), nil
}

// List returns all configuration values as a flat map keyed by dotted name.
// The API key is masked.
func (m *ViperManager) List() map[string]interface{} {
	_ = m.readConfig()

	out := make(map[string]interface{}, len(envBindings))
	for _, key := range KnownKeys() {
		value := m.v.Get(key)
		if key == "provider.api_key" {
			if s, _ := value.(string); s != "" {
				value = security.MaskAPIKey(s)
			}
		}
		out[key] = value
	}
	return out
}

// KnownKeys returns every supported config key in sorted order.
func KnownKeys() []string {
	keys := make([]string, 0, len(envBindings))
	for k := range envBindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetOverride sets a temporary override for a configuration key.
// Used for command-line flags; never persisted.
func (m *ViperManager) SetOverride(key string, value interface{}) {
	m.v.Set(key, value)
}

// ConfigExists checks if the configuration file exists.
func (m *ViperManager) ConfigExists() bool {
	_, err := os.Stat(m.configPath)
	return err == nil
}
