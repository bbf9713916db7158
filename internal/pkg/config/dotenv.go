package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// DotEnvFile is the name of the per-repository environment file.
const DotEnvFile = ".env"

// fallbackEnvKeys are the non-prefixed variables accepted from a .env file.
var fallbackEnvKeys = map[string]bool{
	"OPENAI_API_KEY":  true,
	"OPENAI_BASE_URL": true,
	"OPENAI_MODEL":    true,
}

// LoadDotEnv reads <repoRoot>/.env and exports the lazycommit-related keys it
// defines. Variables already present in the process environment win. Other
// keys in the file are ignored. It returns the names it exported.
func LoadDotEnv(repoRoot string) ([]string, error) {
	path := filepath.Join(repoRoot, DotEnvFile)
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var loaded []string
	for key, value := range values {
		if !isDotEnvKey(key) {
			continue
		}
		if _, present := os.LookupEnv(key); present {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return loaded, fmt.Errorf("failed to export %s: %w", key, err)
		}
		loaded = append(loaded, key)
	}
	sort.Strings(loaded)
	return loaded, nil
}

func isDotEnvKey(key string) bool {
	return strings.HasPrefix(key, EnvPrefix+"_") || fallbackEnvKeys[key]
}

var (
	baseURLEnvKeys = []string{EnvPrefix + "_PROVIDER_BASE_URL", "OPENAI_BASE_URL"}
	apiKeyEnvKeys  = []string{EnvPrefix + "_PROVIDER_API_KEY", "OPENAI_API_KEY"}
)

// RedirectsAPIKey reports whether the .env keys in loaded moved the provider
// base URL without also supplying the API key. A cloned repository can then
// send the user's own key to an endpoint of its choosing.
func RedirectsAPIKey(loaded []string) bool {
	return containsAny(loaded, baseURLEnvKeys) && !containsAny(loaded, apiKeyEnvKeys)
}

func containsAny(keys []string, wanted []string) bool {
	for _, k := range keys {
		for _, w := range wanted {
			if k == w {
				return true
			}
		}
	}
	return false
}
