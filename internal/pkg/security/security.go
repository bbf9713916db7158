// Package security holds secret hygiene helpers: key masking, key checks and
// scrubbing of text before it is logged.
package security

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// DefaultOpenAIHost is the host that always requires an API key.
const DefaultOpenAIHost = "api.openai.com"

var openAIKeyPattern = regexp.MustCompile(`^sk-[a-zA-Z0-9_-]{20,}$`)

// MaskAPIKey masks an API key, showing only the last 4 characters.
func MaskAPIKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// RequiresAPIKey reports whether a provider/endpoint pair needs a key.
// Self-hosted OpenAI-compatible servers usually accept anonymous requests,
// so only the hosted OpenAI endpoint is strict.
func RequiresAPIKey(provider, baseURL string) bool {
	if provider != "openai" {
		return false
	}
	if baseURL == "" {
		return true
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Hostname(), DefaultOpenAIHost)
}

// CheckAPIKey validates the key for a provider/endpoint pair.
func CheckAPIKey(provider, baseURL, apiKey string) error {
	if !RequiresAPIKey(provider, baseURL) {
		return nil
	}
	if apiKey == "" {
		return fmt.Errorf("API key is required for %s provider", provider)
	}
	if len(apiKey) < 20 {
		return fmt.Errorf("API key appears to be invalid (too short)")
	}
	if !openAIKeyPattern.MatchString(apiKey) {
		return fmt.Errorf("API key format appears invalid for %s provider (expected format: sk-...)", provider)
	}
	return nil
}

type secretPattern struct {
	kind        string
	regex       *regexp.Regexp
	replacement string
}

var secretPatterns = []secretPattern{
	{"api key", regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`), "sk-****"},
	{"bearer token", regexp.MustCompile(`Bearer\s+[a-zA-Z0-9._-]{8,}`), "Bearer ****"},
	{"aws access key", regexp.MustCompile(`AKIA[0-9A-Z]{16}`), "AKIA****"},
	{"private key", regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----`), "-----BEGIN **** PRIVATE KEY-----"},
	{"credential assignment", regexp.MustCompile(`(?i)(api[_-]?key|apikey|api_secret|secret[_-]?key|password|passwd)\s*[:=]\s*["']?[^\s"']{6,}["']?`), "$1=****"},
}

// SanitizeForLogging masks anything that looks like a credential.
func SanitizeForLogging(s string) string {
	result := s
	for _, p := range secretPatterns {
		result = p.regex.ReplaceAllString(result, p.replacement)
	}
	return result
}

// FindSecrets returns the kinds of credentials that appear in added diff lines.
// Each kind is reported once, in pattern order.
func FindSecrets(diff string) []string {
	var added strings.Builder
	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++") {
			added.WriteString(line)
			added.WriteByte('\n')
		}
	}
	text := added.String()

	var kinds []string
	for _, p := range secretPatterns {
		if p.regex.MatchString(text) {
			kinds = append(kinds, p.kind)
		}
	}
	return kinds
}
