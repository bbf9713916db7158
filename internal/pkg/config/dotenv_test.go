package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv_ExportsOnlyKnownKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv("UNRELATED_SECRET", "")
	os.Unsetenv("LAZY_COMMIT_BYPASS_PROXY")
	os.Unsetenv("OPENAI_MODEL")
	os.Unsetenv("UNRELATED_SECRET")

	root := t.TempDir()
	content := "LAZY_COMMIT_BYPASS_PROXY=true\nOPENAI_MODEL=llama3\nUNRELATED_SECRET=hunter2\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte(content), 0644))

	loaded, err := LoadDotEnv(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"LAZY_COMMIT_BYPASS_PROXY", "OPENAI_MODEL"}, loaded)
	assert.Equal(t, "true", os.Getenv("LAZY_COMMIT_BYPASS_PROXY"))
	_, present := os.LookupEnv("UNRELATED_SECRET")
	assert.False(t, present)
}

func TestLoadDotEnv_RealEnvironmentWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_MODEL", "from-shell")

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("OPENAI_MODEL=from-file\n"), 0644))

	loaded, err := LoadDotEnv(root)
	require.NoError(t, err)

	assert.Empty(t, loaded)
	assert.Equal(t, "from-shell", os.Getenv("OPENAI_MODEL"))
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	loaded, err := LoadDotEnv(t.TempDir())

	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestRedirectsAPIKey(t *testing.T) {
	assert.True(t, RedirectsAPIKey([]string{"LAZY_COMMIT_PROVIDER_BASE_URL"}))
	assert.True(t, RedirectsAPIKey([]string{"LAZY_COMMIT_BYPASS_PROXY", "OPENAI_BASE_URL"}))
	assert.False(t, RedirectsAPIKey([]string{"OPENAI_API_KEY", "OPENAI_BASE_URL"}))
	assert.False(t, RedirectsAPIKey([]string{"LAZY_COMMIT_PROVIDER_API_KEY", "LAZY_COMMIT_PROVIDER_BASE_URL"}))
	assert.False(t, RedirectsAPIKey([]string{"OPENAI_MODEL"}))
	assert.False(t, RedirectsAPIKey(nil))
}
