package errors

import (
	"bytes"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogger_VerboseEmitsAllLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, true)

	logger.Error("error message")
	logger.Warn("warn message")
	logger.Info("info message")
	logger.Debug("debug message")

	out := buf.String()
	assert.Contains(t, out, "ERROR")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "DEBUG")
}

func TestLogger_QuietByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, false)

	logger.Error("error message")
	logger.Warn("warn message")
	logger.Info("info message")
	logger.Debug("debug message")

	out := buf.String()
	assert.Contains(t, out, "error message")
	assert.NotContains(t, out, "warn message")
	assert.NotContains(t, out, "info message")
	assert.NotContains(t, out, "debug message")
}

func TestLogger_FormatsArguments(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, true)

	logger.Info("staged %d files on %s", 3, "main")

	assert.Contains(t, buf.String(), "staged 3 files on main")
}

func TestLogger_APILoggingMasksKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, true)

	logger.LogAPIRequest("openai", "https://api.example.com/?key=sk-abcdefghijklmnopqrstuvwxyz", "gpt-4o-mini", 1200)
	logger.LogAPIResponse("openai", 200, 340, 1500*time.Millisecond)

	out := buf.String()
	assert.Contains(t, out, "API request")
	assert.Contains(t, out, "gpt-4o-mini")
	assert.Contains(t, out, "API response")
	assert.NotContains(t, out, "sk-abcdefghijklmnopqrstuvwxyz")
	assert.Contains(t, out, "wxyz")
}

func TestLogger_APILoggingSilentWhenNotVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, false)

	logger.LogAPIRequest("openai", "https://api.openai.com/v1", "gpt-4o-mini", 10)
	logger.LogRetry(1, 3, stderrors.New("boom"), time.Second)

	assert.Empty(t, buf.String())
}

func TestLogger_LogRepair(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, true)

	logger.LogRepair(1, 2, `field "type" is required`)

	out := buf.String()
	assert.Contains(t, out, "model reply rejected")
	assert.Contains(t, out, "attempt")
}

func TestSetRunID_TagsLines(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)
	SetRunID("run-1234")
	t.Cleanup(func() {
		SetRunID("")
		SetVerbose(false)
	})

	Info("hello")

	assert.Contains(t, buf.String(), "run-1234")
	assert.True(t, IsVerbose())
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", MaskAPIKey("abc"))
	assert.Equal(t, "****", MaskAPIKey("abcd"))
	assert.Equal(t, "****5678", MaskAPIKey("abcd5678"))
}
