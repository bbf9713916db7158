package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCode_ExitCodeIsAlwaysOne(t *testing.T) {
	codes := []ErrorCode{
		ErrNotAGitRepository, ErrNoChanges, ErrInvalidConfig, ErrMissingAPIKey,
		ErrGitCommandFailed, ErrStageFailed, ErrCommitFailed, ErrPushFailed,
		ErrModelUnavailable, ErrInvalidOutput, ErrRateLimited, ErrTimeout, ErrAuthenticationFailed,
		ErrInterrupted,
	}
	for _, code := range codes {
		t.Run(code.String(), func(t *testing.T) {
			assert.Equal(t, 1, code.ExitCode())
			assert.NotEqual(t, "Unknown", code.String())
		})
	}
}

func TestErrorCode_IsModelFailure(t *testing.T) {
	assert.True(t, ErrModelUnavailable.IsModelFailure())
	assert.True(t, ErrRateLimited.IsModelFailure())
	assert.True(t, ErrTimeout.IsModelFailure())
	assert.True(t, ErrAuthenticationFailed.IsModelFailure())
	assert.False(t, ErrInvalidOutput.IsModelFailure())
	assert.False(t, ErrPushFailed.IsModelFailure())
	assert.False(t, ErrInterrupted.IsModelFailure())

	assert.True(t, IsModelUnavailable(NewTimeoutError(nil)))
	assert.True(t, IsModelUnavailable(fmt.Errorf("generate: %w", NewAuthenticationError("openai"))))
	assert.False(t, IsModelUnavailable(NewNoChangesError()))
	assert.False(t, IsModelUnavailable(errors.New("plain")))
}

func TestAppError_Error(t *testing.T) {
	plain := &AppError{Code: ErrNoChanges, Message: "no changes"}
	assert.Equal(t, "no changes", plain.Error())

	wrapped := &AppError{Code: ErrGitCommandFailed, Message: "git command failed", Cause: errors.New("exit status 1")}
	assert.Equal(t, "git command failed: exit status 1", wrapped.Error())
}

func TestAppError_IsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected bool
	}{
		{"rate limited", NewRateLimitError(0), true},
		{"server error", NewServerError("openai", 503, "unavailable"), true},
		{"client error", NewModelUnavailableError("openai", errors.New("404")), false},
		{"auth", NewAuthenticationError("openai"), false},
		{"timeout", NewTimeoutError(errors.New("deadline")), false},
		{"invalid output", NewInvalidOutputError(3, nil), false},
		{"commit failed", NewCommitFailedError(errors.New("hook")), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.IsRetryable())
			assert.Equal(t, tt.expected, IsRetryable(tt.err))
		})
	}
}

func TestIs_MatchesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("run failed: %w", NewPushFailedError(errors.New("rejected"), ""))

	assert.True(t, Is(err, ErrPushFailed))
	assert.False(t, Is(err, ErrCommitFailed))
	assert.False(t, Is(errors.New("plain"), ErrPushFailed))
	assert.False(t, Is(nil, ErrPushFailed))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, 0, GetExitCode(nil))
	assert.Equal(t, 1, GetExitCode(errors.New("plain")))
	assert.Equal(t, 1, GetExitCode(NewNoChangesError()))
}

func TestAppError_WithContextAndSuggestion(t *testing.T) {
	err := New(ErrInvalidArguments, "bad flag").
		WithContext("flag", "--push").
		WithSuggestion("drop it")

	assert.Equal(t, "--push", err.Context["flag"])
	assert.Equal(t, "drop it", err.Suggestion)
}

func TestNewPushFailedError_KeepsCommitSafeMessage(t *testing.T) {
	err := NewPushFailedError(errors.New("no upstream"), "git push -u origin feature")

	assert.Equal(t, ErrPushFailed, err.Code)
	assert.Contains(t, err.Message, "committed locally")
	assert.Equal(t, "git push -u origin feature", err.Suggestion)

	def := NewPushFailedError(errors.New("rejected"), "")
	assert.NotEmpty(t, def.Suggestion)
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, time.Duration(0), ParseRetryAfterHeader(""))
	assert.Equal(t, 30*time.Second, ParseRetryAfterHeader("30"))
	assert.Equal(t, time.Duration(0), ParseRetryAfterHeader("soon"))

	future := time.Now().Add(90 * time.Second).UTC().Format(http.TimeFormat)
	got := ParseRetryAfterHeader(future)
	assert.Greater(t, got, 60*time.Second)
}

func TestFormatError(t *testing.T) {
	assert.Empty(t, FormatError(nil))

	gitErr := NewCommitFailedError(NewGitError(errors.New("exit status 1"), "pre-commit hook rejected"))
	out := FormatError(gitErr)
	assert.Contains(t, out, "Error: commit failed")
	assert.Contains(t, out, "Cause:")
	assert.Contains(t, out, "Suggestion:")

	plain := FormatError(errors.New("something broke"))
	assert.Equal(t, "Error: something broke", plain)
}

func TestFormatError_ShowsGitOutput(t *testing.T) {
	err := NewGitError(errors.New("exit status 128"), "fatal: not a git repository")

	assert.Contains(t, FormatError(err), "Output: fatal: not a git repository")
}

func TestFormatErrorVerbose(t *testing.T) {
	err := NewGitError(errors.New("exit status 1"), "hook failed")
	err.RetryAfter = 2 * time.Second

	out := FormatErrorVerbose(err)
	assert.Contains(t, out, "Error [GitCommandFailed]")
	assert.Contains(t, out, "Error chain:")
	assert.Contains(t, out, "output: hook failed")
	assert.Contains(t, out, "Retry after: 2s")
}

func TestSanitizeErrorMessage(t *testing.T) {
	key := "sk-proj-ABCDEFGHIJKLMNOPQRSTUVWX1234"
	out := SanitizeErrorMessage("invalid key " + key)

	require.NotContains(t, out, key)
	assert.Contains(t, out, "1234")
	assert.Equal(t, "nothing secret", SanitizeErrorMessage("nothing secret"))
}

func TestNewInterruptedError(t *testing.T) {
	err := NewInterruptedError("staging", context.Canceled)

	assert.True(t, Is(err, ErrInterrupted))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "interrupted before staging")
}
