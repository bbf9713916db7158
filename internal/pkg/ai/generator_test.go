package ai

import (
	"context"
	"testing"

	apperrors "github.com/lazycommit/lazycommit/internal/pkg/errors"
	"github.com/lazycommit/lazycommit/internal/pkg/git"
	"github.com/lazycommit/lazycommit/internal/pkg/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBundle() *git.DiffBundle {
	return &git.DiffBundle{
		BranchName:     "main",
		CompressedDiff: "[M] main.go (+1 -0)\n\ndiff --git a/main.go b/main.go\n+fmt.Println(\"hi\")\n",
		FullDiff:       "diff --git a/main.go b/main.go\n+fmt.Println(\"hi\")\n",
		Files:          []string{"main.go"},
	}
}

func newTestGenerator(t *testing.T, p Provider, maxRepairs int) *Generator {
	t.Helper()
	pb, err := NewPromptBuilder(EstimateCounter{}, 16000)
	require.NoError(t, err)
	return NewGenerator(p, pb, maxRepairs)
}

func TestGenerate_FirstReplyValid(t *testing.T) {
	p := &scriptedProvider{replies: []string{`{"type":"feat","scope":"cli","title":"print greeting","body":null}`}}

	msg, err := newTestGenerator(t, p, DefaultMaxRepairAttempts).Generate(context.Background(), testBundle())
	require.NoError(t, err)

	assert.Equal(t, &message.CommitMessage{Type: "feat", Scope: "cli", Title: "print greeting"}, msg)
	assert.Equal(t, 1, p.calls())
	assert.Contains(t, p.prompts[0].User, "Branch: main")
	assert.Contains(t, p.prompts[0].User, "main.go")
}

func TestGenerate_RepairsMalformedReplies(t *testing.T) {
	p := &scriptedProvider{replies: []string{
		"Sure! Here is a commit message: feat: print greeting",
		`{"type": "feat", "title": ""}`,
		`{"type": "feat", "title": "print greeting"}`,
	}}

	msg, err := newTestGenerator(t, p, 2).Generate(context.Background(), testBundle())
	require.NoError(t, err)

	assert.Equal(t, "feat: print greeting", msg.GitString())
	require.Equal(t, 3, p.calls())

	first := p.prompts[0].User
	assert.Contains(t, p.prompts[1].User, first)
	assert.Contains(t, p.prompts[1].User, "does not contain a JSON object")
	assert.Contains(t, p.prompts[1].User, "Sure! Here is a commit message")

	assert.Contains(t, p.prompts[2].User, `field "title" is required`)
	assert.Contains(t, p.prompts[2].User, `{"type": "feat", "title": ""}`)
	assert.NotContains(t, p.prompts[2].User, "Sure! Here is a commit message")
	assert.Equal(t, p.prompts[0].System, p.prompts[2].System)
}

func TestGenerate_ExhaustedRepairs(t *testing.T) {
	p := &scriptedProvider{replies: []string{"nope", "still nope", `{"type": }`, "never asked"}}

	_, err := newTestGenerator(t, p, 2).Generate(context.Background(), testBundle())
	require.Error(t, err)

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrInvalidOutput, appErr.Code)
	assert.Contains(t, appErr.Message, "after 3 attempts")
	assert.Contains(t, err.Error(), "not valid JSON")
	assert.Equal(t, 3, p.calls())
}

func TestGenerate_NoRepairs(t *testing.T) {
	p := &scriptedProvider{replies: []string{"nope", `{"type":"fix","title":"x"}`}}

	_, err := newTestGenerator(t, p, 0).Generate(context.Background(), testBundle())

	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidOutput))
	assert.Equal(t, 1, p.calls())
}

func TestGenerate_ProviderFailureIsNotRepaired(t *testing.T) {
	p := &scriptedProvider{errs: []error{apperrors.NewAuthenticationError("scripted")}}

	_, err := newTestGenerator(t, p, 2).Generate(context.Background(), testBundle())

	assert.True(t, apperrors.Is(err, apperrors.ErrAuthenticationFailed))
	assert.True(t, apperrors.IsModelUnavailable(err))
	assert.Equal(t, 1, p.calls())
}

func TestGenerate_PlainProviderErrorBecomesModelUnavailable(t *testing.T) {
	p := &scriptedProvider{errs: []error{context.Canceled}}

	_, err := newTestGenerator(t, p, 2).Generate(context.Background(), testBundle())

	assert.True(t, apperrors.Is(err, apperrors.ErrModelUnavailable))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerate_UnknownTypeAccepted(t *testing.T) {
	p := &scriptedProvider{replies: []string{`{"type":"wip","title":"save progress"}`}}

	msg, err := newTestGenerator(t, p, 2).Generate(context.Background(), testBundle())
	require.NoError(t, err)

	assert.Equal(t, "wip", msg.Type)
	assert.NotEmpty(t, msg.Warnings())
}
