package message

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitString(t *testing.T) {
	tests := []struct {
		name     string
		msg      CommitMessage
		expected string
	}{
		{"type and title", CommitMessage{Type: "fix", Title: "handle nil config"}, "fix: handle nil config"},
		{"with scope", CommitMessage{Type: "feat", Scope: "auth", Title: "add login"}, "feat(auth): add login"},
		{"with body", CommitMessage{Type: "docs", Title: "update readme", Body: "Explain setup.\n\nAnd usage."},
			"docs: update readme\n\nExplain setup.\n\nAnd usage."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.msg.GitString())
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		msg     CommitMessage
		wantErr string
	}{
		{"valid", CommitMessage{Type: "feat", Title: "add thing"}, ""},
		{"unknown but well-formed type", CommitMessage{Type: "wip", Title: "save"}, ""},
		{"missing type", CommitMessage{Title: "add thing"}, `field "type" is required`},
		{"missing title", CommitMessage{Type: "feat"}, `field "title" is required`},
		{"type with space", CommitMessage{Type: "new feature", Title: "x"}, `field "type" must be a single lower-case word`},
		{"type with colon", CommitMessage{Type: "feat:", Title: "x"}, `field "type"`},
		{"type with vertical tab", CommitMessage{Type: "fe\vat", Title: "x"}, `field "type"`},
		{"type with no-break space", CommitMessage{Type: "fe\u00a0at", Title: "x"}, `field "type"`},
		{"upper-case type", CommitMessage{Type: "Feat", Title: "x"}, `field "type"`},
		{"scope with parens", CommitMessage{Type: "fix", Scope: "a)b", Title: "x"}, `field "scope" must not contain parentheses`},
		{"multi-line title", CommitMessage{Type: "fix", Title: "one\ntwo"}, `field "title" must be a single line`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsAllFields(t *testing.T) {
	err := (&CommitMessage{}).Validate()

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
}

func TestNormalize(t *testing.T) {
	cm := CommitMessage{
		Type:  "  FEAT ",
		Scope: " (api) ",
		Title: "  add\n  pagination \t support ",
		Body:  "\n body text \n",
	}
	cm.Normalize()

	assert.Equal(t, "feat", cm.Type)
	assert.Equal(t, "api", cm.Scope)
	assert.Equal(t, "add pagination support", cm.Title)
	assert.Equal(t, "body text", cm.Body)
	assert.NoError(t, cm.Validate())
}

func TestWarnings(t *testing.T) {
	assert.Empty(t, (&CommitMessage{Type: "feat", Title: "short"}).Warnings())

	unknown := (&CommitMessage{Type: "wip", Title: "short"}).Warnings()
	require.Len(t, unknown, 1)
	assert.Contains(t, unknown[0], `"wip" is not a standard type`)

	long := (&CommitMessage{Type: "feat", Title: strings.Repeat("x", 80)}).Warnings()
	require.Len(t, long, 1)
	assert.Contains(t, long[0], "exceeds 72 characters")
}

func TestIsValidCommitType(t *testing.T) {
	for _, typ := range ValidCommitTypes {
		assert.True(t, IsValidCommitType(typ), typ)
	}
	assert.False(t, IsValidCommitType("feature"))
	assert.False(t, IsValidCommitType(""))
}

func TestParseGitMessage(t *testing.T) {
	cm, err := ParseGitMessage("feat(ui): add dark mode\n\nAdds a toggle.\n\nRefs: #12\n")
	require.NoError(t, err)

	assert.Equal(t, "feat", cm.Type)
	assert.Equal(t, "ui", cm.Scope)
	assert.Equal(t, "add dark mode", cm.Title)
	assert.Equal(t, "Adds a toggle.\n\nRefs: #12", cm.Body)
	assert.True(t, cm.HasBody())
}

func TestParseGitMessage_NoScope(t *testing.T) {
	cm, err := ParseGitMessage("chore: bump deps")
	require.NoError(t, err)

	assert.Equal(t, CommitMessage{Type: "chore", Title: "bump deps"}, *cm)
	assert.False(t, cm.HasBody())
}

func TestParseGitMessage_Rejects(t *testing.T) {
	for _, text := range []string{"", "   ", "just some words", "feat:missing space", ": no type"} {
		_, err := ParseGitMessage(text)
		assert.Error(t, err, text)
	}
}
