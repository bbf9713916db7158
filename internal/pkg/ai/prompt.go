package ai

import (
	"bytes"
	"strings"
	"text/template"

	apperrors "github.com/lazycommit/lazycommit/internal/pkg/errors"
	"github.com/lazycommit/lazycommit/internal/pkg/git"
	"github.com/lazycommit/lazycommit/internal/pkg/message"
	"github.com/lazycommit/lazycommit/internal/pkg/processor"
)

// DefaultSystemPromptTemplate describes the JSON contract the model must follow.
const DefaultSystemPromptTemplate = `You are an expert at writing git commit messages in the Conventional Commits format.

Reply with exactly one JSON object and nothing else:
{"type": "...", "scope": "..." or null, "title": "...", "body": "..." or null}

Rules:
- type: one of {{.Types}}
- scope: optional short noun for the affected area, no parentheses
- title: imperative mood, no trailing period, a single line; keep "type(scope): title" under {{.MaxHeader}} characters
- body: optional; explain what changed and why, wrap lines at 72 characters
- describe only what the diff shows`

// DefaultUserPromptTemplate is rendered with PromptData.
const DefaultUserPromptTemplate = `Branch: {{.Branch}}
{{if .Truncated}}
The diff was compressed to fit. The manifest at the top lists every changed file.
{{end}}
Diff:
{{.Diff}}
{{if .FullDiff}}
Full uncompressed diff, for reference:
{{.FullDiff}}
{{end}}`

// RepairPromptTemplate asks the model to fix a rejected reply.
const RepairPromptTemplate = `{{.Original}}

Your previous reply was rejected: {{.Error}}

Previous reply:
{{.Reply}}

Reply again with only the corrected JSON object.`

// maxQuotedReply bounds how much of a rejected reply is quoted back.
const maxQuotedReply = 2000

// PromptData contains the data used to render the user prompt template.
type PromptData struct {
	Branch    string
	Diff      string
	Truncated bool
	FullDiff  string
}

// PromptBuilder composes the prompts sent to the model.
type PromptBuilder struct {
	system          string
	user            *template.Template
	repair          *template.Template
	tokens          TokenCounter
	maxPromptTokens int
}

// NewPromptBuilder creates a builder. When a diff had to be compressed, the
// full diff is still attached if the whole prompt stays within maxPromptTokens.
func NewPromptBuilder(tokens TokenCounter, maxPromptTokens int) (*PromptBuilder, error) {
	if tokens == nil {
		tokens = EstimateCounter{}
	}

	var sys bytes.Buffer
	sysTmpl := template.Must(template.New("system").Parse(DefaultSystemPromptTemplate))
	if err := sysTmpl.Execute(&sys, map[string]interface{}{
		"Types":     strings.Join(message.ValidCommitTypes, ", "),
		"MaxHeader": message.MaxSubjectLength,
	}); err != nil {
		return nil, err
	}

	user, err := template.New("user").Parse(DefaultUserPromptTemplate)
	if err != nil {
		return nil, err
	}
	repair, err := template.New("repair").Parse(RepairPromptTemplate)
	if err != nil {
		return nil, err
	}

	return &PromptBuilder{
		system:          sys.String(),
		user:            user,
		repair:          repair,
		tokens:          tokens,
		maxPromptTokens: maxPromptTokens,
	}, nil
}

// SystemPrompt returns the rendered system prompt.
func (pb *PromptBuilder) SystemPrompt() string {
	return pb.system
}

// Build composes the first prompt for bundle.
func (pb *PromptBuilder) Build(bundle *git.DiffBundle) (Prompt, error) {
	data := PromptData{
		Branch:    bundle.BranchName,
		Diff:      bundle.CompressedDiff,
		Truncated: bundle.Truncated,
	}

	user, err := pb.render(pb.user, data)
	if err != nil {
		return Prompt{}, err
	}

	if bundle.Truncated && bundle.FullDiff != "" {
		data.FullDiff = bundle.FullDiff
		withFull, err := pb.render(pb.user, data)
		if err != nil {
			return Prompt{}, err
		}
		tokens := pb.tokens.Count(pb.system) + pb.tokens.Count(withFull)
		if tokens <= pb.maxPromptTokens {
			user = withFull
		} else {
			apperrors.Debug("full diff left out of prompt: %d tokens exceeds %d", tokens, pb.maxPromptTokens)
		}
	}

	return Prompt{System: pb.system, User: user}, nil
}

// Repair amends original with the validation error and the rejected reply.
func (pb *PromptBuilder) Repair(original Prompt, reply string, cause error) (Prompt, error) {
	if len(reply) > maxQuotedReply {
		reply = processor.CutUTF8(reply, maxQuotedReply) + "..."
	}
	user, err := pb.render(pb.repair, map[string]string{
		"Original": original.User,
		"Error":    cause.Error(),
		"Reply":    reply,
	})
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{System: original.System, User: user}, nil
}

func (pb *PromptBuilder) render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
