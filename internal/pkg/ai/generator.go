package ai

import (
	"context"

	apperrors "github.com/lazycommit/lazycommit/internal/pkg/errors"
	"github.com/lazycommit/lazycommit/internal/pkg/git"
	"github.com/lazycommit/lazycommit/internal/pkg/message"
)

// DefaultMaxRepairAttempts is the number of corrective re-prompts after the first reply.
const DefaultMaxRepairAttempts = 2

// Generator turns a diff bundle into a validated commit message.
type Generator struct {
	provider   Provider
	prompts    *PromptBuilder
	maxRepairs int
}

// NewGenerator creates a generator that re-prompts up to maxRepairs times.
func NewGenerator(provider Provider, prompts *PromptBuilder, maxRepairs int) *Generator {
	if maxRepairs < 0 {
		maxRepairs = 0
	}
	return &Generator{
		provider:   provider,
		prompts:    prompts,
		maxRepairs: maxRepairs,
	}
}

// Generate asks the model for a commit message describing bundle. A reply
// that fails validation is sent back with the error until the repair bound
// is spent, which yields InvalidOutput. Provider failures end the run at once.
func (g *Generator) Generate(ctx context.Context, bundle *git.DiffBundle) (*message.CommitMessage, error) {
	prompt, err := g.prompts.Build(bundle)
	if err != nil {
		return nil, err
	}

	attempts := g.maxRepairs + 1
	current := prompt
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		raw, err := g.provider.Complete(ctx, current)
		if err != nil {
			if apperrors.GetAppError(err) == nil {
				err = apperrors.NewModelUnavailableError(g.provider.Name(), err)
			}
			return nil, err
		}

		msg, err := message.ParseJSON(raw)
		if err == nil {
			apperrors.Debug("commit message accepted on attempt %d/%d", attempt, attempts)
			return msg, nil
		}
		lastErr = err
		if attempt == attempts {
			break
		}

		apperrors.LogRepair(attempt, g.maxRepairs, err.Error())
		current, err = g.prompts.Repair(prompt, raw, err)
		if err != nil {
			return nil, err
		}
	}

	return nil, apperrors.NewInvalidOutputError(attempts, lastErr)
}
