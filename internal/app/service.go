// Package app contains the application layer with business orchestration logic.
package app

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/lazycommit/lazycommit/internal/pkg/errors"
	"github.com/lazycommit/lazycommit/internal/pkg/git"
	"github.com/lazycommit/lazycommit/internal/pkg/message"
	"github.com/lazycommit/lazycommit/internal/pkg/security"
	"github.com/lazycommit/lazycommit/internal/pkg/ui"
)

// DiffCollector gathers the pending changes.
type DiffCollector interface {
	Collect(ctx context.Context, includeUntracked bool) (*git.DiffBundle, error)
}

// MessageGenerator produces a validated commit message for a diff.
type MessageGenerator interface {
	Generate(ctx context.Context, bundle *git.DiffBundle) (*message.CommitMessage, error)
}

// Options controls one run.
type Options struct {
	Mode RunMode
	// CopyToClipboard copies the message in generate-only runs.
	CopyToClipboard bool
}

// CommitService runs the collect, generate, present and commit pipeline.
type CommitService struct {
	collector    DiffCollector
	generator    MessageGenerator
	orchestrator *Orchestrator
	uiManager    ui.Manager
}

// NewCommitService creates a new CommitService with the given dependencies.
func NewCommitService(
	collector DiffCollector,
	generator MessageGenerator,
	orchestrator *Orchestrator,
	uiManager ui.Manager,
) *CommitService {
	return &CommitService{
		collector:    collector,
		generator:    generator,
		orchestrator: orchestrator,
		uiManager:    uiManager,
	}
}

// Run executes one invocation. Nothing in the repository changes before a
// valid message exists; after that, git steps run in order per opts.Mode.
func (s *CommitService) Run(ctx context.Context, opts Options) (*Outcome, error) {
	apperrors.Debug("run mode: %s", opts.Mode)

	spinner := s.uiManager.ShowSpinner("Collecting changes...")
	spinner.Start()
	bundle, err := s.collector.Collect(ctx, opts.Mode.Stages())
	spinner.Stop()
	if err != nil {
		return nil, err
	}

	if kinds := security.FindSecrets(bundle.FullDiff); len(kinds) > 0 {
		s.uiManager.ShowWarning(fmt.Sprintf(
			"the diff appears to contain secrets (%s); they will be sent to the model", strings.Join(kinds, ", ")))
	}

	spinner = s.uiManager.ShowSpinner("Generating commit message...")
	spinner.Start()
	msg, err := s.generator.Generate(ctx, bundle)
	spinner.Stop()
	if err != nil {
		return nil, err
	}

	for _, w := range msg.Warnings() {
		s.uiManager.ShowWarning(w)
	}
	s.uiManager.DisplayMessage(msg)

	if opts.Mode == ModeGenerateOnly && opts.CopyToClipboard {
		if err := s.uiManager.CopyToClipboard(msg.GitString()); err != nil {
			s.uiManager.ShowWarning("could not copy to clipboard: " + err.Error())
		} else {
			s.uiManager.ShowSuccess("Copied to clipboard")
		}
	}

	// A signal during generation must not turn into a commit.
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewInterruptedError("any git change", err)
	}
	outcome, err := s.orchestrator.Execute(ctx, opts.Mode, msg)
	if outcome != nil && outcome.Committed {
		s.uiManager.ShowSuccess("Committed: " + msg.Header())
	}
	if err != nil {
		return outcome, err
	}
	if outcome.Pushed {
		s.uiManager.ShowSuccess("Pushed to upstream")
	}
	return outcome, nil
}
