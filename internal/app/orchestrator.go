package app

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/lazycommit/lazycommit/internal/pkg/errors"
	"github.com/lazycommit/lazycommit/internal/pkg/git"
	"github.com/lazycommit/lazycommit/internal/pkg/message"
)

// Result is how far a run got.
type Result int

const (
	ResultGeneratedOnly Result = iota
	ResultCommitted
	ResultPushed
)

// String returns the string representation of Result.
func (r Result) String() string {
	switch r {
	case ResultGeneratedOnly:
		return "generated"
	case ResultCommitted:
		return "committed"
	case ResultPushed:
		return "pushed"
	default:
		return "unknown"
	}
}

// Outcome reports what the git sequence did.
type Outcome struct {
	Result     Result
	Message    *message.CommitMessage
	GitMessage string
	Staged     bool
	Committed  bool
	Pushed     bool
}

// Orchestrator applies the git side effects of a run mode.
type Orchestrator struct {
	git git.Client
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(client git.Client) *Orchestrator {
	return &Orchestrator{git: client}
}

// Execute stages, commits and pushes as mode requires. Each step runs only
// if the previous one succeeded, and a failed push never undoes the commit.
// The returned Outcome is never nil, even on error.
func (o *Orchestrator) Execute(ctx context.Context, mode RunMode, msg *message.CommitMessage) (*Outcome, error) {
	outcome := &Outcome{
		Result:     ResultGeneratedOnly,
		Message:    msg,
		GitMessage: msg.GitString(),
	}
	if !mode.Stages() {
		return outcome, nil
	}

	if err := ctx.Err(); err != nil {
		return outcome, apperrors.NewInterruptedError("staging", err)
	}
	if err := o.git.AddAll(ctx); err != nil {
		return outcome, withGitOutput(apperrors.NewStageFailedError(err), err)
	}
	outcome.Staged = true

	if err := o.git.Commit(ctx, outcome.GitMessage); err != nil {
		return outcome, withGitOutput(apperrors.NewCommitFailedError(err), err)
	}
	outcome.Committed = true
	outcome.Result = ResultCommitted
	apperrors.Debug("committed: %s", msg.Header())

	if mode != ModeCommitAndPush {
		return outcome, nil
	}
	if err := ctx.Err(); err != nil {
		return outcome, apperrors.NewInterruptedError("push", err)
	}

	if err := o.push(ctx); err != nil {
		return outcome, err
	}
	outcome.Pushed = true
	outcome.Result = ResultPushed
	return outcome, nil
}

func (o *Orchestrator) push(ctx context.Context) error {
	hasUpstream, err := o.git.HasUpstream(ctx)
	if err != nil {
		return apperrors.NewPushFailedError(err, "")
	}
	if !hasUpstream {
		hasRemote, _ := o.git.HasRemote(ctx)
		suggestion := "Your commit is safe locally; set an upstream with 'git push -u <remote> <branch>'"
		if !hasRemote {
			suggestion = "Your commit is safe locally; add a remote with 'git remote add origin <url>' and push"
		}
		return apperrors.NewPushFailedError(errors.New("current branch has no upstream"), suggestion)
	}

	if err := o.git.Push(ctx); err != nil {
		return withGitOutput(apperrors.NewPushFailedError(err, ""), err)
	}
	return nil
}

// withGitOutput lifts git's own output from cause onto appErr so it is shown
// to the user verbatim.
func withGitOutput(appErr *apperrors.AppError, cause error) *apperrors.AppError {
	var gitErr *apperrors.AppError
	if errors.As(cause, &gitErr) {
		if output, ok := gitErr.Context["output"]; ok {
			appErr.WithContext("output", fmt.Sprintf("%v", output))
		}
	}
	return appErr
}
