// Package git provides repository discovery, diff collection and the git
// side effects (stage, commit, push) for lazycommit.
package git

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	apperrors "github.com/lazycommit/lazycommit/internal/pkg/errors"
)

const (
	// GitCommandTimeout is the default timeout for local git commands.
	GitCommandTimeout = 10 * time.Second
	// GitPushTimeout bounds network operations.
	GitPushTimeout = 60 * time.Second
)

// rawPaths keeps git from C-quoting non-ASCII bytes in diff headers.
var rawPaths = []string{"-c", "core.quotePath=false"}

// Client defines the git operations a run needs.
type Client interface {
	StagedDiff(ctx context.Context) (string, error)
	UnstagedDiff(ctx context.Context) (string, error)
	UntrackedFiles(ctx context.Context) ([]string, error)
	NewFileDiff(ctx context.Context, path string) (string, error)
	AddAll(ctx context.Context) error
	Commit(ctx context.Context, message string) error
	Push(ctx context.Context) error
	HasUpstream(ctx context.Context) (bool, error)
	HasRemote(ctx context.Context) (bool, error)
}

// DefaultClient implements the Client interface using exec.CommandContext.
type DefaultClient struct {
	// workDir is the working directory for git commands.
	// If empty, uses the current directory.
	workDir string
}

// NewClient creates a new DefaultClient running in the current directory.
func NewClient() *DefaultClient {
	return &DefaultClient{}
}

// NewClientWithWorkDir creates a new DefaultClient with a specific working directory.
func NewClientWithWorkDir(workDir string) *DefaultClient {
	return &DefaultClient{workDir: workDir}
}

// run executes git with args under its own timeout and returns stdout.
// okExitCodes lists non-zero exit codes that are not failures.
func (c *DefaultClient) run(ctx context.Context, timeout time.Duration, okExitCodes []int, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	if c.workDir != "" {
		cmd.Dir = c.workDir
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err == nil {
		return output, nil
	}
	if ctx.Err() == context.DeadlineExceeded {
		return nil, apperrors.NewTimeoutError(ctx.Err())
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		for _, code := range okExitCodes {
			if exitErr.ExitCode() == code {
				return output, nil
			}
		}
	}
	return nil, apperrors.NewGitError(err, strings.TrimSpace(stderr.String()))
}

// runCombined is run for mutating commands whose stdout and stderr are both
// worth showing when they fail (hook output, push rejections).
func (c *DefaultClient) runCombined(ctx context.Context, timeout time.Duration, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	if c.workDir != "" {
		cmd.Dir = c.workDir
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return apperrors.NewTimeoutError(ctx.Err())
		}
		return apperrors.NewGitError(err, strings.TrimSpace(string(output)))
	}
	return nil
}

// StagedDiff returns the diff of the index against HEAD.
func (c *DefaultClient) StagedDiff(ctx context.Context) (string, error) {
	out, err := c.run(ctx, GitCommandTimeout, nil, diffArgs("--cached", "--no-color", "--no-ext-diff")...)
	return string(out), err
}

// UnstagedDiff returns the diff of tracked working tree files against the index.
func (c *DefaultClient) UnstagedDiff(ctx context.Context) (string, error) {
	out, err := c.run(ctx, GitCommandTimeout, nil, diffArgs("--no-color", "--no-ext-diff")...)
	return string(out), err
}

// UntrackedFiles lists untracked files that are not ignored, relative to the root.
func (c *DefaultClient) UntrackedFiles(ctx context.Context) ([]string, error) {
	// -z prints names verbatim; without it unusual names come back C-quoted.
	out, err := c.run(ctx, GitCommandTimeout, nil, "ls-files", "-z", "--others", "--exclude-standard")
	if err != nil {
		return nil, err
	}

	var files []string
	for _, name := range strings.Split(string(out), "\x00") {
		if name != "" {
			files = append(files, name)
		}
	}
	return files, nil
}

// NewFileDiff renders an untracked file as an added-file diff.
func (c *DefaultClient) NewFileDiff(ctx context.Context, path string) (string, error) {
	// --no-index exits 1 when the inputs differ, which they always do here.
	out, err := c.run(ctx, GitCommandTimeout, []int{1}, diffArgs("--no-color", "--no-ext-diff", "--no-index", "--", "/dev/null", path)...)
	return string(out), err
}

func diffArgs(args ...string) []string {
	out := append([]string{}, rawPaths...)
	out = append(out, "diff")
	return append(out, args...)
}

// AddAll stages every change in the working tree, including deletions and untracked files.
func (c *DefaultClient) AddAll(ctx context.Context) error {
	return c.runCombined(ctx, GitCommandTimeout, "add", "-A")
}

// Commit records the staged changes with the given message.
func (c *DefaultClient) Commit(ctx context.Context, message string) error {
	return c.runCombined(ctx, GitCommandTimeout, "commit", "-m", message)
}

// Push pushes the current branch to its configured upstream.
func (c *DefaultClient) Push(ctx context.Context) error {
	return c.runCombined(ctx, GitPushTimeout, "push")
}

// HasUpstream checks if the current branch has an upstream tracking branch.
func (c *DefaultClient) HasUpstream(ctx context.Context) (bool, error) {
	_, err := c.run(ctx, GitCommandTimeout, nil, "rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{u}")
	if err != nil {
		if apperrors.Is(err, apperrors.ErrTimeout) {
			return false, err
		}
		// Exit code 128 means no upstream configured.
		return false, nil
	}
	return true, nil
}

// HasRemote checks if the repository has a remote configured.
func (c *DefaultClient) HasRemote(ctx context.Context) (bool, error) {
	out, err := c.run(ctx, GitCommandTimeout, nil, "remote")
	if err != nil {
		return false, err
	}
	return len(strings.TrimSpace(string(out))) > 0, nil
}
