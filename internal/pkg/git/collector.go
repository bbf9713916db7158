package git

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/lazycommit/lazycommit/internal/pkg/errors"
)

// Compressor shrinks a raw diff to fit a byte budget.
type Compressor interface {
	Compress(rawDiff string, budget int) (compressed string, truncated bool)
}

// DiffBundle is everything the message generator learns about the pending changes.
type DiffBundle struct {
	BranchName     string
	CompressedDiff string
	// FullDiff is the concatenated raw diff; it is never modified after collection.
	FullDiff  string
	Truncated bool
	// Files lists the display path of every file section, in diff order.
	Files []string
}

// Collector gathers the pending changes of a repository.
type Collector struct {
	repo       *Repository
	client     Client
	compressor Compressor
	budget     int
}

// NewCollector creates a collector that compresses into budget bytes.
func NewCollector(repo *Repository, client Client, compressor Compressor, budget int) *Collector {
	return &Collector{
		repo:       repo,
		client:     client,
		compressor: compressor,
		budget:     budget,
	}
}

// Collect returns the staged diff, then the unstaged diff of tracked files,
// then (when includeUntracked is set) every untracked file as an added-file
// diff. It fails with NoChanges when all of these are empty.
func (c *Collector) Collect(ctx context.Context, includeUntracked bool) (*DiffBundle, error) {
	branch, err := c.repo.Branch()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrGitCommandFailed, "failed to determine current branch")
	}

	var sections []string

	staged, err := c.client.StagedDiff(ctx)
	if err != nil {
		return nil, err
	}
	sections = appendSection(sections, staged)

	unstaged, err := c.client.UnstagedDiff(ctx)
	if err != nil {
		return nil, err
	}
	sections = appendSection(sections, unstaged)

	if includeUntracked {
		untracked, err := c.client.UntrackedFiles(ctx)
		if err != nil {
			return nil, err
		}
		for _, path := range untracked {
			diff, err := c.client.NewFileDiff(ctx, path)
			if err != nil {
				return nil, fmt.Errorf("failed to diff untracked file %s: %w", path, err)
			}
			sections = appendSection(sections, diff)
		}
		apperrors.Debug("included %d untracked files", len(untracked))
	}

	full := strings.Join(sections, "")
	if strings.TrimSpace(full) == "" {
		return nil, apperrors.NewNoChangesError()
	}

	compressed, truncated := c.compressor.Compress(full, c.budget)
	apperrors.Debug("diff collected: branch=%s raw=%d bytes compressed=%d bytes truncated=%t",
		branch, len(full), len(compressed), truncated)

	files := ParseDiff(full)
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.DisplayPath())
	}

	return &DiffBundle{
		BranchName:     branch,
		CompressedDiff: compressed,
		FullDiff:       full,
		Truncated:      truncated,
		Files:          paths,
	}, nil
}

// appendSection adds a non-empty diff, terminating it with a newline so the
// next section's "diff --git" starts on its own line.
func appendSection(sections []string, diff string) []string {
	if strings.TrimSpace(diff) == "" {
		return sections
	}
	if !strings.HasSuffix(diff, "\n") {
		diff += "\n"
	}
	return append(sections, diff)
}
