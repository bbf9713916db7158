package git

import (
	"errors"
	"fmt"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	apperrors "github.com/lazycommit/lazycommit/internal/pkg/errors"
)

// DetachedHead is the branch name reported when HEAD points at a commit.
const DetachedHead = "HEAD"

// Repository is the git working tree a run operates on.
type Repository struct {
	root string
	repo *gogit.Repository
}

// FindRepository walks up from dir until it finds a repository.
// It returns a NotAGitRepository error when none encloses dir.
func FindRepository(dir string) (*Repository, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, apperrors.NewNotAGitRepositoryError(dir, err)
	}

	repo, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, apperrors.NewNotAGitRepositoryError(abs, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		// Bare repositories have nothing to commit from.
		return nil, apperrors.NewNotAGitRepositoryError(abs, err)
	}

	return &Repository{
		root: wt.Filesystem.Root(),
		repo: repo,
	}, nil
}

// Root returns the absolute path of the working tree root.
func (r *Repository) Root() string {
	return r.root
}

// Branch returns the short name of the checked out branch.
// Unborn branches (no commits yet) report the branch HEAD will create;
// a detached HEAD reports "HEAD".
func (r *Repository) Branch() (string, error) {
	head, err := r.repo.Head()
	if err == nil {
		if head.Name().IsBranch() {
			return head.Name().Short(), nil
		}
		return DetachedHead, nil
	}
	if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	sym, symErr := r.repo.Reference(plumbing.HEAD, false)
	if symErr != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", symErr)
	}
	if sym.Type() == plumbing.SymbolicReference {
		return sym.Target().Short(), nil
	}
	return DetachedHead, nil
}
