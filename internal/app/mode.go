package app

// RunMode is the git side-effect policy of one invocation.
type RunMode int

const (
	// ModeGenerateOnly presents the message and touches nothing.
	ModeGenerateOnly RunMode = iota
	// ModeCommit stages every change and commits.
	ModeCommit
	// ModeCommitAndPush stages, commits and pushes to the upstream.
	ModeCommitAndPush
)

// String returns the string representation of RunMode.
func (m RunMode) String() string {
	switch m {
	case ModeGenerateOnly:
		return "generate-only"
	case ModeCommit:
		return "commit"
	case ModeCommitAndPush:
		return "commit-and-push"
	default:
		return "unknown"
	}
}

// Stages reports whether the mode runs 'git add -A'.
func (m RunMode) Stages() bool {
	return m == ModeCommit || m == ModeCommitAndPush
}

// ResolveRunMode derives the mode from the CLI flags.
// Precedence: dry run, then push, then add. No flag means ModeCommit.
func ResolveRunMode(dryRun, push, add bool) RunMode {
	switch {
	case dryRun:
		return ModeGenerateOnly
	case push:
		return ModeCommitAndPush
	case add:
		return ModeCommit
	default:
		return ModeCommit
	}
}
