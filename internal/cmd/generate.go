package cmd

import (
	"github.com/spf13/cobra"
)

// NewGenerateCmd creates the generate command as an alias for --dry-run.
func NewGenerateCmd() *cobra.Command {
	flags := &RunFlags{DryRun: true}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a commit message without touching the repository",
		Long: `Generate a commit message for the pending changes and print it.

This is equivalent to running 'lazycommit --dry-run'. Untracked files
are not considered, and nothing is staged or committed.

Examples:
  lazycommit generate
  lazycommit generate --no-copy | git commit -F -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommit(cmd, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.NoCopy, "no-copy", false, "Do not copy the message to the clipboard")

	return cmd
}
