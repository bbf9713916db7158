// Package cmd contains the CLI command definitions for lazycommit.
package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the lazycommit CLI.
func NewRootCmd(version, commitHash, date string) *cobra.Command {
	flags := &RunFlags{}

	rootCmd := &cobra.Command{
		Use:   "lazycommit",
		Short: "AI-generated conventional commit messages",
		Long: `lazycommit reads your pending changes, asks a language model for a
Conventional Commits message and, depending on the flags, stages,
commits and pushes with it.

Any OpenAI-compatible endpoint works, including self-hosted servers
on the local network; Ollama is supported natively.

Examples:
  lazycommit              # Stage everything and commit
  lazycommit -n           # Show the message only (copied to the clipboard)
  lazycommit -p           # Stage, commit and push
  lazycommit --provider ollama --model qwen2.5-coder -n`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommit(cmd, flags)
		},
	}

	rootCmd.SetVersionTemplate(`lazycommit {{.Version}}
Commit: ` + commitHash + `
Built:  ` + date + "\n")

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().String("config", "", "Config file path (default: ~/.lazycommit/config.yaml)")
	rootCmd.PersistentFlags().String("provider", "", "Model provider to use (openai, ollama)")
	rootCmd.PersistentFlags().String("model", "", "Model to use")
	rootCmd.PersistentFlags().String("base-url", "", "Model endpoint base URL")
	rootCmd.PersistentFlags().StringP("chdir", "C", "", "Run as if lazycommit was started in this directory")

	addRunFlags(rootCmd, flags)

	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewConfigCmd())

	return rootCmd
}
