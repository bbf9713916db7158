// Package main is the entry point for the lazycommit CLI.
// lazycommit generates Conventional Commits messages for pending changes
// with a language model and optionally stages, commits and pushes them.
package main

import (
	"fmt"
	"os"

	"github.com/lazycommit/lazycommit/internal/cmd"
	apperrors "github.com/lazycommit/lazycommit/internal/pkg/errors"
)

// Version information - set via ldflags during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := cmd.NewRootCmd(version, commit, date)
	if err := rootCmd.Execute(); err != nil {
		if apperrors.IsVerbose() {
			fmt.Fprint(os.Stderr, apperrors.FormatErrorVerbose(err))
		} else {
			fmt.Fprintln(os.Stderr, apperrors.FormatError(err))
		}
		os.Exit(1)
	}
}
