package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lazycommit/lazycommit/internal/app"
	"github.com/lazycommit/lazycommit/internal/pkg/ai"
	"github.com/lazycommit/lazycommit/internal/pkg/config"
	apperrors "github.com/lazycommit/lazycommit/internal/pkg/errors"
	"github.com/lazycommit/lazycommit/internal/pkg/git"
	"github.com/lazycommit/lazycommit/internal/pkg/processor"
	"github.com/lazycommit/lazycommit/internal/pkg/security"
	"github.com/lazycommit/lazycommit/internal/pkg/transport"
	"github.com/lazycommit/lazycommit/internal/pkg/ui"
)

// RunTimeout bounds one whole invocation.
const RunTimeout = 5 * time.Minute

// RunFlags holds the flags that pick the run mode.
type RunFlags struct {
	DryRun bool
	Push   bool
	Add    bool
	NoCopy bool
}

// Mode resolves the flags into a run mode.
func (f *RunFlags) Mode() app.RunMode {
	return app.ResolveRunMode(f.DryRun, f.Push, f.Add)
}

func addRunFlags(cmd *cobra.Command, flags *RunFlags) {
	cmd.Flags().BoolVarP(&flags.DryRun, "dry-run", "n", false, "Generate and show the message only; overrides --add and --push")
	cmd.Flags().BoolVarP(&flags.Push, "push", "p", false, "Stage all changes, commit and push")
	cmd.Flags().BoolVarP(&flags.Add, "add", "a", false, "Stage all changes and commit (the default)")
	cmd.Flags().BoolVar(&flags.NoCopy, "no-copy", false, "Do not copy the message to the clipboard in dry runs")
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	verbose  bool
	config   string
	provider string
	model    string
	baseURL  string
	chdir    string
}

func readGlobalFlags(cmd *cobra.Command) globalFlags {
	var g globalFlags
	g.verbose, _ = cmd.Flags().GetBool("verbose")
	g.config, _ = cmd.Flags().GetString("config")
	g.provider, _ = cmd.Flags().GetString("provider")
	g.model, _ = cmd.Flags().GetString("model")
	g.baseURL, _ = cmd.Flags().GetString("base-url")
	g.chdir, _ = cmd.Flags().GetString("chdir")
	return g
}

// overrides returns the config keys set on the command line.
func (g globalFlags) overrides() map[string]string {
	out := make(map[string]string)
	if g.provider != "" {
		out["provider.name"] = g.provider
	}
	if g.model != "" {
		out["provider.model"] = g.model
	}
	if g.baseURL != "" {
		out["provider.base_url"] = g.baseURL
	}
	return out
}

// runCommit executes one lazycommit run.
func runCommit(cmd *cobra.Command, flags *RunFlags) error {
	sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(sigCtx, RunTimeout)
	defer cancel()

	g := readGlobalFlags(cmd)

	apperrors.SetVerbose(g.verbose)
	apperrors.SetRunID(uuid.NewString())
	defer apperrors.Sync()

	// The repository is resolved before configuration so that running
	// outside a work tree fails without any network activity.
	dir := g.chdir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return apperrors.NewNotAGitRepositoryError(".", err)
		}
		dir = wd
	}
	repo, err := git.FindRepository(dir)
	if err != nil {
		return err
	}
	apperrors.Debug("repository root: %s", repo.Root())

	cfg, warnings, err := loadConfig(repo.Root(), g)
	if err != nil {
		return err
	}

	mode := flags.Mode()
	selector := transport.Selector{
		BypassProxy: cfg.Network.BypassProxy,
		Timeout:     cfg.Provider.Timeout(),
	}

	if g.verbose {
		apperrors.Info("Using provider: %s", cfg.Provider.Name)
		if cfg.Provider.Model != "" {
			apperrors.Info("Using model: %s", cfg.Provider.Model)
		} else {
			apperrors.Info("Using model: provider default")
		}
		if cfg.Provider.BaseURL != "" {
			apperrors.Info("Base URL: %s (%s)", cfg.Provider.BaseURL, selector.Select(cfg.Provider.BaseURL).ProxyMode)
		}
		if cfg.Provider.APIKey != "" {
			apperrors.Info("API key: %s", security.MaskAPIKey(cfg.Provider.APIKey))
		}
		apperrors.Info("Run mode: %s", mode)
	}

	// Create dependencies
	provider, err := ai.NewProvider(&cfg.Provider, selector)
	if err != nil {
		return err
	}
	apperrors.Debug("model provider created: %s", provider.Name())

	prompts, err := ai.NewPromptBuilder(ai.NewTokenCounter(), cfg.Diff.MaxPromptTokens)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to build prompt templates")
	}

	gitClient := git.NewClientWithWorkDir(repo.Root())
	collector := git.NewCollector(
		repo,
		gitClient,
		processor.NewCompressorWithContext(cfg.Diff.ContextLines),
		cfg.Diff.Budget,
	)

	uiManager := ui.NewManager(cfg.UI.ColorEnabled)
	for _, w := range warnings {
		uiManager.ShowWarning(w)
	}

	service := app.NewCommitService(
		collector,
		ai.NewGenerator(provider, prompts, cfg.Generation.MaxRepairAttempts),
		app.NewOrchestrator(gitClient),
		uiManager,
	)

	_, err = service.Run(ctx, app.Options{
		Mode:            mode,
		CopyToClipboard: cfg.UI.CopyToClipboard && !flags.NoCopy,
	})
	return err
}

// loadConfig merges .env, the config file, the environment and flag overrides,
// then checks that the provider can be reached with the given credentials.
// The returned warnings are for the user, not the log.
func loadConfig(repoRoot string, g globalFlags) (*config.Config, []string, error) {
	loaded, err := config.LoadDotEnv(repoRoot)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to load .env")
	}
	if len(loaded) > 0 {
		apperrors.Debug("loaded from .env: %v", loaded)
	}

	cfgMgr, err := config.NewManager(g.config)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to create config manager")
	}
	if g.config != "" {
		apperrors.Debug("Using custom config path: %s", g.config)
	}

	// Flags take highest priority and are never persisted.
	for key, value := range g.overrides() {
		cfgMgr.SetOverride(key, value)
		apperrors.Debug("%s overridden via flag: %s", key, value)
	}

	cfg, err := cfgMgr.Load()
	if err != nil {
		return nil, nil, apperrors.NewInvalidConfigError(err.Error())
	}

	if err := security.CheckAPIKey(cfg.Provider.Name, cfg.Provider.BaseURL, cfg.Provider.APIKey); err != nil {
		if cfg.Provider.APIKey == "" {
			return nil, nil, apperrors.NewMissingAPIKeyError(cfg.Provider.Name)
		}
		return nil, nil, apperrors.NewInvalidConfigError(err.Error())
	}

	var warnings []string
	if g.baseURL == "" && cfg.Provider.APIKey != "" && config.RedirectsAPIKey(loaded) {
		warnings = append(warnings, fmt.Sprintf(
			"%s sets the provider base URL to %s; your API key from elsewhere will be sent there",
			config.DotEnvFile, cfg.Provider.BaseURL))
	}
	return cfg, warnings, nil
}
