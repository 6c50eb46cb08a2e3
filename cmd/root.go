package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"git_batch_push/batch"
	"git_batch_push/commit"
	"git_batch_push/config"
	"git_batch_push/git"
	"git_batch_push/log"
)

// repository is everything the commands need from the working tree
type repository interface {
	commit.Committer
	Validate(ctx context.Context) error
	Entries(ctx context.Context) ([]batch.Entry, error)
	GitDir(ctx context.Context) (string, error)
	CurrentBranch(ctx context.Context) (string, error)
	RemoteExists(ctx context.Context, remote string) (bool, error)
}

// openRepository is replaced in tests
var openRepository = func(dir string) (repository, error) {
	return git.NewRepository(dir)
}

// options holds the global flags shared by all commands
type options struct {
	configFile    string
	dir           string
	capBytes      int64
	branch        string
	remote        string
	message       string
	stopOnFailure bool
	dryRun        bool
	debug         bool
}

// NewRootCmd creates the root command. Called without a subcommand it batches,
// commits and pushes every untracked file in the current directory.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "git-batch-push",
		Short: "Commit and push untracked files in size-limited batches",
		Long: `Commit untracked files in batches that stay under a size cap and push each
batch before starting the next one, so no single push exceeds the remote's limit.

Files larger than the cap on their own are skipped. A batch that fails to stage,
commit or push is reported and the remaining batches are still attempted unless
--stop-on-failure is set.

Example:
  git-batch-push
  git-batch-push --cap-bytes 104857600 --branch main
  git-batch-push --dry-run`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "warn"
			if opts.debug {
				level = "debug"
			}
			log.InitLogger(level)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPushCmd(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", config.DefaultConfigFile, "Path to configuration file")
	flags.StringVarP(&opts.dir, "dir", "C", ".", "Run as if started in this directory")
	flags.Int64Var(&opts.capBytes, "cap-bytes", 0, "Maximum batch size in bytes (default 2 GiB)")
	flags.StringVarP(&opts.branch, "branch", "b", "", "Remote branch to push to (default \"master\")")
	flags.StringVarP(&opts.remote, "remote", "r", "", "Remote to push to (default \"origin\")")
	flags.StringVarP(&opts.message, "message", "m", "", "Commit message format, %d is replaced by the file count")
	flags.BoolVar(&opts.stopOnFailure, "stop-on-failure", false, "Skip the remaining batches after a batch fails")
	flags.BoolVarP(&opts.dryRun, "dry-run", "n", false, "Plan batches without staging, committing or pushing")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newStatusCmd(opts))
	rootCmd.AddCommand(newHistoryCmd(opts))

	return rootCmd
}

// loadConfiguration reads the config file and applies explicitly set flags on top of it
func loadConfiguration(cmd *cobra.Command, opts *options) (*config.Configuration, error) {
	cfg, err := config.ReadConfig(opts.configFile)
	if errors.Is(err, config.ErrMalformedConfig) {
		return nil, log.NewError(log.ErrConfigParseFailed, "Error parsing config", err)
	}
	if err != nil {
		return nil, log.NewError(log.ErrConfigReadFailed, "Error reading config", err)
	}

	flags := cmd.Flags()
	if flags.Changed("cap-bytes") {
		cfg.CapBytes = opts.capBytes
	}
	if flags.Changed("branch") {
		cfg.Branch = opts.branch
	}
	if flags.Changed("remote") {
		cfg.Remote = opts.remote
	}
	if flags.Changed("message") {
		cfg.MessageFormat = opts.message
	}
	if flags.Changed("stop-on-failure") {
		cfg.StopOnFailure = opts.stopOnFailure
	}

	if err := cfg.Validate(); err != nil {
		return nil, log.NewError(log.ErrConfigInvalid, "Invalid configuration", err)
	}

	logger := log.Logger()
	logger.Debug().
		Int64("cap_bytes", cfg.CapBytes).
		Str("branch", cfg.Branch).
		Str("remote", cfg.Remote).
		Bool("stop_on_failure", cfg.StopOnFailure).
		Msg("configuration loaded")

	return cfg, nil
}

// openValidRepository opens the repository at opts.dir and checks it is a work tree
func openValidRepository(ctx context.Context, opts *options) (repository, error) {
	repo, err := openRepository(opts.dir)
	if err != nil {
		return nil, log.NewError(log.ErrRepoInvalidPath, "Invalid repository path", err)
	}
	if err := repo.Validate(ctx); err != nil {
		return nil, log.NewError(log.ErrRepoNotGit, "Not a git repository", err)
	}
	return repo, nil
}

// Execute runs the root command and exits non-zero when it returns an error
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		printCommandError(err)
		stop()
		os.Exit(1)
	}
}

func printCommandError(err error) {
	var coded *log.CodedError
	if errors.As(err, &coded) {
		log.PrintError(coded.Code, coded.Description, coded.Err)
		return
	}
	log.PrintError(log.ErrInvalidArgument, "Command failed", err)
}
