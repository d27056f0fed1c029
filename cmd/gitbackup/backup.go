package main

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/NicabarNimble/go-gitbackup/internal/backup"
	"github.com/NicabarNimble/go-gitbackup/internal/config"
	apperrors "github.com/NicabarNimble/go-gitbackup/internal/errors"
	"github.com/NicabarNimble/go-gitbackup/internal/logging"
)

type backupOptions struct {
	configPath   string
	organization string
	limit        uint16
	concurrency  int
	directory    string
	lister       string
	syncer       string
	verbose      bool
	quiet        bool
	logFormat    string
}

func newBackupCmd() *cobra.Command {
	opts := &backupOptions{}

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Backup all repositories from GitHub based on limit",
		Long: `List up to --limit repositories of an organization and mirror each of them
into the target directory: repositories without a local directory are cloned,
the others are pulled. Failed repositories are reported once every sync has
finished, and the command then exits with status 1.`,
		Example: `  gitbackup backup --organization acme
  gitbackup backup -o acme -l 200 --dir /srv/mirror
  gitbackup backup -o acme --lister api --syncer go-git`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			return runBackup(cmd, cfg, opts.quiet)
		},
	}

	opts.bindFlags(cmd)

	return cmd
}

func (o *backupOptions) bindFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&o.configPath, "config", config.DefaultPath, "Configuration file")
	flags.StringVarP(&o.organization, "organization", "o", "", "Organization whose repositories are backed up")
	flags.Uint16VarP(&o.limit, "limit", "l", config.DefaultLimit, fmt.Sprintf("Maximum number of repositories (0-%d)", math.MaxUint16))
	flags.IntVarP(&o.concurrency, "concurrency", "j", 0, "Simultaneous syncs (0 = number of CPUs)")
	flags.StringVarP(&o.directory, "dir", "d", "", "Directory holding the mirrors (default \".\")")
	flags.StringVar(&o.lister, "lister", "", "How repositories are listed: gh or api (default \"gh\")")
	flags.StringVar(&o.syncer, "syncer", "", "How repositories are synced: gh, git or go-git (default \"gh\")")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "Log every repository at debug level")
	flags.BoolVarP(&o.quiet, "quiet", "q", false, "Do not show the progress bar")
	flags.StringVar(&o.logFormat, "log-format", "", "Log format: text or json")

	cmd.RegisterFlagCompletionFunc("lister", cobra.FixedCompletions(
		[]string{config.ListerGH, config.ListerAPI}, cobra.ShellCompDirectiveNoFileComp))
	cmd.RegisterFlagCompletionFunc("syncer", cobra.FixedCompletions(
		[]string{config.SyncerGH, config.SyncerGit, config.SyncerGoGit}, cobra.ShellCompDirectiveNoFileComp))
	cmd.RegisterFlagCompletionFunc("log-format", cobra.FixedCompletions(
		[]string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp))
	cmd.MarkFlagDirname("dir")
}

// resolve loads the configuration file and applies the flags that were set
// on the command line on top of it.
func (o *backupOptions) resolve(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	if flags.Changed("config") {
		if _, err := os.Stat(o.configPath); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	if flags.Changed("organization") {
		cfg.Organization = o.organization
	}
	if flags.Changed("limit") {
		limit := int(o.limit)
		cfg.Limit = &limit
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = o.concurrency
	}
	if flags.Changed("dir") {
		cfg.Directory = o.directory
	}
	if flags.Changed("lister") {
		cfg.Lister = o.lister
	}
	if flags.Changed("syncer") {
		cfg.Syncer = o.syncer
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = o.logFormat
	}
	if o.verbose {
		cfg.LogLevel = "debug"
	}

	if cfg.Organization == "" {
		return nil, fmt.Errorf("organization is required: pass --organization or set it in %s", o.configPath)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runBackup(cmd *cobra.Command, cfg *config.Config, quiet bool) error {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logging.Init(level, cfg.LogFormat, cmd.ErrOrStderr())

	out := cmd.OutOrStdout()
	if quiet {
		out = io.Discard
	}

	report, err := backup.Backup(cmd.Context(), cfg, backup.Options{
		Out:    out,
		Err:    cmd.ErrOrStderr(),
		Logger: logging.New("backup"),
	})
	if err != nil {
		// listing failures have already been printed by the runner
		if apperrors.IsFatal(err) {
			if hint := listingHint(err); hint != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), hint)
			}
			return errFailed
		}
		return err
	}
	if !report.OK() {
		return errFailed
	}
	return nil
}

// listingHint suggests a remedy for listing failures the user can act on.
func listingHint(err error) string {
	switch {
	case apperrors.IsRateLimitExceeded(err):
		return "hint: the GitHub API rate limit is exhausted; set GH_TOKEN or retry later"
	case apperrors.IsUnauthorized(err):
		return "hint: set GH_TOKEN or GIT_TOKEN_GITHUB to a token that can read the organization"
	}
	return ""
}
