package backup

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/NicabarNimble/go-gitbackup/internal/config"
	"github.com/NicabarNimble/go-gitbackup/internal/git"
	"github.com/NicabarNimble/go-gitbackup/internal/github"
	"github.com/NicabarNimble/go-gitbackup/internal/logging"
	"github.com/NicabarNimble/go-gitbackup/internal/token"
)

// Options carries what Backup needs beyond the configuration file.
type Options struct {
	Out    io.Writer
	Err    io.Writer
	Logger *slog.Logger

	// Tokens is consulted when the api lister or the go-git syncer is
	// selected. Defaults to the environment.
	Tokens token.Storage
}

// Backup builds a Runner from cfg and runs it for cfg.Organization.
func Backup(ctx context.Context, cfg *config.Config, opts Options) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.New("backup")
	}

	var tok string
	if cfg.Lister == config.ListerAPI || cfg.Syncer == config.SyncerGoGit {
		storage := opts.Tokens
		if storage == nil {
			storage = token.NewEnvStorage()
		}
		var err error
		tok, err = token.Resolve(ctx, storage, token.ProviderGitHub)
		switch {
		case stderrors.Is(err, token.ErrTokenNotFound):
			logger.Debug("no GitHub token found, using anonymous access")
		case err != nil:
			return nil, fmt.Errorf("resolving GitHub token: %w", err)
		}
	}

	runner := &Runner{
		Lister:      NewLister(cfg, tok),
		Syncer:      NewSyncer(cfg, tok),
		Concurrency: cfg.EffectiveConcurrency(),
		Out:         opts.Out,
		Err:         opts.Err,
		Logger:      logger,
	}
	return runner.Run(ctx, cfg.Organization, cfg.ListLimit())
}

// NewLister returns the lister selected by cfg.Lister.
func NewLister(cfg *config.Config, tok string) Lister {
	if cfg.Lister == config.ListerAPI {
		return &github.APILister{Client: github.NewClient(tok, github.WithBaseURL(cfg.APIURL))}
	}
	return &github.CLILister{}
}

// NewSyncer returns the syncer selected by cfg.Syncer, rooted at cfg.Directory.
func NewSyncer(cfg *config.Config, tok string) git.Syncer {
	switch cfg.Syncer {
	case config.SyncerGoGit:
		return &git.GoGitSyncer{Root: cfg.Directory, Host: cfg.GitHost, Token: tok}
	case config.SyncerGit:
		return &git.CommandSyncer{Root: cfg.Directory, Cloner: git.ClonerGit, Host: cfg.GitHost}
	default:
		return &git.CommandSyncer{Root: cfg.Directory, Cloner: git.ClonerGH, Host: cfg.GitHost}
	}
}
