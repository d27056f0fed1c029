package backup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NicabarNimble/go-gitbackup/internal/config"
	"github.com/NicabarNimble/go-gitbackup/internal/git"
	"github.com/NicabarNimble/go-gitbackup/internal/github"
	"github.com/NicabarNimble/go-gitbackup/internal/token"
)

func TestNewLister(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.IsType(t, &github.CLILister{}, NewLister(cfg, ""))

	cfg.Lister = config.ListerAPI
	assert.IsType(t, &github.APILister{}, NewLister(cfg, "tok"))
}

func TestNewSyncer(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Directory = "/srv/mirror"

	s := NewSyncer(cfg, "")
	require.IsType(t, &git.CommandSyncer{}, s)
	assert.Equal(t, git.ClonerGH, s.(*git.CommandSyncer).Cloner)
	assert.Equal(t, "/srv/mirror", s.(*git.CommandSyncer).Root)

	cfg.Syncer = config.SyncerGit
	assert.Equal(t, git.ClonerGit, NewSyncer(cfg, "").(*git.CommandSyncer).Cloner)

	cfg.Syncer = config.SyncerGoGit
	gs := NewSyncer(cfg, "tok")
	require.IsType(t, &git.GoGitSyncer{}, gs)
	assert.Equal(t, "tok", gs.(*git.GoGitSyncer).Token)
	assert.Equal(t, "github.com", gs.(*git.GoGitSyncer).Host)
}

func TestBackup_InvalidConfig(t *testing.T) {
	_, err := Backup(context.Background(), config.DefaultConfig(), Options{})
	assert.ErrorContains(t, err, "organization is required")
}

func TestBackup_ExpiredToken(t *testing.T) {
	t.Setenv("GIT_TOKEN_GITHUB", `{"Value":"ghp_old","ExpiresAt":"2001-01-01T00:00:00Z"}`)

	cfg := config.DefaultConfig()
	cfg.Organization = "acme"
	cfg.Syncer = config.SyncerGoGit

	_, err := Backup(context.Background(), cfg, Options{})
	assert.ErrorIs(t, err, token.ErrTokenExpired)
}
