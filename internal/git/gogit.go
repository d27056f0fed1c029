package git

import (
	"bytes"
	"context"
	stderrors "errors"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/NicabarNimble/go-gitbackup/internal/errors"
	"github.com/NicabarNimble/go-gitbackup/internal/repo"
	"github.com/NicabarNimble/go-gitbackup/internal/urlutils"
)

// GoGitSyncer clones and pulls in process with go-git.
type GoGitSyncer struct {
	// Root is the directory holding the mirrors. Empty means the current
	// working directory.
	Root string

	// Host is the forge host used to build clone URLs. Defaults to github.com.
	Host string

	// Token, when set, is sent as HTTP basic auth password on https remotes.
	Token string

	// RemoteURL overrides how the clone URL is derived from a repository.
	RemoteURL func(r repo.Repository) (string, error)
}

// Sync pulls r if its directory exists under Root and clones it otherwise.
func (s *GoGitSyncer) Sync(ctx context.Context, r repo.Repository) (*Output, error) {
	dir := filepath.Join(rootOrCwd(s.Root), r.DirName())

	if isDir(dir) {
		out, err := s.pull(ctx, dir)
		if err != nil {
			return out, errors.NewPullError(r.Name, err)
		}
		return out, nil
	}

	out, err := s.clone(ctx, r, dir)
	if err != nil {
		return out, errors.NewCloneError(r.Name, err)
	}
	return out, nil
}

func (s *GoGitSyncer) clone(ctx context.Context, r repo.Repository, dir string) (*Output, error) {
	remote, err := s.remoteURL(r)
	if err != nil {
		return nil, err
	}

	var progress bytes.Buffer
	_, err = gogit.PlainCloneContext(ctx, dir, false, &gogit.CloneOptions{
		URL:      remote,
		Auth:     s.auth(remote),
		Progress: &progress,
	})
	if err != nil {
		return &Output{ExitCode: 1, Stderr: progress.Bytes()}, errors.New("clone "+urlutils.Redact(remote), err)
	}
	return &Output{Stderr: progress.Bytes()}, nil
}

func (s *GoGitSyncer) pull(ctx context.Context, dir string) (*Output, error) {
	local, err := gogit.PlainOpen(dir)
	if err != nil {
		return nil, errors.New("open "+dir, err)
	}
	worktree, err := local.Worktree()
	if err != nil {
		return nil, errors.New("worktree "+dir, err)
	}

	var auth transport.AuthMethod
	if origin, err := local.Remote(gogit.DefaultRemoteName); err == nil && len(origin.Config().URLs) > 0 {
		auth = s.auth(origin.Config().URLs[0])
	}

	var progress bytes.Buffer
	err = worktree.PullContext(ctx, &gogit.PullOptions{
		RemoteName: gogit.DefaultRemoteName,
		Auth:       auth,
		Progress:   &progress,
	})
	if stderrors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return &Output{Stdout: []byte("Already up to date.\n"), Stderr: progress.Bytes()}, nil
	}
	if err != nil {
		return &Output{ExitCode: 1, Stderr: progress.Bytes()}, errors.New("pull", err)
	}
	return &Output{Stderr: progress.Bytes()}, nil
}

func (s *GoGitSyncer) remoteURL(r repo.Repository) (string, error) {
	if s.RemoteURL != nil {
		return s.RemoteURL(r)
	}
	host := s.Host
	if host == "" {
		host = defaultHost
	}
	u, err := urlutils.CloneURL(host, r.NameWithOwner)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// auth returns token credentials for https remotes only, so a token is never
// sent to a file or ssh remote.
func (s *GoGitSyncer) auth(remote string) transport.AuthMethod {
	if s.Token == "" {
		return nil
	}
	u, err := urlutils.ParseHTTPSURL(remote)
	if err != nil || u.Scheme != "https" {
		return nil
	}
	return &http.BasicAuth{
		Username: "x-access-token",
		Password: s.Token,
	}
}
