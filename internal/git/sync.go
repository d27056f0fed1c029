package git

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/NicabarNimble/go-gitbackup/internal/errors"
	"github.com/NicabarNimble/go-gitbackup/internal/repo"
	"github.com/NicabarNimble/go-gitbackup/internal/urlutils"
)

// Output is the raw result of one clone or pull.
type Output struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Syncer mirrors one repository into the local working tree.
type Syncer interface {
	Sync(ctx context.Context, r repo.Repository) (*Output, error)
}

// Cloner selects the executable used for fresh copies.
type Cloner string

const (
	// ClonerGH clones with `gh repo clone <owner/name> <name>`.
	ClonerGH Cloner = "gh"

	// ClonerGit clones with `git clone https://<host>/<owner/name>.git <name>`.
	ClonerGit Cloner = "git"
)

const defaultHost = "github.com"

// CommandSyncer clones and pulls by running external executables.
type CommandSyncer struct {
	// Root is the directory holding the mirrors. Empty means the current
	// working directory.
	Root string

	// Cloner selects gh or git for fresh copies. Defaults to gh.
	Cloner Cloner

	// Host is used to build clone URLs for ClonerGit. Defaults to github.com.
	Host string
}

// Sync pulls r if its directory exists under Root and clones it otherwise.
func (s *CommandSyncer) Sync(ctx context.Context, r repo.Repository) (*Output, error) {
	root := rootOrCwd(s.Root)
	dir := filepath.Join(root, r.DirName())

	if isDir(dir) {
		out, err := runCommand(ctx, dir, "git", "pull")
		if err != nil {
			return out, errors.NewPullError(r.Name, err)
		}
		return out, nil
	}

	args, err := s.cloneArgs(r)
	if err != nil {
		return nil, errors.NewCloneError(r.Name, err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.NewCloneError(r.Name, err)
	}
	out, err := runCommand(ctx, root, args[0], args[1:]...)
	if err != nil {
		return out, errors.NewCloneError(r.Name, err)
	}
	return out, nil
}

func (s *CommandSyncer) cloneArgs(r repo.Repository) ([]string, error) {
	switch s.Cloner {
	case "", ClonerGH:
		return []string{"gh", "repo", "clone", r.NameWithOwner, r.DirName()}, nil
	case ClonerGit:
		host := s.Host
		if host == "" {
			host = defaultHost
		}
		u, err := urlutils.CloneURL(host, r.NameWithOwner)
		if err != nil {
			return nil, err
		}
		return []string{"git", "clone", u.String(), r.DirName()}, nil
	default:
		return nil, fmt.Errorf("unknown cloner %q", s.Cloner)
	}
}

// runCommand is a variable so it can be mocked in tests
var runCommand = func(ctx context.Context, dir string, name string, args ...string) (*Output, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Never block on a credential prompt; there is nobody to answer it.
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "GH_PROMPT_DISABLED=1")

	err := cmd.Run()

	out := &Output{
		ExitCode: -1,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
	}
	if cmd.ProcessState != nil {
		out.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		command := strings.Join(append([]string{name}, args...), " ")
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return out, fmt.Errorf("%s: %w: %s", command, err, lastLine(msg))
			}
		}
		return out, fmt.Errorf("%s: %w", command, err)
	}

	return out, nil
}

func rootOrCwd(root string) string {
	if root == "" {
		return "."
	}
	return root
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// lastLine keeps the final line of multi-line tool output, which is where
// git and gh put the actual reason.
func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
