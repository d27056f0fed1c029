package github

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/NicabarNimble/go-gitbackup/internal/errors"
	"github.com/NicabarNimble/go-gitbackup/internal/repo"
)

// CLILister lists repositories with `gh repo list`.
type CLILister struct {
	// Binary is the gh executable. Defaults to "gh".
	Binary string
}

// List runs `gh repo list <owner> --limit <limit> --json name,nameWithOwner`
// and decodes its output. A zero limit returns no repositories without
// running gh.
func (l *CLILister) List(ctx context.Context, owner string, limit int) ([]repo.Repository, error) {
	if limit <= 0 {
		return []repo.Repository{}, nil
	}

	bin := l.Binary
	if bin == "" {
		bin = "gh"
	}

	out, err := runCommand(ctx, bin,
		"repo", "list", owner,
		"--limit", strconv.Itoa(limit),
		"--json", "name,nameWithOwner")
	if err != nil {
		return nil, &errors.ListError{Organization: owner, Err: err}
	}

	return repo.Decode(owner, out)
}

// APILister lists repositories through the REST API.
type APILister struct {
	Client *Client
}

// List returns up to limit repositories of owner.
func (l *APILister) List(ctx context.Context, owner string, limit int) ([]repo.Repository, error) {
	return l.Client.ListOrgRepositories(ctx, owner, limit)
}

// runCommand is a variable so it can be mocked in tests
var runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = append(os.Environ(), "GH_PROMPT_DISABLED=1", "NO_COLOR=1")

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
			}
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return stdout.Bytes(), nil
}
