// Package repo holds the repository descriptor that drives one backup run.
package repo

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/NicabarNimble/go-gitbackup/internal/errors"
	"github.com/NicabarNimble/go-gitbackup/internal/urlutils"
)

// Repository names a remote repository and the local directory it is
// mirrored into. Values are never mutated after decoding.
type Repository struct {
	// Name is the local directory name.
	Name string `json:"name"`

	// NameWithOwner is the owner/name identifier used to address the remote.
	NameWithOwner string `json:"nameWithOwner"`
}

// DirName returns the directory the repository is mirrored into, relative
// to the backup root.
func (r Repository) DirName() string {
	return r.Name
}

func (r Repository) String() string {
	return r.NameWithOwner
}

// Validate checks that the descriptor can be used safely on disk.
func (r Repository) Validate() error {
	if err := urlutils.ValidateRepoName(r.Name); err != nil {
		return err
	}
	if r.NameWithOwner == "" {
		return fmt.Errorf("repository %s has no owner-qualified name", r.Name)
	}
	return nil
}

// Decode parses a listing payload of the form
// [{"name": "...", "nameWithOwner": "owner/name"}, ...].
func Decode(organization string, payload []byte) ([]Repository, error) {
	var repos []Repository
	if err := json.Unmarshal(payload, &repos); err != nil {
		return nil, &errors.DecodeError{Organization: organization, Err: err}
	}
	if err := ValidateAll(organization, repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// ValidateAll validates every descriptor and reports the first bad one as a
// decode failure.
func ValidateAll(organization string, repos []Repository) error {
	for i, r := range repos {
		if err := r.Validate(); err != nil {
			return &errors.DecodeError{
				Organization: organization,
				Err:          fmt.Errorf("entry %d: %w", i, err),
			}
		}
	}
	return nil
}

// MarkDuplicates reports, for each descriptor, whether an earlier descriptor
// already claims the same directory. Names are compared case-insensitively
// because the working tree may live on a case-insensitive filesystem.
func MarkDuplicates(repos []Repository) []bool {
	seen := make(map[string]struct{}, len(repos))
	dup := make([]bool, len(repos))
	for i, r := range repos {
		key := strings.ToLower(r.Name)
		if _, ok := seen[key]; ok {
			dup[i] = true
			continue
		}
		seen[key] = struct{}{}
	}
	return dup
}
