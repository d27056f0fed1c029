package errors

import (
	stderrors "errors"
	"fmt"
)

// SyncKind tells which step of a repository sync failed.
type SyncKind int

const (
	KindClone SyncKind = iota
	KindPull
	KindSkip

	// KindSync is used when the failing step is not known.
	KindSync
)

// String returns the short name of the kind.
func (k SyncKind) String() string {
	switch k {
	case KindClone:
		return "clone"
	case KindPull:
		return "pull"
	case KindSkip:
		return "skip"
	case KindSync:
		return "sync"
	default:
		return "unknown"
	}
}

// verb is used when rendering report lines.
func (k SyncKind) verb() string {
	switch k {
	case KindClone:
		return "cloning"
	case KindPull:
		return "pulling"
	case KindSkip:
		return "skipping"
	default:
		return "syncing"
	}
}

// ErrDuplicateName marks a repository that was not synced because an
// earlier repository in the same run already owns its directory.
var ErrDuplicateName = stderrors.New("duplicate repository name")

// SyncError is a failure local to one repository.
type SyncError struct {
	Kind SyncKind
	Name string
	Err  error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("%s repository %s: %v", e.Kind.verb(), e.Name, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// NewCloneError attributes a failed fresh copy to the repository name.
func NewCloneError(name string, err error) *SyncError {
	return &SyncError{Kind: KindClone, Name: name, Err: err}
}

// NewPullError attributes a failed update-in-place to the repository name.
func NewPullError(name string, err error) *SyncError {
	return &SyncError{Kind: KindPull, Name: name, Err: err}
}

// NewSkipError records a repository that was deliberately not synced.
func NewSkipError(name string, err error) *SyncError {
	return &SyncError{Kind: KindSkip, Name: name, Err: err}
}

// Attribute returns err as a SyncError for name. Errors that already carry a
// repository keep their kind and name; any other error becomes a KindSync
// failure of name.
func Attribute(name string, err error) *SyncError {
	var se *SyncError
	if stderrors.As(err, &se) {
		return se
	}
	return &SyncError{Kind: KindSync, Name: name, Err: err}
}

// IsCloneError reports whether err is a clone failure.
func IsCloneError(err error) bool {
	var se *SyncError
	return stderrors.As(err, &se) && se.Kind == KindClone
}

// IsPullError reports whether err is a pull failure.
func IsPullError(err error) bool {
	var se *SyncError
	return stderrors.As(err, &se) && se.Kind == KindPull
}
