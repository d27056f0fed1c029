// Package git mirrors one remote repository into a local directory.
//
// The single decision a Syncer makes is whether the repository directory
// already exists under the backup root: if it does, the directory is
// updated in place ("pull"), otherwise a fresh copy is made ("clone").
// The check happens when Sync is called, never ahead of time, because the
// working tree is external state.
//
// Two implementations are provided:
//
// CommandSyncer shells out to the gh or git executables, capturing their
// exit status and output.
//
// GoGitSyncer performs the same operations in process with go-git, for
// hosts where no git tooling is installed.
//
// Example Usage:
//
//	s := &CommandSyncer{Root: "/srv/backup", Cloner: ClonerGH}
//	out, err := s.Sync(ctx, repo.Repository{Name: "x", NameWithOwner: "acme/x"})
//	if err != nil {
//	    // err is an *errors.SyncError tagged clone or pull
//	}
//
// Failures are returned as *errors.SyncError values carrying the
// repository name, so a caller running many syncs concurrently can
// attribute them without aborting sibling work. Nothing is retried.
//
// Thread Safety:
//
// Syncers hold no mutable state and may be shared by concurrent tasks as
// long as the tasks address different repository names.
package git
