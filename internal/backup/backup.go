// Package backup mirrors every repository of an organization into a local
// directory. It lists the repositories once, syncs them with bounded
// concurrency, and reports every repository that failed.
package backup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/NicabarNimble/go-gitbackup/internal/errors"
	"github.com/NicabarNimble/go-gitbackup/internal/git"
	"github.com/NicabarNimble/go-gitbackup/internal/logging"
	"github.com/NicabarNimble/go-gitbackup/internal/progress"
	"github.com/NicabarNimble/go-gitbackup/internal/repo"
)

// Lister enumerates the repositories of an organization.
type Lister interface {
	List(ctx context.Context, organization string, limit int) ([]repo.Repository, error)
}

// Runner runs one backup pass. The zero value is not usable: Lister and
// Syncer are required.
type Runner struct {
	Lister Lister
	Syncer git.Syncer

	// Concurrency caps simultaneous syncs. Zero or less means one.
	Concurrency int

	// Out receives the progress bar, Err the failure lines. Both default to
	// the process streams. An Out of io.Discard disables the bar.
	Out io.Writer
	Err io.Writer

	// NewTracker builds the progress tracker for a run of total repositories.
	// Defaults to a progress.Bar on Out.
	NewTracker func(total int, w io.Writer) progress.Tracker

	Logger *slog.Logger
}

// Run lists the repositories of organization and syncs each of them.
//
// A listing failure is printed as "Error fetching repositories: <cause>" and
// returned before any sync starts. Otherwise every listed repository yields
// exactly one outcome in the report, in listing order, and the failures are
// printed to Err once all syncs have finished.
func (r *Runner) Run(ctx context.Context, organization string, limit int) (*Report, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := r.logger().With("run_id", runID, "organization", organization)
	stderr := r.errWriter()

	logger.Debug("listing repositories", "limit", limit)
	repos, err := r.Lister.List(ctx, organization, limit)
	if err != nil {
		fmt.Fprintf(stderr, "Error fetching repositories: %v\n", err)
		logger.Error("listing failed", "error", err)
		return nil, err
	}

	tracker := r.tracker(len(repos))
	report := &Report{
		RunID:        runID,
		Organization: organization,
		Outcomes:     make([]Outcome, len(repos)),
	}
	duplicates := repo.MarkDuplicates(repos)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency())
	logger.Debug("syncing repositories", "count", len(repos), "concurrency", r.concurrency())

	for i, rp := range repos {
		if duplicates[i] {
			report.Outcomes[i] = Outcome{
				Repository: rp,
				Err:        errors.NewSkipError(rp.Name, errors.ErrDuplicateName),
			}
			logger.Warn("skipping duplicate repository", "repository", rp.NameWithOwner)
			tracker.Inc()
			continue
		}

		g.Go(func() error {
			tracker.SetMessage("Processing: " + rp.Name)
			taskStart := time.Now()
			logger.Debug("sync started", "repository", rp.NameWithOwner)

			out, err := r.Syncer.Sync(gctx, rp)
			if err != nil {
				err = errors.Attribute(rp.Name, err)
			}
			report.Outcomes[i] = Outcome{
				Repository: rp,
				Output:     out,
				Err:        err,
				Duration:   time.Since(taskStart),
			}
			tracker.Inc()

			if err != nil {
				logger.Debug("sync failed", "repository", rp.NameWithOwner, "error", err)
			} else {
				logger.Debug("sync finished", "repository", rp.NameWithOwner,
					"duration", report.Outcomes[i].Duration)
			}
			// failures stay in the report so siblings keep running
			return nil
		})
	}
	_ = g.Wait()
	tracker.Finish()

	report.Elapsed = time.Since(start)
	if err := report.Print(stderr); err != nil {
		return report, fmt.Errorf("writing report: %w", err)
	}

	logger.Info("backup finished",
		"succeeded", report.Succeeded(),
		"failed", len(report.Failures()),
		"elapsed", report.Elapsed.Round(time.Millisecond))
	return report, nil
}

func (r *Runner) concurrency() int {
	if r.Concurrency < 1 {
		return 1
	}
	return r.Concurrency
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return logging.New("backup")
}

func (r *Runner) errWriter() io.Writer {
	if r.Err != nil {
		return r.Err
	}
	return os.Stderr
}

func (r *Runner) tracker(total int) progress.Tracker {
	out := r.Out
	if out == nil {
		out = os.Stdout
	}
	if r.NewTracker != nil {
		return r.NewTracker(total, out)
	}
	if out == io.Discard {
		return progress.Nop{}
	}
	return progress.NewBar(total, out)
}
