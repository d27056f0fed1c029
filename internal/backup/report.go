package backup

import (
	"fmt"
	"io"
	"time"

	"github.com/NicabarNimble/go-gitbackup/internal/git"
	"github.com/NicabarNimble/go-gitbackup/internal/repo"
)

// Outcome is the result of syncing one repository. Err is nil on success.
type Outcome struct {
	Repository repo.Repository
	Output     *git.Output
	Err        error
	Duration   time.Duration
}

// Failed reports whether the sync failed.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Report holds one outcome per listed repository, in listing order.
type Report struct {
	RunID        string
	Organization string
	Outcomes     []Outcome
	Elapsed      time.Duration
}

// Failures returns the failed outcomes in listing order.
func (r *Report) Failures() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Failed() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Succeeded returns the number of successful outcomes.
func (r *Report) Succeeded() int {
	return len(r.Outcomes) - len(r.Failures())
}

// OK reports whether every repository synced.
func (r *Report) OK() bool {
	return len(r.Failures()) == 0
}

// Print writes one "Error <kind> repository <name>: <cause>" line per failure.
// Successes produce no output.
func (r *Report) Print(w io.Writer) error {
	for _, o := range r.Failures() {
		if _, err := fmt.Fprintf(w, "Error %v\n", o.Err); err != nil {
			return err
		}
	}
	return nil
}
