// Package progress renders the completed/total indicator of a backup run.
//
// A Tracker is shared by every sync task of a run. Inc is called exactly
// once per finished repository, whatever the outcome, and Finish renders
// the final state once all tasks returned or the run ended early.
package progress

import (
	"time"
)

// Tracker is the progress sink used by the orchestrator. Implementations
// must be safe for concurrent use.
type Tracker interface {
	SetMessage(msg string)
	Inc()
	Finish()
}

// Nop is a Tracker that renders nothing.
type Nop struct{}

func (Nop) SetMessage(string) {}
func (Nop) Inc() {}
func (Nop) Finish() {}

const (
	rateHistorySize = 10 // Keep last 10 rate measurements for averaging
)

// rateEstimator keeps a moving average of completions per second and
// derives an ETA from it. It is not safe for concurrent use; Bar guards it.
type rateEstimator struct {
	lastUpdate  time.Time
	lastCurrent int64
	history     []float64
	rate        float64 // operations per second
	eta         time.Time
}

func newRateEstimator(start time.Time) *rateEstimator {
	return &rateEstimator{
		lastUpdate: start,
		history:    make([]float64, 0, rateHistorySize),
	}
}

func (e *rateEstimator) update(now time.Time, current, total int64) {
	timeDiff := now.Sub(e.lastUpdate).Seconds()
	if timeDiff > 0 && current > e.lastCurrent {
		currentRate := float64(current-e.lastCurrent) / timeDiff

		if len(e.history) >= rateHistorySize {
			e.history = e.history[1:]
		}
		e.history = append(e.history, currentRate)

		var totalRate float64
		for _, rate := range e.history {
			totalRate += rate
		}
		e.rate = totalRate / float64(len(e.history))

		if e.rate > 0 {
			remainingSeconds := float64(total-current) / e.rate
			e.eta = now.Add(time.Duration(remainingSeconds * float64(time.Second)))
		}
	}

	e.lastUpdate = now
	e.lastCurrent = current
}

// remaining returns the estimated time left, or false when no estimate
// exists yet.
func (e *rateEstimator) remaining(now time.Time) (time.Duration, bool) {
	if e.eta.IsZero() {
		return 0, false
	}
	d := e.eta.Sub(now).Round(time.Second)
	if d < 0 {
		d = 0
	}
	return d, true
}
