package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mattn/go-isatty"
)

const barWidth = 40

// Bar is a console progress bar of the form
//
//	[00:01:07] ##########---------------       3/10      Processing: repo
//
// The completed counter is atomic; the label, the rate estimate and the
// writer are guarded by a mutex so that concurrent redraws do not interleave.
type Bar struct {
	total     int64
	completed atomic.Int64

	mu          sync.Mutex
	out         io.Writer
	interactive bool
	message     string
	start       time.Time
	finished    bool
	rate        *rateEstimator
	now         func() time.Time
}

// NewBar creates a bar for total items writing to w. When w is a terminal
// the bar is redrawn in place, otherwise one line is written per completed
// item.
func NewBar(total int, w io.Writer) *Bar {
	b := newBar(total, w, time.Now)
	if f, ok := w.(*os.File); ok {
		b.interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return b
}

func newBar(total int, w io.Writer, now func() time.Time) *Bar {
	if w == nil {
		w = io.Discard
	}
	start := now()
	return &Bar{
		total: int64(total),
		out:   w,
		start: start,
		rate:  newRateEstimator(start),
		now:   now,
	}
}

// Total returns the number of items the bar was created for.
func (b *Bar) Total() int {
	return int(b.total)
}

// Completed returns the number of Inc calls so far.
func (b *Bar) Completed() int {
	return int(b.completed.Load())
}

// Message returns the current label.
func (b *Bar) Message() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.message
}

// SetMessage replaces the label shown after the counter.
func (b *Bar) SetMessage(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.message = msg
	if b.interactive && !b.finished {
		b.draw()
	}
}

// Inc advances the bar by one item.
func (b *Bar) Inc() {
	current := b.completed.Add(1)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finished {
		return
	}
	b.rate.update(b.now(), current, b.total)
	b.draw()
}

// Finish renders the final state. Further calls are no-ops.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finished {
		return
	}
	b.finished = true
	if b.interactive {
		fmt.Fprintf(b.out, "\r\033[K%s\n", b.render())
		return
	}
	fmt.Fprintln(b.out, b.render())
}

// String renders the bar without writing it.
func (b *Bar) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.render()
}

// draw must be called with b.mu held.
func (b *Bar) draw() {
	if b.interactive {
		fmt.Fprintf(b.out, "\r\033[K%s", b.render())
		return
	}
	fmt.Fprintln(b.out, b.render())
}

// render must be called with b.mu held.
func (b *Bar) render() string {
	current := b.completed.Load()
	now := b.now()

	line := fmt.Sprintf("[%s] %s %7d/%-7d %s",
		formatElapsed(now.Sub(b.start)),
		drawBar(current, b.total, barWidth),
		current,
		b.total,
		b.message)

	if !b.finished && current < b.total {
		if remaining, ok := b.rate.remaining(now); ok {
			line += fmt.Sprintf(" (eta %s)", remaining)
		}
	}
	return strings.TrimRight(line, " ")
}

func drawBar(current, total int64, width int) string {
	filled := width
	if total > 0 {
		filled = int(current * int64(width) / total)
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("#", filled) + strings.Repeat("-", width-filled)
}

// formatElapsed renders d as HH:MM:SS.
func formatElapsed(d time.Duration) string {
	d = d.Truncate(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
