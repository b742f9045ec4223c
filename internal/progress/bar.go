// SPDX-License-Identifier: MPL-2.0

package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

const (
	// DefaultInterval is how often the bar is redrawn.
	DefaultInterval = 300 * time.Millisecond

	defaultWidth = 40
)

type (
	// Bar renders a Tracker as a single self-overwriting line.
	Bar struct {
		Tracker

		out      io.Writer
		model    progress.Model
		interval time.Duration
		enabled  bool

		mu   sync.Mutex
		stop chan struct{}
		done chan struct{}
	}

	// BarOption configures a Bar.
	BarOption func(*Bar)
)

// WithInterval sets the redraw interval.
func WithInterval(d time.Duration) BarOption {
	return func(b *Bar) {
		if d > 0 {
			b.interval = d
		}
	}
}

// WithWidth sets the width of the bar in cells.
func WithWidth(w int) BarOption {
	return func(b *Bar) {
		b.model.Width = w
	}
}

// WithEnabled forces drawing on or off. By default a Bar only draws when
// its writer is a terminal.
func WithEnabled(enabled bool) BarOption {
	return func(b *Bar) {
		b.enabled = enabled
	}
}

// NewBar creates a Bar writing to out.
func NewBar(out io.Writer, opts ...BarOption) *Bar {
	b := &Bar{
		out:      out,
		model:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(defaultWidth)),
		interval: DefaultInterval,
		enabled:  IsTerminal(out),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// IsTerminal reports whether w is a terminal file.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}

// Start resets the tracker and begins redrawing.
func (b *Bar) Start(total int64) {
	b.Tracker.Start(total)
	if !b.enabled {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stop != nil {
		return
	}
	b.stop = make(chan struct{})
	b.done = make(chan struct{})
	go b.loop(b.stop, b.done)
}

// Finish stops redrawing and prints the final state followed by a newline.
func (b *Bar) Finish() {
	b.Tracker.Finish()

	b.mu.Lock()
	stop, done := b.stop, b.done
	b.stop, b.done = nil, nil
	b.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
	fmt.Fprintf(b.out, "\r%s\n", b.Render(b.Snapshot()))
}

func (b *Bar) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			fmt.Fprintf(b.out, "\r%s", b.Render(b.Snapshot()))
		}
	}
}

// Render formats s as "<bar> 1.2 MB / 3.4 MB".
func (b *Bar) Render(s Snapshot) string {
	return fmt.Sprintf("%s %s / %s",
		b.model.ViewAs(s.Fraction()),
		humanize.Bytes(uint64(max(s.Done, 0))),  //nolint:gosec // clamped to non-negative
		humanize.Bytes(uint64(max(s.Total, 0))), //nolint:gosec // clamped to non-negative
	)
}
