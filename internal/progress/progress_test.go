// SPDX-License-Identifier: MPL-2.0

package progress

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/modbreeze/modbreeze/pkg/modsync"
)

var (
	_ modsync.ProgressReporter = (*Tracker)(nil)
	_ modsync.ProgressReporter = (*Bar)(nil)
)

// syncBuffer is a bytes.Buffer safe for the render goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestTracker_ConcurrentAdds(t *testing.T) {
	t.Parallel()

	var tr Tracker
	tr.Start(1000)

	var wg sync.WaitGroup
	for range 10 {
		wg.Go(func() {
			for range 100 {
				tr.Add(1)
			}
		})
	}
	wg.Wait()
	tr.Finish()

	s := tr.Snapshot()
	if s.Done != 1000 || s.Total != 1000 || !s.Finished {
		t.Errorf("Snapshot() = %+v", s)
	}
	if s.Fraction() != 1 {
		t.Errorf("Fraction() = %v, want 1", s.Fraction())
	}
}

func TestSnapshot_Fraction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		s    Snapshot
		want float64
	}{
		{Snapshot{Done: 50, Total: 200}, 0.25},
		{Snapshot{Done: 300, Total: 200}, 1},
		{Snapshot{Done: 10}, 0},
		{Snapshot{Done: 10, Finished: true}, 1},
	}
	for _, tt := range tests {
		if got := tt.s.Fraction(); got != tt.want {
			t.Errorf("%+v.Fraction() = %v, want %v", tt.s, got, tt.want)
		}
	}
}

func TestBar_DisabledWritesNothing(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	bar := NewBar(&out)
	bar.Start(10)
	bar.Add(10)
	bar.Finish()

	if out.Len() != 0 {
		t.Errorf("a non-terminal bar should stay silent, wrote %q", out.String())
	}
	if bar.Snapshot().Done != 10 {
		t.Error("the tracker must still count bytes")
	}
}

func TestBar_EnabledRendersAndStops(t *testing.T) {
	t.Parallel()

	out := &syncBuffer{}
	bar := NewBar(out, WithEnabled(true), WithInterval(5*time.Millisecond), WithWidth(10))
	bar.Start(2048)
	bar.Add(1024)
	time.Sleep(30 * time.Millisecond)
	bar.Add(1024)
	bar.Finish()
	bar.Finish()

	text := out.String()
	if !strings.Contains(text, "\r") {
		t.Errorf("expected carriage-return redraws, got %q", text)
	}
	if !strings.HasSuffix(text, "2.0 kB / 2.0 kB\n") {
		t.Errorf("final line should show the completed total, got %q", text)
	}
}

func TestBar_Render(t *testing.T) {
	t.Parallel()

	bar := NewBar(&bytes.Buffer{}, WithWidth(10))
	got := bar.Render(Snapshot{Done: 1500000, Total: 3000000})
	if !strings.HasSuffix(got, "1.5 MB / 3.0 MB") {
		t.Errorf("Render() = %q", got)
	}
}
