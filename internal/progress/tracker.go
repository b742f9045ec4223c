// SPDX-License-Identifier: MPL-2.0

package progress

import "sync/atomic"

type (
	// Tracker accumulates transferred bytes. All methods are safe for
	// concurrent use.
	Tracker struct {
		total    atomic.Int64
		done     atomic.Int64
		finished atomic.Bool
	}

	// Snapshot is a point-in-time copy of a Tracker.
	Snapshot struct {
		Done     int64
		Total    int64
		Finished bool
	}
)

// Start resets the counters for a batch of total bytes.
func (t *Tracker) Start(total int64) {
	t.total.Store(total)
	t.done.Store(0)
	t.finished.Store(false)
}

// Add records delta transferred bytes.
func (t *Tracker) Add(delta int64) {
	t.done.Add(delta)
}

// Finish marks the batch as complete.
func (t *Tracker) Finish() {
	t.finished.Store(true)
}

// Snapshot returns the current counters.
func (t *Tracker) Snapshot() Snapshot {
	return Snapshot{
		Done:     t.done.Load(),
		Total:    t.total.Load(),
		Finished: t.finished.Load(),
	}
}

// Fraction returns Done/Total clamped to [0, 1]. An unknown total counts as
// complete once finished and as zero before.
func (s Snapshot) Fraction() float64 {
	if s.Total <= 0 {
		if s.Finished {
			return 1
		}
		return 0
	}
	f := float64(s.Done) / float64(s.Total)
	return min(max(f, 0), 1)
}
