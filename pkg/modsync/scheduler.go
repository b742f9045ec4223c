// SPDX-License-Identifier: MPL-2.0

package modsync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/modbreeze/modbreeze/pkg/registry"
)

type (
	// Transferer copies the bytes at url into dest, reporting byte deltas.
	// A failed transfer must not leave a file named dest behind.
	Transferer interface {
		Transfer(ctx context.Context, url, dest string, onProgress func(delta int64)) error
	}

	// ProgressReporter receives aggregate transfer progress. Add is called
	// concurrently.
	ProgressReporter interface {
		Start(total int64)
		Add(delta int64)
		Finish()
	}

	// Scheduler executes transfers with bounded concurrency.
	Scheduler struct {
		transferer Transferer
		limit      int
		progress   ProgressReporter
		logger     *log.Logger
	}

	nopProgress struct{}
)

func (nopProgress) Start(int64) {}
func (nopProgress) Add(int64)   {}
func (nopProgress) Finish()     {}

// NewScheduler creates a Scheduler that runs at most the configured
// concurrency of transfers at once.
func NewScheduler(t Transferer, opts ...Option) *Scheduler {
	s := newSettings(opts)
	return &Scheduler{transferer: t, limit: s.concurrency, progress: s.progress, logger: s.logger}
}

// Execute transfers every target below root. Transfers do not cancel each
// other: the first failure is returned, as a *TransferError, once every
// scheduled transfer has finished.
func (s *Scheduler) Execute(ctx context.Context, root string, targets []Artifact) error {
	var total int64
	for _, t := range targets {
		total += t.Length
	}
	s.progress.Start(total)
	defer s.progress.Finish()

	s.logger.Debug("starting transfers", "count", len(targets), "bytes", total)

	var g errgroup.Group
	g.SetLimit(s.limit)
	for _, target := range targets {
		g.Go(func() error {
			return s.transfer(ctx, root, target)
		})
	}
	return g.Wait()
}

func (s *Scheduler) transfer(ctx context.Context, root string, target Artifact) error {
	dest := filepath.Join(root, filepath.FromSlash(target.OutputPath))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return &TransferError{URL: registry.RedactURL(target.DownloadURL), Path: target.OutputPath, Err: fmt.Errorf("creating directory: %w", err)}
	}
	if err := s.transferer.Transfer(ctx, target.DownloadURL, dest, s.progress.Add); err != nil {
		s.logger.Error("transfer failed", "file", target.OutputPath, "err", err)
		return &TransferError{URL: registry.RedactURL(target.DownloadURL), Path: target.OutputPath, Err: err}
	}
	s.logger.Debug("transferred", "file", target.OutputPath)
	return nil
}
