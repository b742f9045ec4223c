// SPDX-License-Identifier: MPL-2.0

package modsync

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/modbreeze/modbreeze/pkg/pack"
)

// DefaultConcurrency is the number of registry queries and transfers that may
// be in flight at once.
const DefaultConcurrency = 75

type (
	// Artifact is a concrete file to place on disk.
	Artifact struct {
		DownloadURL string `json:"url" yaml:"url"`
		// OutputPath is slash-separated and relative to the managed root,
		// e.g. "mods/sodium.jar".
		OutputPath string `json:"path" yaml:"path"`
		Length     int64  `json:"length" yaml:"length"`
	}

	// Option configures a Resolver, Reconciler or Scheduler.
	Option func(*settings)

	settings struct {
		concurrency int
		logger      *log.Logger
		quarantine  QuarantinePolicy
		dryRun      bool
		progress    ProgressReporter
	}
)

// Filename returns the last element of the output path.
func (a Artifact) Filename() string { return path.Base(a.OutputPath) }

// Dir returns the managed sub-directory the artifact belongs to.
func (a Artifact) Dir() string { return path.Dir(a.OutputPath) }

// String renders the artifact for log output.
func (a Artifact) String() string { return a.OutputPath }

// WithConcurrency bounds in-flight registry queries and transfers. Values
// below one are ignored.
func WithConcurrency(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLogger sets the logger used for per-reference outcomes.
func WithLogger(l *log.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithQuarantine sets which categories move stale files to .old instead of
// deleting them.
func WithQuarantine(p QuarantinePolicy) Option {
	return func(s *settings) {
		s.quarantine = p
	}
}

// WithDryRun makes the Reconciler report what it would do without touching
// the filesystem.
func WithDryRun(dryRun bool) Option {
	return func(s *settings) {
		s.dryRun = dryRun
	}
}

// WithProgress sets the reporter that receives transfer byte counts.
func WithProgress(p ProgressReporter) Option {
	return func(s *settings) {
		if p != nil {
			s.progress = p
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		concurrency: DefaultConcurrency,
		logger:      log.New(io.Discard),
		quarantine:  DefaultQuarantinePolicy(),
		progress:    nopProgress{},
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// outputPath routes a selected file: jars always land in mods/, anything
// else in the directory of the category that requested it.
func outputPath(category pack.Category, fileName string) (string, error) {
	if fileName == "" || fileName != path.Base(fileName) || fileName == "." || fileName == ".." ||
		strings.ContainsAny(fileName, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeFileName, fileName)
	}
	dir := category.Dir()
	if strings.HasSuffix(strings.ToLower(fileName), ".jar") {
		dir = pack.CategoryMods.Dir()
	}
	return path.Join(dir, fileName), nil
}
