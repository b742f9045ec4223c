// SPDX-License-Identifier: MPL-2.0

package modsync

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/modbreeze/modbreeze/pkg/pack"
)

const (
	// QuarantineDir is the name of the per-category directory stale files are moved to.
	QuarantineDir = ".old"

	// PartialSuffix marks an interrupted download.
	PartialSuffix = ".part"
)

type (
	// QuarantinePolicy selects, per category, whether stale files are moved
	// to .old (true) or deleted (false).
	QuarantinePolicy struct {
		Mods          bool `json:"mods" yaml:"mods" mapstructure:"mods"`
		Resourcepacks bool `json:"resourcepacks" yaml:"resourcepacks" mapstructure:"resourcepacks"`
		Shaderpacks   bool `json:"shaderpacks" yaml:"shaderpacks" mapstructure:"shaderpacks"`
	}

	// Reconciler aligns a managed sub-directory with a target list.
	Reconciler struct {
		quarantine QuarantinePolicy
		dryRun     bool
		logger     *log.Logger
	}

	// Report describes what a reconciliation did, or would do in dry-run mode.
	// File lists hold bare file names.
	Report struct {
		Category    pack.Category `json:"category" yaml:"category"`
		DryRun      bool          `json:"dry_run" yaml:"dry_run"`
		Duplicates  []string      `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
		Present     []string      `json:"present,omitempty" yaml:"present,omitempty"`
		Partials    []string      `json:"partials,omitempty" yaml:"partials,omitempty"`
		Quarantined []string      `json:"quarantined,omitempty" yaml:"quarantined,omitempty"`
		Deleted     []string      `json:"deleted,omitempty" yaml:"deleted,omitempty"`
	}
)

// DefaultQuarantinePolicy quarantines every category.
func DefaultQuarantinePolicy() QuarantinePolicy {
	return QuarantinePolicy{Mods: true, Resourcepacks: true, Shaderpacks: true}
}

// Enabled reports whether stale files of category c are quarantined.
func (p QuarantinePolicy) Enabled(c pack.Category) bool {
	switch c {
	case pack.CategoryMods:
		return p.Mods
	case pack.CategoryResourcepacks:
		return p.Resourcepacks
	case pack.CategoryShaderpacks:
		return p.Shaderpacks
	default:
		return false
	}
}

// NewReconciler creates a Reconciler. Quarantine defaults to
// DefaultQuarantinePolicy.
func NewReconciler(opts ...Option) *Reconciler {
	s := newSettings(opts)
	return &Reconciler{quarantine: s.quarantine, dryRun: s.dryRun, logger: s.logger}
}

// Reconcile aligns <root>/<category dir> with the targets that belong to it.
//
// Targets sharing an output path are collapsed to one. A file whose path
// matches a pending target is left alone and the target is removed from
// *targets. Leftover partial downloads are deleted. Any other regular file is
// moved into .old when the category is quarantined, and deleted otherwise or
// when the move fails. Sub-directories are never touched. Targets of other
// directories are passed through unchanged.
func (r *Reconciler) Reconcile(root string, category pack.Category, targets *[]Artifact) (Report, error) {
	report := Report{Category: category, DryRun: r.dryRun}
	if valid, errs := category.IsValid(); !valid {
		return report, errs[0]
	}
	logger := r.logger.With("category", category)
	subdir := category.Dir()

	list := *targets
	drop := make([]bool, len(list))
	pending := make(map[string]int)
	for i, t := range list {
		if t.Dir() != subdir {
			continue
		}
		if _, dup := pending[t.OutputPath]; dup {
			drop[i] = true
			report.Duplicates = append(report.Duplicates, t.Filename())
			continue
		}
		pending[t.OutputPath] = i
	}
	if n := len(report.Duplicates); n > 0 {
		logger.Warn("dropped duplicate targets", "count", n, "files", strings.Join(report.Duplicates, ", "))
	}

	dir := filepath.Join(root, filepath.FromSlash(subdir))
	oldDir := filepath.Join(dir, QuarantineDir)
	if !r.dryRun {
		if err := os.MkdirAll(oldDir, 0o755); err != nil {
			return report, fmt.Errorf("creating %s: %w", oldDir, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil && !(r.dryRun && errors.Is(err, fs.ErrNotExist)) {
		return report, fmt.Errorf("reading %s: %w", dir, err)
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if i, ok := pending[path.Join(subdir, name)]; ok {
			drop[i] = true
			delete(pending, path.Join(subdir, name))
			report.Present = append(report.Present, name)
			continue
		}

		file := filepath.Join(dir, name)
		switch {
		case strings.HasSuffix(name, PartialSuffix):
			if r.remove(logger, file) {
				report.Partials = append(report.Partials, name)
			}
		case r.quarantine.Enabled(category) && r.moveToQuarantine(logger, file, filepath.Join(oldDir, name)):
			report.Quarantined = append(report.Quarantined, name)
		default:
			if r.remove(logger, file) {
				report.Deleted = append(report.Deleted, name)
			}
		}
	}

	kept := list[:0:0]
	for i, t := range list {
		if !drop[i] {
			kept = append(kept, t)
		}
	}
	*targets = kept

	logger.Debug("reconciled",
		"present", len(report.Present),
		"quarantined", len(report.Quarantined),
		"deleted", len(report.Deleted)+len(report.Partials))
	return report, nil
}

// moveToQuarantine renames file into .old. An existing file of the same name
// in .old counts as a failed move.
func (r *Reconciler) moveToQuarantine(logger *log.Logger, file, dest string) bool {
	if r.dryRun {
		_, err := os.Lstat(dest)
		return errors.Is(err, fs.ErrNotExist)
	}
	if _, err := os.Lstat(dest); err == nil {
		logger.Warn("quarantine target exists, deleting instead", "file", filepath.Base(file))
		return false
	}
	if err := os.Rename(file, dest); err != nil {
		logger.Warn("quarantine failed, deleting instead", "file", filepath.Base(file), "err", err)
		return false
	}
	logger.Info("quarantined", "file", filepath.Base(file))
	return true
}

func (r *Reconciler) remove(logger *log.Logger, file string) bool {
	if r.dryRun {
		return true
	}
	if err := os.Remove(file); err != nil {
		logger.Warn("could not delete", "file", filepath.Base(file), "err", err)
		return false
	}
	logger.Info("deleted", "file", filepath.Base(file))
	return true
}
