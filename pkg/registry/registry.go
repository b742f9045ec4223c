// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/modbreeze/modbreeze/pkg/pack"
)

var (
	// ErrNotFound is returned when a registry has no project or version for an id.
	ErrNotFound = errors.New("not found in registry")
	// ErrMissingAPIKey is returned by the CurseForge client when no API key is configured.
	ErrMissingAPIKey = errors.New("curseforge api key is not configured")
	// ErrUnsupportedNamespace is returned when no client serves an id's namespace.
	ErrUnsupportedNamespace = errors.New("unsupported registry namespace")
)

type (
	// Client is the capability the resolver needs from a registry.
	Client interface {
		// ListCandidates returns every file published for the project.
		ListCandidates(ctx context.Context, id pack.RegistryID) ([]Candidate, error)
		// SelectBest picks the preferred candidate under the given constraints.
		SelectBest(candidates []Candidate, c Constraints) (Selection, bool)
		// ResolveVersionProject maps a version id to the id of the project owning it.
		ResolveVersionProject(ctx context.Context, versionID string) (pack.RegistryID, error)
	}

	// Candidate is one downloadable file published for a project.
	Candidate struct {
		FileName string
		// DownloadURL is empty when the author denied third-party distribution.
		DownloadURL  string
		Length       int64
		GameVersions []string
		Loaders      []string
		Published    time.Time
		// Dependencies lists required dependencies only.
		Dependencies []Dependency
	}

	// Dependency is a required dependency of a Candidate. Either ID is set, or
	// only VersionID is known and the owning project must be looked up.
	Dependency struct {
		ID        pack.RegistryID
		VersionID string
	}

	// Constraints restrict which candidates are compatible. An empty field
	// means the dimension is unconstrained.
	Constraints struct {
		GameVersion string
		Loader      pack.Loader
	}

	// Selection is the outcome of SelectBest.
	Selection struct {
		Candidate
		// LoaderFallback is set when a Quilt pack was served a Fabric file.
		LoaderFallback bool
	}
)

// Unconstrained reports whether no constraint applies.
func (c Constraints) Unconstrained() bool {
	return c.GameVersion == "" && c.Loader == ""
}

// String renders the constraints for log output.
func (c Constraints) String() string {
	gv, loader := c.GameVersion, string(c.Loader)
	if gv == "" {
		gv = "any"
	}
	if loader == "" {
		loader = "any"
	}
	return fmt.Sprintf("version=%s loader=%s", gv, loader)
}

// HasDownload reports whether the candidate may be downloaded directly.
func (c Candidate) HasDownload() bool { return c.DownloadURL != "" }

// SelectBest keeps the candidates whose game versions contain the constraint
// version and whose loaders contain the constraint loader, and returns the
// most recently published one. Ties keep the earliest candidate in input
// order. A Quilt pack falls back to Fabric files when nothing targets Quilt.
func SelectBest(candidates []Candidate, c Constraints) (Selection, bool) {
	if best, ok := newest(candidates, c); ok {
		return Selection{Candidate: best}, true
	}
	if c.Loader == pack.LoaderQuilt {
		fallback := c
		fallback.Loader = pack.LoaderFabric
		if best, ok := newest(candidates, fallback); ok {
			return Selection{Candidate: best, LoaderFallback: true}, true
		}
	}
	return Selection{}, false
}

func newest(candidates []Candidate, c Constraints) (Candidate, bool) {
	var (
		best  Candidate
		found bool
	)
	for _, cand := range candidates {
		if !compatible(cand, c) {
			continue
		}
		if !found || cand.Published.After(best.Published) {
			best = cand
			found = true
		}
	}
	return best, found
}

func compatible(cand Candidate, c Constraints) bool {
	if c.GameVersion != "" && !slices.Contains(cand.GameVersions, c.GameVersion) {
		return false
	}
	if c.Loader != "" && !slices.ContainsFunc(cand.Loaders, func(l string) bool {
		return strings.EqualFold(l, string(c.Loader))
	}) {
		return false
	}
	return true
}
