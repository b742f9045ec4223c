// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/modbreeze/modbreeze/pkg/pack"
)

// DefaultModrinthBaseURL is the public Modrinth API.
const DefaultModrinthBaseURL = "https://api.modrinth.com"

type (
	// ModrinthClient lists project versions from the Modrinth v2 API.
	ModrinthClient struct {
		t *transport
	}

	// modrinthVersion is the JSON wire format of a Modrinth version.
	modrinthVersion struct {
		ID            string               `json:"id"`
		ProjectID     string               `json:"project_id"`
		GameVersions  []string             `json:"game_versions"`
		Loaders       []string             `json:"loaders"`
		DatePublished time.Time            `json:"date_published"`
		Files         []modrinthFile       `json:"files"`
		Dependencies  []modrinthDependency `json:"dependencies"`
	}

	modrinthFile struct {
		URL      string `json:"url"`
		Filename string `json:"filename"`
		Primary  bool   `json:"primary"`
		Size     int64  `json:"size"`
	}

	modrinthDependency struct {
		VersionID      *string `json:"version_id"`
		ProjectID      *string `json:"project_id"`
		DependencyType string  `json:"dependency_type"`
	}
)

// NewModrinthClient creates a ModrinthClient. Defaults: the public API and
// http.DefaultClient.
func NewModrinthClient(opts ...Option) *ModrinthClient {
	return &ModrinthClient{t: newTransport("Modrinth", DefaultModrinthBaseURL, opts)}
}

// ListCandidates returns one candidate per published version of the project.
func (c *ModrinthClient) ListCandidates(ctx context.Context, id pack.RegistryID) ([]Candidate, error) {
	project, ok := id.Modrinth()
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a modrinth id", ErrUnsupportedNamespace, id)
	}

	var versions []modrinthVersion
	reqURL := fmt.Sprintf("%s/v2/project/%s/version", c.t.baseURL, url.PathEscape(project))
	if err := c.t.getJSON(ctx, reqURL, &versions); err != nil {
		return nil, fmt.Errorf("listing versions of %s: %w", id, err)
	}

	candidates := make([]Candidate, 0, len(versions))
	for _, v := range versions {
		if cand, ok := v.toCandidate(); ok {
			candidates = append(candidates, cand)
		}
	}
	return candidates, nil
}

// SelectBest applies the shared selection algorithm.
func (c *ModrinthClient) SelectBest(candidates []Candidate, cons Constraints) (Selection, bool) {
	return SelectBest(candidates, cons)
}

// ResolveVersionProject looks up the project that published versionID.
func (c *ModrinthClient) ResolveVersionProject(ctx context.Context, versionID string) (pack.RegistryID, error) {
	var v modrinthVersion
	reqURL := fmt.Sprintf("%s/v2/version/%s", c.t.baseURL, url.PathEscape(versionID))
	if err := c.t.getJSON(ctx, reqURL, &v); err != nil {
		return pack.RegistryID{}, fmt.Errorf("resolving version %s: %w", versionID, err)
	}
	if v.ProjectID == "" {
		return pack.RegistryID{}, fmt.Errorf("resolving version %s: %w", versionID, ErrNotFound)
	}
	return pack.ModrinthID(v.ProjectID), nil
}

// toCandidate maps a version to a candidate using its primary file, or the
// first file when none is flagged primary. Versions without files are dropped.
func (v modrinthVersion) toCandidate() (Candidate, bool) {
	if len(v.Files) == 0 {
		return Candidate{}, false
	}
	file := v.Files[0]
	for _, f := range v.Files {
		if f.Primary {
			file = f
			break
		}
	}

	var deps []Dependency
	for _, d := range v.Dependencies {
		if d.DependencyType != "required" {
			continue
		}
		switch {
		case d.ProjectID != nil && *d.ProjectID != "":
			deps = append(deps, Dependency{ID: pack.ModrinthID(*d.ProjectID)})
		case d.VersionID != nil && *d.VersionID != "":
			deps = append(deps, Dependency{VersionID: *d.VersionID})
		}
	}

	return Candidate{
		FileName:     file.Filename,
		DownloadURL:  file.URL,
		Length:       file.Size,
		GameVersions: v.GameVersions,
		Loaders:      v.Loaders,
		Published:    v.DatePublished,
		Dependencies: deps,
	}, true
}
