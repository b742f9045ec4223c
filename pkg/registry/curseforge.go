// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modbreeze/modbreeze/pkg/pack"
)

const (
	// DefaultCurseForgeBaseURL is the public CurseForge API.
	DefaultCurseForgeBaseURL = "https://api.curseforge.com"

	// curseForgePageSize is the number of files fetched per API page (the API maximum).
	curseForgePageSize = 50

	// curseForgeMaxPages is the upper bound on pagination to avoid runaway requests.
	curseForgeMaxPages = 40

	// relationRequiredDependency is CurseForge's FileRelationType.RequiredDependency.
	relationRequiredDependency = 3
)

type (
	// CurseForgeClient lists project files from the CurseForge v1 API.
	CurseForgeClient struct {
		t *transport
	}

	// curseForgeFiles is the JSON wire format of a paginated file listing.
	curseForgeFiles struct {
		Data       []curseForgeFile     `json:"data"`
		Pagination curseForgePagination `json:"pagination"`
	}

	curseForgeFile struct {
		FileName     string                     `json:"fileName"`
		FileDate     time.Time                  `json:"fileDate"`
		FileLength   int64                      `json:"fileLength"`
		DownloadURL  *string                    `json:"downloadUrl"`
		GameVersions []string                   `json:"gameVersions"`
		Dependencies []curseForgeFileDependency `json:"dependencies"`
	}

	curseForgeFileDependency struct {
		ModID        uint32 `json:"modId"`
		RelationType int    `json:"relationType"`
	}

	curseForgePagination struct {
		Index       int `json:"index"`
		PageSize    int `json:"pageSize"`
		ResultCount int `json:"resultCount"`
		TotalCount  int `json:"totalCount"`
	}
)

// NewCurseForgeClient creates a CurseForgeClient. WithAPIKey must be supplied
// for requests to succeed against the public API.
func NewCurseForgeClient(opts ...Option) *CurseForgeClient {
	c := &CurseForgeClient{t: newTransport("CurseForge", DefaultCurseForgeBaseURL, opts)}
	if c.t.apiKey != "" {
		c.t.headers = map[string]string{"x-api-key": c.t.apiKey}
	}
	return c
}

// ListCandidates returns every file of the project, following pagination.
func (c *CurseForgeClient) ListCandidates(ctx context.Context, id pack.RegistryID) ([]Candidate, error) {
	modID, ok := id.CurseForge()
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a curseforge id", ErrUnsupportedNamespace, id)
	}
	if c.t.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	var candidates []Candidate
	for page, index := 0, 0; page < curseForgeMaxPages; page++ {
		var files curseForgeFiles
		reqURL := fmt.Sprintf("%s/v1/mods/%d/files?index=%d&pageSize=%d", c.t.baseURL, modID, index, curseForgePageSize)
		if err := c.t.getJSON(ctx, reqURL, &files); err != nil {
			return nil, fmt.Errorf("listing files of %s: %w", id, err)
		}

		for _, f := range files.Data {
			candidates = append(candidates, f.toCandidate())
		}

		index += len(files.Data)
		if len(files.Data) == 0 || index >= files.Pagination.TotalCount {
			break
		}
	}
	return candidates, nil
}

// SelectBest applies the shared selection algorithm.
func (c *CurseForgeClient) SelectBest(candidates []Candidate, cons Constraints) (Selection, bool) {
	return SelectBest(candidates, cons)
}

// ResolveVersionProject is not needed for CurseForge: its dependencies always
// carry the project id.
func (c *CurseForgeClient) ResolveVersionProject(_ context.Context, versionID string) (pack.RegistryID, error) {
	return pack.RegistryID{}, fmt.Errorf("resolving curseforge file %s: %w", versionID, errors.ErrUnsupported)
}

// toCandidate splits CurseForge's mixed gameVersions list into game versions
// and loader names.
func (f curseForgeFile) toCandidate() Candidate {
	cand := Candidate{
		FileName:  f.FileName,
		Length:    f.FileLength,
		Published: f.FileDate,
	}
	if f.DownloadURL != nil {
		cand.DownloadURL = *f.DownloadURL
	}
	for _, gv := range f.GameVersions {
		if _, err := pack.ParseLoader(gv); err == nil {
			cand.Loaders = append(cand.Loaders, gv)
			continue
		}
		cand.GameVersions = append(cand.GameVersions, gv)
	}
	for _, d := range f.Dependencies {
		if d.RelationType == relationRequiredDependency && d.ModID != 0 {
			cand.Dependencies = append(cand.Dependencies, Dependency{ID: pack.CurseForgeID(d.ModID)})
		}
	}
	return cand
}
