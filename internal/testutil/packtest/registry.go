// SPDX-License-Identifier: MPL-2.0

package packtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

const (
	// GameVersion is the game version projects are published for by default.
	GameVersion = "1.20.1"
	// Loader is the loader projects are published for by default.
	Loader = "fabric"
)

type (
	// Project is one Modrinth project with a single published version.
	Project struct {
		ID       string
		FileName string
		// Content is the file body; defaults to "content of <FileName>".
		Content     string
		GameVersion string
		Loader      string
		// Requires lists project ids of required dependencies.
		Requires []string
	}

	// Registry is an httptest server speaking the subset of the Modrinth v2
	// API the client uses, plus a file host for the download URLs.
	Registry struct {
		server *httptest.Server

		mu        sync.Mutex
		projects  map[string]Project
		queries   map[string]int
		downloads map[string]int
	}
)

// NewModrinthRegistry starts a fake registry that is closed with the test.
func NewModrinthRegistry(t testing.TB, projects ...Project) *Registry {
	t.Helper()

	r := &Registry{
		projects:  make(map[string]Project, len(projects)),
		queries:   make(map[string]int),
		downloads: make(map[string]int),
	}
	for _, p := range projects {
		r.projects[p.ID] = p.withDefaults()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v2/project/{id}/version", r.serveVersions)
	mux.HandleFunc("GET /files/{name}", r.serveFile)
	r.server = httptest.NewServer(mux)
	t.Cleanup(r.server.Close)

	return r
}

// URL is the base URL to pass to registry.WithBaseURL.
func (r *Registry) URL() string { return r.server.URL }

// Client returns an HTTP client for the server.
func (r *Registry) Client() *http.Client { return r.server.Client() }

// Queries returns how many times the versions of project id were listed.
func (r *Registry) Queries(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queries[id]
}

// Downloads returns the total number of file downloads served.
func (r *Registry) Downloads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, n := range r.downloads {
		total += n
	}
	return total
}

func (p Project) withDefaults() Project {
	if p.Content == "" {
		p.Content = "content of " + p.FileName
	}
	if p.GameVersion == "" {
		p.GameVersion = GameVersion
	}
	if p.Loader == "" {
		p.Loader = Loader
	}
	return p
}

func (r *Registry) serveVersions(w http.ResponseWriter, req *http.Request) {
	id := req.PathValue("id")

	r.mu.Lock()
	r.queries[id]++
	p, ok := r.projects[id]
	r.mu.Unlock()

	if !ok {
		http.NotFound(w, req)
		return
	}

	deps := make([]map[string]any, 0, len(p.Requires))
	for _, dep := range p.Requires {
		deps = append(deps, map[string]any{"project_id": dep, "dependency_type": "required"})
	}
	version := map[string]any{
		"id":             "v-" + p.ID,
		"project_id":     p.ID,
		"game_versions":  []string{p.GameVersion},
		"loaders":        []string{p.Loader},
		"date_published": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		"files": []map[string]any{{
			"url":      r.server.URL + "/files/" + p.FileName,
			"filename": p.FileName,
			"primary":  true,
			"size":     len(p.Content),
		}},
		"dependencies": deps,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode([]any{version})
}

func (r *Registry) serveFile(w http.ResponseWriter, req *http.Request) {
	name := req.PathValue("name")

	r.mu.Lock()
	var content string
	found := false
	for _, p := range r.projects {
		if p.FileName == name {
			content, found = p.Content, true
			break
		}
	}
	if found {
		r.downloads[name]++
	}
	r.mu.Unlock()

	if !found {
		http.NotFound(w, req)
		return
	}
	_, _ = strings.NewReader(content).WriteTo(w)
}
