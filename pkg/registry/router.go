// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"fmt"

	"github.com/modbreeze/modbreeze/pkg/pack"
)

// Router is a Client that forwards each id to the client serving its namespace.
type Router struct {
	clients map[pack.Namespace]Client
	// versions serves ResolveVersionProject; version-only dependencies are a
	// Modrinth concept.
	versions Client
}

// NewRouter builds a Router over a Modrinth and a CurseForge client.
// Either may be nil, in which case ids of that namespace fail with
// ErrUnsupportedNamespace.
func NewRouter(modrinth, curseforge Client) *Router {
	r := &Router{clients: make(map[pack.Namespace]Client, 2), versions: modrinth}
	if modrinth != nil {
		r.clients[pack.NamespaceModrinth] = modrinth
	}
	if curseforge != nil {
		r.clients[pack.NamespaceCurseForge] = curseforge
	}
	return r
}

// ListCandidates dispatches on the namespace of id.
func (r *Router) ListCandidates(ctx context.Context, id pack.RegistryID) ([]Candidate, error) {
	c, ok := r.clients[id.Namespace()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedNamespace, id)
	}
	return c.ListCandidates(ctx, id)
}

// SelectBest applies the shared selection algorithm.
func (r *Router) SelectBest(candidates []Candidate, c Constraints) (Selection, bool) {
	return SelectBest(candidates, c)
}

// ResolveVersionProject forwards to the Modrinth client.
func (r *Router) ResolveVersionProject(ctx context.Context, versionID string) (pack.RegistryID, error) {
	if r.versions == nil {
		return pack.RegistryID{}, fmt.Errorf("%w: no client resolves version ids", ErrUnsupportedNamespace)
	}
	return r.versions.ResolveVersionProject(ctx, versionID)
}
