// SPDX-License-Identifier: MPL-2.0

package modsync

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/modbreeze/modbreeze/pkg/pack"
	"github.com/modbreeze/modbreeze/pkg/registry"
)

type (
	// ResolveRequest selects what part of a pack to resolve.
	ResolveRequest struct {
		Pack *pack.Pack
		// Side filters mods; the zero value means SideAll.
		Side          pack.Side
		Resourcepacks bool
		Shaderpacks   bool
	}

	// Resolver expands pack references into artifacts.
	Resolver struct {
		client registry.Client
		sem    *semaphore.Weighted
		logger *log.Logger
	}

	// accumulator is the only state shared by the queries of a category pipeline.
	accumulator struct {
		mu        sync.Mutex
		seen      map[pack.RegistryID]struct{}
		frontier  []pack.ModReference
		artifacts []Artifact
	}

	categoryJob struct {
		category pack.Category
		refs     []pack.ModReference
	}
)

// NewResolver creates a Resolver over client. The concurrency option bounds
// registry queries across every category pipeline of a Resolve call.
func NewResolver(client registry.Client, opts ...Option) *Resolver {
	s := newSettings(opts)
	return &Resolver{
		client: client,
		sem:    semaphore.NewWeighted(int64(s.concurrency)),
		logger: s.logger,
	}
}

// Resolve returns the artifacts of the requested categories, concatenated in
// category order. A reference that cannot be resolved is logged and skipped;
// only an invalid request or a cancelled context fail the call.
func (r *Resolver) Resolve(ctx context.Context, req ResolveRequest) ([]Artifact, error) {
	jobs, err := req.jobs()
	if err != nil {
		return nil, err
	}
	cons := registry.Constraints{GameVersion: req.Pack.MCVersion, Loader: req.Pack.Loader}

	results := make([][]Artifact, len(jobs))
	var g errgroup.Group
	for i, job := range jobs {
		g.Go(func() error {
			arts, err := r.resolveCategory(ctx, job.category, job.refs, cons)
			results[i] = arts
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Artifact
	for _, arts := range results {
		out = append(out, arts...)
	}
	return out, nil
}

// jobs validates the request and builds the per-category reference lists.
func (req ResolveRequest) jobs() ([]categoryJob, error) {
	if req.Pack == nil {
		return nil, fmt.Errorf("%w: no pack", ErrInvalidRequest)
	}
	if valid, errs := req.Pack.Loader.IsValid(); !valid {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, errs[0])
	}
	side := req.Side
	if side == "" {
		side = pack.SideAll
	}
	switch side {
	case pack.SideClient, pack.SideServer, pack.SideAll:
	default:
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, &pack.InvalidSideError{Value: side})
	}

	var mods []pack.ModReference
	for _, ref := range req.Pack.Mods {
		if ref.Side.Includes(side) {
			mods = append(mods, ref)
		}
	}

	jobs := []categoryJob{{category: pack.CategoryMods, refs: mods}}
	if req.Resourcepacks {
		jobs = append(jobs, categoryJob{category: pack.CategoryResourcepacks, refs: req.Pack.Resourcepacks})
	}
	if req.Shaderpacks {
		jobs = append(jobs, categoryJob{category: pack.CategoryShaderpacks, refs: req.Pack.Shaderpacks})
	}
	return jobs, nil
}

// resolveCategory runs the generation loop of one category. Every reference
// of a generation is queried before the next generation starts.
func (r *Resolver) resolveCategory(ctx context.Context, category pack.Category, refs []pack.ModReference, cons registry.Constraints) ([]Artifact, error) {
	logger := r.logger.With("category", category)
	acc := newAccumulator(refs)

	for gen := 0; ; gen++ {
		frontier := acc.takeFrontier()
		if len(frontier) == 0 {
			break
		}
		logger.Debug("resolving generation", "generation", gen, "references", len(frontier))

		var g errgroup.Group
		for _, ref := range frontier {
			g.Go(func() error {
				return r.resolveOne(ctx, logger, category, ref, cons, acc)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	arts := acc.result()
	logger.Debug("category resolved", "artifacts", len(arts))
	return arts, nil
}

// resolveOne queries a single reference. Its only error is a context
// cancellation observed while waiting for a query slot.
func (r *Resolver) resolveOne(ctx context.Context, logger *log.Logger, category pack.Category, ref pack.ModReference, cons registry.Constraints, acc *accumulator) error {
	logger = logger.With("mod", ref.Name, "id", ref.ID)

	if err := r.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	candidates, err := r.client.ListCandidates(ctx, ref.ID)
	r.sem.Release(1)
	if err != nil {
		logger.Warn("registry query failed", "err", err)
		return nil
	}

	effective := cons
	if ref.IgnoreVersion {
		effective.GameVersion = ""
	}
	if ref.IgnoreLoader {
		effective.Loader = ""
	}

	sel, ok := r.client.SelectBest(candidates, effective)
	if !ok {
		logger.Warn("skipping", "err", &NoCompatibleFileError{Ref: ref, Constraints: effective})
		return nil
	}
	if !sel.HasDownload() {
		logger.Warn("skipping", "err", &DistributionDeniedError{Ref: ref, FileName: sel.FileName})
		return nil
	}
	if sel.LoaderFallback {
		logger.Info("using a fabric file for quilt", "file", sel.FileName)
	}

	out, err := outputPath(category, sel.FileName)
	if err != nil {
		logger.Warn("skipping", "err", err)
		return nil
	}

	for _, dep := range sel.Dependencies {
		id, err := r.dependencyID(ctx, dep)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("skipping dependency", "version", dep.VersionID, "err", err)
			continue
		}
		acc.register(pack.ModReference{
			Name:          "Dependency of " + ref.Name,
			ID:            id,
			Side:          ref.Side,
			IgnoreLoader:  ref.IgnoreLoader,
			IgnoreVersion: ref.IgnoreVersion,
		})
	}

	acc.add(Artifact{DownloadURL: sel.DownloadURL, OutputPath: out, Length: sel.Length})
	logger.Debug("resolved", "file", sel.FileName)
	return nil
}

// dependencyID returns the project id of dep, looking it up when only a
// version id is known.
func (r *Resolver) dependencyID(ctx context.Context, dep registry.Dependency) (pack.RegistryID, error) {
	if !dep.ID.IsZero() {
		return dep.ID, nil
	}
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return pack.RegistryID{}, err
	}
	defer r.sem.Release(1)
	return r.client.ResolveVersionProject(ctx, dep.VersionID)
}

// newAccumulator seeds generation zero with refs, dropping repeated ids.
func newAccumulator(refs []pack.ModReference) *accumulator {
	acc := &accumulator{seen: make(map[pack.RegistryID]struct{}, len(refs))}
	for _, ref := range refs {
		acc.register(ref)
	}
	return acc
}

// register queues ref for the next generation unless its id was seen before.
func (a *accumulator) register(ref pack.ModReference) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.seen[ref.ID]; ok {
		return
	}
	a.seen[ref.ID] = struct{}{}
	a.frontier = append(a.frontier, ref)
}

func (a *accumulator) takeFrontier() []pack.ModReference {
	a.mu.Lock()
	defer a.mu.Unlock()
	f := a.frontier
	a.frontier = nil
	return f
}

func (a *accumulator) add(art Artifact) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.artifacts = append(a.artifacts, art)
}

// result returns the artifacts sorted by output path.
func (a *accumulator) result() []Artifact {
	a.mu.Lock()
	defer a.mu.Unlock()
	arts := slices.Clone(a.artifacts)
	slices.SortStableFunc(arts, func(x, y Artifact) int {
		return strings.Compare(x.OutputPath, y.OutputPath)
	})
	return arts
}
