// SPDX-License-Identifier: MPL-2.0

package upgrade

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/modbreeze/modbreeze/internal/issue"
	"github.com/modbreeze/modbreeze/internal/packsource"
	"github.com/modbreeze/modbreeze/pkg/modsync"
	"github.com/modbreeze/modbreeze/pkg/pack"
	"github.com/modbreeze/modbreeze/pkg/registry"
)

// ErrNoMinecraftDir is returned when a Request has no Root.
var ErrNoMinecraftDir = errors.New("no minecraft directory")

type (
	// SourceLoader returns the raw text of a pack definition.
	SourceLoader interface {
		Load(ctx context.Context, src pack.Source) ([]byte, error)
	}

	// Request describes one upgrade run.
	Request struct {
		// Root is the Minecraft directory holding mods/, resourcepacks/ and shaderpacks/.
		Root   string
		Source pack.Source
		Side   pack.Side
		// Resourcepacks and Shaderpacks opt into the optional categories.
		// Unrequested categories are neither resolved nor reconciled.
		Resourcepacks bool
		Shaderpacks   bool
		// DryRun reports what would change without touching the filesystem.
		DryRun bool
	}

	// Result summarizes a run.
	Result struct {
		PackName    string            `json:"pack" yaml:"pack"`
		PackVersion string            `json:"version,omitempty" yaml:"version,omitempty"`
		// Warnings holds the parser diagnostics of dropped entries.
		Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
		// Resolved counts artifacts before reconciliation.
		Resolved int `json:"resolved" yaml:"resolved"`
		// Pending lists what still had to be (or, in dry-run, would be) downloaded.
		Pending []modsync.Artifact `json:"pending" yaml:"pending"`
		Reports []modsync.Report   `json:"reports" yaml:"reports"`
		// Transferred is the byte total of completed downloads.
		Transferred int64 `json:"transferred" yaml:"transferred"`
		DryRun      bool  `json:"dry_run" yaml:"dry_run"`
		// CurseForgeSkipped is set when the pack has CurseForge references
		// but no API key is configured.
		CurseForgeSkipped bool `json:"curseforge_skipped,omitempty" yaml:"curseforge_skipped,omitempty"`
	}

	// Service wires the pipeline stages together.
	Service struct {
		loader        SourceLoader
		client        registry.Client
		transferer    modsync.Transferer
		logger        *log.Logger
		concurrency   int
		quarantine    modsync.QuarantinePolicy
		progress      modsync.ProgressReporter
		curseForgeKey bool
	}

	// Option configures a Service.
	Option func(*Service)
)

// WithLogger sets the logger handed to every stage.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithConcurrency bounds registry queries and downloads.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithQuarantine sets the per-category quarantine policy.
func WithQuarantine(p modsync.QuarantinePolicy) Option {
	return func(s *Service) { s.quarantine = p }
}

// WithProgress receives download progress.
func WithProgress(p modsync.ProgressReporter) Option {
	return func(s *Service) {
		if p != nil {
			s.progress = p
		}
	}
}

// WithCurseForgeKey records whether a CurseForge API key is configured.
func WithCurseForgeKey(configured bool) Option {
	return func(s *Service) { s.curseForgeKey = configured }
}

// NewService creates a Service.
func NewService(loader SourceLoader, client registry.Client, transferer modsync.Transferer, opts ...Option) *Service {
	s := &Service{
		loader:      loader,
		client:      client,
		transferer:  transferer,
		logger:      log.New(io.Discard),
		concurrency: modsync.DefaultConcurrency,
		quarantine:  modsync.DefaultQuarantinePolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the pipeline. Per-reference resolution problems are logged
// and skipped; everything returned as an error is an *issue.ActionableError.
func (s *Service) Run(ctx context.Context, req Request) (Result, error) {
	result := Result{DryRun: req.DryRun}

	if strings.TrimSpace(req.Root) == "" {
		return result, issue.NewErrorContext().
			WithOperation("start upgrade").
			WithSuggestion("Pass --dir with the path of your .minecraft (or server) directory").
			WithIssue(issue.ReconcileFailedId).
			Wrap(ErrNoMinecraftDir).
			BuildError()
	}

	p, diags, err := s.loadPack(ctx, req.Source)
	if err != nil {
		return result, err
	}
	result.PackName, result.PackVersion = p.Name, p.Version
	for _, d := range diags {
		result.Warnings = append(result.Warnings, d.String())
		s.logger.Warn("ignoring pack entry", "category", d.Category, "mod", d.Name, "reason", d.Message)
	}
	if !s.curseForgeKey && hasCurseForgeRefs(p) {
		result.CurseForgeSkipped = true
		s.logger.Warn("no CurseForge API key configured, CurseForge entries will be skipped")
	}

	s.logger.Info("resolving pack", "pack", p.Name, "version", p.Version, "loader", p.Loader, "mc_version", p.MCVersion)
	resolver := modsync.NewResolver(s.client,
		modsync.WithConcurrency(s.concurrency),
		modsync.WithLogger(s.logger.WithPrefix("resolve")),
	)
	pending, err := resolver.Resolve(ctx, modsync.ResolveRequest{
		Pack:          p,
		Side:          req.Side,
		Resourcepacks: req.Resourcepacks,
		Shaderpacks:   req.Shaderpacks,
	})
	if err != nil {
		return result, issue.NewErrorContext().
			WithOperation("resolve pack").
			WithResource(req.Source.String()).
			Wrap(err).
			BuildError()
	}
	result.Resolved = len(pending)
	s.logger.Info("resolved pack", "artifacts", len(pending))

	reconciler := modsync.NewReconciler(
		modsync.WithQuarantine(s.quarantine),
		modsync.WithDryRun(req.DryRun),
		modsync.WithLogger(s.logger.WithPrefix("reconcile")),
	)
	for _, category := range categories(req) {
		report, err := reconciler.Reconcile(req.Root, category, &pending)
		result.Reports = append(result.Reports, report)
		if err != nil {
			return result, issue.NewErrorContext().
				WithOperation("prepare " + category.Dir() + " directory").
				WithResource(req.Root).
				WithSuggestion("Check that the directory exists and is writable").
				WithIssue(issue.ReconcileFailedId).
				Wrap(err).
				BuildError()
		}
	}
	result.Pending = pending

	if req.DryRun || len(pending) == 0 {
		s.logger.Info("nothing to download", "dry_run", req.DryRun, "pending", len(pending))
		return result, nil
	}

	s.logger.Info("downloading", "files", len(pending), "bytes", totalLength(pending))
	schedOpts := []modsync.Option{modsync.WithConcurrency(s.concurrency)}
	if s.progress != nil {
		schedOpts = append(schedOpts, modsync.WithProgress(s.progress))
	}
	if err := modsync.NewScheduler(s.transferer, schedOpts...).Execute(ctx, req.Root, pending); err != nil {
		return result, issue.NewErrorContext().
			WithOperation("download mods").
			WithResource(req.Root).
			WithSuggestion("Run the command again to fetch the remaining files").
			WithIssue(issue.TransferFailedId).
			Wrap(err).
			BuildError()
	}
	result.Transferred = totalLength(pending)

	return result, nil
}

// loadPack reads and parses the definition, attaching the matching issue.
func (s *Service) loadPack(ctx context.Context, src pack.Source) (*pack.Pack, []pack.Diagnostic, error) {
	if src.IsZero() {
		return nil, nil, issue.NewErrorContext().
			WithOperation("load pack").
			WithSuggestion("Pass --file or --url, or remember one with 'modbreeze source'").
			WithIssue(issue.PackSourceMissingId).
			Wrap(pack.ErrInvalidSource).
			BuildError()
	}

	data, err := s.loader.Load(ctx, src)
	if err != nil {
		id := issue.PackSourceUnreachableId
		if errors.Is(err, packsource.ErrNonPlainText) {
			id = issue.NonPlainTextSourceId
		}
		return nil, nil, issue.NewErrorContext().
			WithOperation("read pack definition").
			WithResource(src.String()).
			WithIssue(id).
			Wrap(err).
			BuildError()
	}

	p, diags, err := pack.Parse(data)
	if err != nil {
		id := issue.PackParseFailedId
		switch {
		case errors.Is(err, pack.ErrInvalidLoader):
			id = issue.InvalidLoaderId
		case errors.Is(err, pack.ErrEmptyPack):
			id = issue.EmptyPackId
		}
		return nil, nil, issue.NewErrorContext().
			WithOperation("parse pack definition").
			WithResource(src.String()).
			WithIssue(id).
			Wrap(err).
			BuildError()
	}
	return p, diags, nil
}

// categories returns the sub-directories reconciled for req, in pipeline order.
func categories(req Request) []pack.Category {
	out := []pack.Category{pack.CategoryMods}
	if req.Resourcepacks {
		out = append(out, pack.CategoryResourcepacks)
	}
	if req.Shaderpacks {
		out = append(out, pack.CategoryShaderpacks)
	}
	return out
}

func hasCurseForgeRefs(p *pack.Pack) bool {
	for _, c := range pack.Categories() {
		for _, ref := range p.Refs(c) {
			if ref.ID.Namespace() == pack.NamespaceCurseForge {
				return true
			}
		}
	}
	return false
}

func totalLength(arts []modsync.Artifact) int64 {
	var n int64
	for _, a := range arts {
		n += a.Length
	}
	return n
}

// Summary is a one-line description of r for log output.
func (r Result) Summary() string {
	verb := "downloaded"
	if r.DryRun {
		verb = "would download"
	}
	return fmt.Sprintf("%s: %d resolved, %s %d", r.PackName, r.Resolved, verb, len(r.Pending))
}
