// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/modbreeze/modbreeze/internal/app/upgrade"
	"github.com/modbreeze/modbreeze/internal/config"
	"github.com/modbreeze/modbreeze/internal/issue"
	"github.com/modbreeze/modbreeze/internal/packsource"
	"github.com/modbreeze/modbreeze/internal/progress"
	"github.com/modbreeze/modbreeze/pkg/modsync"
	"github.com/modbreeze/modbreeze/pkg/pack"
	"github.com/modbreeze/modbreeze/pkg/registry"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// ErrInvalidFormat is returned for an unknown --format value.
var ErrInvalidFormat = errors.New("invalid output format")

// upgradeFlags holds the flag values of `modbreeze upgrade`. Zero values
// mean "use the configuration".
type upgradeFlags struct {
	side          string
	file          string
	url           string
	dir           string
	resourcepacks bool
	shaderpacks   bool
	dryRun        bool
	format        string
	concurrency   int
	noQuarantine  bool
}

// newUpgradeCommand creates the `modbreeze upgrade` command.
func newUpgradeCommand(app *App) *cobra.Command {
	var flags upgradeFlags

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Install or update the pack in a Minecraft directory",
		Long: `Install or update the pack in a Minecraft directory.

The pack definition is resolved against Modrinth and CurseForge, including
required dependencies. Files in mods/ (and resourcepacks/ or shaderpacks/
when requested) that are not part of the pack are moved to .old, and
missing files are downloaded.

The source, directory and side given on the command line are remembered
for the next run.`,
		Example: `  # First run
  modbreeze upgrade --url https://example.com/pack.toml --dir ~/.minecraft

  # Preview changes as JSON
  modbreeze upgrade --dry-run --format json

  # Dedicated server
  modbreeze upgrade --side server --dir /srv/minecraft`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceErrors = true
			return runUpgrade(cmd.Context(), app, flags)
		},
	}

	cmd.Flags().StringVar(&flags.side, "side", "", "which mods to install: client, server or all (default from config)")
	cmd.Flags().StringVar(&flags.file, "file", "", "local pack definition file")
	cmd.Flags().StringVar(&flags.url, "url", "", "pack definition URL")
	cmd.Flags().StringVar(&flags.dir, "dir", "", "Minecraft directory to manage")
	cmd.Flags().BoolVar(&flags.resourcepacks, "resourcepacks", false, "also sync resourcepacks")
	cmd.Flags().BoolVar(&flags.shaderpacks, "shaderpacks", false, "also sync shaderpacks")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "show what would change without touching the filesystem")
	cmd.Flags().StringVar(&flags.format, "format", formatText, "output format: text, json or yaml")
	cmd.Flags().IntVar(&flags.concurrency, "concurrency", 0, "parallel registry queries and downloads (default from config)")
	cmd.Flags().BoolVar(&flags.noQuarantine, "no-quarantine", false, "delete stale files instead of moving them to .old")
	cmd.MarkFlagsMutuallyExclusive("file", "url")

	_ = cmd.RegisterFlagCompletionFunc("side", cobra.FixedCompletions(
		[]string{string(pack.SideClient), string(pack.SideServer), string(pack.SideAll)}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{formatText, formatJSON, formatYAML}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// runUpgrade is the core of the upgrade command, separated from Cobra for
// testability.
func runUpgrade(ctx context.Context, app *App, flags upgradeFlags) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return app.renderError(nil, err)
	}

	stored := *cfg
	if err := applyUpgradeFlags(cfg, flags); err != nil {
		return app.renderError(cfg, err)
	}

	creds, err := app.Credentials()
	if err != nil {
		return app.renderError(cfg, err)
	}
	runCfg := cfg.WithCredentials(creds)

	logger := app.newLogger(cfg)
	quarantine := runCfg.Quarantine
	if flags.noQuarantine {
		quarantine = modsync.QuarantinePolicy{}
	}

	opts := []upgrade.Option{
		upgrade.WithLogger(logger),
		upgrade.WithConcurrency(runCfg.Concurrency),
		upgrade.WithQuarantine(quarantine),
		upgrade.WithCurseForgeKey(runCfg.Registry.CurseForgeAPIKey != ""),
	}
	if runCfg.UI.Progress && !flags.dryRun && flags.format == formatText {
		opts = append(opts, upgrade.WithProgress(progress.NewBar(app.stderr)))
	}

	svc := upgrade.NewService(
		packsource.NewLoader(
			packsource.WithHTTPClient(app.HTTPClient),
			packsource.WithUserAgent(registryUserAgent(runCfg.Registry)),
		),
		newRegistryClient(app, runCfg.Registry),
		modsync.NewHTTPTransferer(app.HTTPClient, registryUserAgent(runCfg.Registry)),
		opts...,
	)

	result, runErr := svc.Run(ctx, upgrade.Request{
		Root:          cfg.MinecraftDir.String(),
		Source:        cfg.Source,
		Side:          cfg.Side,
		Resourcepacks: flags.resourcepacks,
		Shaderpacks:   flags.shaderpacks,
		DryRun:        flags.dryRun,
	})

	// Remember the choices once the pack was usable.
	if !flags.dryRun && (runErr == nil || errors.Is(runErr, modsync.ErrTransferFailed)) && changedSelection(stored, *cfg) {
		if err := app.saveConfig(cfg); err != nil {
			logger.Warn("could not remember upgrade settings", "err", err)
		}
	}

	if runErr != nil {
		return app.renderError(cfg, runErr)
	}

	if result.CurseForgeSkipped {
		if known := issue.Get(issue.MissingCurseForgeKeyId); known != nil {
			if rendered, err := known.Render(glamourStyle(app.stderr, cfg.UI.ColorScheme)); err == nil {
				fmt.Fprint(app.stderr, rendered)
			}
		}
	}

	return writeResult(app.stdout, flags.format, result)
}

// applyUpgradeFlags overlays the command line on cfg.
func applyUpgradeFlags(cfg *config.Config, flags upgradeFlags) error {
	switch flags.format {
	case formatText, formatJSON, formatYAML:
	default:
		return fmt.Errorf("%w %q (valid: text, json, yaml)", ErrInvalidFormat, flags.format)
	}

	if flags.side != "" {
		side, err := pack.ParseSide(flags.side)
		if err != nil {
			return err
		}
		cfg.Side = side
	}
	if flags.concurrency != 0 {
		cfg.Concurrency = flags.concurrency
	}

	src, err := sourceFromFlags(flags.file, flags.url)
	if err != nil {
		return err
	}
	if !src.IsZero() {
		cfg.Source = src
	}

	if flags.dir != "" {
		dir, err := filepath.Abs(flags.dir)
		if err != nil {
			return fmt.Errorf("resolving --dir: %w", err)
		}
		cfg.MinecraftDir = config.MinecraftDir(dir)
	}

	if valid, errs := cfg.IsValid(); !valid {
		return errs[0]
	}
	return nil
}

// sourceFromFlags builds a Source from --file or --url. Local paths are made
// absolute so the remembered source works from any directory.
func sourceFromFlags(file, rawURL string) (pack.Source, error) {
	switch {
	case file != "" && rawURL != "":
		return pack.Source{}, &pack.InvalidSourceError{Value: pack.Source{Path: file, URL: rawURL}, Reason: "--file and --url are mutually exclusive"}
	case file != "":
		abs, err := filepath.Abs(file)
		if err != nil {
			return pack.Source{}, fmt.Errorf("resolving --file: %w", err)
		}
		return pack.Source{Path: abs}, nil
	case rawURL != "":
		src := pack.Source{URL: rawURL}
		if valid, errs := src.IsValid(); !valid {
			return pack.Source{}, errs[0]
		}
		return src, nil
	default:
		return pack.Source{}, nil
	}
}

func changedSelection(before, after config.Config) bool {
	return before.Source != after.Source ||
		before.MinecraftDir != after.MinecraftDir ||
		before.Side != after.Side
}

func registryUserAgent(reg config.RegistryConfig) string {
	if reg.UserAgent != "" {
		return reg.UserAgent
	}
	return userAgent()
}

// newRegistryClient routes Modrinth and CurseForge ids to their clients.
func newRegistryClient(app *App, reg config.RegistryConfig) registry.Client {
	modrinthOpts := []registry.Option{
		registry.WithHTTPClient(app.HTTPClient),
		registry.WithUserAgent(registryUserAgent(reg)),
	}
	if reg.ModrinthBaseURL != "" {
		modrinthOpts = append(modrinthOpts, registry.WithBaseURL(reg.ModrinthBaseURL))
	}

	curseforgeOpts := []registry.Option{
		registry.WithHTTPClient(app.HTTPClient),
		registry.WithUserAgent(registryUserAgent(reg)),
		registry.WithAPIKey(reg.CurseForgeAPIKey),
	}
	if reg.CurseForgeBaseURL != "" {
		curseforgeOpts = append(curseforgeOpts, registry.WithBaseURL(reg.CurseForgeBaseURL))
	}

	return registry.NewRouter(
		registry.NewModrinthClient(modrinthOpts...),
		registry.NewCurseForgeClient(curseforgeOpts...),
	)
}

// writeResult renders result in the requested format.
func writeResult(w io.Writer, format string, result upgrade.Result) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	default:
		writeTextResult(w, result)
		return nil
	}
}

func writeTextResult(w io.Writer, r upgrade.Result) {
	title := r.PackName
	if r.PackVersion != "" {
		title += " " + r.PackVersion
	}
	fmt.Fprintln(w, TitleStyle.Render(title))

	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "%s %s\n", WarningStyle.Render("!"), warning)
	}

	for _, rep := range r.Reports {
		fmt.Fprintf(w, "%s %d up to date", CmdStyle.Render(rep.Category.Dir()+":"), len(rep.Present))
		if n := len(rep.Quarantined); n > 0 {
			fmt.Fprintf(w, ", %d moved to %s", n, modsync.QuarantineDir)
		}
		if n := len(rep.Deleted) + len(rep.Partials); n > 0 {
			fmt.Fprintf(w, ", %d deleted", n)
		}
		fmt.Fprintln(w)
		for _, name := range rep.Quarantined {
			fmt.Fprintf(w, "  %s %s\n", SubtitleStyle.Render("→ .old"), name)
		}
		for _, name := range rep.Deleted {
			fmt.Fprintf(w, "  %s %s\n", SubtitleStyle.Render("✗"), name)
		}
	}

	if r.DryRun {
		if len(r.Pending) == 0 {
			fmt.Fprintln(w, SuccessStyle.Render("✓")+" nothing to download")
			return
		}
		fmt.Fprintf(w, "%s\n", SubtitleStyle.Render(fmt.Sprintf("Would download %d files:", len(r.Pending))))
		for _, a := range r.Pending {
			fmt.Fprintf(w, "  + %s (%s)\n", a.OutputPath, humanize.Bytes(uint64(max(a.Length, 0))))
		}
		return
	}

	if len(r.Pending) == 0 {
		fmt.Fprintln(w, SuccessStyle.Render("✓")+" everything is up to date")
		return
	}
	names := make([]string, 0, len(r.Pending))
	for _, a := range r.Pending {
		names = append(names, a.Filename())
	}
	fmt.Fprintf(w, "%s downloaded %d files (%s): %s\n",
		SuccessStyle.Render("✓"), len(r.Pending), humanize.Bytes(uint64(max(r.Transferred, 0))), strings.Join(names, ", "))
}
