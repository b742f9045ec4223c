// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

// MaxPackFileSize bounds the size of a pack definition accepted by Parse (4 MiB).
const MaxPackFileSize = 4 << 20

var (
	// ErrMissingField is the sentinel error wrapped by MissingFieldError.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidEntry is the sentinel error wrapped by InvalidEntryError.
	ErrInvalidEntry = errors.New("invalid pack entry")
)

type (
	// Diagnostic is a non-fatal finding produced while parsing a pack.
	Diagnostic struct {
		Category Category
		Name     string
		ID       RegistryID
		Message  string
	}

	// MissingFieldError is returned when a required top-level field is absent.
	MissingFieldError struct {
		Field string
	}

	// InvalidEntryError is returned when an entry's id cannot be interpreted.
	InvalidEntryError struct {
		Section string
		Name    string
		Reason  string
	}

	// packFile is the TOML wire format of a pack definition.
	packFile struct {
		Name          string         `toml:"name"`
		Version       string         `toml:"version"`
		Loader        string         `toml:"loader"`
		MCVersion     string         `toml:"mc_version"`
		Mods          modSections    `toml:"mods"`
		Resourcepacks map[string]any `toml:"resourcepacks"`
		Shaderpacks   map[string]any `toml:"shaderpacks"`
	}

	modSections struct {
		Client map[string]any `toml:"client"`
		Server map[string]any `toml:"server"`
		Common map[string]any `toml:"common"`
	}

	// section is one TOML table of entries together with the side it maps to.
	section struct {
		name    string
		side    Side
		entries map[string]any
	}
)

// String renders the diagnostic for log output.
func (d Diagnostic) String() string {
	if d.ID.IsZero() {
		return fmt.Sprintf("%s %q: %s", d.Category, d.Name, d.Message)
	}
	return fmt.Sprintf("%s %q (%s): %s", d.Category, d.Name, d.ID, d.Message)
}

// Error implements the error interface for MissingFieldError.
func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// Unwrap returns ErrMissingField for errors.Is() compatibility.
func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// Error implements the error interface for InvalidEntryError.
func (e *InvalidEntryError) Error() string {
	return fmt.Sprintf("invalid entry %q in [%s]: %s", e.Name, e.Section, e.Reason)
}

// Unwrap returns ErrInvalidEntry for errors.Is() compatibility.
func (e *InvalidEntryError) Unwrap() error { return ErrInvalidEntry }

// Parse decodes a TOML pack definition.
//
// Entries are either a bare id (integer for CurseForge, string for Modrinth)
// or a table {id, ignore_loader, ignore_version}. A reference whose id already
// appeared earlier in the same category is dropped with a diagnostic, as are
// CurseForge shaderpacks. Structural problems (bad TOML, unknown loader,
// malformed ids, no references at all) are returned as errors.
func Parse(data []byte) (*Pack, []Diagnostic, error) {
	if len(data) > MaxPackFileSize {
		return nil, nil, fmt.Errorf("pack definition is %d bytes, larger than the %d byte limit", len(data), MaxPackFileSize)
	}

	var raw packFile
	if err := toml.Unmarshal(data, &raw); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return nil, nil, fmt.Errorf("parsing pack definition at line %d, column %d: %w", row, col, err)
		}
		return nil, nil, fmt.Errorf("parsing pack definition: %w", err)
	}

	if raw.Loader == "" {
		return nil, nil, &MissingFieldError{Field: "loader"}
	}
	loader, err := ParseLoader(raw.Loader)
	if err != nil {
		return nil, nil, err
	}
	if raw.MCVersion == "" {
		return nil, nil, &MissingFieldError{Field: "mc_version"}
	}

	var diags []Diagnostic

	mods, modDiags, err := convertSections(CategoryMods, []section{
		{name: "mods.client", side: SideClient, entries: raw.Mods.Client},
		{name: "mods.server", side: SideServer, entries: raw.Mods.Server},
		{name: "mods.common", side: SideAll, entries: raw.Mods.Common},
	})
	if err != nil {
		return nil, nil, err
	}
	diags = append(diags, modDiags...)

	resourcepacks, rpDiags, err := convertSections(CategoryResourcepacks, []section{
		{name: "resourcepacks", side: SideResourcepack, entries: raw.Resourcepacks},
	})
	if err != nil {
		return nil, nil, err
	}
	diags = append(diags, rpDiags...)

	shaderpacks, spDiags, err := convertSections(CategoryShaderpacks, []section{
		{name: "shaderpacks", side: SideShaderpack, entries: raw.Shaderpacks},
	})
	if err != nil {
		return nil, nil, err
	}
	diags = append(diags, spDiags...)

	// The CurseForge API does not expose shaderpack files.
	shaderpacks = slices.DeleteFunc(shaderpacks, func(ref ModReference) bool {
		if ref.ID.Namespace() != NamespaceCurseForge {
			return false
		}
		diags = append(diags, Diagnostic{
			Category: CategoryShaderpacks,
			Name:     ref.Name,
			ID:       ref.ID,
			Message:  "CurseForge shaderpacks are not supported and were skipped",
		})
		return true
	})

	p := &Pack{
		Name:          raw.Name,
		Version:       raw.Version,
		Loader:        loader,
		MCVersion:     raw.MCVersion,
		Mods:          mods,
		Resourcepacks: resourcepacks,
		Shaderpacks:   shaderpacks,
	}
	if p.IsEmpty() {
		return nil, diags, ErrEmptyPack
	}
	return p, diags, nil
}

// convertSections turns the TOML tables of one category into references,
// keeping only the first occurrence of every id.
func convertSections(category Category, sections []section) ([]ModReference, []Diagnostic, error) {
	var (
		refs  []ModReference
		diags []Diagnostic
	)
	seen := make(map[RegistryID]string)

	for _, sec := range sections {
		names := make([]string, 0, len(sec.entries))
		for name := range sec.entries {
			names = append(names, name)
		}
		slices.Sort(names)

		for _, name := range names {
			ref, err := convertEntry(sec, name, sec.entries[name])
			if err != nil {
				return nil, nil, err
			}
			if first, dup := seen[ref.ID]; dup {
				diags = append(diags, Diagnostic{
					Category: category,
					Name:     name,
					ID:       ref.ID,
					Message:  fmt.Sprintf("duplicate of %q, skipped", first),
				})
				continue
			}
			seen[ref.ID] = name
			refs = append(refs, ref)
		}
	}
	return refs, diags, nil
}

// convertEntry interprets a single entry value.
func convertEntry(sec section, name string, value any) (ModReference, error) {
	ref := ModReference{
		Name: name,
		Side: sec.side,
		// Bare resourcepack and shaderpack ids are loader-agnostic.
		IgnoreLoader: sec.side == SideResourcepack || sec.side == SideShaderpack,
	}

	rawID := value
	if table, ok := value.(map[string]any); ok {
		var found bool
		rawID, found = table["id"]
		if !found {
			return ModReference{}, &InvalidEntryError{Section: sec.name, Name: name, Reason: "table entry has no id"}
		}
		ignoreLoader, err := optionalBool(table, "ignore_loader")
		if err != nil {
			return ModReference{}, &InvalidEntryError{Section: sec.name, Name: name, Reason: err.Error()}
		}
		ignoreVersion, err := optionalBool(table, "ignore_version")
		if err != nil {
			return ModReference{}, &InvalidEntryError{Section: sec.name, Name: name, Reason: err.Error()}
		}
		ref.IgnoreLoader = ignoreLoader
		ref.IgnoreVersion = ignoreVersion
	}

	id, err := convertID(rawID)
	if err != nil {
		return ModReference{}, &InvalidEntryError{Section: sec.name, Name: name, Reason: err.Error()}
	}
	ref.ID = id
	return ref, nil
}

func convertID(v any) (RegistryID, error) {
	switch id := v.(type) {
	case int64:
		if id <= 0 || id > math.MaxUint32 {
			return RegistryID{}, fmt.Errorf("curseforge id %d out of range", id)
		}
		return CurseForgeID(uint32(id)), nil
	case string:
		if id == "" {
			return RegistryID{}, errors.New("modrinth id must not be empty")
		}
		return ModrinthID(id), nil
	default:
		return RegistryID{}, fmt.Errorf("id must be an integer or a string, got %T", v)
	}
}

func optionalBool(table map[string]any, key string) (bool, error) {
	v, ok := table[key]
	if !ok {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s must be a boolean, got %T", key, v)
	}
	return b, nil
}
