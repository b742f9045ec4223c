// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrEmptyPack is returned when a pack has no references in any category.
	ErrEmptyPack = errors.New("pack contains no mods, resourcepacks or shaderpacks")
	// ErrInvalidSource is the sentinel error wrapped by InvalidSourceError.
	ErrInvalidSource = errors.New("invalid pack source")
)

type (
	// ModReference is one named entry of a pack pointing at a registry id.
	ModReference struct {
		// Name is cosmetic and only used in diagnostics.
		Name string `json:"name" yaml:"name"`
		// ID is the identity of the reference.
		ID RegistryID `json:"-" yaml:"-"`
		// Side tags which installation needs the reference.
		Side Side `json:"side" yaml:"side"`
		// IgnoreLoader drops the loader constraint when selecting a file.
		IgnoreLoader bool `json:"ignore_loader" yaml:"ignore_loader"`
		// IgnoreVersion drops the game version constraint when selecting a file.
		IgnoreVersion bool `json:"ignore_version" yaml:"ignore_version"`
	}

	// Pack is a parsed, immutable pack definition.
	Pack struct {
		Name          string
		Version       string
		Loader        Loader
		MCVersion     string
		Mods          []ModReference
		Resourcepacks []ModReference
		Shaderpacks   []ModReference
	}

	// Source locates a pack definition: exactly one of Path or URL is set.
	Source struct {
		Path string `json:"path,omitempty" mapstructure:"path"`
		URL  string `json:"url,omitempty" mapstructure:"url"`
	}

	// InvalidSourceError is returned when a Source is empty, ambiguous or malformed.
	InvalidSourceError struct {
		Value  Source
		Reason string
	}
)

// SameMod reports whether r and other point at the same registry id.
func (r ModReference) SameMod(other ModReference) bool { return r.ID == other.ID }

// String returns "name (namespace:id)".
func (r ModReference) String() string {
	return fmt.Sprintf("%s (%s)", r.Name, r.ID)
}

// IsValid returns whether the reference has a valid id and side.
func (r ModReference) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := r.ID.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := r.Side.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	return len(errs) == 0, errs
}

// Refs returns the references of the given category.
func (p *Pack) Refs(c Category) []ModReference {
	switch c {
	case CategoryMods:
		return p.Mods
	case CategoryResourcepacks:
		return p.Resourcepacks
	case CategoryShaderpacks:
		return p.Shaderpacks
	default:
		return nil
	}
}

// IsEmpty reports whether the pack has no references at all.
func (p *Pack) IsEmpty() bool {
	return len(p.Mods) == 0 && len(p.Resourcepacks) == 0 && len(p.Shaderpacks) == 0
}

// Validate checks the structural invariants that must hold before any
// network activity: a known loader and at least one reference.
func (p *Pack) Validate() error {
	if valid, errs := p.Loader.IsValid(); !valid {
		return errs[0]
	}
	if p.IsEmpty() {
		return ErrEmptyPack
	}
	for _, c := range Categories() {
		for _, ref := range p.Refs(c) {
			if valid, errs := ref.IsValid(); !valid {
				return fmt.Errorf("%s %q: %w", c, ref.Name, errors.Join(errs...))
			}
		}
	}
	return nil
}

// IsZero reports whether no source is configured.
func (s Source) IsZero() bool { return s.Path == "" && s.URL == "" }

// IsURL reports whether the source is a URL.
func (s Source) IsURL() bool { return s.URL != "" }

// String returns the path or URL of the source.
func (s Source) String() string {
	if s.URL != "" {
		return s.URL
	}
	return s.Path
}

// IsValid returns whether exactly one location is set and a URL uses http(s).
func (s Source) IsValid() (bool, []error) {
	switch {
	case s.IsZero():
		return false, []error{&InvalidSourceError{Value: s, Reason: "no file or url specified"}}
	case s.Path != "" && s.URL != "":
		return false, []error{&InvalidSourceError{Value: s, Reason: "file and url are mutually exclusive"}}
	case s.URL != "":
		u, err := url.Parse(s.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return false, []error{&InvalidSourceError{Value: s, Reason: "url must be an absolute http(s) url"}}
		}
	case strings.TrimSpace(s.Path) == "":
		return false, []error{&InvalidSourceError{Value: s, Reason: "file path must not be whitespace"}}
	}
	return true, nil
}

// Error implements the error interface for InvalidSourceError.
func (e *InvalidSourceError) Error() string {
	return fmt.Sprintf("invalid pack source %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidSource for errors.Is() compatibility.
func (e *InvalidSourceError) Unwrap() error { return ErrInvalidSource }
