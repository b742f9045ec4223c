// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// NamespaceCurseForge identifies CurseForge project ids (numeric).
	NamespaceCurseForge Namespace = "curseforge"
	// NamespaceModrinth identifies Modrinth project ids or slugs (strings).
	NamespaceModrinth Namespace = "modrinth"

	// SideClient marks a mod only needed on the client.
	SideClient Side = "client"
	// SideServer marks a mod only needed on the server.
	SideServer Side = "server"
	// SideAll marks a mod needed everywhere. As a filter it selects every side.
	SideAll Side = "all"
	// SideResourcepack marks a resourcepack reference.
	SideResourcepack Side = "resourcepack"
	// SideShaderpack marks a shaderpack reference.
	SideShaderpack Side = "shaderpack"

	// LoaderForge is the Forge mod loader.
	LoaderForge Loader = "forge"
	// LoaderFabric is the Fabric mod loader.
	LoaderFabric Loader = "fabric"
	// LoaderQuilt is the Quilt mod loader.
	LoaderQuilt Loader = "quilt"

	// CategoryMods holds regular mods, written to mods/.
	CategoryMods Category = "mods"
	// CategoryResourcepacks holds resourcepacks, written to resourcepacks/.
	CategoryResourcepacks Category = "resourcepacks"
	// CategoryShaderpacks holds shaderpacks, written to shaderpacks/.
	CategoryShaderpacks Category = "shaderpacks"
)

var (
	// ErrInvalidNamespace is the sentinel error wrapped by InvalidNamespaceError.
	ErrInvalidNamespace = errors.New("invalid registry namespace")
	// ErrInvalidRegistryID is the sentinel error wrapped by InvalidRegistryIDError.
	ErrInvalidRegistryID = errors.New("invalid registry id")
	// ErrInvalidSide is the sentinel error wrapped by InvalidSideError.
	ErrInvalidSide = errors.New("invalid side")
	// ErrInvalidLoader is the sentinel error wrapped by InvalidLoaderError.
	ErrInvalidLoader = errors.New("invalid mod loader")
	// ErrInvalidCategory is the sentinel error wrapped by InvalidCategoryError.
	ErrInvalidCategory = errors.New("invalid category")
)

type (
	// Namespace identifies which registry a RegistryID belongs to.
	Namespace string

	// InvalidNamespaceError is returned when a Namespace value is not recognized.
	InvalidNamespaceError struct {
		Value Namespace
	}

	// RegistryID is a mod's identity in exactly one registry namespace.
	// It is comparable and safe to use as a map key. The zero value is
	// "no id" (see IsZero).
	RegistryID struct {
		namespace  Namespace
		curseforge uint32
		modrinth   string
	}

	// InvalidRegistryIDError is returned when a RegistryID is zero or malformed.
	InvalidRegistryIDError struct {
		Value  RegistryID
		Reason string
	}

	// Side tags which installation a reference belongs to.
	Side string

	// InvalidSideError is returned when a Side value is not recognized.
	InvalidSideError struct {
		Value Side
	}

	// Loader is the mod loader a pack targets.
	Loader string

	// InvalidLoaderError is returned when a loader name is not recognized.
	// Value keeps the original, user-provided spelling.
	InvalidLoaderError struct {
		Value string
	}

	// Category is one of the independently resolved and reconciled groups of a pack.
	Category string

	// InvalidCategoryError is returned when a Category value is not recognized.
	InvalidCategoryError struct {
		Value Category
	}
)

// CurseForgeID returns the RegistryID of a CurseForge project.
func CurseForgeID(id uint32) RegistryID {
	return RegistryID{namespace: NamespaceCurseForge, curseforge: id}
}

// ModrinthID returns the RegistryID of a Modrinth project id or slug.
func ModrinthID(id string) RegistryID {
	return RegistryID{namespace: NamespaceModrinth, modrinth: id}
}

// ParseRegistryID parses the "namespace:value" form produced by String.
func ParseRegistryID(s string) (RegistryID, error) {
	ns, value, ok := strings.Cut(s, ":")
	if !ok {
		return RegistryID{}, fmt.Errorf("%w: %q is not of the form namespace:id", ErrInvalidRegistryID, s)
	}
	switch Namespace(ns) {
	case NamespaceCurseForge:
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil || n == 0 {
			return RegistryID{}, fmt.Errorf("%w: curseforge id %q must be a positive integer", ErrInvalidRegistryID, value)
		}
		return CurseForgeID(uint32(n)), nil
	case NamespaceModrinth:
		if strings.TrimSpace(value) == "" {
			return RegistryID{}, fmt.Errorf("%w: modrinth id must not be empty", ErrInvalidRegistryID)
		}
		return ModrinthID(value), nil
	default:
		return RegistryID{}, &InvalidNamespaceError{Value: Namespace(ns)}
	}
}

// Namespace returns the registry this id belongs to.
func (id RegistryID) Namespace() Namespace { return id.namespace }

// CurseForge returns the numeric CurseForge id and whether id is a CurseForge id.
func (id RegistryID) CurseForge() (uint32, bool) {
	return id.curseforge, id.namespace == NamespaceCurseForge
}

// Modrinth returns the Modrinth id or slug and whether id is a Modrinth id.
func (id RegistryID) Modrinth() (string, bool) {
	return id.modrinth, id.namespace == NamespaceModrinth
}

// IsZero reports whether id is the zero value.
func (id RegistryID) IsZero() bool { return id == RegistryID{} }

// String renders the id as "namespace:value".
func (id RegistryID) String() string {
	switch id.namespace {
	case NamespaceCurseForge:
		return fmt.Sprintf("%s:%d", id.namespace, id.curseforge)
	case NamespaceModrinth:
		return fmt.Sprintf("%s:%s", id.namespace, id.modrinth)
	default:
		return "<none>"
	}
}

// IsValid returns whether the RegistryID names a project in a known namespace.
func (id RegistryID) IsValid() (bool, []error) {
	switch id.namespace {
	case NamespaceCurseForge:
		if id.curseforge == 0 {
			return false, []error{&InvalidRegistryIDError{Value: id, Reason: "curseforge id must be positive"}}
		}
	case NamespaceModrinth:
		if strings.TrimSpace(id.modrinth) == "" {
			return false, []error{&InvalidRegistryIDError{Value: id, Reason: "modrinth id must not be empty"}}
		}
	default:
		return false, []error{&InvalidRegistryIDError{Value: id, Reason: "missing namespace"}}
	}
	return true, nil
}

// Error implements the error interface for InvalidRegistryIDError.
func (e *InvalidRegistryIDError) Error() string {
	return fmt.Sprintf("invalid registry id %s: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidRegistryID for errors.Is() compatibility.
func (e *InvalidRegistryIDError) Unwrap() error { return ErrInvalidRegistryID }

// String returns the string representation of the Namespace.
func (n Namespace) String() string { return string(n) }

// IsValid returns whether the Namespace is one of the known registries.
func (n Namespace) IsValid() (bool, []error) {
	switch n {
	case NamespaceCurseForge, NamespaceModrinth:
		return true, nil
	default:
		return false, []error{&InvalidNamespaceError{Value: n}}
	}
}

// Error implements the error interface for InvalidNamespaceError.
func (e *InvalidNamespaceError) Error() string {
	return fmt.Sprintf("invalid registry namespace %q (valid: curseforge, modrinth)", e.Value)
}

// Unwrap returns ErrInvalidNamespace for errors.Is() compatibility.
func (e *InvalidNamespaceError) Unwrap() error { return ErrInvalidNamespace }

// ParseSide parses a user-selectable side. Matching is case-insensitive and
// accepts the short aliases c, s, a and common.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "client", "c":
		return SideClient, nil
	case "server", "s":
		return SideServer, nil
	case "all", "a", "common":
		return SideAll, nil
	default:
		return "", &InvalidSideError{Value: Side(s)}
	}
}

// String returns the string representation of the Side.
func (s Side) String() string { return string(s) }

// IsValid returns whether the Side is one of the defined sides.
func (s Side) IsValid() (bool, []error) {
	switch s {
	case SideClient, SideServer, SideAll, SideResourcepack, SideShaderpack:
		return true, nil
	default:
		return false, []error{&InvalidSideError{Value: s}}
	}
}

// Includes reports whether a reference tagged s passes the given side filter.
// The SideAll filter keeps everything; SideAll references pass every filter.
func (s Side) Includes(filter Side) bool {
	return filter == SideAll || s == SideAll || s == filter
}

// Error implements the error interface for InvalidSideError.
func (e *InvalidSideError) Error() string {
	return fmt.Sprintf("invalid side %q (valid: client, server, all)", e.Value)
}

// Unwrap returns ErrInvalidSide for errors.Is() compatibility.
func (e *InvalidSideError) Unwrap() error { return ErrInvalidSide }

// ParseLoader parses a loader name case-insensitively.
func ParseLoader(s string) (Loader, error) {
	l := Loader(strings.ToLower(strings.TrimSpace(s)))
	if valid, _ := l.IsValid(); !valid {
		return "", &InvalidLoaderError{Value: s}
	}
	return l, nil
}

// String returns the string representation of the Loader.
func (l Loader) String() string { return string(l) }

// IsValid returns whether the Loader is one of the supported loaders.
func (l Loader) IsValid() (bool, []error) {
	switch l {
	case LoaderForge, LoaderFabric, LoaderQuilt:
		return true, nil
	default:
		return false, []error{&InvalidLoaderError{Value: string(l)}}
	}
}

// Error implements the error interface for InvalidLoaderError.
func (e *InvalidLoaderError) Error() string {
	return fmt.Sprintf("invalid mod loader %q (valid: forge, fabric, quilt)", e.Value)
}

// Unwrap returns ErrInvalidLoader for errors.Is() compatibility.
func (e *InvalidLoaderError) Unwrap() error { return ErrInvalidLoader }

// Categories returns every category in resolution order.
func Categories() []Category {
	return []Category{CategoryMods, CategoryResourcepacks, CategoryShaderpacks}
}

// Dir returns the output sub-directory of the category.
func (c Category) Dir() string { return string(c) }

// String returns the string representation of the Category.
func (c Category) String() string { return string(c) }

// IsValid returns whether the Category is one of the defined categories.
func (c Category) IsValid() (bool, []error) {
	switch c {
	case CategoryMods, CategoryResourcepacks, CategoryShaderpacks:
		return true, nil
	default:
		return false, []error{&InvalidCategoryError{Value: c}}
	}
}

// Error implements the error interface for InvalidCategoryError.
func (e *InvalidCategoryError) Error() string {
	return fmt.Sprintf("invalid category %q (valid: mods, resourcepacks, shaderpacks)", e.Value)
}

// Unwrap returns ErrInvalidCategory for errors.Is() compatibility.
func (e *InvalidCategoryError) Unwrap() error { return ErrInvalidCategory }
