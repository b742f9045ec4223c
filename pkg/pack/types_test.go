// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"errors"
	"testing"
)

func TestRegistryID(t *testing.T) {
	t.Parallel()

	cf := CurseForgeID(238222)
	mr := ModrinthID("AANobbMI")

	if n, ok := cf.CurseForge(); !ok || n != 238222 {
		t.Errorf("CurseForge() = %d, %v", n, ok)
	}
	if _, ok := cf.Modrinth(); ok {
		t.Error("curseforge id should not report a modrinth value")
	}
	if s, ok := mr.Modrinth(); !ok || s != "AANobbMI" {
		t.Errorf("Modrinth() = %q, %v", s, ok)
	}
	if cf.String() != "curseforge:238222" || mr.String() != "modrinth:AANobbMI" {
		t.Errorf("String() = %q, %q", cf, mr)
	}
	if !(RegistryID{}).IsZero() || cf.IsZero() {
		t.Error("IsZero mismatch")
	}
	if cf == CurseForgeID(238223) || cf != CurseForgeID(238222) {
		t.Error("equality must follow namespace and value")
	}
	if valid, _ := (RegistryID{}).IsValid(); valid {
		t.Error("zero id must be invalid")
	}
}

func TestParseRegistryID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    RegistryID
		wantErr bool
	}{
		{in: "curseforge:42", want: CurseForgeID(42)},
		{in: "modrinth:sodium", want: ModrinthID("sodium")},
		{in: "curseforge:0", wantErr: true},
		{in: "curseforge:abc", wantErr: true},
		{in: "modrinth:", wantErr: true},
		{in: "github:foo", wantErr: true},
		{in: "sodium", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseRegistryID(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRegistryID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseRegistryID(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseSide(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Side{
		"client": SideClient, "C": SideClient,
		"Server": SideServer, "s": SideServer,
		"all": SideAll, "a": SideAll, "common": SideAll,
	} {
		got, err := ParseSide(in)
		if err != nil || got != want {
			t.Errorf("ParseSide(%q) = %q, %v; want %q", in, got, err, want)
		}
	}

	_, err := ParseSide("resourcepack")
	if !errors.Is(err, ErrInvalidSide) {
		t.Errorf("resourcepack is not user-selectable, got %v", err)
	}
}

func TestSideIncludes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ref, filter Side
		want        bool
	}{
		{SideServer, SideClient, false},
		{SideServer, SideAll, true},
		{SideServer, SideServer, true},
		{SideClient, SideServer, false},
		{SideAll, SideClient, true},
		{SideAll, SideServer, true},
		{SideClient, SideClient, true},
	}
	for _, tt := range tests {
		if got := tt.ref.Includes(tt.filter); got != tt.want {
			t.Errorf("%s.Includes(%s) = %v, want %v", tt.ref, tt.filter, got, tt.want)
		}
	}
}

func TestParseLoader(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Loader{"Forge": LoaderForge, "FABRIC": LoaderFabric, " quilt ": LoaderQuilt} {
		got, err := ParseLoader(in)
		if err != nil || got != want {
			t.Errorf("ParseLoader(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseLoader("neoforge"); !errors.Is(err, ErrInvalidLoader) {
		t.Errorf("ParseLoader(neoforge) error = %v, want ErrInvalidLoader", err)
	}
}

func TestSourceIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   Source
		valid bool
	}{
		{name: "path", src: Source{Path: "pack.toml"}, valid: true},
		{name: "url", src: Source{URL: "https://example.com/pack.toml"}, valid: true},
		{name: "empty", src: Source{}, valid: false},
		{name: "both", src: Source{Path: "a", URL: "https://example.com"}, valid: false},
		{name: "ftp url", src: Source{URL: "ftp://example.com/pack.toml"}, valid: false},
		{name: "relative url", src: Source{URL: "pack.toml"}, valid: false},
		{name: "blank path", src: Source{Path: "   "}, valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			valid, errs := tt.src.IsValid()
			if valid != tt.valid {
				t.Errorf("IsValid() = %v (%v), want %v", valid, errs, tt.valid)
			}
			if !valid && !errors.Is(errs[0], ErrInvalidSource) {
				t.Errorf("error %v should wrap ErrInvalidSource", errs[0])
			}
		})
	}
}

func TestPackValidate(t *testing.T) {
	t.Parallel()

	p := &Pack{Loader: LoaderForge, MCVersion: "1.20.1"}
	if err := p.Validate(); !errors.Is(err, ErrEmptyPack) {
		t.Errorf("Validate() on empty pack = %v, want ErrEmptyPack", err)
	}

	p.Mods = []ModReference{{Name: "a", ID: CurseForgeID(1), Side: SideAll}}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	p.Loader = "rift"
	if err := p.Validate(); !errors.Is(err, ErrInvalidLoader) {
		t.Errorf("Validate() with bad loader = %v, want ErrInvalidLoader", err)
	}
}
