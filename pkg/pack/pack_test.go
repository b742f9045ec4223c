// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"errors"
	"strings"
	"testing"
)

const examplePack = `
name = "Example"
version = "1.0.0"
loader = "Fabric"
mc_version = "1.20.1"

[mods.client]
sodium = "AANobbMI"
iris = { id = "YL57xq9U", ignore_version = true }

[mods.server]
spark = 361579

[mods.common]
fabric-api = "P7dR8mSH"
sodium-again = "AANobbMI"

[resourcepacks]
faithful = 236821
stay-true = { id = "bdsuqGZn", ignore_loader = false }

[shaderpacks]
complementary = "HVnmMxH1"
bsl = 228020
`

func TestParse_ExamplePack(t *testing.T) {
	t.Parallel()

	p, diags, err := Parse([]byte(examplePack))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if p.Loader != LoaderFabric {
		t.Errorf("Loader = %q, want %q", p.Loader, LoaderFabric)
	}
	if p.MCVersion != "1.20.1" {
		t.Errorf("MCVersion = %q, want 1.20.1", p.MCVersion)
	}

	// sodium-again duplicates sodium and is dropped.
	if len(p.Mods) != 4 {
		t.Fatalf("len(Mods) = %d, want 4: %+v", len(p.Mods), p.Mods)
	}
	byName := make(map[string]ModReference)
	for _, m := range p.Mods {
		byName[m.Name] = m
	}
	if _, ok := byName["sodium-again"]; ok {
		t.Error("duplicate id sodium-again should have been dropped")
	}
	if got := byName["spark"]; got.ID != CurseForgeID(361579) || got.Side != SideServer {
		t.Errorf("spark = %+v, want curseforge:361579 on server side", got)
	}
	if got := byName["iris"]; !got.IgnoreVersion || got.IgnoreLoader {
		t.Errorf("iris flags = loader:%v version:%v, want loader:false version:true", got.IgnoreLoader, got.IgnoreVersion)
	}
	if got := byName["fabric-api"]; got.Side != SideAll {
		t.Errorf("fabric-api side = %q, want all", got.Side)
	}

	if len(p.Resourcepacks) != 2 {
		t.Fatalf("len(Resourcepacks) = %d, want 2", len(p.Resourcepacks))
	}
	for _, rp := range p.Resourcepacks {
		switch rp.Name {
		case "faithful":
			if !rp.IgnoreLoader {
				t.Error("bare resourcepack id should ignore the loader")
			}
		case "stay-true":
			if rp.IgnoreLoader {
				t.Error("explicit ignore_loader = false should be honored")
			}
		}
	}

	// bsl is a CurseForge shaderpack and is skipped.
	if len(p.Shaderpacks) != 1 || p.Shaderpacks[0].Name != "complementary" {
		t.Errorf("Shaderpacks = %+v, want only complementary", p.Shaderpacks)
	}

	var sawDuplicate, sawShader bool
	for _, d := range diags {
		if d.Name == "sodium-again" {
			sawDuplicate = true
		}
		if d.Name == "bsl" {
			sawShader = true
		}
	}
	if !sawDuplicate || !sawShader {
		t.Errorf("diagnostics = %v, want entries for sodium-again and bsl", diags)
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "invalid loader",
			input:   "name = \"x\"\nversion = \"1\"\nloader = \"rift\"\nmc_version = \"1.20.1\"\n[mods.common]\na = 1\n",
			wantErr: ErrInvalidLoader,
		},
		{
			name:    "missing loader",
			input:   "name = \"x\"\nversion = \"1\"\nmc_version = \"1.20.1\"\n[mods.common]\na = 1\n",
			wantErr: ErrMissingField,
		},
		{
			name:    "missing mc_version",
			input:   "name = \"x\"\nversion = \"1\"\nloader = \"forge\"\n[mods.common]\na = 1\n",
			wantErr: ErrMissingField,
		},
		{
			name:    "empty pack",
			input:   "name = \"x\"\nversion = \"1\"\nloader = \"forge\"\nmc_version = \"1.20.1\"\n",
			wantErr: ErrEmptyPack,
		},
		{
			name:    "negative curseforge id",
			input:   "name = \"x\"\nversion = \"1\"\nloader = \"forge\"\nmc_version = \"1.20.1\"\n[mods.common]\na = -4\n",
			wantErr: ErrInvalidEntry,
		},
		{
			name:    "table without id",
			input:   "name = \"x\"\nversion = \"1\"\nloader = \"forge\"\nmc_version = \"1.20.1\"\n[mods.common]\na = { ignore_loader = true }\n",
			wantErr: ErrInvalidEntry,
		},
		{
			name:    "non boolean flag",
			input:   "name = \"x\"\nversion = \"1\"\nloader = \"forge\"\nmc_version = \"1.20.1\"\n[mods.common]\na = { id = 5, ignore_loader = \"yes\" }\n",
			wantErr: ErrInvalidEntry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := Parse([]byte(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParse_InvalidLoaderNamesValue(t *testing.T) {
	t.Parallel()

	_, _, err := Parse([]byte("name = \"x\"\nversion = \"1\"\nloader = \"Rift\"\nmc_version = \"1.12\"\n[mods.common]\na = 1\n"))
	var loaderErr *InvalidLoaderError
	if !errors.As(err, &loaderErr) {
		t.Fatalf("expected InvalidLoaderError, got %v", err)
	}
	if loaderErr.Value != "Rift" {
		t.Errorf("Value = %q, want the original spelling Rift", loaderErr.Value)
	}
	if !strings.Contains(err.Error(), "Rift") {
		t.Errorf("error message %q should name the loader", err.Error())
	}
}

func TestParse_SyntaxError(t *testing.T) {
	t.Parallel()

	_, _, err := Parse([]byte("name = \n"))
	if err == nil || !strings.Contains(err.Error(), "line") {
		t.Errorf("expected positioned syntax error, got %v", err)
	}
}
