// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func allIds() []Id {
	return []Id{
		ConfigLoadFailedId,
		PackSourceMissingId,
		PackSourceUnreachableId,
		NonPlainTextSourceId,
		PackParseFailedId,
		InvalidLoaderId,
		EmptyPackId,
		MissingCurseForgeKeyId,
		ReconcileFailedId,
		TransferFailedId,
	}
}

func stubRender(t *testing.T) {
	t.Helper()
	original := render
	t.Cleanup(func() { render = original })
	render = func(in, _ string) (string, error) { return in, nil }
}

func TestGet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id       Id
		contains string
	}{
		{ConfigLoadFailedId, "Configuration could not be loaded"},
		{PackSourceMissingId, "No pack selected"},
		{PackSourceUnreachableId, "could not be read"},
		{NonPlainTextSourceId, "does not serve plain text"},
		{PackParseFailedId, "not valid"},
		{InvalidLoaderId, "Unknown mod loader"},
		{EmptyPackId, "The pack is empty"},
		{MissingCurseForgeKeyId, "MODBREEZE_CURSEFORGE_API_KEY"},
		{ReconcileFailedId, "Minecraft directory"},
		{TransferFailedId, "A download failed"},
	}

	for _, tt := range tests {
		t.Run(tt.contains, func(t *testing.T) {
			t.Parallel()

			issue := Get(tt.id)
			if issue == nil {
				t.Fatalf("Get(%d) returned nil", tt.id)
			}
			if issue.Id() != tt.id {
				t.Errorf("Id() = %d, want %d", issue.Id(), tt.id)
			}
			if !strings.Contains(string(issue.MarkdownMsg()), tt.contains) {
				t.Errorf("MarkdownMsg() should contain %q", tt.contains)
			}
		})
	}

	if Get(Id(9999)) != nil {
		t.Error("Get(9999) should return nil")
	}
}

func TestValues_OrderedAndComplete(t *testing.T) {
	t.Parallel()

	values := Values()
	want := allIds()
	if len(values) != len(want) {
		t.Fatalf("Values() returned %d issues, want %d", len(values), len(want))
	}
	for i, issue := range values {
		if issue.Id() != want[i] {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, issue.Id(), want[i])
		}
		if len(issue.DocLinks()) == 0 {
			t.Errorf("issue %d has no doc links", issue.Id())
		}
	}
}

func TestIssue_LinksAreCloned(t *testing.T) {
	t.Parallel()

	issue := Get(PackParseFailedId)
	links := issue.ExtLinks()
	if len(links) == 0 {
		t.Fatal("expected external links")
	}
	links[0] = "modified"
	if issue.ExtLinks()[0] == "modified" {
		t.Error("ExtLinks() should return a clone")
	}
}

//nolint:paralleltest // mutates the package-level renderer
func TestIssue_Render(t *testing.T) {
	stubRender(t)

	withLinks := &Issue{
		id:       Id(9999),
		mdMsg:    "# Test",
		docLinks: []HttpLink{"https://docs.example.com"},
		extLinks: []HttpLink{"https://external.example.com"},
	}
	rendered, err := withLinks.Render("notty")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{"# Test", "See also", "<https://docs.example.com>", "<https://external.example.com>"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("rendered output missing %q:\n%s", want, rendered)
		}
	}

	noLinks := &Issue{id: Id(9998), mdMsg: "# Plain"}
	rendered, err = noLinks.Render("notty")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(rendered, "See also") {
		t.Error("an issue without links should not render a See also section")
	}
}

func TestAllIssuesRenderWithGlamour(t *testing.T) {
	t.Parallel()

	for _, issue := range Values() {
		rendered, err := issue.Render("notty")
		if err != nil {
			t.Errorf("issue %d failed to render: %v", issue.Id(), err)
		}
		if strings.TrimSpace(rendered) == "" {
			t.Errorf("issue %d rendered to an empty string", issue.Id())
		}
	}
}
