// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

// DocsBaseURL is where the long-form documentation of every issue lives.
const DocsBaseURL = "https://github.com/modbreeze/modbreeze/blob/main/docs/issues.md"

const (
	ConfigLoadFailedId Id = iota + 1
	PackSourceMissingId
	PackSourceUnreachableId
	NonPlainTextSourceId
	PackParseFailedId
	InvalidLoaderId
	EmptyPackId
	MissingCurseForgeKeyId
	ReconcileFailedId
	TransferFailedId
)

type (
	// Id identifies an entry of the issue catalog.
	Id int

	// MarkdownMsg is the Markdown body of an issue.
	MarkdownMsg string

	// HttpLink is an absolute URL shown under "See also".
	HttpLink string

	// Issue is a catalog entry describing a known failure and how to fix it.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink // must never be empty
		extLinks []HttpLink
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as terminal Markdown with the given glamour style
// ("auto", "dark", "light", "notty" or a path to a JSON style).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
		for _, link := range i.extLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id:       ConfigLoadFailedId,
		docLinks: []HttpLink{DocsBaseURL + "#configuration"},
		mdMsg: `
# Configuration could not be loaded!

The configuration file exists but is not valid.

## Things you can try:
- Print the file that is being read:
~~~
$ modbreeze config path
~~~
- Regenerate a default configuration:
~~~
$ modbreeze config init --force
~~~
- Check the value types, for example:
~~~cue
side: "client"
concurrency: 75
quarantine: {mods: true}
~~~`,
	}

	packSourceMissingIssue = &Issue{
		id:       PackSourceMissingId,
		docLinks: []HttpLink{DocsBaseURL + "#pack-source"},
		mdMsg: `
# No pack selected!

modbreeze does not know which pack definition to use.

## Things you can try:
- Pass a local file or a URL for this run:
~~~
$ modbreeze upgrade --file ./pack.toml
$ modbreeze upgrade --url https://example.com/pack.toml
~~~
- Or remember it for future runs:
~~~
$ modbreeze source --url https://example.com/pack.toml
~~~`,
	}

	packSourceUnreachableIssue = &Issue{
		id:       PackSourceUnreachableId,
		docLinks: []HttpLink{DocsBaseURL + "#pack-source"},
		mdMsg: `
# The pack definition could not be read!

## Things you can try:
- For a file, check that the path exists and is readable
- For a URL, open it in a browser and check that it returns the TOML text
- Retry later if the host is temporarily unavailable`,
	}

	nonPlainTextSourceIssue = &Issue{
		id:       NonPlainTextSourceId,
		docLinks: []HttpLink{DocsBaseURL + "#pack-source"},
		mdMsg: `
# The pack URL does not serve plain text!

The server answered, but not with ` + "`text/plain`" + `. This usually means the
URL points at a web page that *shows* the pack rather than the raw file.

## Things you can try:
- On GitHub, use the **Raw** button and copy that URL
- On a paste site, use the raw or download link`,
	}

	packParseFailedIssue = &Issue{
		id:       PackParseFailedId,
		docLinks: []HttpLink{DocsBaseURL + "#pack-format"},
		extLinks: []HttpLink{"https://toml.io/en/v1.0.0"},
		mdMsg: `
# The pack definition is not valid!

## Expected layout:
~~~toml
name = "My Pack"
version = "1.0.0"
loader = "fabric"
mc_version = "1.20.1"

[mods.client]
sodium = "AANobbMI"            # string id: Modrinth

[mods.common]
jei = 238222                   # integer id: CurseForge
spark = { id = "l6YH9Als", ignore_version = true }
~~~`,
	}

	invalidLoaderIssue = &Issue{
		id:       InvalidLoaderId,
		docLinks: []HttpLink{DocsBaseURL + "#loaders"},
		mdMsg: `
# Unknown mod loader!

Supported loaders are ` + "`forge`, `fabric` and `quilt`" + ` (any capitalization).

## Things you can try:
- Fix the ` + "`loader`" + ` field of the pack definition`,
	}

	emptyPackIssue = &Issue{
		id:       EmptyPackId,
		docLinks: []HttpLink{DocsBaseURL + "#pack-format"},
		mdMsg: `
# The pack is empty!

No mods, resourcepacks or shaderpacks were found. Entries must live under
` + "`[mods.client]`, `[mods.server]`, `[mods.common]`, `[resourcepacks]` or `[shaderpacks]`" + `.`,
	}

	missingCurseForgeKeyIssue = &Issue{
		id:       MissingCurseForgeKeyId,
		docLinks: []HttpLink{DocsBaseURL + "#curseforge"},
		extLinks: []HttpLink{"https://console.curseforge.com/"},
		mdMsg: `
# CurseForge API key missing!

CurseForge entries (integer ids) need an API key. They were skipped.

## Things you can try:
~~~
$ export MODBREEZE_CURSEFORGE_API_KEY=...
~~~
or set ` + "`registry: {curseforge_api_key: \"...\"}`" + ` in the configuration.`,
	}

	reconcileFailedIssue = &Issue{
		id:       ReconcileFailedId,
		docLinks: []HttpLink{DocsBaseURL + "#minecraft-directory"},
		mdMsg: `
# The Minecraft directory could not be prepared!

## Things you can try:
- Check that ` + "`--dir`" + ` points at your .minecraft (or server) directory
- Check that you can write to its mods, resourcepacks and shaderpacks folders`,
	}

	transferFailedIssue = &Issue{
		id:       TransferFailedId,
		docLinks: []HttpLink{DocsBaseURL + "#downloads"},
		mdMsg: `
# A download failed!

Other downloads were allowed to finish. Files that completed are kept, so
running the same command again only fetches what is still missing.

## Things you can try:
- Run the command again
- Lower the number of parallel downloads:
~~~
$ modbreeze upgrade --concurrency 8
~~~`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():      configLoadFailedIssue,
		packSourceMissingIssue.Id():     packSourceMissingIssue,
		packSourceUnreachableIssue.Id(): packSourceUnreachableIssue,
		nonPlainTextSourceIssue.Id():    nonPlainTextSourceIssue,
		packParseFailedIssue.Id():       packParseFailedIssue,
		invalidLoaderIssue.Id():         invalidLoaderIssue,
		emptyPackIssue.Id():             emptyPackIssue,
		missingCurseForgeKeyIssue.Id():  missingCurseForgeKeyIssue,
		reconcileFailedIssue.Id():       reconcileFailedIssue,
		transferFailedIssue.Id():        transferFailedIssue,
	}
)

// Values returns every catalog entry ordered by id.
func Values() []*Issue {
	ids := slices.Sorted(maps.Keys(issues))
	out := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
