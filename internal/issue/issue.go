// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"slices"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

type Id int

const (
	UnknownTargetId Id = iota + 1
	ManifestConflictId
	HashMismatchId
	FetchUnavailableId
	LayerMissingId
	TransformConflictId
	UnresolvedReferenceId
	MissingSourceId
	ManifestNotFoundId
	ConfigLoadFailedId
	JavaNotFoundId
	CacheUnwritableId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

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

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also:\n"
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "](" + string(link) + ")\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "](" + string(link) + ")\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	unknownTargetIssue = &Issue{
		id: UnknownTargetId,
		mdMsg: `
# Unknown launch target!

The target you asked for is not in the target catalogue.

## Things you can try:
- List the available targets:
~~~
$ strata targets
~~~
- If you keep your own catalogue, check the 'targets_file' setting in your config`,
	}

	manifestConflictIssue = &Issue{
		id: ManifestConflictId,
		mdMsg: `
# Conflicting artifact hashes!

The same artifact (group, name and classifier) appears more than once with
different content hashes. A manifest must pin exactly one content per artifact.

## Things you can try:
- Align the versions in your requirements file so every bucket asks for the same artifact
- Exclude the duplicate from one bucket with a platform or host exclusion
- Regenerate the manifests:
~~~
$ strata emit
~~~`,
	}

	hashMismatchIssue = &Issue{
		id: HashMismatchId,
		mdMsg: `
# Artifact content does not match its manifest hash!

The bytes strata found for an artifact hash to a different value than the one
recorded in the manifest. Nothing was launched.

## Things you can try:
- If the mismatch is in the cache, remove the cache entry named in the error and retry
- If the repository served different content, verify the manifest was emitted from the right requirements
- Never edit hashes by hand; regenerate the manifest with 'strata emit'`,
	}

	fetchUnavailableIssue = &Issue{
		id: FetchUnavailableId,
		mdMsg: `
# Artifact repository unavailable!

A repository kept failing (timeouts, connection errors or 5xx responses) and
the retry budget ran out.

## Things you can try:
- Check your network connection and proxy settings
- Raise 'acquire.max_attempts' or 'acquire.timeout' in your config
- Add a mirror to 'repositories' so another source can serve the artifact`,
	}

	layerMissingIssue = &Issue{
		id: LayerMissingId,
		mdMsg: `
# A classpath layer is empty!

The target requires a layer that no manifest bucket and no local output fills.

## Things you can try:
- Build the project so the layer's jars exist, then check the 'layers' globs in your config
- Inspect what each layer resolves to:
~~~
$ strata plan <target>
~~~`,
	}

	transformConflictIssue = &Issue{
		id: TransformConflictId,
		mdMsg: `
# Conflicting transformations!

Two patch configurations modify the same member at the same point in
incompatible ways. No transformation was applied.

## Things you can try:
- Remove or retarget one of the conflicting patches
- Change the injection point of one of them`,
	}

	unresolvedReferenceIssue = &Issue{
		id: UnresolvedReferenceId,
		mdMsg: `
# Transformation refers to something that is not on the classpath!

A transformation resource, or a class or mixin it names, could not be found in
the composed classpath.

## Things you can try:
- Make sure the patch-definitions layer contains the resource
- Check class names in access wideners use slashes (net/example/Foo)
- Check every mixin listed in a patch config exists under its package`,
	}

	missingSourceIssue = &Issue{
		id: MissingSourceId,
		mdMsg: `
# Artifact not found in any repository!

Every configured repository answered, but none of them has this artifact.

## Things you can try:
- Check the group, name and version in your requirements file
- Add the repository that publishes it to 'repositories' in your config
- Pin an explicit 'source' URL for the artifact`,
	}

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# No manifest for this target!

Launching a target needs a manifest emitted for it.

## Things you can try:
- Emit manifests from your requirements file:
~~~
$ strata emit
~~~
- Check the 'manifest_dir' setting in your config`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Your strata configuration file could not be loaded.

## Things you can try:
- Check the CUE syntax of your config file
- Show the effective configuration:
~~~
$ strata config show
~~~
- Start over from the defaults:
~~~
$ strata config init
~~~`,
	}

	javaNotFoundIssue = &Issue{
		id: JavaNotFoundId,
		mdMsg: `
# Java runtime not found!

The main layer is handed to a JVM, but the configured java binary could not be run.

## Things you can try:
- Install a JDK and make sure 'java' is on your PATH
- Point 'java.binary' in your config at the java executable`,
		extLinks: []HttpLink{"https://adoptium.net/"},
	}

	cacheUnwritableIssue = &Issue{
		id: CacheUnwritableId,
		mdMsg: `
# Artifact cache unusable!

An artifact could not be read from or written to the local cache.

## Things you can try:
- Check that 'cache_dir' points at a writable directory
- Check the free space on the disk holding the cache
- Show the effective cache location:
~~~
$ strata config show
~~~`,
	}

	issues = map[Id]*Issue{
		unknownTargetIssue.Id():       unknownTargetIssue,
		manifestConflictIssue.Id():    manifestConflictIssue,
		hashMismatchIssue.Id():        hashMismatchIssue,
		fetchUnavailableIssue.Id():    fetchUnavailableIssue,
		layerMissingIssue.Id():        layerMissingIssue,
		transformConflictIssue.Id():   transformConflictIssue,
		unresolvedReferenceIssue.Id(): unresolvedReferenceIssue,
		missingSourceIssue.Id():       missingSourceIssue,
		manifestNotFoundIssue.Id():    manifestNotFoundIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		javaNotFoundIssue.Id():        javaNotFoundIssue,
		cacheUnwritableIssue.Id():     cacheUnwritableIssue,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	values := slices.Collect(maps.Values(issues))
	slices.SortFunc(values, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}
