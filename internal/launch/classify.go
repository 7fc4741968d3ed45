// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"errors"

	"github.com/stratalaunch/strata/internal/acquire"
	"github.com/stratalaunch/strata/internal/classpath"
	"github.com/stratalaunch/strata/internal/config"
	"github.com/stratalaunch/strata/internal/issue"
	"github.com/stratalaunch/strata/internal/transform"
	"github.com/stratalaunch/strata/pkg/manifest"
	"github.com/stratalaunch/strata/pkg/target"
	"github.com/stratalaunch/strata/pkg/types"
)

// failureClass binds a sentinel to its exit code and guidance.
type failureClass struct {
	sentinel error
	code     types.ExitCode
	issue    issue.Id
}

// classes is checked in order; the first sentinel found in the chain wins.
var classes = []failureClass{
	{target.ErrUnknownTarget, types.ExitUnknownTarget, issue.UnknownTargetId},
	{manifest.ErrManifestConflict, types.ExitManifestConflict, issue.ManifestConflictId},
	{acquire.ErrHashMismatch, types.ExitHashMismatch, issue.HashMismatchId},
	{acquire.ErrFetchUnavailable, types.ExitFetchUnavailable, issue.FetchUnavailableId},
	{acquire.ErrMissingSource, types.ExitMissingSource, issue.MissingSourceId},
	{classpath.ErrLayerMissing, types.ExitLayerMissing, issue.LayerMissingId},
	{transform.ErrTransformConflict, types.ExitTransformConflict, issue.TransformConflictId},
	{transform.ErrUnresolvedReference, types.ExitUnresolvedReference, issue.UnresolvedReferenceId},
	{ErrManifestNotFound, types.ExitFailure, issue.ManifestNotFoundId},
	{ErrJavaNotFound, types.ExitFailure, issue.JavaNotFoundId},
	{config.ErrInvalidConfig, types.ExitFailure, issue.ConfigLoadFailedId},
	{acquire.ErrCache, types.ExitFailure, issue.CacheUnwritableId},
}

// Classify maps a dispatch error to its reserved exit code. nil is success;
// anything unrecognized is a generic failure.
func Classify(err error) types.ExitCode {
	if err == nil {
		return types.ExitSuccess
	}
	for _, c := range classes {
		if errors.Is(err, c.sentinel) {
			return c.code
		}
	}
	return types.ExitFailure
}

// IssueFor returns the guidance entry for err, or 0 when there is none.
// A catalogued Id already attached to an ActionableError in the chain takes
// precedence.
func IssueFor(err error) issue.Id {
	if err == nil {
		return 0
	}
	if ae, ok := issue.AsActionable(err); ok && ae.Issue() != nil {
		return ae.IssueId
	}
	for _, c := range classes {
		if errors.Is(err, c.sentinel) {
			return c.issue
		}
	}
	return 0
}
