// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/stratalaunch/strata/internal/issue"
	"github.com/stratalaunch/strata/internal/launch"
)

// ServiceError is an error that carries optional rendering information for
// the CLI layer: a pre-styled message and an issue catalogue entry.
// Always create via newServiceError to enforce the Err-must-be-non-nil invariant.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// renderServiceError prints the styled message, then the issue help section
// rendered in the given glamour style.
func renderServiceError(stderr io.Writer, svcErr *ServiceError, style string, logger *log.Logger) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if svcErr.IssueID == 0 {
		return
	}

	if catalogEntry := issue.Get(svcErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render(style)
		if renderErr != nil {
			logger.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", renderErr)
			return
		}
		fmt.Fprint(stderr, rendered)
	}
}

// classifyForDisplay wraps err for rendering and exit-code propagation.
func classifyForDisplay(err error, verbose bool) (*ServiceError, *ExitError) {
	styled := ErrorStyle.Render("Error: ") + formatErrorForDisplay(err, verbose) + "\n"
	return newServiceError(err, launch.IssueFor(err), styled), &ExitError{Code: launch.Classify(err), Err: err}
}

// formatErrorForDisplay formats an error for user display.
// ActionableErrors include their suggestions; verbose adds the error chain.
func formatErrorForDisplay(err error, verbose bool) string {
	if ae, ok := issue.AsActionable(err); ok {
		return ae.Format(verbose)
	}
	return err.Error()
}
