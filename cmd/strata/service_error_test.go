// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/stratalaunch/strata/internal/issue"
	"github.com/stratalaunch/strata/pkg/target"
	"github.com/stratalaunch/strata/pkg/types"
)

var discardLogger = log.New(io.Discard)

func TestNewServiceError_PanicsOnNilErr(t *testing.T) {
	t.Parallel()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on nil Err, got none")
		}
		if msg, ok := r.(string); !ok || msg != "ServiceError: Err must not be nil" {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()

	newServiceError(nil, 0, "")
}

func TestServiceError_ErrorAndUnwrap(t *testing.T) {
	t.Parallel()

	underlying := errors.New("underlying error")
	svcErr := newServiceError(underlying, issue.HashMismatchId, "")

	if svcErr.Error() != "underlying error" {
		t.Errorf("Error() = %q, want %q", svcErr.Error(), "underlying error")
	}
	if !errors.Is(svcErr, underlying) {
		t.Error("errors.Is should find underlying error via Unwrap")
	}
}

func TestRenderServiceError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		svcErr  *ServiceError
		want    string
		catalog bool
	}{
		{name: "nil", svcErr: nil, want: ""},
		{name: "styled message only", svcErr: newServiceError(errors.New("x"), 0, "styled output\n"), want: "styled output\n"},
		{name: "with issue", svcErr: newServiceError(errors.New("x"), issue.LayerMissingId, "styled: "), want: "styled: ", catalog: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			renderServiceError(&buf, tt.svcErr, "notty", discardLogger)

			got := buf.String()
			if !tt.catalog {
				if got != tt.want {
					t.Errorf("output = %q, want %q", got, tt.want)
				}
				return
			}
			if !strings.HasPrefix(got, tt.want) || len(got) <= len(tt.want) {
				t.Errorf("output = %q, want styled prefix followed by catalog entry", got)
			}
		})
	}
}

func TestClassifyForDisplay(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("dispatch: %w", &target.UnknownTargetError{ID: "quilt", Known: []string{"vanilla"}})
	svcErr, exitErr := classifyForDisplay(err, false)

	if exitErr.Code != types.ExitUnknownTarget {
		t.Errorf("exit code = %d, want %d", exitErr.Code, types.ExitUnknownTarget)
	}
	if !errors.Is(exitErr, target.ErrUnknownTarget) {
		t.Error("ExitError does not unwrap to the cause")
	}
	if svcErr.IssueID != issue.UnknownTargetId {
		t.Errorf("IssueID = %d, want %d", svcErr.IssueID, issue.UnknownTargetId)
	}
	if !strings.Contains(svcErr.StyledMessage, "quilt") {
		t.Errorf("StyledMessage = %q, want the target id", svcErr.StyledMessage)
	}
}

func TestFormatErrorForDisplay(t *testing.T) {
	t.Parallel()

	plain := errors.New("plain failure")
	if got := formatErrorForDisplay(plain, false); got != "plain failure" {
		t.Errorf("plain error = %q", got)
	}

	actionable := issue.NewErrorContext().
		WithOperation("emit manifests").
		WithSuggestion("Pass --requirements <file>").
		Wrap(plain).
		BuildError()
	got := formatErrorForDisplay(actionable, false)
	if !strings.Contains(got, "emit manifests") || !strings.Contains(got, "--requirements") {
		t.Errorf("actionable error = %q, want operation and suggestion", got)
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	bare := &ExitError{Code: 3}
	if bare.Error() != "exit status 3" {
		t.Errorf("Error() = %q", bare.Error())
	}
	if bare.Unwrap() != nil {
		t.Error("Unwrap() of a bare exit should be nil")
	}

	cause := errors.New("boom")
	wrapped := &ExitError{Code: types.ExitFailure, Err: cause}
	if wrapped.Error() != "boom" || !errors.Is(wrapped, cause) {
		t.Errorf("wrapped ExitError = %v", wrapped)
	}
}
