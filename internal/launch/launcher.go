// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"mvdan.cc/sh/v3/shell"

	"github.com/stratalaunch/strata/internal/classpath"
	"github.com/stratalaunch/strata/pkg/platform"
	"github.com/stratalaunch/strata/pkg/types"
)

// ErrJavaNotFound is the sentinel error wrapped by JavaNotFoundError.
var ErrJavaNotFound = errors.New("java runtime not found")

type (
	// Handoff is everything the main layer needs to start.
	Handoff struct {
		Target    string
		Classpath *classpath.Classpath
		MainClass string
		// SystemProperties are -D flags placed before the classpath.
		SystemProperties []string
		// Args are forwarded to the main class verbatim.
		Args []string
	}

	// Launcher transfers control to the main layer and reports its exit code.
	Launcher interface {
		Launch(ctx context.Context, h Handoff) (types.ExitCode, error)
	}

	// JavaLauncher runs the main layer in a child JVM.
	JavaLauncher struct {
		// Binary is the java executable, looked up on PATH when not absolute.
		Binary string
		// JVMArgs is a shell-quoted option string, split into fields.
		JVMArgs string
		// Env expands variables in JVMArgs; nil uses the process environment.
		Env func(string) string
		// Sandbox, when it isolates host binaries, routes the JVM through
		// the host spawn helper.
		Sandbox platform.Sandbox

		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// JavaNotFoundError is returned when the java binary cannot be started.
	JavaNotFoundError struct {
		Binary string
		Err    error
	}
)

func (e *JavaNotFoundError) Error() string {
	return fmt.Sprintf("java runtime %q not found: %v", e.Binary, e.Err)
}

// Unwrap returns ErrJavaNotFound for errors.Is() compatibility.
func (e *JavaNotFoundError) Unwrap() error { return ErrJavaNotFound }

// CommandLine renders the full argv:
//
//	java [jvm args] [-D properties] -cp <classpath> <main class> [args]
func (l *JavaLauncher) CommandLine(h Handoff) ([]string, error) {
	if h.MainClass == "" {
		return nil, fmt.Errorf("target %q has no main class", h.Target)
	}
	if h.Classpath == nil || len(h.Classpath.Entries) == 0 {
		return nil, fmt.Errorf("target %q has an empty classpath", h.Target)
	}

	env := l.Env
	if env == nil {
		env = os.Getenv
	}
	jvmArgs, err := shell.Fields(l.JVMArgs, env)
	if err != nil {
		return nil, fmt.Errorf("parsing java.jvm_args: %w", err)
	}

	binary := l.Binary
	if binary == "" {
		binary = "java"
	}

	argv := make([]string, 0, 1+len(jvmArgs)+len(h.SystemProperties)+3+len(h.Args))
	argv = append(argv, binary)
	argv = append(argv, jvmArgs...)
	argv = append(argv, h.SystemProperties...)
	argv = append(argv, "-cp", h.Classpath.String(), h.MainClass)
	argv = append(argv, h.Args...)
	return argv, nil
}

// Launch runs the JVM to completion. A non-zero JVM exit is returned as the
// exit code with a nil error; only failures to start are errors.
func (l *JavaLauncher) Launch(ctx context.Context, h Handoff) (types.ExitCode, error) {
	argv, err := l.CommandLine(h)
	if err != nil {
		return types.ExitFailure, err
	}

	argv = l.Sandbox.HostCommand(argv)
	bin, err := exec.LookPath(argv[0])
	if err != nil {
		return types.ExitFailure, &JavaNotFoundError{Binary: argv[0], Err: err}
	}

	cmd := exec.CommandContext(ctx, bin, argv[1:]...)
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr

	return exitCodeOf(cmd.Run())
}

// exitCodeOf converts the result of exec.Cmd.Run into an exit code.
func exitCodeOf(err error) (types.ExitCode, error) {
	if err == nil {
		return types.ExitSuccess, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := types.ExitCode(exitErr.ExitCode())
		if validateErr := code.Validate(); validateErr != nil {
			// Killed by a signal (-1) or out of range.
			return types.ExitFailure, fmt.Errorf("main layer terminated abnormally: %w", err)
		}
		return code, nil
	}
	return types.ExitFailure, fmt.Errorf("failed to run main layer: %w", err)
}
