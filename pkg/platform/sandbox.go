// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"os"
	"sync"
)

const (
	// SandboxNone indicates no sandbox environment detected.
	SandboxNone Sandbox = ""
	// SandboxFlatpak indicates a Flatpak sandbox environment.
	SandboxFlatpak Sandbox = "flatpak"
	// SandboxSnap indicates a Snap sandbox environment.
	SandboxSnap Sandbox = "snap"
)

// Sandbox identifies the application sandbox the process runs in, if any.
type Sandbox string

// detected caches detection for the process lifetime.
//
// INVARIANT: detectSandbox MUST NOT panic; sync.OnceValue re-panics on
// every later call.
var detected = sync.OnceValue(func() Sandbox {
	return detectSandbox(os.Getenv, statFile)
})

// DetectSandbox returns the sandbox of the current process. Flatpak is
// recognized by /.flatpak-info, Snap by SNAP_NAME.
func DetectSandbox() Sandbox {
	return detected()
}

// String returns the sandbox name, "none" outside a sandbox.
func (s Sandbox) String() string {
	if s == SandboxNone {
		return "none"
	}
	return string(s)
}

// EscapesToHost reports whether binaries must be started through a host
// spawn helper. Classic snaps see host binaries directly.
func (s Sandbox) EscapesToHost() bool {
	return s == SandboxFlatpak
}

// HostCommand rewrites argv so it runs on the host rather than inside s.
// argv is returned unchanged when no escape is needed.
func (s Sandbox) HostCommand(argv []string) []string {
	if !s.EscapesToHost() {
		return argv
	}
	out := make([]string, 0, len(argv)+2)
	out = append(out, "flatpak-spawn", "--host")
	return append(out, argv...)
}

// detectSandbox takes its lookups as parameters so tests need not touch
// process-wide state. Flatpak takes precedence.
func detectSandbox(getenv func(string) string, stat func(string) error) Sandbox {
	if err := stat("/.flatpak-info"); err == nil {
		return SandboxFlatpak
	}
	if getenv("SNAP_NAME") != "" {
		return SandboxSnap
	}
	return SandboxNone
}

func statFile(path string) error {
	_, err := os.Stat(path)
	return err
}
