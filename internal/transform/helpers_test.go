// SPDX-License-Identifier: MPL-2.0

package transform

import (
	"path/filepath"
	"testing"

	"github.com/stratalaunch/strata/internal/classpath"
	"github.com/stratalaunch/strata/internal/testutil"
	"github.com/stratalaunch/strata/pkg/target"
)

// writeDir creates a classpath directory holding the given files.
func writeDir(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	testutil.WriteTree(t, root, files)
	return root
}

// writeJar creates a jar archive holding the given files.
func writeJar(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.jar")
	testutil.MustWriteFile(t, path, testutil.Jar(t, files))
	return path
}

func classpathOf(paths ...string) *classpath.Classpath {
	cp := &classpath.Classpath{Target: "test"}
	for _, p := range paths {
		cp.Entries = append(cp.Entries, classpath.Entry{Layer: target.LayerMain, Path: p, Origin: classpath.OriginLocal})
	}
	return cp
}

func mustIndex(t *testing.T, paths ...string) *Index {
	t.Helper()
	idx, err := NewIndex(classpathOf(paths...))
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}
	return idx
}
