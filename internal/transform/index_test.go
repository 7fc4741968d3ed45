// SPDX-License-Identifier: MPL-2.0

package transform

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
)

func TestIndexDirectoriesAndArchives(t *testing.T) {
	t.Parallel()

	dir := writeDir(t, map[string]string{
		"net/example/Server.class": "dir",
		"shared.txt":               "from dir",
	})
	jar := writeJar(t, map[string]string{
		"net/example/World.class": "jar",
		"shared.txt":              "from jar",
		"META-INF/MANIFEST.MF":    "Manifest-Version: 1.0\n",
	})
	plain := filepath.Join(writeDir(t, map[string]string{"notes.txt": "x"}), "notes.txt")

	idx := mustIndex(t, dir, jar, plain)

	for _, cls := range []string{"net.example.Server", "net/example/World"} {
		if !idx.HasClass(cls) {
			t.Errorf("HasClass(%q) = false", cls)
		}
	}
	if idx.HasClass("net.example.Missing") {
		t.Error("HasClass(Missing) = true")
	}

	data, err := idx.ReadResource("shared.txt")
	if err != nil || string(data) != "from dir" {
		t.Errorf("ReadResource(shared.txt) = %q, %v; want first classpath entry to win", data, err)
	}
	data, err = idx.ReadResource("/META-INF/MANIFEST.MF")
	if err != nil || string(data) != "Manifest-Version: 1.0\n" {
		t.Errorf("ReadResource(MANIFEST.MF) = %q, %v", data, err)
	}
	if loc, ok := idx.Locate("net/example/World.class"); !ok || loc != jar {
		t.Errorf("Locate() = %q, %v", loc, ok)
	}

	if _, err := idx.ReadResource("absent"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadResource(absent) error = %v", err)
	}
}

func TestIndexMissingEntry(t *testing.T) {
	t.Parallel()

	if _, err := NewIndex(classpathOf(filepath.Join(t.TempDir(), "gone.jar"))); err == nil {
		t.Fatal("NewIndex() accepted a missing classpath entry")
	}
}
