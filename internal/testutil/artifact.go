// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"bytes"
	"crypto/sha256"
	"path/filepath"
	"slices"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/stratalaunch/strata/pkg/artifact"
)

// Jar returns an archive holding files. Entries are written in name order so
// equal inputs give equal bytes, and therefore equal hashes.
func Jar(t testing.TB, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("jar entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(files[name])); err != nil {
			t.Fatalf("jar entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing jar: %v", err)
	}
	return buf.Bytes()
}

// Coordinate pins group:name:version to the sha256 of content.
func Coordinate(group, name, version string, content []byte) artifact.Coordinate {
	sum := sha256.Sum256(content)
	return artifact.Coordinate{
		Group:   group,
		Name:    name,
		Version: version,
		Hash:    artifact.NewContentHash(artifact.SHA256, sum[:]),
	}
}

// Publish stores content in the Maven-layout repository rooted at repoDir
// and returns its pinned coordinate.
func Publish(t testing.TB, repoDir, group, name, version string, content []byte) artifact.Coordinate {
	t.Helper()
	co := Coordinate(group, name, version, content)
	MustWriteFile(t, filepath.Join(repoDir, filepath.FromSlash(co.RepositoryPath())), content)
	return co
}
