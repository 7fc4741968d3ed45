// SPDX-License-Identifier: MPL-2.0

package transform

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/stratalaunch/strata/internal/classpath"
)

const classSuffix = ".class"

type (
	// Index maps resource names to the first classpath location holding them,
	// mirroring class loader lookup order.
	Index struct {
		resources map[string]location
	}

	location struct {
		// root is a directory or an archive on the classpath.
		root    string
		archive bool
	}
)

// NewIndex lists every resource of every classpath entry. Directories are
// walked; .jar and .zip files are read as archives; other files contribute
// nothing. Missing entries are an error.
func NewIndex(cp *classpath.Classpath) (*Index, error) {
	idx := &Index{resources: make(map[string]location)}
	for _, e := range cp.Entries {
		info, err := os.Stat(e.Path)
		if err != nil {
			return nil, fmt.Errorf("indexing classpath: %w", err)
		}
		switch {
		case info.IsDir():
			err = idx.addDir(e.Path)
		case isArchive(e.Path):
			err = idx.addArchive(e.Path)
		}
		if err != nil {
			return nil, fmt.Errorf("indexing %s: %w", e.Path, err)
		}
	}
	return idx, nil
}

func isArchive(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".jar" || ext == ".zip"
}

func (idx *Index) add(name string, loc location) {
	if _, ok := idx.resources[name]; !ok {
		idx.resources[name] = loc
	}
}

func (idx *Index) addDir(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		idx.add(filepath.ToSlash(rel), location{root: root})
		return nil
	})
}

func (idx *Index) addArchive(path string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return err
	}
	defer func() { _ = zr.Close() }() // read-only archive

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		idx.add(f.Name, location{root: path, archive: true})
	}
	return nil
}

// Has reports whether a resource with the given slash-separated name exists.
func (idx *Index) Has(name string) bool {
	_, ok := idx.resources[strings.TrimPrefix(name, "/")]
	return ok
}

// HasClass reports whether the class exists. Both binary (a.b.C) and
// internal (a/b/C) names are accepted.
func (idx *Index) HasClass(name string) bool {
	return idx.Has(ClassFileName(name))
}

// ClassFileName converts a class name to its resource name, a/b/C.class.
func ClassFileName(name string) string {
	return strings.ReplaceAll(name, ".", "/") + classSuffix
}

// Locate returns the classpath entry that provides name.
func (idx *Index) Locate(name string) (string, bool) {
	loc, ok := idx.resources[strings.TrimPrefix(name, "/")]
	return loc.root, ok
}

// ReadResource returns the contents of the named resource from the first
// classpath entry that holds it.
func (idx *Index) ReadResource(name string) ([]byte, error) {
	name = strings.TrimPrefix(name, "/")
	loc, ok := idx.resources[name]
	if !ok {
		return nil, fs.ErrNotExist
	}
	if !loc.archive {
		return os.ReadFile(filepath.Join(loc.root, filepath.FromSlash(name)))
	}

	zr, err := zip.OpenReader(loc.root)
	if err != nil {
		return nil, err
	}
	defer func() { _ = zr.Close() }() // read-only archive

	rc, err := zr.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s from %s: %w", name, loc.root, err)
	}
	return data, nil
}
