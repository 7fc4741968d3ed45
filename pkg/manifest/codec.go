// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// FileExtension is the extension of manifest files in the manifest directory.
const FileExtension = ".toml"

// Path returns the well-known location of target id's manifest under dir.
func Path(dir, id string) string {
	return filepath.Join(dir, id+FileExtension)
}

// Encode writes m as TOML. Field order follows the struct declarations and
// slices keep their order, so equal manifests encode identically.
func Encode(w io.Writer, m *Manifest) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encoding manifest %q: %w", m.Name, err)
	}
	return nil
}

// Marshal returns the TOML encoding of m.
func Marshal(m *Manifest) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads a TOML manifest from r and validates it. Unknown keys are
// rejected.
func Decode(r io.Reader) (*Manifest, error) {
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	if err := normalizeHashes(m.Buckets); err != nil {
		return nil, &InvalidManifestError{Name: m.Name, FieldErrors: []error{err}}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer func() { _ = f.Close() }() // read-only file

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Save writes m to path atomically (temp file + rename). The manifest is
// validated first so an inconsistent manifest never reaches disk.
func Save(path string, m *Manifest) error {
	if err := m.Validate(); err != nil {
		return err
	}

	data, err := Marshal(m)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".manifest-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath) // Best-effort cleanup of temp file
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename manifest: %w", err)
	}
	return nil
}
