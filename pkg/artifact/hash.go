// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/zeebo/blake3"
)

const (
	// SHA256 is the default content hash algorithm.
	SHA256 HashAlgorithm = "sha256"
	// BLAKE3 is accepted for repositories that publish BLAKE3 digests.
	BLAKE3 HashAlgorithm = "blake3"

	digestHexLen = 64
)

var (
	// ErrInvalidContentHash is the sentinel error wrapped by InvalidContentHashError.
	ErrInvalidContentHash = errors.New("invalid content hash")
	// ErrUnsupportedHashAlgorithm is returned for algorithm prefixes other than sha256 and blake3.
	ErrUnsupportedHashAlgorithm = errors.New("unsupported hash algorithm")
)

type (
	// HashAlgorithm names a content digest algorithm.
	HashAlgorithm string

	// ContentHash is a digest in canonical "<algorithm>:<lowercase hex>" form.
	ContentHash string

	// InvalidContentHashError is returned when a ContentHash is malformed.
	// It wraps ErrInvalidContentHash for errors.Is() compatibility.
	InvalidContentHashError struct {
		Value  ContentHash
		Reason string
	}
)

// New returns a fresh hash.Hash for the algorithm.
func (a HashAlgorithm) New() (hash.Hash, error) {
	switch a {
	case SHA256:
		return sha256.New(), nil
	case BLAKE3:
		return blake3.New(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedHashAlgorithm, a)
	}
}

// ParseContentHash normalizes s into a ContentHash. A bare 64-character hex
// string is read as sha256.
func ParseContentHash(s string) (ContentHash, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ":") {
		s = string(SHA256) + ":" + s
	}
	algo, digest, _ := strings.Cut(s, ":")
	h := ContentHash(strings.ToLower(algo) + ":" + strings.ToLower(digest))
	if err := h.Validate(); err != nil {
		return "", err
	}
	return h, nil
}

// NewContentHash builds a ContentHash from an algorithm and a raw digest.
func NewContentHash(algo HashAlgorithm, sum []byte) ContentHash {
	return ContentHash(string(algo) + ":" + hex.EncodeToString(sum))
}

// Algorithm returns the algorithm prefix.
func (h ContentHash) Algorithm() HashAlgorithm {
	algo, _, _ := strings.Cut(string(h), ":")
	return HashAlgorithm(algo)
}

// Hex returns the hex digest without the algorithm prefix.
func (h ContentHash) Hex() string {
	_, digest, _ := strings.Cut(string(h), ":")
	return digest
}

// String returns the canonical form.
func (h ContentHash) String() string { return string(h) }

// Equal compares two hashes case-insensitively.
func (h ContentHash) Equal(other ContentHash) bool {
	return strings.EqualFold(string(h), string(other))
}

// Validate checks that h is in canonical "<algorithm>:<lowercase hex>" form.
// Use ParseContentHash to normalize user input first.
func (h ContentHash) Validate() error {
	algo, digest, found := strings.Cut(string(h), ":")
	if !found {
		return &InvalidContentHashError{Value: h, Reason: "missing algorithm prefix"}
	}
	switch HashAlgorithm(strings.ToLower(algo)) {
	case SHA256, BLAKE3:
	default:
		return &InvalidContentHashError{Value: h, Reason: fmt.Sprintf("unsupported algorithm %q", algo)}
	}
	if len(digest) != digestHexLen {
		return &InvalidContentHashError{Value: h, Reason: fmt.Sprintf("digest has %d hex characters, want %d", len(digest), digestHexLen)}
	}
	if _, err := hex.DecodeString(digest); err != nil {
		return &InvalidContentHashError{Value: h, Reason: "digest is not hex"}
	}
	if string(h) != strings.ToLower(string(h)) {
		return &InvalidContentHashError{Value: h, Reason: "not in lowercase canonical form"}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidContentHashError) Error() string {
	return fmt.Sprintf("invalid content hash %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidContentHash for errors.Is() compatibility.
func (e *InvalidContentHashError) Unwrap() error { return ErrInvalidContentHash }

// HashReader streams r through the algorithm and returns the resulting hash.
func HashReader(r io.Reader, algo HashAlgorithm) (ContentHash, error) {
	h, err := algo.New()
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return NewContentHash(algo, h.Sum(nil)), nil
}

// HashFile computes the content hash of the file at path, streaming it so
// memory use does not grow with the archive size.
func HashFile(path string, algo HashAlgorithm) (ContentHash, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		// Read-only file handle; close errors are not actionable.
		_ = f.Close()
	}()

	sum, err := HashReader(f, algo)
	if err != nil {
		return "", fmt.Errorf("hashing file %s: %w", path, err)
	}
	return sum, nil
}
