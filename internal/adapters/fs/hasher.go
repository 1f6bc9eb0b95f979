package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/lander/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher digests output trees with xxhash.
type Hasher struct {
	walker *Walker
}

// NewHasher creates a new Hasher.
func NewHasher(walker *Walker) *Hasher {
	return &Hasher{walker: walker}
}

// ComputeFileHash computes the xxhash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	digest := xxhash.New()
	if _, err := io.Copy(digest, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}
	return digest.Sum64(), nil
}

// HashTree digests the relative path and content hash of every file below
// root. The result depends only on names and bytes, never on timestamps.
func (h *Hasher) HashTree(root string) (string, error) {
	digest := xxhash.New()
	var sum [8]byte

	for path, err := range h.walker.WalkFiles(root) {
		if err != nil {
			return "", zerr.With(zerr.Wrap(err, "failed to walk output tree"), "root", root)
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return "", zerr.Wrap(err, "failed to relativize path")
		}
		fileHash, err := h.ComputeFileHash(path)
		if err != nil {
			return "", err
		}
		_, _ = digest.WriteString(filepath.ToSlash(rel))
		_, _ = digest.Write([]byte{0})
		for i := range sum {
			sum[i] = byte(fileHash >> (8 * i))
		}
		_, _ = digest.Write(sum[:])
	}

	return fmt.Sprintf("%016x", digest.Sum64()), nil
}
