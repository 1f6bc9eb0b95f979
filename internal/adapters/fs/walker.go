// Package fs provides file system adapters for resolving globs, writing
// outputs and digesting output trees.
package fs

import (
	"errors"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
)

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields every regular file below root in lexical order, skipping
// VCS directories. Paths include root. A walk error is yielded once and ends
// the walk. A root that does not exist yields nothing.
func (w *Walker) WalkFiles(root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root && errors.Is(err, os.ErrNotExist) {
					return filepath.SkipAll
				}
				return err
			}
			if d.IsDir() {
				if path != root && skipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if !yield(path, nil) {
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil {
			yield("", err)
		}
	}
}

func skipDir(name string) bool {
	return name == ".git" || name == ".jj"
}
