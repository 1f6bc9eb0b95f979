package fs

import (
	"errors"
	"os"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/lander/internal/core/domain"
	"go.trai.ch/lander/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.InputResolver = (*Resolver)(nil)

// Resolver expands doublestar patterns such as "sass/**/*.{scss,sass}".
type Resolver struct{}

// NewResolver creates a new Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve returns the files below root matching any pattern, relative to
// root, sorted and deduplicated.
func (r *Resolver) Resolve(root string, patterns []string) ([]string, error) {
	info, err := os.Stat(root)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSourceReadFailed.Error()), "root", root)
	case !info.IsDir():
		return nil, zerr.With(zerr.Wrap(domain.ErrSourceReadFailed, "source root is not a directory"), "root", root)
	}

	fsys := os.DirFS(root)
	var matches []string
	for _, pattern := range patterns {
		found, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
		if err != nil {
			if errors.Is(err, doublestar.ErrBadPattern) {
				return nil, zerr.With(domain.ErrInvalidGlob, "pattern", pattern)
			}
			return nil, zerr.With(zerr.Wrap(err, domain.ErrSourceReadFailed.Error()), "pattern", pattern)
		}
		matches = append(matches, found...)
	}

	slices.Sort(matches)
	return slices.Compact(matches), nil
}

// Match reports whether the slash-separated relative path matches any pattern.
func Match(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}
