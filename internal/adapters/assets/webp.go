package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"go.trai.ch/lander/internal/core/domain"
	"go.trai.ch/lander/internal/core/ports"
)

var _ ports.Task = (*Webp)(nil)

// Webp encodes a .webp sibling for every optimized raster image in the
// images output directory.
type Webp struct {
	deps *Deps
}

// NewWebp creates the webp task.
func NewWebp(d *Deps) *Webp {
	return &Webp{deps: d}
}

// Name returns "webp".
func (*Webp) Name() string { return "webp" }

// Run converts each image. Encoder failures are collected and reported
// after every image was attempted.
func (w *Webp) Run(ctx context.Context, log io.Writer) ([]string, error) {
	cfg := w.deps.Config
	root := cfg.DestDir(domain.CategoryImages)

	files, err := w.deps.Resolver.Resolve(root, cfg.Webp.Globs)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		w.deps.warnEmpty(w.Name(), root, cfg.Webp.Globs)
		return nil, nil
	}

	var changed []string
	var failures []error
	quality := strconv.Itoa(cfg.Webp.Quality)
	for _, rel := range files {
		in := filepath.Join(root, filepath.FromSlash(rel))
		out := strings.TrimSuffix(in, filepath.Ext(in)) + ".webp"
		err := w.deps.run(ctx, "webp", cfg.Webp.Encoder, log, "-quiet", "-q", quality, in, "-o", out)
		switch {
		case err == nil:
			changed = append(changed, out)
		case errors.Is(err, domain.ErrTransformFailed):
			_, _ = fmt.Fprintf(log, "%s: %v\n", rel, err)
			failures = append(failures, err)
		default:
			return changed, err
		}
	}
	_, _ = fmt.Fprintf(log, "encoded %d of %d image(s) at quality %s\n", len(changed), len(files), quality)
	if len(failures) > 0 {
		return changed, errors.Join(failures...)
	}
	return changed, nil
}
