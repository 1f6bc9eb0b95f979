package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/tdewolff/minify/v2"
	"go.trai.ch/lander/internal/core/domain"
	"go.trai.ch/lander/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Task = (*Markup)(nil)

// Markup copies HTML pages, minifying them in production.
type Markup struct {
	deps     *Deps
	minifier *minify.M
}

// NewMarkup creates the markup task.
func NewMarkup(d *Deps) *Markup {
	return &Markup{deps: d, minifier: newMinifier()}
}

// Name returns "markup", or "markup:min" in production.
func (m *Markup) Name() string { return m.deps.taskName("markup", "min") }

// Run writes every page. A page the minifier rejects keeps its previous
// output and the remaining pages are still written.
func (m *Markup) Run(_ context.Context, log io.Writer) ([]string, error) {
	cfg := m.deps.Config
	files, err := m.deps.sources(domain.CategoryMarkup)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		m.deps.warnEmpty(m.Name(), cfg.SourceDir(domain.CategoryMarkup), cfg.Paths[domain.CategoryMarkup].Globs)
		return nil, nil
	}

	var changed outputs
	var failures []error
	for _, rel := range files {
		src := filepath.Join(cfg.SourceDir(domain.CategoryMarkup), filepath.FromSlash(rel))
		data, err := readSource(src)
		if err != nil {
			return changed, err
		}
		if m.deps.Mode == domain.ModeProduction {
			minified, err := m.minifier.Bytes(mediaHTML, data)
			if err != nil {
				_, _ = fmt.Fprintf(log, "%s: %v\n", rel, err)
				failures = append(failures, zerr.With(zerr.Wrap(err, "failed to minify markup"), "path", rel))
				continue
			}
			data = minified
		}
		if err := changed.write(m.deps.Writer, m.deps.outputPath(domain.CategoryMarkup, rel), data); err != nil {
			return changed, err
		}
	}
	if len(failures) > 0 {
		return changed, transformFailed(errors.Join(failures...))
	}
	return changed, nil
}
