package assets

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"go.trai.ch/lander/internal/core/domain"
	"go.trai.ch/lander/internal/core/ports"
)

var _ ports.Task = (*Copy)(nil)

// Copy mirrors static assets into the output tree unchanged.
type Copy struct {
	deps       *Deps
	categories []domain.Category
}

// NewCopy creates the copy task. Development copies every static category;
// production leaves images and icons to their optimizing tasks.
func NewCopy(d *Deps) *Copy {
	cats := []domain.Category{domain.CategoryFonts, domain.CategoryImages, domain.CategoryIcons, domain.CategoryOthers}
	if d.Mode == domain.ModeProduction {
		cats = []domain.Category{domain.CategoryFonts, domain.CategoryOthers}
	}
	return &Copy{deps: d, categories: cats}
}

// Name returns "copy", or "copy:prod" in production.
func (c *Copy) Name() string { return c.deps.taskName("copy", "prod") }

// Categories returns the categories this task copies.
func (c *Copy) Categories() []domain.Category { return c.categories }

// Run copies every matching file of each category.
func (c *Copy) Run(_ context.Context, log io.Writer) ([]string, error) {
	var changed outputs
	matched := 0
	for _, cat := range c.categories {
		files, err := c.deps.sources(cat)
		if err != nil {
			return changed, err
		}
		matched += len(files)
		for _, rel := range files {
			data, err := readSource(filepath.Join(c.deps.Config.SourceDir(cat), filepath.FromSlash(rel)))
			if err != nil {
				return changed, err
			}
			if err := changed.write(c.deps.Writer, c.deps.outputPath(cat, rel), data); err != nil {
				return changed, err
			}
		}
	}
	if matched == 0 {
		c.deps.Logger.Warn(fmt.Sprintf("%s: no static assets found", c.Name()))
		return nil, nil
	}
	_, _ = fmt.Fprintf(log, "copied %d file(s), %d changed\n", matched, len(changed))
	return changed, nil
}
