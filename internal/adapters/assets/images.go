package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tdewolff/minify/v2"
	"go.trai.ch/lander/internal/core/domain"
	"go.trai.ch/lander/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Task = (*Images)(nil)

// Images optimizes the raster and vector images of one category. PNG and
// JPEG files go through external optimizers, SVG is minified in process and
// anything else is copied.
type Images struct {
	deps     *Deps
	category domain.Category
	minifier *minify.M
}

// NewImages creates the images task.
func NewImages(d *Deps) *Images {
	return &Images{deps: d, category: domain.CategoryImages, minifier: newMinifier()}
}

// NewIcons creates the icons task, which treats icons like images.
func NewIcons(d *Deps) *Images {
	return &Images{deps: d, category: domain.CategoryIcons, minifier: newMinifier()}
}

// Name returns the category name.
func (i *Images) Name() string { return string(i.category) }

// Run optimizes each file. A file whose optimizer fails is skipped and the
// rest are still processed.
func (i *Images) Run(ctx context.Context, log io.Writer) ([]string, error) {
	cfg := i.deps.Config
	srcDir := cfg.SourceDir(i.category)

	files, err := i.deps.sources(i.category)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		i.deps.warnEmpty(i.Name(), srcDir, cfg.Paths[i.category].Globs)
		return nil, nil
	}

	var changed outputs
	var failures []error
	for _, rel := range files {
		in := filepath.Join(srcDir, filepath.FromSlash(rel))
		out := i.deps.outputPath(i.category, rel)
		err := i.optimize(ctx, in, out, log, &changed)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrTransformFailed):
			_, _ = fmt.Fprintf(log, "%s: %v\n", rel, err)
			failures = append(failures, err)
		default:
			return changed, err
		}
	}
	_, _ = fmt.Fprintf(log, "optimized %d of %d image(s)\n", len(files)-len(failures), len(files))
	if len(failures) > 0 {
		return changed, errors.Join(failures...)
	}
	return changed, nil
}

func (i *Images) optimize(ctx context.Context, in, out string, log io.Writer, changed *outputs) error {
	cfg := i.deps.Config
	switch strings.ToLower(filepath.Ext(in)) {
	case ".svg":
		data, err := readSource(in)
		if err != nil {
			return err
		}
		minified, err := i.minifier.Bytes(mediaSVG, data)
		if err != nil {
			return transformFailed(zerr.Wrap(err, "failed to minify svg"))
		}
		return changed.write(i.deps.Writer, out, minified)

	case ".png":
		data, err := readSource(in)
		if err != nil {
			return err
		}
		return i.external(changed, out, func(tmp string) error {
			if err := os.WriteFile(tmp, data, domain.FilePerm); err != nil {
				return zerr.Wrap(err, domain.ErrOutputWriteFailed.Error())
			}
			return i.deps.run(ctx, "images", cfg.Images.PNG, log,
				"-quiet", "-o"+strconv.Itoa(cfg.Images.PNGLevel), tmp)
		})

	case ".jpg", ".jpeg":
		return i.external(changed, out, func(tmp string) error {
			return i.deps.run(ctx, "images", cfg.Images.JPEG, log,
				"-progressive", "-optimize", "-copy", "none", "-outfile", tmp, in)
		})

	default:
		data, err := readSource(in)
		if err != nil {
			return err
		}
		return changed.write(i.deps.Writer, out, data)
	}
}

// external lets optimize produce the result in a scratch file and writes it
// to out only when optimize succeeds.
func (i *Images) external(changed *outputs, out string, optimize func(tmp string) error) error {
	dir, err := os.MkdirTemp("", "lander-images-")
	if err != nil {
		return zerr.Wrap(err, domain.ErrOutputWriteFailed.Error())
	}
	defer func() { _ = os.RemoveAll(dir) }()

	tmp := filepath.Join(dir, filepath.Base(out))
	if err := optimize(tmp); err != nil {
		return err
	}
	data, err := os.ReadFile(tmp) //nolint:gosec // temporary optimizer output
	if err != nil {
		return transformFailed(zerr.With(zerr.Wrap(err, "optimizer produced no output"), "path", out))
	}
	return changed.write(i.deps.Writer, out, data)
}
