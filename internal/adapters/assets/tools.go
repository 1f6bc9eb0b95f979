package assets

import (
	"path"
	"strings"

	"go.trai.ch/lander/internal/core/domain"
)

// RequiredTools returns one command per external tool a run in d.Mode will
// start, given the sources currently present. Categories without matching
// sources need no tools.
func (d *Deps) RequiredTools() ([]*domain.Command, error) {
	cfg := d.Config
	var cmds []*domain.Command
	seen := make(map[string]bool)
	add := func(tool string, prefix []string) {
		if len(prefix) == 0 || seen[prefix[0]] {
			return
		}
		seen[prefix[0]] = true
		cmds = append(cmds, d.command(tool, prefix))
	}

	styles, err := d.sources(domain.CategoryStyles)
	if err != nil {
		return nil, err
	}
	if len(entryStylesheets(styles)) > 0 {
		add("styles", cfg.Styles.Compiler)
		add("styles", cfg.Styles.Postprocess)
	}

	if d.Mode != domain.ModeProduction {
		return cmds, nil
	}

	for _, cat := range []domain.Category{domain.CategoryImages, domain.CategoryIcons} {
		files, err := d.sources(cat)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			switch strings.ToLower(path.Ext(f)) {
			case ".png":
				add("images", cfg.Images.PNG)
			case ".jpg", ".jpeg":
				add("images", cfg.Images.JPEG)
			}
		}
	}

	// webp reads the optimized images, which mirror the image sources.
	webp, err := d.Resolver.Resolve(cfg.SourceDir(domain.CategoryImages), cfg.Webp.Globs)
	if err != nil {
		return nil, err
	}
	if len(webp) > 0 {
		add("webp", cfg.Webp.Encoder)
	}
	return cmds, nil
}
