package assets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/tdewolff/minify/v2"
	"go.trai.ch/lander/internal/core/domain"
	"go.trai.ch/lander/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Task = (*Styles)(nil)

// sourceMapComment matches the trailing source map reference of a stylesheet.
var sourceMapComment = regexp.MustCompile(`(?m)^/\*# sourceMappingURL=[^*]*\*/\s*`)

// Styles compiles every non-partial stylesheet with the external compiler
// and bundles the results into one file.
type Styles struct {
	deps     *Deps
	minifier *minify.M
}

// NewStyles creates the styles task.
func NewStyles(d *Deps) *Styles {
	return &Styles{deps: d, minifier: newMinifier()}
}

// Name returns "styles", or "styles:min" in production.
func (s *Styles) Name() string { return s.deps.taskName("styles", "min") }

// Run compiles the entries. Any compile failure leaves the bundle untouched.
func (s *Styles) Run(ctx context.Context, log io.Writer) ([]string, error) {
	cfg := s.deps.Config
	srcDir := cfg.SourceDir(domain.CategoryStyles)

	files, err := s.deps.sources(domain.CategoryStyles)
	if err != nil {
		return nil, err
	}
	entries := entryStylesheets(files)
	if len(entries) == 0 {
		s.deps.warnEmpty(s.Name(), srcDir, cfg.Paths[domain.CategoryStyles].Globs)
		return nil, nil
	}

	tmp, err := os.MkdirTemp("", "lander-styles-")
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrOutputWriteFailed.Error())
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	flags := s.compilerFlags(len(entries))
	var bundle bytes.Buffer
	var sourceMap []byte
	for i, rel := range entries {
		in := filepath.Join(srcDir, filepath.FromSlash(rel))
		out := filepath.Join(tmp, strconv.Itoa(i)+".css")

		args := append(append([]string(nil), flags...), in, out)
		if err := s.deps.run(ctx, "styles", cfg.Styles.Compiler, log, args...); err != nil {
			_, _ = fmt.Fprintf(log, "%s: compile failed\n", rel)
			return nil, err
		}

		compiled, err := os.ReadFile(out) //nolint:gosec // temporary compiler output
		if err != nil {
			return nil, transformFailed(zerr.With(zerr.Wrap(err, "compiler produced no output"), "entry", rel))
		}
		if s.linkedSourceMap(len(entries)) {
			if m, err := os.ReadFile(out + ".map"); err == nil { //nolint:gosec // temporary compiler output
				sourceMap = m
			}
			compiled = sourceMapComment.ReplaceAll(compiled, nil)
		}
		bundle.Write(bytes.TrimRight(compiled, "\n"))
		bundle.WriteByte('\n')
	}

	css := bundle.Bytes()
	if len(cfg.Styles.Postprocess) > 0 {
		if css, err = s.postprocess(ctx, tmp, css, log); err != nil {
			return nil, err
		}
	}
	if s.deps.Mode == domain.ModeProduction {
		if css, err = s.minifier.Bytes(mediaCSS, css); err != nil {
			return nil, transformFailed(zerr.Wrap(err, "failed to minify stylesheet"))
		}
	}

	dest := filepath.Join(cfg.DestDir(domain.CategoryStyles), cfg.Styles.Output)
	var changed outputs
	if sourceMap != nil {
		mapName := cfg.Styles.Output + ".map"
		css = fmt.Appendf(css, "/*# sourceMappingURL=%s */\n", mapName)
		if err := changed.write(s.deps.Writer, dest+".map", sourceMap); err != nil {
			return changed, err
		}
	}
	if err := changed.write(s.deps.Writer, dest, css); err != nil {
		return changed, err
	}
	_, _ = fmt.Fprintf(log, "compiled %d entr%s into %s\n", len(entries), plural(len(entries), "y", "ies"), relTo(cfg.Root, dest))
	return changed, nil
}

// compilerFlags selects source map handling. A single entry keeps a separate
// map next to the bundle; several entries embed their maps, because one
// external map cannot describe the concatenation. Maps carry the stylesheet
// sources, since the dev server only serves the output tree.
func (s *Styles) compilerFlags(entries int) []string {
	switch {
	case s.deps.Mode == domain.ModeProduction:
		return []string{"--no-source-map"}
	case entries == 1:
		return []string{"--source-map", "--source-map-urls=relative", "--embed-sources"}
	default:
		return []string{"--embed-source-map", "--embed-sources"}
	}
}

func (s *Styles) linkedSourceMap(entries int) bool {
	return s.deps.Mode == domain.ModeDevelop && entries == 1
}

// postprocess runs the configured command on the bundle in place.
func (s *Styles) postprocess(ctx context.Context, tmp string, css []byte, log io.Writer) ([]byte, error) {
	file := filepath.Join(tmp, s.deps.Config.Styles.Output)
	if err := os.WriteFile(file, css, domain.FilePerm); err != nil {
		return nil, zerr.Wrap(err, domain.ErrOutputWriteFailed.Error())
	}
	if err := s.deps.run(ctx, "styles", s.deps.Config.Styles.Postprocess, log, file); err != nil {
		return nil, err
	}
	out, err := os.ReadFile(file) //nolint:gosec // temporary postprocessor output
	if err != nil {
		return nil, transformFailed(zerr.Wrap(err, "postprocessor removed its output"))
	}
	return out, nil
}

// entryStylesheets drops partials, whose base names start with an underscore.
func entryStylesheets(files []string) []string {
	var entries []string
	for _, f := range files {
		if !strings.HasPrefix(path.Base(f), "_") {
			entries = append(entries, f)
		}
	}
	return entries
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
