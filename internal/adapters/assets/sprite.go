package assets

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/lander/internal/core/domain"
	"go.trai.ch/lander/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Task = (*Sprite)(nil)

// symbolAttrs are copied from an icon's root element to its symbol.
var symbolAttrs = []string{"viewBox", "preserveAspectRatio"}

// Sprite assembles the optimized icons into one SVG of <symbol> elements,
// each identified by its file's base name.
type Sprite struct {
	deps *Deps
}

// NewSprite creates the sprite task.
func NewSprite(d *Deps) *Sprite {
	return &Sprite{deps: d}
}

// Name returns "sprite".
func (*Sprite) Name() string { return "sprite" }

type symbol struct {
	id    string
	attrs []xml.Attr
	inner []byte
}

// Run writes the sprite. Two icons with the same base name, or an icon that
// is not well-formed SVG, fail the sprite as a whole.
func (s *Sprite) Run(_ context.Context, log io.Writer) ([]string, error) {
	cfg := s.deps.Config
	root := cfg.DestDir(domain.CategoryIcons)

	files, err := s.deps.Resolver.Resolve(root, cfg.Sprite.Globs)
	if err != nil {
		return nil, err
	}
	files = slices.DeleteFunc(files, func(f string) bool { return f == filepath.ToSlash(cfg.Sprite.Output) })
	if len(files) == 0 {
		s.deps.warnEmpty(s.Name(), root, cfg.Sprite.Globs)
		return nil, nil
	}

	seen := make(map[string]string, len(files))
	symbols := make([]symbol, 0, len(files))
	for _, rel := range files {
		id := strings.TrimSuffix(path.Base(rel), path.Ext(rel))
		if prev, dup := seen[id]; dup {
			return nil, transformFailed(zerr.With(zerr.With(
				zerr.New("duplicate icon id "+id), "first", prev), "second", rel))
		}
		seen[id] = rel

		data, err := readSource(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return nil, err
		}
		sym, err := parseSymbol(id, data)
		if err != nil {
			_, _ = fmt.Fprintf(log, "%s: %v\n", rel, err)
			return nil, transformFailed(zerr.With(err, "path", rel))
		}
		symbols = append(symbols, sym)
	}

	slices.SortFunc(symbols, func(a, b symbol) int { return strings.Compare(a.id, b.id) })

	var changed outputs
	if err := changed.write(s.deps.Writer, filepath.Join(root, cfg.Sprite.Output), renderSprite(symbols)); err != nil {
		return changed, err
	}
	_, _ = fmt.Fprintf(log, "packed %d icon(s) into %s\n", len(symbols), cfg.Sprite.Output)
	return changed, nil
}

// parseSymbol extracts the root <svg> attributes and the raw inner markup.
// The inner markup is sliced from the source bytes so it is preserved as
// written.
func parseSymbol(id string, data []byte) (symbol, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = xml.HTMLEntity

	sym := symbol{id: id}
	depth := 0
	var start int64
	for {
		offset := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			return sym, zerr.New("missing svg root element")
		}
		if err != nil {
			return sym, zerr.Wrap(err, "malformed svg")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				if t.Name.Local != "svg" {
					return sym, zerr.New("root element is <" + t.Name.Local + ">, not <svg>")
				}
				for _, a := range t.Attr {
					if slices.Contains(symbolAttrs, a.Name.Local) && a.Name.Space == "" {
						sym.attrs = append(sym.attrs, a)
					}
				}
				start = dec.InputOffset()
			}
			depth++
		case xml.EndElement:
			depth--
			if depth == 0 {
				if offset > start {
					sym.inner = bytes.TrimSpace(data[start:offset])
				}
				return sym, nil
			}
		}
	}
}

func renderSprite(symbols []symbol) []byte {
	var b bytes.Buffer
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" style="display:none">`)
	b.WriteByte('\n')
	for _, sym := range symbols {
		b.WriteString(`<symbol id="`)
		writeAttrValue(&b, sym.id)
		b.WriteByte('"')
		for _, a := range sym.attrs {
			b.WriteString(" " + a.Name.Local + `="`)
			writeAttrValue(&b, a.Value)
			b.WriteByte('"')
		}
		b.WriteByte('>')
		b.Write(sym.inner)
		b.WriteString("</symbol>\n")
	}
	b.WriteString("</svg>\n")
	return b.Bytes()
}

func writeAttrValue(b *bytes.Buffer, v string) {
	_ = xml.EscapeText(b, []byte(v))
}
