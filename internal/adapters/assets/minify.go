package assets

import (
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/svg"
)

// Media types handled by the in-process minifier.
const (
	mediaHTML = "text/html"
	mediaCSS  = "text/css"
	mediaSVG  = "image/svg+xml"
)

// newMinifier returns a minifier for markup, stylesheets and SVG. HTML keeps
// document structure and attribute quoting intact and only collapses
// whitespace and redundant markup. SVG keeps element IDs, which the sprite and
// inline references rely on.
func newMinifier() *minify.M {
	m := minify.New()
	m.Add(mediaHTML, &html.Minifier{
		KeepDocumentTags:    true,
		KeepEndTags:         true,
		KeepQuotes:          true,
		KeepDefaultAttrVals: true,
	})
	m.Add(mediaCSS, &css.Minifier{})
	m.Add(mediaSVG, &svg.Minifier{})
	return m
}
