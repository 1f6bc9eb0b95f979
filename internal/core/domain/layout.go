package domain

import (
	"path/filepath"
	"slices"
)

const (
	// DefaultConfigFile is the file name of the project configuration.
	DefaultConfigFile = "lander.yaml"

	// DirPerm is the default permission for directories created in the output tree.
	DirPerm = 0o750

	// FilePerm is the default permission for files written to the output tree.
	FilePerm = 0o644
)

// Category names a class of source assets.
type Category string

// Asset categories.
const (
	CategoryMarkup  Category = "markup"
	CategoryStyles  Category = "styles"
	CategoryScripts Category = "scripts"
	CategoryImages  Category = "images"
	CategoryIcons   Category = "icons"
	CategoryFonts   Category = "fonts"
	CategoryOthers  Category = "others"
)

// Categories lists every category in a stable order.
func Categories() []Category {
	return []Category{
		CategoryMarkup,
		CategoryStyles,
		CategoryScripts,
		CategoryImages,
		CategoryIcons,
		CategoryFonts,
		CategoryOthers,
	}
}

// PathSpec describes where a category lives in the source tree and where its
// outputs land in the destination tree.
type PathSpec struct {
	// Dir is the category base directory, relative to the source root.
	Dir string
	// Globs select files relative to Dir.
	Globs []string
	// Entries select entry points relative to Dir. Only scripts use them.
	Entries []string
	// Dest is the output directory, relative to the destination root.
	Dest string
}

// PathSet maps every category to its PathSpec.
type PathSet map[Category]PathSpec

// DefaultPaths returns the layout of a landing-page source tree.
func DefaultPaths() PathSet {
	return PathSet{
		CategoryMarkup: {
			Globs: []string{"*.html"},
		},
		CategoryStyles: {
			Dir:   "sass",
			Globs: []string{"**/*.{scss,sass,css}"},
			Dest:  "css",
		},
		CategoryScripts: {
			Dir:     "js",
			Globs:   []string{"**/*.js"},
			Entries: []string{"*.js"},
			Dest:    "js",
		},
		CategoryImages: {
			Dir:   "img",
			Globs: []string{"**/*.{jpg,jpeg,png,svg}"},
			Dest:  "img",
		},
		CategoryIcons: {
			Dir:   "icons",
			Globs: []string{"**/*.{jpg,jpeg,png,svg}"},
			Dest:  "icons",
		},
		CategoryFonts: {
			Dir:   "fonts",
			Globs: []string{"**/*.{woff,woff2}"},
			Dest:  "fonts",
		},
		CategoryOthers: {
			Globs: []string{"*.{ico,xml,webmanifest}"},
		},
	}
}

// SourcePatterns returns the globs of spec prefixed with its base directory,
// relative to the source root. Watch rules match against these.
func (p PathSpec) SourcePatterns() []string {
	out := make([]string, 0, len(p.Globs))
	for _, g := range p.Globs {
		out = append(out, joinPattern(p.Dir, g))
	}
	return out
}

func joinPattern(dir, glob string) string {
	if dir == "" || dir == "." {
		return glob
	}
	return filepath.ToSlash(filepath.Clean(dir)) + "/" + glob
}

// Clone returns a deep copy of the path set.
func (s PathSet) Clone() PathSet {
	out := make(PathSet, len(s))
	for k, v := range s {
		v.Globs = slices.Clone(v.Globs)
		v.Entries = slices.Clone(v.Entries)
		out[k] = v
	}
	return out
}
