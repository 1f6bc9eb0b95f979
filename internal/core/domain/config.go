package domain

import (
	"net"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// Mode selects between the development and production asset variants.
type Mode uint8

const (
	// ModeDevelop produces unminified outputs with source maps.
	ModeDevelop Mode = iota
	// ModeProduction produces minified outputs without source maps.
	ModeProduction
)

// String returns the lowercase mode name.
func (m Mode) String() string {
	if m == ModeProduction {
		return "production"
	}
	return "development"
}

// ServerConfig configures the development server.
type ServerConfig struct {
	Host   string
	Port   int
	CORS   bool
	Reload bool
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// StylesConfig configures the external style compiler.
type StylesConfig struct {
	// Compiler is the command prefix; input and output paths are appended.
	Compiler []string
	// Postprocess is an optional command run with the compiled file appended.
	// It must rewrite the file in place.
	Postprocess []string
	// Output is the bundled stylesheet file name.
	Output string
}

// ScriptsConfig configures the script bundler.
type ScriptsConfig struct {
	Output string
	Target string
}

// ImagesConfig configures raster image optimization.
type ImagesConfig struct {
	PNGLevel int
	PNG      []string
	JPEG     []string
}

// WebpConfig configures WebP conversion of optimized images.
type WebpConfig struct {
	Quality int
	Encoder []string
	// Globs select sources relative to the images destination directory.
	Globs []string
}

// SpriteConfig configures the SVG icon sprite.
type SpriteConfig struct {
	Output string
	// Globs select icons relative to the icons destination directory.
	Globs []string
}

// Config is the resolved project configuration.
type Config struct {
	// Root is the absolute project directory. Src and Dest are relative to it.
	Root        string
	Src         string
	Dest        string
	Parallelism int
	Strict      bool
	Paths       PathSet
	Server      ServerConfig
	Styles      StylesConfig
	Scripts     ScriptsConfig
	Images      ImagesConfig
	Webp        WebpConfig
	Sprite      SpriteConfig
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig(root string) *Config {
	return &Config{
		Root:        root,
		Src:         "src",
		Dest:        "dist",
		Parallelism: runtime.NumCPU(),
		Paths:       DefaultPaths(),
		Server: ServerConfig{
			Host:   "localhost",
			Port:   3000,
			CORS:   true,
			Reload: true,
		},
		Styles: StylesConfig{
			Compiler: []string{"sass", "--load-path=node_modules"},
			Output:   "main.css",
		},
		Scripts: ScriptsConfig{
			Output: "app.js",
			Target: "es2015",
		},
		Images: ImagesConfig{
			PNGLevel: 3,
			PNG:      []string{"optipng"},
			JPEG:     []string{"jpegtran"},
		},
		Webp: WebpConfig{
			Quality: 90,
			Encoder: []string{"cwebp"},
			Globs:   []string{"**/*.{png,jpg,jpeg}"},
		},
		Sprite: SpriteConfig{
			Output: "sprite.svg",
			Globs:  []string{"**/icon-*.svg"},
		},
	}
}

// SrcRoot returns the absolute source root.
func (c *Config) SrcRoot() string {
	return filepath.Join(c.Root, c.Src)
}

// DestRoot returns the absolute destination root.
func (c *Config) DestRoot() string {
	return filepath.Join(c.Root, c.Dest)
}

// SourceDir returns the absolute base directory of a category.
func (c *Config) SourceDir(cat Category) string {
	return filepath.Join(c.SrcRoot(), c.Paths[cat].Dir)
}

// DestDir returns the absolute output directory of a category.
func (c *Config) DestDir(cat Category) string {
	return filepath.Join(c.DestRoot(), c.Paths[cat].Dest)
}

// Validate checks the configuration invariants that must hold before any step runs.
func (c *Config) Validate() error {
	if err := c.validateRoots(); err != nil {
		return err
	}
	for _, cat := range Categories() {
		spec, ok := c.Paths[cat]
		if !ok {
			return invalid("paths."+string(cat), "category is not configured")
		}
		if spec.Dest != "" && !filepath.IsLocal(spec.Dest) {
			return invalid("paths."+string(cat)+".dest", "must be nested under the output root")
		}
		if spec.Dir != "" && !filepath.IsLocal(spec.Dir) {
			return invalid("paths."+string(cat)+".dir", "must be nested under the source root")
		}
	}
	switch {
	case c.Parallelism < 1:
		return invalid("parallelism", "must be at least 1")
	case c.Server.Port < 1 || c.Server.Port > 65535:
		return invalid("server.port", "must be between 1 and 65535")
	case c.Webp.Quality < 0 || c.Webp.Quality > 100:
		return invalid("webp.quality", "must be between 0 and 100")
	case c.Images.PNGLevel < 0 || c.Images.PNGLevel > 7:
		return invalid("images.pngLevel", "must be between 0 and 7")
	}
	if !slices.Contains(ScriptTargets, c.Scripts.Target) {
		return invalid("scripts.target", "must be one of "+strings.Join(ScriptTargets, ", "))
	}
	for field, cmd := range map[string][]string{
		"styles.compiler": c.Styles.Compiler,
		"images.png":      c.Images.PNG,
		"images.jpeg":     c.Images.JPEG,
		"webp.encoder":    c.Webp.Encoder,
	} {
		if len(cmd) == 0 || strings.TrimSpace(cmd[0]) == "" {
			return invalid(field, "tool command must not be empty")
		}
	}
	for field, name := range map[string]string{
		"styles.output":  c.Styles.Output,
		"scripts.output": c.Scripts.Output,
		"sprite.output":  c.Sprite.Output,
	} {
		if name == "" || !filepath.IsLocal(name) {
			return invalid(field, "must be a relative file name")
		}
	}
	return nil
}

func (c *Config) validateRoots() error {
	if c.Src == "" || !filepath.IsLocal(c.Src) {
		return invalid("src", "must be a directory inside the project")
	}
	if c.Dest == "" || !filepath.IsLocal(c.Dest) {
		return invalid("dest", "must be a directory inside the project")
	}
	src, dest := filepath.Clean(c.Src), filepath.Clean(c.Dest)
	if src == dest || within(src, dest) || within(dest, src) {
		return invalid("dest", "source and output roots must not overlap")
	}
	return nil
}

// within reports whether child is nested below parent. Both are clean relative paths.
func within(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	return err == nil && rel != "." && filepath.IsLocal(rel)
}

func invalid(field, reason string) error {
	return zerr.With(zerr.Wrap(ErrInvalidConfig, field+" "+reason), "field", field)
}

// ScriptTargets lists the supported script language targets.
var ScriptTargets = []string{
	"es2015", "es2016", "es2017", "es2018", "es2019", "es2020",
	"es2021", "es2022", "es2023", "es2024", "esnext",
}
