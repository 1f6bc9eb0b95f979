package domain_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lander/internal/core/domain"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := domain.DefaultConfig("/project")

	require.NoError(t, cfg.Validate())
	assert.Equal(t, filepath.Join("/project", "src"), cfg.SrcRoot())
	assert.Equal(t, filepath.Join("/project", "dist"), cfg.DestRoot())
	assert.Equal(t, filepath.Join("/project", "src", "sass"), cfg.SourceDir(domain.CategoryStyles))
	assert.Equal(t, filepath.Join("/project", "dist", "css"), cfg.DestDir(domain.CategoryStyles))
	assert.Equal(t, filepath.Join("/project", "dist"), cfg.DestDir(domain.CategoryMarkup))
	assert.Equal(t, "localhost:3000", cfg.Server.Addr())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *domain.Config)
		errContains string
	}{
		{
			name:        "same roots",
			mutate:      func(c *domain.Config) { c.Dest = "src" },
			errContains: "must not overlap",
		},
		{
			name:        "dest inside src",
			mutate:      func(c *domain.Config) { c.Dest = "src/out" },
			errContains: "must not overlap",
		},
		{
			name:        "src inside dest",
			mutate:      func(c *domain.Config) { c.Src = "dist/src" },
			errContains: "must not overlap",
		},
		{
			name:        "dest outside project",
			mutate:      func(c *domain.Config) { c.Dest = "../dist" },
			errContains: "dest",
		},
		{
			name: "category destination escapes output root",
			mutate: func(c *domain.Config) {
				spec := c.Paths[domain.CategoryFonts]
				spec.Dest = "../fonts"
				c.Paths[domain.CategoryFonts] = spec
			},
			errContains: "nested under the output root",
		},
		{
			name:        "missing category",
			mutate:      func(c *domain.Config) { delete(c.Paths, domain.CategoryIcons) },
			errContains: "paths.icons",
		},
		{
			name:        "webp quality out of range",
			mutate:      func(c *domain.Config) { c.Webp.Quality = 101 },
			errContains: "webp.quality",
		},
		{
			name:        "png level out of range",
			mutate:      func(c *domain.Config) { c.Images.PNGLevel = 8 },
			errContains: "images.pngLevel",
		},
		{
			name:        "port out of range",
			mutate:      func(c *domain.Config) { c.Server.Port = 0 },
			errContains: "server.port",
		},
		{
			name:        "empty compiler",
			mutate:      func(c *domain.Config) { c.Styles.Compiler = nil },
			errContains: "styles.compiler",
		},
		{
			name:        "output file escapes directory",
			mutate:      func(c *domain.Config) { c.Scripts.Output = "../app.js" },
			errContains: "scripts.output",
		},
		{
			name:        "zero parallelism",
			mutate:      func(c *domain.Config) { c.Parallelism = 0 },
			errContains: "parallelism",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.DefaultConfig("/project")
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorContains(t, err, domain.ErrInvalidConfig.Error())
			assert.ErrorContains(t, err, tt.errContains)
		})
	}
}

func TestPathSpec_SourcePatterns(t *testing.T) {
	paths := domain.DefaultPaths()

	assert.Equal(t, []string{"*.html"}, paths[domain.CategoryMarkup].SourcePatterns())
	assert.Equal(t, []string{"sass/**/*.{scss,sass,css}"}, paths[domain.CategoryStyles].SourcePatterns())
}

func TestPathSet_Clone(t *testing.T) {
	paths := domain.DefaultPaths()
	clone := paths.Clone()

	spec := clone[domain.CategoryMarkup]
	spec.Globs[0] = "changed"

	assert.Equal(t, "*.html", paths[domain.CategoryMarkup].Globs[0])
}
