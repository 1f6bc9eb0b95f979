package assets_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lander/internal/adapters/assets"
	"go.trai.ch/lander/internal/core/domain"
	"go.uber.org/mock/gomock"
)

func TestSprite_CollectsSymbols(t *testing.T) {
	f := newFixture(t, domain.ModeProduction)
	f.dist(t, "icons/social/icon-vk.svg", `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 16 16" width="16"><path d="M1 1h14"/></svg>`)
	f.dist(t, "icons/icon-phone.svg", `<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" preserveAspectRatio="xMidYMid meet">
  <g id="handset"><path d="M0 0"/></g>
</svg>`)
	f.dist(t, "icons/logo.svg", `<svg viewBox="0 0 1 1"/>`)

	task := assets.NewSprite(f.deps)
	assert.Equal(t, "sprite", task.Name())

	changed, err := task.Run(context.Background(), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, []string{f.distPath("icons/sprite.svg")}, changed)

	want := `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" style="display:none">
<symbol id="icon-phone" viewBox="0 0 24 24" preserveAspectRatio="xMidYMid meet"><g id="handset"><path d="M0 0"/></g></symbol>
<symbol id="icon-vk" viewBox="0 0 16 16"><path d="M1 1h14"/></symbol>
</svg>
`
	assert.Equal(t, want, readFile(t, f.distPath("icons/sprite.svg")))
}

func TestSprite_RerunIgnoresOwnOutput(t *testing.T) {
	f := newFixture(t, domain.ModeProduction)
	f.deps.Config.Sprite.Globs = []string{"**/*.svg"}
	f.dist(t, "icons/icon-mail.svg", `<svg viewBox="0 0 2 2"><rect/></svg>`)
	task := assets.NewSprite(f.deps)

	_, err := task.Run(context.Background(), io.Discard)
	require.NoError(t, err)
	changed, err := task.Run(context.Background(), io.Discard)
	require.NoError(t, err)
	assert.Empty(t, changed)
}

func TestSprite_Errors(t *testing.T) {
	tests := []struct {
		name        string
		files       map[string]string
		errContains string
	}{
		{
			name: "duplicate id",
			files: map[string]string{
				"icons/a/icon-x.svg": `<svg/>`,
				"icons/b/icon-x.svg": `<svg/>`,
			},
			errContains: "duplicate icon id icon-x",
		},
		{
			name:        "malformed",
			files:       map[string]string{"icons/icon-bad.svg": `<svg><path></svg>`},
			errContains: "malformed svg",
		},
		{
			name:        "wrong root",
			files:       map[string]string{"icons/icon-html.svg": `<html></html>`},
			errContains: "not <svg>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, domain.ModeProduction)
			for rel, content := range tt.files {
				f.dist(t, rel, content)
			}

			_, err := assets.NewSprite(f.deps).Run(context.Background(), io.Discard)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrTransformFailed))
			assert.ErrorContains(t, err, tt.errContains)
			assert.NoFileExists(t, f.distPath("icons/sprite.svg"))
		})
	}
}

func TestSprite_NoIcons(t *testing.T) {
	f := newFixture(t, domain.ModeProduction)
	f.logger.EXPECT().Warn(gomock.Any()).Times(1)

	changed, err := assets.NewSprite(f.deps).Run(context.Background(), io.Discard)
	require.NoError(t, err)
	assert.Empty(t, changed)
}
