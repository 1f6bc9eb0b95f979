package assets_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lander/internal/adapters/assets"
	"go.trai.ch/lander/internal/core/domain"
	"go.uber.org/mock/gomock"
)

func seedStatic(t *testing.T, f *fixture) {
	t.Helper()
	f.src(t, "fonts/roboto/regular.woff2", "font")
	f.src(t, "img/hero.png", "png")
	f.src(t, "icons/icon-phone.svg", "<svg/>")
	f.src(t, "favicon.ico", "ico")
	f.src(t, "site.webmanifest", "{}")
	f.src(t, "notes.txt", "not matched")
}

func TestCopy_Develop(t *testing.T) {
	f := newFixture(t, domain.ModeDevelop)
	seedStatic(t, f)

	task := assets.NewCopy(f.deps)
	assert.Equal(t, "copy", task.Name())

	changed, err := task.Run(context.Background(), io.Discard)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		f.distPath("fonts/roboto/regular.woff2"),
		f.distPath("img/hero.png"),
		f.distPath("icons/icon-phone.svg"),
		f.distPath("favicon.ico"),
		f.distPath("site.webmanifest"),
	}, changed)
	assert.Equal(t, "font", readFile(t, f.distPath("fonts/roboto/regular.woff2")))
	assert.NoFileExists(t, f.distPath("notes.txt"))
}

func TestCopy_Production(t *testing.T) {
	f := newFixture(t, domain.ModeProduction)
	seedStatic(t, f)

	task := assets.NewCopy(f.deps)
	assert.Equal(t, "copy:prod", task.Name())
	assert.Equal(t, []domain.Category{domain.CategoryFonts, domain.CategoryOthers}, task.Categories())

	changed, err := task.Run(context.Background(), io.Discard)
	require.NoError(t, err)
	assert.Len(t, changed, 3)
	assert.NoFileExists(t, f.distPath("img/hero.png"))
	assert.NoFileExists(t, f.distPath("icons/icon-phone.svg"))
}

func TestCopy_UnchangedRerun(t *testing.T) {
	f := newFixture(t, domain.ModeDevelop)
	seedStatic(t, f)
	task := assets.NewCopy(f.deps)

	_, err := task.Run(context.Background(), io.Discard)
	require.NoError(t, err)

	changed, err := task.Run(context.Background(), io.Discard)
	require.NoError(t, err)
	assert.Empty(t, changed)
}

func TestCopy_NothingToCopy(t *testing.T) {
	f := newFixture(t, domain.ModeDevelop)
	f.logger.EXPECT().Warn(gomock.Any()).Times(1)

	changed, err := assets.NewCopy(f.deps).Run(context.Background(), io.Discard)
	require.NoError(t, err)
	assert.Empty(t, changed)
}
