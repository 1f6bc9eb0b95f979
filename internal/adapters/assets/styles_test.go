package assets_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lander/internal/adapters/assets"
	"go.trai.ch/lander/internal/core/domain"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

// fakeCompile copies the input to the output like a compiler without
// transformations would, writing a source map when one is requested.
func fakeCompile(cmd *domain.Command) error {
	in, out := cmd.Args[len(cmd.Args)-2], cmd.Args[len(cmd.Args)-1]
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	if strings.Contains(string(data), "@import 'missing'") {
		return errors.Join(domain.ErrToolFailed, zerr.New("Can't find stylesheet to import."))
	}
	if slices.Contains(cmd.Args, "--source-map") {
		data = append(data, []byte("\n/*# sourceMappingURL=0.css.map */\n")...)
		if err := os.WriteFile(out+".map", []byte(`{"version":3}`), 0o600); err != nil {
			return err
		}
	}
	return os.WriteFile(out, data, 0o600)
}

func TestStyles_DevelopSingleEntry(t *testing.T) {
	f := newFixture(t, domain.ModeDevelop)
	f.src(t, "sass/main.scss", "body { color: red; }")
	f.src(t, "sass/_variables.scss", "$red: red;")
	f.record(fakeCompile)

	task := assets.NewStyles(f.deps)
	assert.Equal(t, "styles", task.Name())

	changed, err := task.Run(context.Background(), io.Discard)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{f.distPath("css/main.css"), f.distPath("css/main.css.map")}, changed)

	cmds := f.recorded()
	require.Len(t, cmds, 1)
	assert.Equal(t, []string{
		"sass", "--load-path=node_modules", "--source-map", "--source-map-urls=relative", "--embed-sources",
	}, cmds[0].Args[:5])
	assert.NotContains(t, cmds[0].Args, "--source-map-urls=absolute")
	assert.Equal(t, filepath.Join(f.root, "src", "sass", "main.scss"), cmds[0].Args[5])
	assert.Equal(t, f.root, cmds[0].Dir)
	assert.Equal(t, "development", cmds[0].Environment["NODE_ENV"])

	css := readFile(t, f.distPath("css/main.css"))
	assert.Equal(t, "body { color: red; }\n/*# sourceMappingURL=main.css.map */\n", css)
	assert.JSONEq(t, `{"version":3}`, readFile(t, f.distPath("css/main.css.map")))
}

func TestStyles_DevelopSeveralEntriesEmbedMaps(t *testing.T) {
	f := newFixture(t, domain.ModeDevelop)
	f.src(t, "sass/b-print.scss", ".b {}")
	f.src(t, "sass/a-main.scss", ".a {}")
	f.record(fakeCompile)

	_, err := assets.NewStyles(f.deps).Run(context.Background(), io.Discard)
	require.NoError(t, err)

	for _, cmd := range f.recorded() {
		assert.Contains(t, cmd.Args, "--embed-source-map")
		assert.Contains(t, cmd.Args, "--embed-sources")
	}
	assert.Equal(t, ".a {}\n.b {}\n", readFile(t, f.distPath("css/main.css")))
	assert.NoFileExists(t, f.distPath("css/main.css.map"))
}

func TestStyles_ProductionMinifies(t *testing.T) {
	f := newFixture(t, domain.ModeProduction)
	f.src(t, "sass/main.scss", "body {\n  color: #ff0000;\n  margin: 0px;\n}\n")
	f.record(fakeCompile)

	task := assets.NewStyles(f.deps)
	assert.Equal(t, "styles:min", task.Name())

	_, err := task.Run(context.Background(), io.Discard)
	require.NoError(t, err)

	cmds := f.recorded()
	require.Len(t, cmds, 1)
	assert.Contains(t, cmds[0].Args, "--no-source-map")
	assert.Equal(t, "production", cmds[0].Environment["NODE_ENV"])
	assert.Equal(t, "body{color:red;margin:0}", readFile(t, f.distPath("css/main.css")))
	assert.NoFileExists(t, f.distPath("css/main.css.map"))
}

func TestStyles_Postprocess(t *testing.T) {
	f := newFixture(t, domain.ModeProduction)
	f.deps.Config.Styles.Postprocess = []string{"postcss", "--replace"}
	f.src(t, "sass/main.scss", "a { color: blue }")
	f.record(func(cmd *domain.Command) error {
		if cmd.Args[0] == "postcss" {
			file := cmd.Args[len(cmd.Args)-1]
			return os.WriteFile(file, []byte("a{-webkit-color:blue;color:blue}"), 0o600)
		}
		return fakeCompile(cmd)
	})

	_, err := assets.NewStyles(f.deps).Run(context.Background(), io.Discard)
	require.NoError(t, err)

	cmds := f.recorded()
	require.Len(t, cmds, 2)
	assert.Equal(t, []string{"postcss", "--replace"}, cmds[1].Args[:2])
	assert.Equal(t, "a{-webkit-color:blue;color:blue}", readFile(t, f.distPath("css/main.css")))
}

func TestStyles_CompileErrorIsSoft(t *testing.T) {
	f := newFixture(t, domain.ModeProduction)
	f.src(t, "sass/main.scss", "@import 'missing';")
	f.record(fakeCompile)

	_, err := assets.NewStyles(f.deps).Run(context.Background(), io.Discard)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTransformFailed))
	assert.NoFileExists(t, f.distPath("css/main.css"))
}

func TestStyles_MissingCompilerIsHard(t *testing.T) {
	f := newFixture(t, domain.ModeDevelop)
	f.src(t, "sass/main.scss", "a {}")
	f.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(zerr.With(domain.ErrToolNotFound, "tool", "styles"))

	_, err := assets.NewStyles(f.deps).Run(context.Background(), io.Discard)
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrTransformFailed))
	assert.ErrorContains(t, err, domain.ErrToolNotFound.Error())
}

func TestStyles_OnlyPartials(t *testing.T) {
	f := newFixture(t, domain.ModeDevelop)
	f.src(t, "sass/_mixins.scss", "@mixin x {}")
	f.logger.EXPECT().Warn(gomock.Any()).Times(1)

	changed, err := assets.NewStyles(f.deps).Run(context.Background(), io.Discard)
	require.NoError(t, err)
	assert.Empty(t, changed)
}
