package fs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lander/internal/adapters/fs"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
}

func TestResolver_Resolve(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"index.html":            "<html></html>",
		"about.html":            "<html></html>",
		"favicon.ico":           "ico",
		"sass/main.scss":        "body{}",
		"sass/_vars.scss":       "$c: red;",
		"sass/blocks/hero.sass": "h1\n  color: red",
		"sass/notes.txt":        "ignored",
	})

	r := fs.NewResolver()

	t.Run("root level glob", func(t *testing.T) {
		got, err := r.Resolve(root, []string{"*.html"})
		require.NoError(t, err)
		assert.Equal(t, []string{"about.html", "index.html"}, got)
	})

	t.Run("recursive brace glob", func(t *testing.T) {
		got, err := r.Resolve(filepath.Join(root, "sass"), []string{"**/*.{scss,sass,css}"})
		require.NoError(t, err)
		assert.Equal(t, []string{"_vars.scss", "blocks/hero.sass", "main.scss"}, got)
	})

	t.Run("overlapping patterns are deduplicated", func(t *testing.T) {
		got, err := r.Resolve(root, []string{"*.html", "index.*"})
		require.NoError(t, err)
		assert.Equal(t, []string{"about.html", "index.html"}, got)
	})

	t.Run("missing root matches nothing", func(t *testing.T) {
		got, err := r.Resolve(filepath.Join(root, "fonts"), []string{"**/*.woff"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("file as root is an error", func(t *testing.T) {
		_, err := r.Resolve(filepath.Join(root, "index.html"), []string{"*"})
		require.Error(t, err)
	})
}

func TestMatch(t *testing.T) {
	patterns := []string{"sass/**/*.{scss,sass,css}"}

	assert.True(t, fs.Match(patterns, "sass/main.scss"))
	assert.True(t, fs.Match(patterns, "sass/a/b/_partial.scss"))
	assert.False(t, fs.Match(patterns, "js/app.js"))
	assert.False(t, fs.Match(patterns, "sass/readme.md"))
}

func TestWriter_WriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "css", "main.css")
	w := fs.NewWriter()

	changed, err := w.WriteFile(path, []byte("body{}"))
	require.NoError(t, err)
	assert.True(t, changed)

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	changed, err = w.WriteFile(path, []byte("body{}"))
	require.NoError(t, err)
	assert.False(t, changed)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.WithinDuration(t, old, info.ModTime(), time.Second)

	changed, err = w.WriteFile(path, []byte("main{}"))
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "main{}", string(data))
}

func TestWriter_WriteFile_Error(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "css")
	require.NoError(t, os.WriteFile(blocker, []byte("not a dir"), 0o600))

	_, err := fs.NewWriter().WriteFile(filepath.Join(blocker, "main.css"), []byte("x"))
	require.Error(t, err)
}

func TestHasher_HashTree(t *testing.T) {
	h := fs.NewHasher(fs.NewWalker())

	a, b := t.TempDir(), t.TempDir()
	files := map[string]string{
		"index.html":   "<p>hi</p>",
		"css/main.css": "p{}",
		"js/app.js":    "console.log(1)",
	}
	writeTree(t, a, files)
	writeTree(t, b, files)

	digestA, err := h.HashTree(a)
	require.NoError(t, err)
	digestB, err := h.HashTree(b)
	require.NoError(t, err)
	assert.Equal(t, digestA, digestB)
	assert.Len(t, digestA, 16)

	writeTree(t, b, map[string]string{"js/app.js": "console.log(2)"})
	digestB, err = h.HashTree(b)
	require.NoError(t, err)
	assert.NotEqual(t, digestA, digestB)
}

func TestHasher_HashTree_RenameChangesDigest(t *testing.T) {
	h := fs.NewHasher(fs.NewWalker())
	a, b := t.TempDir(), t.TempDir()
	writeTree(t, a, map[string]string{"a.txt": "same"})
	writeTree(t, b, map[string]string{"b.txt": "same"})

	digestA, err := h.HashTree(a)
	require.NoError(t, err)
	digestB, err := h.HashTree(b)
	require.NoError(t, err)
	assert.NotEqual(t, digestA, digestB)
}

func TestWalker_WalkFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"b.txt":      "b",
		"a/c.txt":    "c",
		".git/HEAD":  "ref",
		"a/.jj/lock": "x",
	})

	var got []string
	for path, err := range fs.NewWalker().WalkFiles(root) {
		require.NoError(t, err)
		rel, relErr := filepath.Rel(root, path)
		require.NoError(t, relErr)
		got = append(got, filepath.ToSlash(rel))
	}

	assert.Equal(t, []string{"a/c.txt", "b.txt"}, got)
}

func TestWalker_MissingRoot(t *testing.T) {
	count := 0
	for range fs.NewWalker().WalkFiles(filepath.Join(t.TempDir(), "missing")) {
		count++
	}
	assert.Zero(t, count)
}
