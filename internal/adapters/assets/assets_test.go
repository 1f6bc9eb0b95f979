package assets_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/lander/internal/adapters/assets"
	"go.trai.ch/lander/internal/adapters/fs"
	"go.trai.ch/lander/internal/core/domain"
	"go.trai.ch/lander/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	root     string
	deps     *assets.Deps
	executor *mocks.MockExecutor
	logger   *mocks.MockLogger

	mu       sync.Mutex
	commands []*domain.Command
}

func newFixture(t *testing.T, mode domain.Mode) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	root := t.TempDir()
	f := &fixture{
		root:     root,
		executor: mocks.NewMockExecutor(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
	}
	f.deps = &assets.Deps{
		Config:   domain.DefaultConfig(root),
		Resolver: fs.NewResolver(),
		Writer:   fs.NewWriter(),
		Executor: f.executor,
		Logger:   f.logger,
		Mode:     mode,
	}
	return f
}

// src writes a file below the source root.
func (f *fixture) src(t *testing.T, rel, content string) string {
	t.Helper()
	return writeFile(t, filepath.Join(f.root, "src", rel), content)
}

// dist writes a file below the output root.
func (f *fixture) dist(t *testing.T, rel, content string) string {
	t.Helper()
	return writeFile(t, filepath.Join(f.root, "dist", rel), content)
}

func (f *fixture) distPath(rel string) string {
	return filepath.Join(f.root, "dist", filepath.FromSlash(rel))
}

// record makes every tool invocation succeed after running fn, which may be nil.
func (f *fixture) record(fn func(cmd *domain.Command) error) {
	f.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd *domain.Command, _, _ io.Writer) error {
			f.mu.Lock()
			f.commands = append(f.commands, cmd)
			f.mu.Unlock()
			if fn == nil {
				return nil
			}
			return fn(cmd)
		}).AnyTimes()
}

func (f *fixture) recorded() []*domain.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*domain.Command(nil), f.commands...)
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func lastArgs(cmd *domain.Command, n int) []string {
	return cmd.Args[len(cmd.Args)-n:]
}
