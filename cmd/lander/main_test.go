package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/lander/internal/app"
	"go.trai.ch/lander/internal/core/domain"
	"go.trai.ch/lander/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type testMocks struct {
	loader   *mocks.MockConfigLoader
	logger   *mocks.MockLogger
	hasher   *mocks.MockHasher
	resolver *mocks.MockInputResolver
}

func newProvider(t *testing.T) (ComponentProvider, testMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := testMocks{
		loader:   mocks.NewMockConfigLoader(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
		hasher:   mocks.NewMockHasher(ctrl),
		resolver: mocks.NewMockInputResolver(ctrl),
	}
	application := app.New(
		m.loader,
		mocks.NewMockExecutor(ctrl),
		m.logger,
		m.resolver,
		mocks.NewMockFileWriter(ctrl),
		m.hasher,
		mocks.NewMockWatcher(ctrl),
	).WithOutput(io.Discard, io.Discard).WithProfile(termenv.Ascii)

	return func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{App: application, Logger: m.logger}, func() {}, nil
	}, m
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	provider, _ := newProvider(t)

	exitCode := run(context.Background(), []string{"version"}, new(bytes.Buffer), provider)
	assert.Equal(t, 0, exitCode)
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ConfigErrorIsLogged verifies that errors outside the pipeline go through the logger.
func TestRun_ConfigErrorIsLogged(t *testing.T) {
	provider, m := newProvider(t)
	m.loader.EXPECT().Load(gomock.Any()).Return(nil, domain.ErrInvalidConfig)
	m.logger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorContains(t, err, "failed to load configuration")
	})

	exitCode := run(context.Background(), []string{"build"}, io.Discard, provider)
	assert.Equal(t, 1, exitCode)
}

// TestRun_BuildFailureIsNotLoggedTwice verifies that pipeline failures exit 1 without the logger.
func TestRun_BuildFailureIsNotLoggedTwice(t *testing.T) {
	provider, m := newProvider(t)
	m.loader.EXPECT().Load(gomock.Any()).Return(domain.DefaultConfig(t.TempDir()), nil)
	m.resolver.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(nil, errors.New("permission denied")).AnyTimes()

	exitCode := run(context.Background(), []string{"build"}, io.Discard, provider)
	assert.Equal(t, 1, exitCode)
}

// TestRun_Signal verifies that the context is canceled on signal.
func TestRun_Signal(t *testing.T) {
	provider, m := newProvider(t)
	blockCh := make(chan struct{})
	m.loader.EXPECT().Load(gomock.Any()).DoAndReturn(func(_ string) (*domain.Config, error) {
		select {
		case <-blockCh:
			return nil, context.Canceled
		case <-time.After(5 * time.Second):
			return nil, errors.New("timeout in mock")
		}
	})
	m.logger.EXPECT().Error(gomock.Any()).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan int)

	go func() {
		errCh <- run(ctx, []string{"build"}, io.Discard, provider)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()
	close(blockCh)

	select {
	case ret := <-errCh:
		assert.NotEqual(t, 0, ret)
	case <-time.After(2 * time.Second):
		t.Fatal("TestRun_Signal timed out waiting for run() to return")
	}
}
