package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lander/internal/adapters/watcher"
)

type batches struct {
	mu  sync.Mutex
	got [][]string
}

func (b *batches) add(paths []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.got = append(b.got, paths)
}

func (b *batches) all() [][]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]string(nil), b.got...)
}

func TestDebouncer_SinglePath(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b := &batches{}
		d := watcher.NewDebouncer(50*time.Millisecond, b.add)

		d.Add("/site/src/sass/main.scss")
		assert.Equal(t, 1, d.Pending())

		time.Sleep(60 * time.Millisecond)
		synctest.Wait()

		assert.Equal(t, [][]string{{"/site/src/sass/main.scss"}}, b.all())
		assert.Equal(t, 0, d.Pending())
	})
}

func TestDebouncer_BurstCoalesced(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b := &batches{}
		d := watcher.NewDebouncer(50*time.Millisecond, b.add)

		// An editor save: write, chmod, write again, within the window.
		d.Add("/site/src/index.html")
		time.Sleep(20 * time.Millisecond)
		d.Add("/site/src/index.html")
		time.Sleep(20 * time.Millisecond)
		d.Add("/site/src/about.html")

		time.Sleep(40 * time.Millisecond)
		synctest.Wait()
		assert.Empty(t, b.all())

		time.Sleep(20 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, [][]string{{"/site/src/about.html", "/site/src/index.html"}}, b.all())
	})
}

func TestDebouncer_SeparateBursts(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b := &batches{}
		d := watcher.NewDebouncer(50*time.Millisecond, b.add)

		d.Add("a")
		time.Sleep(100 * time.Millisecond)
		d.Add("b")
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		assert.Equal(t, [][]string{{"a"}, {"b"}}, b.all())
	})
}

func TestDebouncer_Flush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b := &batches{}
		d := watcher.NewDebouncer(time.Hour, b.add)

		d.Add("x")
		d.Flush()
		require.Equal(t, [][]string{{"x"}}, b.all())

		// The window timer was stopped.
		time.Sleep(2 * time.Hour)
		synctest.Wait()
		assert.Len(t, b.all(), 1)

		d.Flush()
		assert.Len(t, b.all(), 1)
	})
}

func TestDebouncer_Stop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b := &batches{}
		d := watcher.NewDebouncer(50*time.Millisecond, b.add)

		d.Add("dropped")
		d.Stop()
		d.Add("ignored")

		time.Sleep(100 * time.Millisecond)
		synctest.Wait()
		assert.Empty(t, b.all())
		assert.Equal(t, 0, d.Pending())
	})
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d := watcher.NewDebouncer(10*time.Millisecond, nil)
		d.Add("x")
		time.Sleep(20 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, 0, d.Pending())
	})
}
