package devserver_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/lander/internal/adapters/devserver"
)

func TestHub_Notify(t *testing.T) {
	root := filepath.Join(t.TempDir(), "dist")
	hub := devserver.NewHub(root)

	events, unsubscribe := hub.Subscribe()
	defer unsubscribe()
	assert.Equal(t, 1, hub.Clients())

	hub.Notify([]string{
		filepath.Join(root, "css", "main.css"),
		filepath.Join(root, "css", "main.css.map"),
		filepath.Join(root, "index.html"),
		filepath.Join(t.TempDir(), "elsewhere.js"),
	})

	assert.Equal(t, devserver.Event{Kind: devserver.EventCSS, Path: "/css/main.css"}, <-events)
	assert.Equal(t, devserver.Event{Kind: devserver.EventReload, Path: "/index.html"}, <-events)
	assert.Empty(t, events)
}

func TestHub_SlowClientDoesNotBlock(t *testing.T) {
	root := t.TempDir()
	hub := devserver.NewHub(root)
	events, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	for range 100 {
		hub.Notify([]string{filepath.Join(root, "js", "app.js")})
	}
	assert.Len(t, events, cap(events))
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := devserver.NewHub(t.TempDir())
	events, unsubscribe := hub.Subscribe()

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, hub.Clients())

	_, open := <-events
	assert.False(t, open)
	hub.Notify([]string{"ignored"})
}
