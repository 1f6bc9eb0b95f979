// Package devserver serves the output tree during development and pushes
// reload events to connected browsers.
package devserver

import (
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/lander/internal/core/ports"
)

var _ ports.Reloader = (*Hub)(nil)

// Event kinds sent to browsers.
const (
	EventCSS    = "css"
	EventReload = "reload"
)

// clientBuffer is the number of pending events a slow client may queue
// before further events are dropped for it.
const clientBuffer = 16

// Event is one server-sent event.
type Event struct {
	Kind string
	Path string
}

// Hub fans reload events out to subscribed clients.
type Hub struct {
	root string

	mu      sync.Mutex
	clients map[chan Event]struct{}
}

// NewHub creates a Hub for outputs below root.
func NewHub(root string) *Hub {
	return &Hub{root: root, clients: make(map[chan Event]struct{})}
}

// Subscribe registers a client. The returned function unregisters it.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, clientBuffer)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.clients[ch]; ok {
			delete(h.clients, ch)
			close(ch)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Notify broadcasts one event per changed output. Source maps are skipped
// and stylesheets are announced for hot swapping. Sends never block.
func (h *Hub) Notify(paths []string) {
	events := make([]Event, 0, len(paths))
	for _, p := range paths {
		if ev, ok := h.eventFor(p); ok {
			events = append(events, ev)
		}
	}
	if len(events) == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		for _, ev := range events {
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

func (h *Hub) eventFor(path string) (Event, bool) {
	if strings.HasSuffix(path, ".map") {
		return Event{}, false
	}
	rel, err := filepath.Rel(h.root, path)
	if err != nil || !filepath.IsLocal(rel) {
		return Event{}, false
	}
	url := "/" + filepath.ToSlash(rel)
	if strings.HasSuffix(path, ".css") {
		return Event{Kind: EventCSS, Path: url}, true
	}
	return Event{Kind: EventReload, Path: url}, true
}
