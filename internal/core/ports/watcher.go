package ports

import (
	"context"
	"iter"
)

// WatchOp is the kind of change behind a WatchEvent.
type WatchOp uint8

// Watch operations.
const (
	OpCreate WatchOp = iota
	OpWrite
	OpRemove
	OpRename
)

// WatchEvent is one change below the watched source root.
type WatchEvent struct {
	// Path is absolute.
	Path      string
	Operation WatchOp
}

// Watcher reports changes below a source tree.
//
//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Start subscribes to root and every directory below it. Events flow
	// until ctx is done, at which point the stream ends.
	Start(ctx context.Context, root string) error
	// Stop releases the subscription.
	Stop() error
	// Events yields changes in arrival order.
	Events() iter.Seq[WatchEvent]
}
