package ports

import (
	"context"
	"iter"

	"go.trai.ch/swig/internal/core/domain"
)

//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks

// WatchOp represents the type of file system operation.
type WatchOp uint8

const (
	// OpCreate indicates a file or directory was created.
	OpCreate WatchOp = iota
	// OpWrite indicates a file was modified.
	OpWrite
	// OpRemove indicates a file or directory was removed.
	OpRemove
	// OpRename indicates a file or directory was renamed.
	OpRename
)

// WatchEvent represents a file system event from the watcher.
type WatchEvent struct {
	// Path is the absolute path of the file or directory that changed.
	Path string
	// Operation is the type of change that occurred.
	Operation WatchOp
}

// Watcher defines the interface for watching file system changes.
type Watcher interface {
	// Start begins watching the given root directory recursively.
	// It returns an error if the watcher fails to start.
	Start(ctx context.Context, root string) error
	// Stop stops the watcher and releases all resources.
	Stop() error
	// Events returns an iterator of file system events.
	Events() iter.Seq[WatchEvent]
}

// ChangeFunc is invoked once per debounced burst of matching changes.
type ChangeFunc func(ctx context.Context, paths []string)

// ChangeWatcher runs watch rules: a filesystem subscription filtered by glob patterns and debounced.
type ChangeWatcher interface {
	// Watch starts a background loop for rule under root and returns once the subscription is live.
	// The loop ends when ctx is cancelled.
	Watch(ctx context.Context, root string, rule domain.WatchRule, onChange ChangeFunc) error
	// Wait blocks until every loop started by Watch has ended.
	Wait() error
}
