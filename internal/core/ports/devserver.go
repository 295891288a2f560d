package ports

import (
	"context"

	"go.trai.ch/swig/internal/core/domain"
)

// DevServer serves a directory over HTTP and pushes live-reload signals to browsers.
//
//go:generate mockgen -source=devserver.go -destination=mocks/mock_devserver.go -package=mocks
type DevServer interface {
	// Start binds the listener for spec and serves in the background until ctx is cancelled.
	// spec.Root is resolved against root.
	Start(ctx context.Context, root string, spec domain.ServeSpec) error
	// Wait blocks until every server started by Start has shut down.
	Wait() error
	// Reload broadcasts a reload signal to every connected client. It is a no-op without clients.
	Reload(path string)
}
