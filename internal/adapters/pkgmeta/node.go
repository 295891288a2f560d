package pkgmeta

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/swig/internal/core/ports"
)

// NodeID is the unique identifier for the package metadata reader Graft node.
const NodeID graft.ID = "adapter.pkgmeta"

func init() {
	graft.Register(graft.Node[ports.PackageMetaReader]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.PackageMetaReader, error) {
			return NewReader(), nil
		},
	})
}
