package lint

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/swig/internal/core/ports"
)

// NodeID is the unique identifier for the linter Graft node.
const NodeID graft.ID = "adapter.lint"

func init() {
	graft.Register(graft.Node[ports.Linter]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Linter, error) {
			return NewLinter(), nil
		},
	})
}
