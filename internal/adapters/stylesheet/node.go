package stylesheet

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/swig/internal/core/ports"
)

// NodeID is the unique identifier for the stylesheet compiler Graft node.
const NodeID graft.ID = "adapter.stylesheet"

func init() {
	graft.Register(graft.Node[ports.StylesheetCompiler]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.StylesheetCompiler, error) {
			return NewCompiler(), nil
		},
	})
}
