package watcher

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/swig/internal/adapters/logger"
	"go.trai.ch/swig/internal/core/ports"
)

// NodeID is the unique identifier for the watch loop Graft node.
const NodeID graft.ID = "adapter.watcher"

func init() {
	graft.Register(graft.Node[ports.ChangeWatcher]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.ChangeWatcher, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoop(log), nil
		},
	})
}
