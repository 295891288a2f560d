package scheduler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/swig/internal/adapters/devserver" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/swig/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/swig/internal/adapters/pkgmeta"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/swig/internal/adapters/watcher"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/swig/internal/core/ports"
	"go.trai.ch/swig/internal/engine/pipeline"
)

// Components are the long-lived collaborators of a Scheduler. The tracer is per run,
// since it depends on the renderer chosen for that run.
type Components struct {
	Executor ports.Executor
	Watcher  ports.ChangeWatcher
	Server   ports.DevServer
	Meta     ports.PackageMetaReader
	Logger   ports.Logger
}

// New creates a Scheduler from c reporting to tracer.
func (c *Components) New(tracer ports.Tracer) *Scheduler {
	return NewScheduler(c.Executor, tracer, c.Watcher, c.Server, c.Meta, c.Logger)
}

// NodeID is the unique identifier for the scheduler components Graft node.
const NodeID graft.ID = "engine.scheduler"

func init() {
	graft.Register(graft.Node[*Components]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			pipeline.NodeID,
			watcher.NodeID,
			devserver.NodeID,
			pkgmeta.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			watch, err := graft.Dep[ports.ChangeWatcher](ctx)
			if err != nil {
				return nil, err
			}
			server, err := graft.Dep[ports.DevServer](ctx)
			if err != nil {
				return nil, err
			}
			meta, err := graft.Dep[ports.PackageMetaReader](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{
				Executor: executor,
				Watcher:  watch,
				Server:   server,
				Meta:     meta,
				Logger:   log,
			}, nil
		},
	})
}
