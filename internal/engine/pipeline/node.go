package pipeline

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/swig/internal/adapters/fs"         //nolint:depguard // Wired in engine wiring
	"go.trai.ch/swig/internal/adapters/lint"       //nolint:depguard // Wired in engine wiring
	"go.trai.ch/swig/internal/adapters/logger"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/swig/internal/adapters/minify"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/swig/internal/adapters/stylesheet" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/swig/internal/core/ports"
)

// NodeID is the unique identifier for the pipeline runner Graft node.
const NodeID graft.ID = "engine.pipeline"

func init() {
	graft.Register(graft.Node[ports.Executor]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			fs.ResolverNodeID,
			fs.HasherNodeID,
			lint.NodeID,
			minify.NodeID,
			stylesheet.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (ports.Executor, error) {
			resolver, err := graft.Dep[ports.InputResolver](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			linter, err := graft.Dep[ports.Linter](ctx)
			if err != nil {
				return nil, err
			}
			minifier, err := graft.Dep[ports.Minifier](ctx)
			if err != nil {
				return nil, err
			}
			compiler, err := graft.Dep[ports.StylesheetCompiler](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewRunner(resolver, hasher, linter, minifier, compiler, log), nil
		},
	})
}
