// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/swig/internal/adapters/config"
	_ "go.trai.ch/swig/internal/adapters/devserver"
	_ "go.trai.ch/swig/internal/adapters/fs"
	_ "go.trai.ch/swig/internal/adapters/lint"
	_ "go.trai.ch/swig/internal/adapters/logger"
	_ "go.trai.ch/swig/internal/adapters/minify"
	_ "go.trai.ch/swig/internal/adapters/pkgmeta"
	_ "go.trai.ch/swig/internal/adapters/stylesheet"
	_ "go.trai.ch/swig/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/swig/internal/app"
	_ "go.trai.ch/swig/internal/engine/pipeline"
	_ "go.trai.ch/swig/internal/engine/scheduler"
)
