package ports

import "go.trai.ch/swig/internal/core/domain"

// ConfigLoader defines the interface for loading the build configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration and returns the validated task graph.
	// When configPath is empty the file is discovered by walking up from cwd.
	Load(cwd, configPath string) (*domain.Graph, error)
}
