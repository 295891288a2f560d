package ports

import "go.trai.ch/swig/internal/core/domain"

// InputResolver expands source patterns into concrete files.
//
//go:generate mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type InputResolver interface {
	// Resolve evaluates patterns in order relative to root. A pattern prefixed with "!"
	// removes earlier matches. Literal patterns that do not exist are returned in missing.
	Resolve(root string, patterns []string) (files []domain.SourceFile, missing []string, err error)
}
