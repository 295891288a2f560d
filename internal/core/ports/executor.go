// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/swig/internal/core/domain"
)

// Executor defines the interface for running a task's pipelines.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs every pipeline of the task relative to env.Root, writing progress and
	// per-record failures to out.
	//
	// Per-record transform failures are reported to out and do not produce an error.
	// It returns an error wrapping domain.ErrFatalIO if any pipeline hit an unwritable destination.
	Execute(ctx context.Context, env domain.BuildEnv, task *domain.Task, out io.Writer) error
}
