// Package pipeline interprets task pipelines: it resolves sources into records and applies
// the declared steps in order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sync"

	"go.trai.ch/swig/internal/core/domain"
	"go.trai.ch/swig/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var _ ports.Executor = (*Runner)(nil)

// Runner implements ports.Executor.
type Runner struct {
	resolver ports.InputResolver
	hasher   ports.Hasher
	linter   ports.Linter
	minifier ports.Minifier
	compiler ports.StylesheetCompiler
	logger   ports.Logger
}

// NewRunner creates a Runner from its collaborators.
func NewRunner(
	resolver ports.InputResolver,
	hasher ports.Hasher,
	linter ports.Linter,
	minifier ports.Minifier,
	compiler ports.StylesheetCompiler,
	logger ports.Logger,
) *Runner {
	return &Runner{
		resolver: resolver,
		hasher:   hasher,
		linter:   linter,
		minifier: minifier,
		compiler: compiler,
		logger:   logger,
	}
}

// Result is the outcome of one pipeline execution.
type Result struct {
	// Records are the records left after the last step.
	Records []domain.Record
	// Errors are the per-record transform failures. Their records were dropped.
	Errors []error
	// Fatal is set when the pipeline aborted before its last step.
	Fatal error
}

// Execute runs the task's pipelines concurrently. Each pipeline is isolated: a failure
// in one never cancels its siblings.
func (r *Runner) Execute(ctx context.Context, env domain.BuildEnv, task *domain.Task, out io.Writer) error {
	w := &lockedWriter{w: out}
	results := make([]Result, len(task.Pipelines))

	var g errgroup.Group
	for i := range task.Pipelines {
		g.Go(func() error {
			results[i] = r.Run(ctx, env, task.Pipelines[i], w)
			return nil
		})
	}
	_ = g.Wait()

	var fatal []error
	for i, res := range results {
		for _, err := range res.Errors {
			r.logger.Error(err)
		}
		if res.Fatal != nil {
			r.logger.Error(res.Fatal)
			if errors.Is(res.Fatal, domain.ErrFatalIO) {
				fatal = append(fatal, zerr.With(res.Fatal, "pipeline", task.Pipelines[i].Name))
			}
		}
	}
	return errors.Join(fatal...)
}

// Run executes a single pipeline and reports progress and failures to out.
func (r *Runner) Run(ctx context.Context, env domain.BuildEnv, p domain.Pipeline, out io.Writer) (res Result) {
	defer func() {
		for _, e := range res.Errors {
			_, _ = fmt.Fprintf(out, "%v\n", e)
		}
		if res.Fatal != nil {
			_, _ = fmt.Fprintf(out, "%s aborted: %v\n", p.Name, res.Fatal)
		}
	}()

	records, errs, err := r.load(env.Root, p.Sources)
	res.Errors = errs
	if err != nil {
		res.Fatal = err
		return res
	}

	for i, step := range p.Steps {
		label := fmt.Sprintf("%d:%s", i, step.Kind)
		if err := ctx.Err(); err != nil {
			res.Fatal = zerr.With(err, "step", label)
			return res
		}
		next, errs, err := r.apply(env, step, records, out)
		for _, e := range errs {
			res.Errors = append(res.Errors, zerr.With(e, "step", label))
		}
		if err != nil {
			res.Fatal = zerr.With(err, "step", label)
			return res
		}
		records = next
	}
	res.Records = records
	return res
}

// load resolves sources into records. Missing literal sources and unreadable files are
// transform errors; an invalid pattern aborts the pipeline.
func (r *Runner) load(root string, sources []string) ([]domain.Record, []error, error) {
	if len(sources) == 0 {
		return nil, nil, nil
	}
	files, missing, err := r.resolver.Resolve(root, sources)
	if err != nil {
		return nil, nil, err
	}

	var errs []error
	for _, m := range missing {
		errs = append(errs, transformError(zerr.Wrap(domain.ErrInputNotFound, "source does not exist"), m))
	}

	records := make([]domain.Record, 0, len(files))
	for _, f := range files {
		contents, err := os.ReadFile(f.Abs)
		if err != nil {
			errs = append(errs, transformError(zerr.Wrap(domain.ErrFileOpenFailed, err.Error()), path.Join(f.Base, f.Path)))
			continue
		}
		records = append(records, domain.Record{
			Base:     f.Base,
			Path:     f.Path,
			Contents: contents,
			Metadata: map[string]string{domain.MetaSource: f.Abs},
		})
	}
	return records, errs, nil
}

// transformError classifies cause as a per-record failure for the record at p.
func transformError(cause error, p string) error {
	return zerr.With(zerr.Wrap(domain.ErrTransformFailed, cause.Error()), "path", p)
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
