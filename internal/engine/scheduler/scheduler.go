// Package scheduler runs tasks of the dependency graph in topological order.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"go.trai.ch/swig/internal/core/domain"
	"go.trai.ch/swig/internal/core/ports"
	"go.trai.ch/zerr"
)

// TaskStatus represents the status of a task.
type TaskStatus string

const (
	// StatusPending indicates the task is waiting to be executed.
	StatusPending TaskStatus = "Pending"
	// StatusRunning indicates the task is currently executing.
	StatusRunning TaskStatus = "Running"
	// StatusCompleted indicates the task has finished successfully.
	StatusCompleted TaskStatus = "Completed"
	// StatusFailed indicates the task execution failed.
	StatusFailed TaskStatus = "Failed"
)

// Scheduler manages the execution of tasks in the dependency graph.
type Scheduler struct {
	executor ports.Executor
	tracer   ports.Tracer
	watcher  ports.ChangeWatcher
	server   ports.DevServer
	meta     ports.PackageMetaReader
	logger   ports.Logger

	mu         sync.RWMutex
	taskStatus map[domain.InternedString]TaskStatus
}

// NewScheduler creates a new Scheduler with the given dependencies.
func NewScheduler(
	executor ports.Executor,
	tracer ports.Tracer,
	watcher ports.ChangeWatcher,
	server ports.DevServer,
	meta ports.PackageMetaReader,
	logger ports.Logger,
) *Scheduler {
	return &Scheduler{
		executor:   executor,
		tracer:     tracer,
		watcher:    watcher,
		server:     server,
		meta:       meta,
		logger:     logger,
		taskStatus: make(map[domain.InternedString]TaskStatus),
	}
}

// Status returns the last recorded status of a task.
func (s *Scheduler) Status(name string) TaskStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.taskStatus[domain.NewInternedString(name)]
}

func (s *Scheduler) updateStatus(name domain.InternedString, status TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskStatus[name] = status
}

// Run executes targetNames and their transitive prerequisites, each exactly once.
// Up to parallelism independent tasks run at the same time; non-positive means NumCPU.
//
// Unknown targets fail with a configuration error before any task runs. Task failures do
// not stop the run. Run returns an error when a task hit a fatal failure; when services
// were started it first blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context, graph *domain.Graph, targetNames []string, parallelism int) error {
	if err := graph.Validate(); err != nil {
		return errors.Join(domain.ErrConfiguration, err)
	}
	if len(targetNames) == 0 {
		return errors.Join(domain.ErrConfiguration, domain.ErrNoTargetsSpecified)
	}
	targets := domain.NewInternedStrings(targetNames)
	plan, err := graph.Plan(targets)
	if err != nil {
		return errors.Join(domain.ErrConfiguration, err)
	}
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	inv := &invocation{
		s:           s,
		graph:       graph,
		env:         domain.BuildEnv{Root: graph.Root(), Meta: s.readMeta(graph)},
		parallelism: parallelism,
		rootCtx:     ctx,
	}

	s.tracer.EmitPlan(ctx, domain.Strings(plan), dependencyMap(graph, plan), targetNames)
	inv.run(ctx, plan, false)

	if inv.services.Load() {
		<-ctx.Done()
		inv.fail(s.watcher.Wait())
		inv.fail(s.server.Wait())
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()
	if len(inv.errs) > 0 {
		return errors.Join(append([]error{domain.ErrBuildExecutionFailed}, inv.errs...)...)
	}
	return nil
}

func (s *Scheduler) readMeta(graph *domain.Graph) domain.PackageMeta {
	if graph.PackageFile() == "" {
		return domain.PackageMeta{}
	}
	path := filepath.Join(graph.Root(), filepath.FromSlash(graph.PackageFile()))
	meta, err := s.meta.Read(path)
	if err != nil {
		s.logger.Error(err)
		return domain.PackageMeta{}
	}
	if meta == (domain.PackageMeta{}) {
		s.logger.Warn(fmt.Sprintf("no package metadata in %s, banners render empty fields", graph.PackageFile()))
	}
	return meta
}

// invocation is the state shared by a top-level run and its nested runs.
type invocation struct {
	s           *Scheduler
	graph       *domain.Graph
	env         domain.BuildEnv
	parallelism int
	rootCtx     context.Context

	services atomic.Bool

	mu   sync.Mutex
	errs []error
}

// fail records err when it must make the run fail.
func (inv *invocation) fail(err error) {
	if err == nil {
		return
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.errs = append(inv.errs, err)
}

// runNested plans and runs targets as a fresh invocation with its own de-duplication scope.
func (inv *invocation) runNested(ctx context.Context, targets []domain.InternedString) {
	plan, err := inv.graph.Plan(targets)
	if err != nil {
		inv.s.logger.Error(err)
		return
	}
	inv.run(ctx, plan, true)
}

type result struct {
	task domain.InternedString
	err  error
}

type runState struct {
	inv       *invocation
	ctx       context.Context
	nested    bool
	inDegree  map[domain.InternedString]int
	tasks     map[domain.InternedString]domain.Task
	ready     []domain.InternedString
	active    int
	resultsCh chan result
}

// run executes plan, which must be closed under dependencies, in in-degree order.
func (inv *invocation) run(ctx context.Context, plan []domain.InternedString, nested bool) {
	state := &runState{
		inv:       inv,
		ctx:       ctx,
		nested:    nested,
		inDegree:  make(map[domain.InternedString]int, len(plan)),
		tasks:     make(map[domain.InternedString]domain.Task, len(plan)),
		resultsCh: make(chan result, inv.parallelism),
	}
	for _, name := range plan {
		task, _ := inv.graph.GetTask(name)
		state.tasks[name] = task
		state.inDegree[name] = len(task.Dependencies)
		inv.s.updateStatus(name, StatusPending)
	}
	// plan is in execution order, which keeps the ready queue deterministic.
	for _, name := range plan {
		if state.inDegree[name] == 0 {
			state.ready = append(state.ready, name)
		}
	}

	for !state.isDone() {
		state.schedule()
		if state.isDone() {
			break
		}
		if ctx.Err() != nil {
			// Cancelled: drain running tasks and start nothing new.
			if state.active == 0 {
				return
			}
			state.handleResult(<-state.resultsCh)
			continue
		}
		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
		case <-ctx.Done():
		}
	}
}

func (state *runState) isDone() bool {
	return state.active == 0 && len(state.ready) == 0
}

func (state *runState) schedule() {
	for len(state.ready) > 0 && state.active < state.inv.parallelism && state.ctx.Err() == nil {
		name := state.ready[0]
		state.ready = state.ready[1:]

		state.active++
		state.inv.s.updateStatus(name, StatusRunning)

		t := state.tasks[name]
		go state.executeTask(&t)
	}
}

// executeTask runs the task's action inside a span. The span ends before the result is
// sent so renderers see completion in order.
func (state *runState) executeTask(t *domain.Task) {
	err := func() error {
		var opts []ports.SpanOption
		if state.nested {
			opts = append(opts, ports.WithNested())
		}
		ctx, span := state.inv.s.tracer.Start(state.ctx, t.Name.String(), opts...)
		defer span.End()

		err := state.inv.runAction(ctx, t, span)
		if len(t.Then) > 0 && state.ctx.Err() == nil {
			state.inv.runNested(ctx, t.Then)
		}
		if err != nil {
			span.RecordError(err)
		}
		return err
	}()
	state.resultsCh <- result{task: t.Name, err: err}
}

// handleResult records the outcome and releases dependents. Dependents of a failed task
// still run.
func (state *runState) handleResult(res result) {
	state.active--
	s := state.inv.s

	if res.err != nil {
		err := zerr.With(zerr.Wrap(res.err, "task failed"), "task", res.task.String())
		s.logger.Error(err)
		s.updateStatus(res.task, StatusFailed)
		if isFatal(res.err) {
			state.inv.fail(errors.Join(domain.ErrTaskExecutionFailed, err))
		}
	} else {
		s.updateStatus(res.task, StatusCompleted)
	}

	for _, dep := range state.inv.graph.Dependents(res.task) {
		if _, ok := state.tasks[dep]; ok {
			state.inDegree[dep]--
			if state.inDegree[dep] == 0 {
				state.ready = append(state.ready, dep)
			}
		}
	}
}

func isFatal(err error) bool {
	return errors.Is(err, domain.ErrFatalIO) ||
		errors.Is(err, domain.ErrServerStartFailed) ||
		errors.Is(err, domain.ErrWatcherStartFailed)
}

func dependencyMap(graph *domain.Graph, plan []domain.InternedString) map[string][]string {
	deps := make(map[string][]string, len(plan))
	for _, name := range plan {
		task, _ := graph.GetTask(name)
		deps[name.String()] = domain.Strings(task.Dependencies)
	}
	return deps
}
