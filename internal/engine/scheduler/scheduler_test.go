package scheduler_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/swig/internal/core/domain"
	"go.trai.ch/swig/internal/core/ports"
	"go.trai.ch/swig/internal/core/ports/mocks"
	"go.trai.ch/swig/internal/engine/scheduler"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type schedulerTestMocks struct {
	executor *mocks.MockExecutor
	tracer   *mocks.MockTracer
	watcher  *mocks.MockChangeWatcher
	server   *mocks.MockDevServer
	meta     *mocks.MockPackageMetaReader
	logger   *mocks.MockLogger
}

// setupSchedulerTest creates a scheduler and common mocks.
func setupSchedulerTest(t *testing.T) (*scheduler.Scheduler, schedulerTestMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := schedulerTestMocks{
		executor: mocks.NewMockExecutor(ctrl),
		tracer:   mocks.NewMockTracer(ctrl),
		watcher:  mocks.NewMockChangeWatcher(ctrl),
		server:   mocks.NewMockDevServer(ctrl),
		meta:     mocks.NewMockPackageMetaReader(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
	}

	mockSpan := mocks.NewMockSpan(ctrl)
	mockSpan.EXPECT().End().AnyTimes()
	mockSpan.EXPECT().RecordError(gomock.Any()).AnyTimes()
	mockSpan.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()
	mockSpan.EXPECT().Write(gomock.Any()).DoAndReturn(func(p []byte) (int, error) { return len(p), nil }).AnyTimes()

	m.tracer.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
			return ctx, mockSpan
		},
	).AnyTimes()
	m.tracer.EXPECT().EmitPlan(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	m.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	m.logger.EXPECT().Warn(gomock.Any()).AnyTimes()

	s := scheduler.NewScheduler(m.executor, m.tracer, m.watcher, m.server, m.meta, m.logger)
	return s, m
}

func pipelineTask(name string, deps ...string) *domain.Task {
	return &domain.Task{
		Name:         domain.NewInternedString(name),
		Dependencies: domain.NewInternedStrings(deps),
		Pipelines:    []domain.Pipeline{{Name: name, Sources: []string{"src/*.js"}}},
	}
}

func buildGraph(t *testing.T, tasks ...*domain.Task) *domain.Graph {
	t.Helper()
	g := domain.NewGraph()
	g.SetRoot("/tmp/root")
	for _, task := range tasks {
		require.NoError(t, g.AddTask(task))
	}
	return g
}

func TestScheduler_DiamondRunsEachTaskOnce(t *testing.T) {
	t.Parallel()
	s, m := setupSchedulerTest(t)

	// A depends on B and C; both depend on D.
	g := buildGraph(t,
		pipelineTask("A", "B", "C"),
		pipelineTask("B", "D"),
		pipelineTask("C", "D"),
		pipelineTask("D"),
	)

	var mu sync.Mutex
	var order []string
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, env domain.BuildEnv, task *domain.Task, _ io.Writer) error {
			assert.Equal(t, "/tmp/root", env.Root)
			mu.Lock()
			defer mu.Unlock()
			order = append(order, task.Name.String())
			return nil
		}).Times(4)

	require.NoError(t, s.Run(context.Background(), g, []string{"A", "B"}, 2))

	require.Len(t, order, 4)
	assert.Equal(t, "D", order[0])
	assert.Equal(t, "A", order[3])
	for _, name := range []string{"A", "B", "C", "D"} {
		assert.Equal(t, scheduler.StatusCompleted, s.GetTaskStatusMap()[name])
	}
}

func TestScheduler_UnknownTarget(t *testing.T) {
	t.Parallel()
	s, _ := setupSchedulerTest(t)
	g := buildGraph(t, pipelineTask("build"))

	err := s.Run(context.Background(), g, []string{"nosuchtask"}, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestScheduler_NoTargets(t *testing.T) {
	t.Parallel()
	s, _ := setupSchedulerTest(t)
	g := buildGraph(t, pipelineTask("build"))

	err := s.Run(context.Background(), g, nil, 1)
	assert.ErrorIs(t, err, domain.ErrNoTargetsSpecified)
}

func TestScheduler_FailureStillRunsDependents(t *testing.T) {
	t.Parallel()
	s, m := setupSchedulerTest(t)
	g := buildGraph(t, pipelineTask("default", "lint"), pipelineTask("lint"))

	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.BuildEnv, task *domain.Task, _ io.Writer) error {
			if task.Name.String() == "lint" {
				return errors.New("pipeline aborted")
			}
			return nil
		}).Times(2)
	m.logger.EXPECT().Error(gomock.Any()).Times(1)

	require.NoError(t, s.Run(context.Background(), g, []string{"default"}, 1))
	assert.Equal(t, scheduler.StatusFailed, s.GetTaskStatusMap()["lint"])
	assert.Equal(t, scheduler.StatusCompleted, s.GetTaskStatusMap()["default"])
}

func TestScheduler_FatalIOFailsRun(t *testing.T) {
	t.Parallel()
	s, m := setupSchedulerTest(t)
	g := buildGraph(t, pipelineTask("dist"))

	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(zerr.Wrap(domain.ErrFatalIO, "cannot create dist")).Times(1)
	m.logger.EXPECT().Error(gomock.Any()).Times(1)

	err := s.Run(context.Background(), g, []string{"dist"}, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	assert.ErrorIs(t, err, domain.ErrFatalIO)
	assert.ErrorIs(t, err, domain.ErrTaskExecutionFailed)
}

func TestScheduler_StructuralTaskSkipsExecutor(t *testing.T) {
	t.Parallel()
	s, m := setupSchedulerTest(t)
	g := buildGraph(t,
		&domain.Task{Name: domain.NewInternedString("all"), Dependencies: domain.NewInternedStrings([]string{"js"})},
		pipelineTask("js"),
	)

	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(1)

	require.NoError(t, s.Run(context.Background(), g, []string{"all"}, 0))
	assert.Equal(t, scheduler.StatusCompleted, s.GetTaskStatusMap()["all"])
}

func TestScheduler_ThenRunsAfterAction(t *testing.T) {
	t.Parallel()
	s, m := setupSchedulerTest(t)

	build := pipelineTask("build", "clean")
	build.Then = domain.NewInternedStrings([]string{"docs"})
	g := buildGraph(t, build, pipelineTask("clean"), pipelineTask("docs", "clean"))

	var mu sync.Mutex
	var order []string
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.BuildEnv, task *domain.Task, _ io.Writer) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, task.Name.String())
			return nil
		}).Times(4)

	require.NoError(t, s.Run(context.Background(), g, []string{"build"}, 1))

	// The nested invocation has its own scope, so clean runs again before docs.
	assert.Equal(t, []string{"clean", "build", "clean", "docs"}, order)
}

func TestScheduler_ReadsPackageMetaOnce(t *testing.T) {
	t.Parallel()
	s, m := setupSchedulerTest(t)
	g := buildGraph(t, pipelineTask("a"), pipelineTask("b", "a"))
	g.SetPackageFile("package.json")

	meta := domain.PackageMeta{Name: "swagger-ui", Version: "2.0.0"}
	m.meta.EXPECT().Read("/tmp/root/package.json").Return(meta, nil).Times(1)
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, env domain.BuildEnv, _ *domain.Task, _ io.Writer) error {
			assert.Equal(t, meta, env.Meta)
			return nil
		}).Times(2)

	require.NoError(t, s.Run(context.Background(), g, []string{"b"}, 1))
}

func TestScheduler_ServicesBlockUntilCancelled(t *testing.T) {
	t.Parallel()
	synctest.Test(t, func(t *testing.T) {
		s, m := setupSchedulerTest(t)

		rule := &domain.WatchRule{
			Patterns: []string{"src/**/*.js"},
			Run:      domain.NewInternedStrings([]string{"dist"}),
			Debounce: 100 * time.Millisecond,
		}
		g := buildGraph(t,
			pipelineTask("dist"),
			&domain.Task{Name: domain.NewInternedString("watch"), Watch: rule},
			&domain.Task{
				Name:  domain.NewInternedString("serve"),
				Serve: &domain.ServeSpec{Root: "dist", Port: 8080, LiveReload: true},
			},
		)

		var onChange ports.ChangeFunc
		m.watcher.EXPECT().Watch(gomock.Any(), "/tmp/root", *rule, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, _ domain.WatchRule, fn ports.ChangeFunc) error {
				onChange = fn
				return nil
			})
		m.server.EXPECT().Start(gomock.Any(), "/tmp/root", gomock.Any()).Return(nil)

		var rebuilds atomic.Int32
		m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, domain.BuildEnv, *domain.Task, io.Writer) error {
				rebuilds.Add(1)
				return nil
			}).AnyTimes()
		m.server.EXPECT().Reload("src/app.js").Times(1)
		m.watcher.EXPECT().Wait().Return(nil)
		m.server.EXPECT().Wait().Return(nil)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- s.Run(ctx, g, []string{"watch", "serve"}, 2) }()

		synctest.Wait()
		select {
		case <-done:
			t.Fatal("run returned while services were active")
		default:
		}

		require.NotNil(t, onChange)
		onChange(ctx, []string{"/tmp/root/src/app.js"})
		assert.Equal(t, int32(1), rebuilds.Load())

		cancel()
		require.NoError(t, <-done)
	})
}

func TestScheduler_ServerStartFailureIsFatal(t *testing.T) {
	t.Parallel()
	s, m := setupSchedulerTest(t)
	g := buildGraph(t, &domain.Task{
		Name:  domain.NewInternedString("serve"),
		Serve: &domain.ServeSpec{Root: "dist", Port: 8080},
	})

	m.server.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(zerr.Wrap(domain.ErrServerStartFailed, "address already in use"))
	m.logger.EXPECT().Error(gomock.Any()).Times(1)

	err := s.Run(context.Background(), g, []string{"serve"}, 1)
	assert.ErrorIs(t, err, domain.ErrServerStartFailed)
	assert.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
}
