// Package app implements the application layer for swig.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/swig/internal/adapters/detector"
	"go.trai.ch/swig/internal/adapters/linear"
	"go.trai.ch/swig/internal/adapters/telemetry"
	"go.trai.ch/swig/internal/adapters/tui"
	"go.trai.ch/swig/internal/core/domain"
	"go.trai.ch/swig/internal/core/ports"
	"go.trai.ch/swig/internal/engine/scheduler"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// DefaultTarget is run when no task is named.
const DefaultTarget = "default"

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	components   *scheduler.Components
	logger       ports.Logger
	teaOptions   []tea.ProgramOption
	stdout       io.Writer
	stderr       io.Writer
	getwd        func() (string, error)
}

// New creates a new App instance.
func New(loader ports.ConfigLoader, components *scheduler.Components, log ports.Logger) *App {
	return &App{
		configLoader: loader,
		components:   components,
		logger:       log,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		getwd:        os.Getwd,
	}
}

// WithTeaOptions adds bubbletea program options to the App.
// This is primarily used for testing to disable input/output.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = append(a.teaOptions, opts...)
	return a
}

// WithOutput redirects the linear renderer streams.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// WithWorkDir makes the App resolve the config file from dir instead of the process working directory.
func (a *App) WithWorkDir(dir string) *App {
	a.getwd = func() (string, error) { return dir, nil }
	return a
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	ConfigPath  string
	Parallelism int
	OutputMode  string
}

// Run executes the build process for the specified targets.
func (a *App) Run(ctx context.Context, targetNames []string, opts RunOptions) error {
	requested, err := detector.ParseMode(opts.OutputMode)
	if err != nil {
		return errors.Join(domain.ErrConfiguration, err)
	}

	// 1. Load the graph
	graph, err := a.load(opts.ConfigPath)
	if err != nil {
		return err
	}

	if len(targetNames) == 0 {
		targetNames = []string{DefaultTarget}
	}

	// 2. Initialize Renderer
	mode := detector.ResolveMode(detector.DetectEnvironment(), requested)

	var renderer ports.Renderer
	if mode == detector.ModeTUI {
		model := tui.NewModel()
		optsTea := append([]tea.ProgramOption{tea.WithContext(ctx)}, a.teaOptions...)
		renderer = tui.NewRenderer(&model, optsTea...)
	} else {
		renderer = linear.NewRenderer(a.stdout, a.stderr)
	}

	// 3. Initialize Telemetry
	tracer := telemetry.NewOTelTracer("swig", renderer)
	defer func() {
		_ = tracer.Shutdown(context.WithoutCancel(ctx))
	}()

	sched := a.components.New(tracer)

	// 4. Run Renderer and Scheduler concurrently
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := renderer.Start(ctx); err != nil {
			return err
		}
		err := renderer.Wait()
		// Quitting the interactive view ends long-running services too.
		if mode == detector.ModeTUI {
			cancel()
		}
		return err
	})

	g.Go(func() error {
		defer func() {
			_ = renderer.Stop()
		}()
		return sched.Run(ctx, graph, targetNames, opts.Parallelism)
	})

	return g.Wait()
}

// List writes every task with its prerequisites and description, sorted by name.
func (a *App) List(w io.Writer, configPath string) error {
	graph, err := a.load(configPath)
	if err != nil {
		return err
	}
	for _, name := range graph.Names() {
		task, _ := graph.GetTask(domain.NewInternedString(name))
		line := name
		if len(task.Dependencies) > 0 {
			line += " [" + strings.Join(domain.Strings(task.Dependencies), ", ") + "]"
		}
		if task.Description != "" {
			line += "  " + task.Description
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Graph writes the de-duplicated execution order for target, one task per line.
func (a *App) Graph(w io.Writer, target, configPath string) error {
	graph, err := a.load(configPath)
	if err != nil {
		return err
	}
	plan, err := graph.Plan([]domain.InternedString{domain.NewInternedString(target)})
	if err != nil {
		return errors.Join(domain.ErrConfiguration, err)
	}
	for i, name := range plan {
		if _, err := fmt.Fprintf(w, "%d. %s\n", i+1, name.String()); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) load(configPath string) (*domain.Graph, error) {
	cwd, err := a.getwd()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to resolve working directory")
	}
	graph, err := a.configLoader.Load(cwd, configPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return graph, nil
}
