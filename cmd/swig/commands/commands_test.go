package commands_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/swig/cmd/swig/commands"
	"go.trai.ch/swig/internal/app"
	"go.trai.ch/swig/internal/build"
)

type mockApp struct {
	runFunc   func(ctx context.Context, targetNames []string, opts app.RunOptions) error
	listFunc  func(w io.Writer, configPath string) error
	graphFunc func(w io.Writer, target, configPath string) error
}

func (m *mockApp) Run(ctx context.Context, targetNames []string, opts app.RunOptions) error {
	if m.runFunc != nil {
		return m.runFunc(ctx, targetNames, opts)
	}
	return nil
}

func (m *mockApp) List(w io.Writer, configPath string) error {
	if m.listFunc != nil {
		return m.listFunc(w, configPath)
	}
	return nil
}

func (m *mockApp) Graph(w io.Writer, target, configPath string) error {
	if m.graphFunc != nil {
		return m.graphFunc(w, target, configPath)
	}
	return nil
}

func TestCommands_Run(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var capturedOpts app.RunOptions
		var capturedTargets []string

		mock := &mockApp{
			runFunc: func(_ context.Context, targetNames []string, opts app.RunOptions) error {
				capturedOpts = opts
				capturedTargets = targetNames
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run", "dist", "less", "-j", "3", "-c", "build/swig.toml", "--output-mode", "tui"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, []string{"dist", "less"}, capturedTargets)
		assert.Equal(t, app.RunOptions{
			ConfigPath:  "build/swig.toml",
			Parallelism: 3,
			OutputMode:  "tui",
		}, capturedOpts)
	})

	t.Run("ci forces linear output", func(t *testing.T) {
		var capturedOpts app.RunOptions
		mock := &mockApp{
			runFunc: func(_ context.Context, _ []string, opts app.RunOptions) error {
				capturedOpts = opts
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run", "--ci", "-o", "tui"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, "linear", capturedOpts.OutputMode)
	})

	t.Run("no targets defers to the default task", func(t *testing.T) {
		var capturedTargets []string
		called := false
		mock := &mockApp{
			runFunc: func(_ context.Context, targetNames []string, _ app.RunOptions) error {
				capturedTargets = targetNames
				called = true
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.True(t, called)
		assert.Empty(t, capturedTargets)
	})

	t.Run("returns error on run failure", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(_ context.Context, _ []string, _ app.RunOptions) error {
				return errors.New("simulated error")
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run", "target"})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_List(t *testing.T) {
	mock := &mockApp{
		listFunc: func(w io.Writer, configPath string) error {
			_, err := fmt.Fprintf(w, "listed %q\n", configPath)
			return err
		},
	}

	cli := commands.New(mock)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"list", "--config", "swig.yaml"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Equal(t, "listed \"swig.yaml\"\n", buf.String())
}

func TestCommands_Graph(t *testing.T) {
	t.Run("passes the task", func(t *testing.T) {
		var captured string
		mock := &mockApp{
			graphFunc: func(_ io.Writer, target, _ string) error {
				captured = target
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"graph", "dist"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, "dist", captured)
	})

	t.Run("requires exactly one task", func(t *testing.T) {
		cli := commands.New(&mockApp{})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{"graph"})

		require.Error(t, cli.Execute(context.Background()))
	})
}

func TestCommands_Version(t *testing.T) {
	cli := commands.New(&mockApp{})
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"version"})

	require.NoError(t, cli.Execute(context.Background()))
	expected := fmt.Sprintf("swig version %s (commit: %s, date: %s)\n", build.Version, build.Commit, build.Date)
	assert.Equal(t, expected, buf.String())
}
