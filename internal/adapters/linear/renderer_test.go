package linear_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/swig/internal/adapters/linear"
	"go.trai.ch/swig/internal/core/ports"
)

var _ ports.Renderer = (*linear.Renderer)(nil)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newRenderer(t *testing.T) (*linear.Renderer, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	var stdout, stderr bytes.Buffer
	return linear.NewRenderer(&stdout, &stderr), &stdout, &stderr
}

func TestRenderer_Run(t *testing.T) {
	r, stdout, stderr := newRenderer(t)
	require.NoError(t, r.Start(context.Background()))

	r.OnPlanEmit([]string{"clean", "lint", "dist"},
		map[string][]string{"dist": {"clean", "lint"}}, []string{"dist"})
	r.OnTaskStart("s1", "", "clean", epoch)
	r.OnTaskStart("s2", "", "lint", epoch)
	r.OnTaskLog("s2", []byte("src/js/main.js:3:3 Forgotten 'debugger' statement?\n"))
	r.OnTaskComplete("s1", epoch.Add(12*time.Millisecond), nil)
	r.OnTaskComplete("s2", epoch.Add(40*time.Millisecond), nil)
	r.OnTaskStart("s3", "", "dist", epoch.Add(40*time.Millisecond))
	r.OnTaskLog("s3", []byte("wrote dist/swagger-ui.js\nwrote dist/swagger-ui.min.js\n"))
	r.OnTaskComplete("s3", epoch.Add(250*time.Millisecond), errors.New("fatal io error: dist"))

	require.NoError(t, r.Stop())
	require.NoError(t, r.Wait())

	g := goldie.New(t)
	g.Assert(t, "run_stdout", stdout.Bytes())
	g.Assert(t, "run_stderr", stderr.Bytes())
}

func TestRenderer_PartialLines(t *testing.T) {
	r, stdout, _ := newRenderer(t)

	r.OnTaskStart("s1", "", "less", epoch)
	r.OnTaskLog("s1", []byte("partial"))
	assert.Empty(t, stdout.String())

	r.OnTaskLog("s1", []byte(" line\ntrailing"))
	assert.Equal(t, "[less] partial line\n", stdout.String())

	r.OnTaskComplete("s1", epoch, nil)
	assert.Equal(t, "[less] partial line\n[less] trailing\n", stdout.String())
}

func TestRenderer_NestedLabel(t *testing.T) {
	r, stdout, stderr := newRenderer(t)

	r.OnTaskStart("w", "", "watch", epoch)
	r.OnTaskStart("d", "w", "dev-dist", epoch)
	r.OnTaskLog("d", []byte("rebuilt\n"))
	r.OnTaskComplete("d", epoch.Add(time.Second), nil)

	assert.Equal(t, "[watch/dev-dist] rebuilt\n", stdout.String())
	assert.Contains(t, stderr.String(), "[watch/dev-dist] ✓ finished in 1s")
}

func TestRenderer_UnknownSpan(t *testing.T) {
	r, stdout, stderr := newRenderer(t)
	r.OnTaskLog("missing", []byte("ignored\n"))
	r.OnTaskComplete("missing", epoch, nil)
	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())
}
