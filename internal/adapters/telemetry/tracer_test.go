package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/swig/internal/adapters/telemetry"
	"go.trai.ch/swig/internal/core/ports"
	"go.trai.ch/swig/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestInterfaceSatisfaction(_ *testing.T) {
	var _ ports.Tracer = (*telemetry.OTelTracer)(nil)
	var _ ports.Span = (*telemetry.OTelSpan)(nil)
}

func TestOTelTracer_ReportsSpanLifecycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)

	var rootID, childID string
	gomock.InOrder(
		renderer.EXPECT().OnTaskStart(gomock.Any(), "", "dist", gomock.Any()).
			Do(func(id, _, _ string, _ time.Time) { rootID = id }),
		renderer.EXPECT().OnTaskStart(gomock.Any(), gomock.Any(), "lint", gomock.Any()).
			Do(func(id, parent, _ string, _ time.Time) {
				childID = id
				assert.Equal(t, rootID, parent)
			}),
		renderer.EXPECT().OnTaskLog(gomock.Any(), []byte("src/main.js: ok\n")).
			Do(func(id string, _ []byte) { assert.Equal(t, childID, id) }),
		renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), gomock.Not(gomock.Nil())),
		renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), nil),
	)

	tracer := telemetry.NewOTelTracer("test", renderer)
	defer func() { require.NoError(t, tracer.Shutdown(context.Background())) }()

	ctx, root := tracer.Start(context.Background(), "dist")
	_, child := tracer.Start(ctx, "lint", ports.WithNested())
	_, err := child.Write([]byte("src/main.js: ok\n"))
	require.NoError(t, err)
	child.RecordError(errors.New("boom"))
	child.End()
	root.End()
}

func TestOTelTracer_EmitPlan(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)

	deps := map[string][]string{"dist": {"clean", "lint"}}
	renderer.EXPECT().OnPlanEmit([]string{"clean", "lint", "dist"}, deps, []string{"dist"})

	tracer := telemetry.NewOTelTracer("test", renderer)
	tracer.EmitPlan(context.Background(), []string{"clean", "lint", "dist"}, deps, []string{"dist"})
}

func TestOTelTracer_WithoutRenderer(t *testing.T) {
	tracer := telemetry.NewOTelTracer("test", nil)
	_, span := tracer.Start(context.Background(), "copy")
	span.SetAttribute("records", 3)
	span.SetAttribute("dest", "dist")
	span.SetAttribute("patterns", []string{"src/**/*.js"})
	span.SetAttribute("other", 1.5)
	n, err := span.Write([]byte("log"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	span.End()
}
