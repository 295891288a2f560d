package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/swig/internal/adapters/logger"
)

func TestPrettyHandler_AttrsAndGroups(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer

	h := logger.NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})
	l := slog.New(h).With("task", "dist").WithGroup("step")

	l.Info("dropped")
	l.Warn("lint finding", "rule", "eqeqeq")

	assert.Equal(t, "! lint finding task=dist step.rule=eqeqeq\n", buf.String())
}

func TestPrettyHandler_NilOptions(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer

	l := slog.New(logger.NewPrettyHandler(&buf, nil))
	l.Debug("hidden")
	l.Error("boom")

	assert.Equal(t, "✗ boom\n", buf.String())
}
