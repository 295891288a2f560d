package detector_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/swig/internal/adapters/detector"
)

func env(values map[string]string) func(string) string {
	return func(k string) string { return values[k] }
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		isTTY    bool
		ci       string
		expected detector.OutputMode
	}{
		{name: "terminal", isTTY: true, expected: detector.ModeTUI},
		{name: "pipe", isTTY: false, expected: detector.ModeLinear},
		{name: "CI=true", isTTY: true, ci: "true", expected: detector.ModeLinear},
		{name: "CI=1", isTTY: true, ci: "1", expected: detector.ModeLinear},
		{name: "CI=false", isTTY: true, ci: "false", expected: detector.ModeTUI},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detector.Detect(tt.isTTY, env(map[string]string{"CI": tt.ci}))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseMode(t *testing.T) {
	for flag, want := range map[string]detector.OutputMode{
		"":       detector.ModeAuto,
		"auto":   detector.ModeAuto,
		"tui":    detector.ModeTUI,
		"linear": detector.ModeLinear,
		"ci":     detector.ModeLinear,
		"plain":  detector.ModeLinear,
	} {
		got, err := detector.ParseMode(flag)
		require.NoError(t, err, flag)
		assert.Equal(t, want, got, flag)
	}

	_, err := detector.ParseMode("fancy")
	assert.True(t, errors.Is(err, detector.ErrUnknownMode))
}

func TestResolveMode(t *testing.T) {
	assert.Equal(t, detector.ModeTUI, detector.ResolveMode(detector.ModeTUI, detector.ModeAuto))
	assert.Equal(t, detector.ModeLinear, detector.ResolveMode(detector.ModeTUI, detector.ModeLinear))
	assert.Equal(t, detector.ModeTUI, detector.ResolveMode(detector.ModeLinear, detector.ModeTUI))
}
