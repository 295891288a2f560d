package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/swig/internal/adapters/logger"
	"go.trai.ch/zerr"
)

// newTestLogger creates a logger writing to a buffer without ANSI escape codes.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New()
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_InfoWarn(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Info("serving dist on http://127.0.0.1:8080")
	lg.Warn("package.json not found, banner fields are empty")

	g := goldie.New(t)
	g.Assert(t, "info_warn", buf.Bytes())
}

func TestLogger_Error_Chain(t *testing.T) {
	lg, buf := newTestLogger(t)

	sentinel := zerr.New("fatal io error")
	err := zerr.With(zerr.Wrap(sentinel, "cannot create destination"), "path", "dist/lib")
	lg.Error(err)

	g := goldie.New(t)
	g.Assert(t, "error_chain", buf.Bytes())
}

func TestLogger_Error_StandardCause(t *testing.T) {
	lg, buf := newTestLogger(t)

	lg.Error(zerr.Wrap(fmt.Errorf("permission denied"), "failed to write file"))

	out := buf.String()
	assert.Contains(t, out, "Error: failed to write file")
	assert.Contains(t, out, "Caused by:")
	assert.Contains(t, out, "→ permission denied")
}

func TestLogger_Error_Joined(t *testing.T) {
	lg, buf := newTestLogger(t)

	lg.Error(errors.Join(zerr.New("first failure"), errors.New("second failure")))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "✗ Error: first failure", lines[0])
	assert.Equal(t, "✗ Error: second failure", lines[1])
}

func TestLogger_Error_Nil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_JSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)
	lg.Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])

	buf.Reset()
	lg.SetJSON(false)
	lg.Info("plain")
	assert.Equal(t, "plain\n", buf.String())
}
