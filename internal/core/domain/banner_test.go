package domain_test

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/swig/internal/core/domain"
)

func TestRenderBanner_Golden(t *testing.T) {
	out, err := domain.RenderBanner("", domain.PackageMeta{
		Name:     "swagger-ui",
		Version:  "1.2.3",
		Homepage: "http://x",
		License:  "Apache-2.0",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "/**\n"))
	assert.True(t, strings.HasSuffix(out, " */\n"))
	assert.NotContains(t, out, "{{")
	assert.NotContains(t, out, "<%")
	for _, want := range []string{" * swagger-ui - ", " * @version v1.2.3", " * @link http://x", " * @license Apache-2.0"} {
		assert.Contains(t, strings.Split(out, "\n"), want)
	}

	g := goldie.New(t)
	g.Assert(t, "banner", []byte(out))
}

func TestRenderBanner_CustomTemplate(t *testing.T) {
	out, err := domain.RenderBanner("// {{.Name}}@{{.Version}}\n", domain.PackageMeta{Name: "lib", Version: "2.0.0"})
	require.NoError(t, err)
	assert.Equal(t, "// lib@2.0.0\n", out)
}

func TestRenderBanner_InvalidTemplate(t *testing.T) {
	_, err := domain.RenderBanner("{{.Name", domain.PackageMeta{})
	require.ErrorIs(t, err, domain.ErrTemplateFailed)
}
