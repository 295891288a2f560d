package pkgmeta_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/swig/internal/adapters/pkgmeta"
	"go.trai.ch/swig/internal/core/domain"
)

func TestRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "name": "swagger-ui",
  "description": "Swagger UI is a dependency-free collection of HTML, JS and CSS assets",
  "version": "2.1.0",
  "homepage": "http://swagger.io",
  "license": "Apache-2.0",
  "dependencies": {"jquery": "^2.1.0"}
}`), 0o600))

	meta, err := pkgmeta.NewReader().Read(path)
	require.NoError(t, err)
	assert.Equal(t, domain.PackageMeta{
		Name:        "swagger-ui",
		Description: "Swagger UI is a dependency-free collection of HTML, JS and CSS assets",
		Version:     "2.1.0",
		Homepage:    "http://swagger.io",
		License:     "Apache-2.0",
	}, meta)
}

func TestRead_Missing(t *testing.T) {
	meta, err := pkgmeta.NewReader().Read(filepath.Join(t.TempDir(), "package.json"))
	require.NoError(t, err)
	assert.Equal(t, domain.PackageMeta{}, meta)
}

func TestParse_LicenseObject(t *testing.T) {
	meta, err := pkgmeta.Parse([]byte(`{"name":"x","license":{"type":"MIT","url":"http://mit"}}`), "package.json")
	require.NoError(t, err)
	assert.Equal(t, "MIT", meta.License)
}

func TestParse_Invalid(t *testing.T) {
	_, err := pkgmeta.Parse([]byte(`{"name":`), "package.json")
	assert.ErrorIs(t, err, domain.ErrPackageMetaParse)
}
