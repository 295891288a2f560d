package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/swig/internal/adapters/fs"
	"go.trai.ch/swig/internal/core/domain"
)

func writeFiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(f), 0o600))
	}
}

func paths(files []domain.SourceFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Base + "|" + f.Path
	}
	return out
}

func TestResolver_Resolve_Glob(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "src/main/html/index.html", "src/main/html/css/screen.css", "src/main/html/o2c.html")

	files, missing, err := fs.NewResolver().Resolve(root, []string{"./src/main/html/**/*"})
	require.NoError(t, err)
	assert.Empty(t, missing)
	assert.Equal(t, []string{
		"src/main/html|css/screen.css",
		"src/main/html|index.html",
		"src/main/html|o2c.html",
	}, paths(files))
	assert.Equal(t, filepath.Join(root, "src", "main", "html", "index.html"), files[1].Abs)
}

func TestResolver_Resolve_BraceExpansion(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "lib/jquery.js", "lib/jquery.map", "lib/readme.md", "lib/sub/x.js")

	files, _, err := fs.NewResolver().Resolve(root, []string{"./lib/**/*.{js,map}"})
	require.NoError(t, err)
	assert.Equal(t, []string{"lib|jquery.js", "lib|jquery.map", "lib|sub/x.js"}, paths(files))
}

func TestResolver_Resolve_LiteralOrderAndDedup(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "lang/translator.js", "lang/en.js", "lang/ca.js")

	files, missing, err := fs.NewResolver().Resolve(root, []string{
		"./lang/translator.js",
		"./lang/en.js",
		"./lang/*.js",
		"./lang/missing.js",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"lang|translator.js", "lang|en.js", "lang|ca.js"}, paths(files))
	assert.Equal(t, []string{"./lang/missing.js"}, missing)
}

func TestResolver_Resolve_Exclude(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "src/a.js", "src/b.js", "src/vendor/c.js")

	files, _, err := fs.NewResolver().Resolve(root, []string{"src/**/*.js", "!src/vendor/**"})
	require.NoError(t, err)
	assert.Equal(t, []string{"src|a.js", "src|b.js"}, paths(files))
}

func TestResolver_Resolve_InvalidPattern(t *testing.T) {
	_, _, err := fs.NewResolver().Resolve(t.TempDir(), []string{"src/[.js"})
	require.ErrorIs(t, err, domain.ErrInvalidPattern)
}

func TestResolver_Resolve_NoMatches(t *testing.T) {
	files, missing, err := fs.NewResolver().Resolve(t.TempDir(), []string{"nowhere/**/*.js"})
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Empty(t, missing)
}
