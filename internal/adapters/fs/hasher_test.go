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

func TestHasher_FileMatchesBytes(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "swagger-ui.js")
	content := []byte("(function(){}).call(this);")
	require.NoError(t, os.WriteFile(p, content, 0o600))

	h := fs.NewHasher()
	fileHash, err := h.HashFile(p)
	require.NoError(t, err)
	assert.Equal(t, h.HashBytes(content), fileHash)
	assert.NotEqual(t, h.HashBytes([]byte("other")), fileHash)
}

func TestHasher_MissingFile(t *testing.T) {
	_, err := fs.NewHasher().HashFile(filepath.Join(t.TempDir(), "nope"))
	require.ErrorIs(t, err, domain.ErrFileOpenFailed)
}
