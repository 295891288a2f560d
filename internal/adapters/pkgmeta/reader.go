// Package pkgmeta reads package metadata used to render build banners.
package pkgmeta

import (
	"errors"
	"io/fs"
	"os"

	"github.com/tidwall/gjson"
	"go.trai.ch/swig/internal/core/domain"
	"go.trai.ch/zerr"
)

// Reader implements ports.PackageMetaReader for package.json files.
type Reader struct{}

// NewReader creates a new Reader.
func NewReader() *Reader {
	return &Reader{}
}

// Read returns the metadata stored in the package.json file at path.
// A missing file yields empty metadata and a nil error.
func (r *Reader) Read(path string) (domain.PackageMeta, error) {
	// #nosec G304 -- path comes from the project configuration
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.PackageMeta{}, nil
	}
	if err != nil {
		return domain.PackageMeta{}, zerr.With(zerr.Wrap(domain.ErrFileOpenFailed, err.Error()), "path", path)
	}
	return Parse(content, path)
}

// Parse extracts package metadata from JSON content.
func Parse(content []byte, path string) (domain.PackageMeta, error) {
	if !gjson.ValidBytes(content) {
		return domain.PackageMeta{}, zerr.With(zerr.Wrap(domain.ErrPackageMetaParse, "invalid json"), "path", path)
	}

	res := gjson.GetManyBytes(content, "name", "description", "version", "homepage", "license")
	meta := domain.PackageMeta{
		Name:        res[0].String(),
		Description: res[1].String(),
		Version:     res[2].String(),
		Homepage:    res[3].String(),
	}

	// Older manifests use {"type": "MIT", "url": "..."}.
	if license := res[4]; license.IsObject() {
		meta.License = license.Get("type").String()
	} else {
		meta.License = license.String()
	}
	return meta, nil
}
