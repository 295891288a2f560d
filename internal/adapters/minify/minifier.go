// Package minify size-reduces script, stylesheet and markup records with tdewolff/minify.
package minify

import (
	"path/filepath"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/json"
	"github.com/tdewolff/minify/v2/svg"
	"go.trai.ch/swig/internal/core/domain"
	"go.trai.ch/zerr"
)

var mediaTypes = map[string]string{
	".js":   "application/javascript",
	".mjs":  "application/javascript",
	".css":  "text/css",
	".html": "text/html",
	".htm":  "text/html",
	".json": "application/json",
	".svg":  "image/svg+xml",
}

// Minifier implements ports.Minifier.
type Minifier struct {
	m *minify.M
}

// NewMinifier creates a Minifier with the script, stylesheet and markup minifiers registered.
func NewMinifier() *Minifier {
	m := minify.New()
	m.AddFunc("application/javascript", js.Minify)
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("application/json", json.Minify)
	m.AddFunc("image/svg+xml", svg.Minify)
	return &Minifier{m: m}
}

// Minify minifies src according to the extension of name.
// Unsupported extensions are returned unchanged.
func (mf *Minifier) Minify(name string, src []byte) ([]byte, error) {
	mediaType, ok := mediaTypes[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return src, nil
	}
	out, err := mf.m.Bytes(mediaType, src)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrMinifyFailed, err.Error()), "path", name)
	}
	return out, nil
}
