package fs

import (
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/swig/internal/core/domain"
	"go.trai.ch/swig/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.InputResolver = (*Resolver)(nil)

// Resolver implements the InputResolver interface using doublestar globbing.
type Resolver struct{}

// NewResolver creates a new Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve evaluates patterns in order relative to root.
// Matches of each pattern are sorted; a file matched by several patterns keeps its first position.
func (r *Resolver) Resolve(root string, patterns []string) ([]domain.SourceFile, []string, error) {
	var (
		files   []domain.SourceFile
		missing []string
		seen    = make(map[string]bool)
	)

	for _, raw := range patterns {
		if exclude, ok := strings.CutPrefix(raw, "!"); ok {
			pattern := normalizePattern(exclude)
			if !doublestar.ValidatePattern(pattern) {
				return nil, nil, zerr.With(zerr.Wrap(domain.ErrInvalidPattern, "cannot resolve sources"), "pattern", raw)
			}
			files = slices.DeleteFunc(files, func(f domain.SourceFile) bool {
				rel := path.Join(f.Base, f.Path)
				if doublestar.MatchUnvalidated(pattern, rel) {
					delete(seen, f.Abs)
					return true
				}
				return false
			})
			continue
		}

		pattern := normalizePattern(raw)
		if !doublestar.ValidatePattern(pattern) {
			return nil, nil, zerr.With(zerr.Wrap(domain.ErrInvalidPattern, "cannot resolve sources"), "pattern", raw)
		}

		base, glob := doublestar.SplitPattern(pattern)
		if !hasMeta(pattern) {
			abs := filepath.Join(root, filepath.FromSlash(pattern))
			info, err := os.Stat(abs)
			if err != nil || info.IsDir() {
				missing = append(missing, raw)
				continue
			}
			if !seen[abs] {
				seen[abs] = true
				files = append(files, domain.SourceFile{Base: base, Path: glob, Abs: abs})
			}
			continue
		}

		baseAbs := filepath.Join(root, filepath.FromSlash(base))
		matches, err := doublestar.Glob(os.DirFS(baseAbs), glob, doublestar.WithFilesOnly())
		if err != nil {
			return nil, nil, zerr.With(zerr.Wrap(err, "failed to glob path"), "pattern", raw)
		}
		slices.Sort(matches)
		for _, m := range matches {
			abs := filepath.Join(baseAbs, filepath.FromSlash(m))
			if seen[abs] {
				continue
			}
			seen[abs] = true
			files = append(files, domain.SourceFile{Base: base, Path: m, Abs: abs})
		}
	}

	return files, missing, nil
}

// normalizePattern converts a pattern to the slash-separated, "./"-free form doublestar expects.
func normalizePattern(p string) string {
	p = filepath.ToSlash(p)
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	return p
}

func hasMeta(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}
