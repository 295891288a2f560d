package watcher

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/swig/internal/core/domain"
	"go.trai.ch/zerr"
)

// Matcher filters absolute paths through a watch rule's glob patterns, evaluated relative to root.
// Patterns prefixed with ! exclude paths matched by earlier patterns.
type Matcher struct {
	root     string
	include  []string
	exclude  []string
	baseDirs []string
}

// NewMatcher validates patterns and returns a Matcher rooted at root.
func NewMatcher(root string, patterns []string) (*Matcher, error) {
	m := &Matcher{root: root}
	for _, raw := range patterns {
		negated, isExclude := strings.CutPrefix(raw, "!")
		pattern := filepath.ToSlash(negated)
		for strings.HasPrefix(pattern, "./") {
			pattern = pattern[2:]
		}
		if !doublestar.ValidatePattern(pattern) {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidPattern, "cannot watch"), "pattern", raw)
		}
		if isExclude {
			m.exclude = append(m.exclude, pattern)
			continue
		}
		m.include = append(m.include, pattern)
		base, _ := doublestar.SplitPattern(pattern)
		dir := filepath.Join(root, filepath.FromSlash(base))
		if !slices.Contains(m.baseDirs, dir) {
			m.baseDirs = append(m.baseDirs, dir)
		}
	}
	return m, nil
}

// Match reports whether path is selected by the patterns.
func (m *Matcher) Match(path string) bool {
	rel, err := filepath.Rel(m.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, p := range m.exclude {
		if doublestar.MatchUnvalidated(p, rel) {
			return false
		}
	}
	for _, p := range m.include {
		if doublestar.MatchUnvalidated(p, rel) {
			return true
		}
	}
	return false
}

// IncludeDir reports whether dir can contain matching files: it is an ancestor or a descendant
// of a pattern's static base directory.
func (m *Matcher) IncludeDir(dir string) bool {
	for _, base := range m.baseDirs {
		if within(dir, base) || within(base, dir) {
			return true
		}
	}
	return false
}

func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
