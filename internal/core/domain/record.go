package domain

import (
	"fmt"
	"maps"
	"path"
	"strings"
)

// Record is an in-memory file flowing through a pipeline.
type Record struct {
	// Base is the directory the record was resolved from, relative to the project root.
	Base string
	// Path is the slash-separated path of the record relative to Base.
	Path string
	// Contents holds the file bytes.
	Contents []byte
	// Metadata carries free-form attributes such as the absolute source path.
	Metadata map[string]string
}

// MetaSource is the metadata key holding the absolute path a record was read from.
const MetaSource = "source"

// Name returns the base name of the record.
func (r Record) Name() string {
	return path.Base(r.Path)
}

// Ext returns the extension of the record's name including the dot.
func (r Record) Ext() string {
	return path.Ext(r.Path)
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	out.Contents = append([]byte(nil), r.Contents...)
	out.Metadata = maps.Clone(r.Metadata)
	return out
}

// WithExtname returns a copy of the record whose extension is replaced by ext.
// A name already ending in ext is left unchanged, so repeated renames are idempotent.
func (r Record) WithExtname(ext string) Record {
	out := r.Clone()
	if strings.HasSuffix(r.Path, ext) {
		return out
	}
	out.Path = strings.TrimSuffix(r.Path, path.Ext(r.Path)) + ext
	return out
}

// WithBasename returns a copy of the record with its file name replaced, keeping the directory.
func (r Record) WithBasename(name string) Record {
	out := r.Clone()
	dir := path.Dir(r.Path)
	if dir == "." {
		out.Path = name
	} else {
		out.Path = path.Join(dir, name)
	}
	return out
}

// SourceFile is a file matched by a pipeline source pattern.
type SourceFile struct {
	// Base is the static prefix of the pattern that matched, relative to the project root.
	Base string
	// Path is the slash-separated path relative to Base.
	Path string
	// Abs is the absolute file path.
	Abs string
}

// LintFinding is a single advisory issue reported by the linter.
type LintFinding struct {
	File    string
	Line    int
	Column  int
	Rule    string
	Message string
}

// String formats the finding as file:line:col: message (rule).
func (f LintFinding) String() string {
	return fmt.Sprintf("%s:%d:%d: %s (%s)", f.File, f.Line, f.Column, f.Message, f.Rule)
}
