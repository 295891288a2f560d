// Package stylesheet compiles LESS sources into plain CSS.
//
// Sources are tokenized with the tdewolff CSS lexer. The supported language is the subset
// front-end projects lean on in practice: @import inlining, @variables with @{interpolation},
// // comments, nested rules with &, nested @media bubbling and parameterless mixin calls.
// Parametric mixins, mixin arguments and guards are rejected with ErrStylesheetCompile.
// Operations and functions such as darken() are passed through verbatim.
// The generated CSS is validated with the tdewolff CSS parser.
package stylesheet

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Compiler implements ports.StylesheetCompiler.
type Compiler struct {
	readFile func(string) ([]byte, error)
}

// NewCompiler creates a Compiler reading imports from the local filesystem.
func NewCompiler() *Compiler {
	return &Compiler{readFile: os.ReadFile}
}

// Compile compiles src, resolving imports relative to the directory of filename and then includePaths.
func (c *Compiler) Compile(filename string, src []byte, includePaths []string) ([]byte, error) {
	nodes, err := parseSource(filename, string(src))
	if err != nil {
		return nil, err
	}

	imp := &importer{read: c.readFile, includePaths: includePaths, seen: make(map[string]bool)}
	if abs, err := filepath.Abs(filename); err == nil {
		imp.seen[abs] = true
	}
	if nodes, err = imp.expand(filename, nodes); err != nil {
		return nil, err
	}

	var root []*item
	ev := &evaluator{}
	if err := ev.evalBody(nodes, frame{sc: newScope(nil, nodes), out: &root, root: &root}); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writeItems(&buf, root, 0)
	if err := validate(filename, buf.Bytes()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// validate runs the generated CSS through the tdewolff grammar parser.
func validate(filename string, out []byte) error {
	p := css.NewParser(parse.NewInputBytes(out), false)
	for {
		gt, _, _ := p.Next()
		if gt != css.ErrorGrammar {
			continue
		}
		if p.HasParseError() {
			var perr *parse.Error
			if errors.As(p.Err(), &perr) {
				return compileError(filename, perr.Line, "generated css is invalid: "+perr.Message)
			}
			return compileError(filename, 0, "generated css is invalid: "+p.Err().Error())
		}
		return nil
	}
}

// importer inlines @import statements. Every file is imported at most once per compilation.
type importer struct {
	read         func(string) ([]byte, error)
	includePaths []string
	seen         map[string]bool
}

func (imp *importer) expand(file string, nodes []*node) ([]*node, error) {
	out := make([]*node, 0, len(nodes))
	for _, n := range nodes {
		switch n.kind {
		case nodeImport:
			target, path, keep, ok := parseImport(n.value)
			if !ok {
				return nil, compileError(n.file, n.line, "invalid @import "+n.value)
			}
			if keep {
				out = append(out, &node{kind: nodeAtStmt, file: n.file, line: n.line, name: "@import", value: target})
				continue
			}
			resolved, content, err := imp.resolve(file, path)
			if err != nil {
				return nil, compileError(n.file, n.line, err.Error())
			}
			if imp.seen[resolved] {
				continue
			}
			imp.seen[resolved] = true
			children, err := parseSource(resolved, string(content))
			if err != nil {
				return nil, err
			}
			if children, err = imp.expand(resolved, children); err != nil {
				return nil, err
			}
			out = append(out, children...)
		case nodeRule, nodeAtBlock:
			children, err := imp.expand(file, n.children)
			if err != nil {
				return nil, err
			}
			n.children = children
			out = append(out, n)
		default:
			out = append(out, n)
		}
	}
	return out, nil
}

// resolve finds path next to the importing file or in one of the include paths.
func (imp *importer) resolve(from, path string) (string, []byte, error) {
	if filepath.Ext(path) == "" {
		path += ".less"
	}
	candidates := []string{path}
	if !filepath.IsAbs(path) {
		candidates = []string{filepath.Join(filepath.Dir(from), path)}
		for _, dir := range imp.includePaths {
			candidates = append(candidates, filepath.Join(dir, path))
		}
	}
	for _, candidate := range candidates {
		content, err := imp.read(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", nil, err
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			return "", nil, err
		}
		return abs, content, nil
	}
	return "", nil, errors.New("'" + path + "' wasn't found")
}

// parseImport returns the raw import target, the path to inline, and whether the import is kept as plain CSS.
func parseImport(value string) (target, path string, keep, ok bool) {
	v := strings.TrimSpace(value)
	var options string
	if strings.HasPrefix(v, "(") {
		end := strings.IndexByte(v, ')')
		if end < 0 {
			return "", "", false, false
		}
		options, v = v[1:end], strings.TrimSpace(v[end+1:])
	}
	target = v

	switch {
	case strings.HasPrefix(v, "url("):
		return target, "", true, true
	case v != "" && (v[0] == '"' || v[0] == '\''):
		end, closed := quotedEnd(v, 0)
		if !closed {
			return "", "", false, false
		}
		path = v[1 : end-1]
	default:
		return "", "", false, false
	}

	keep = strings.Contains(options, "css") || filepath.Ext(path) == ".css"
	return target, path, keep, true
}
