package stylesheet

import (
	"bytes"
	"fmt"
	"strings"
)

const maxDepth = 32

// scope holds the variables and rules visible in one block.
type scope struct {
	parent *scope
	vars   map[string]string
	rules  []*node
}

func newScope(parent *scope, nodes []*node) *scope {
	s := &scope{parent: parent, vars: make(map[string]string)}
	for _, n := range nodes {
		switch n.kind {
		case nodeVar:
			// The last definition in a scope wins.
			s.vars[n.name] = n.value
		case nodeRule:
			s.rules = append(s.rules, n)
		}
	}
	return s
}

func (s *scope) lookup(name string) (string, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return "", false
}

// findMixin returns the rules matching a (possibly namespaced) mixin name from the nearest scope.
func (s *scope) findMixin(name string) []*node {
	parts := strings.Fields(strings.ReplaceAll(name, ">", " "))
	for cur := s; cur != nil; cur = cur.parent {
		matches := matchRules(cur.rules, parts[0])
		for _, part := range parts[1:] {
			var next []*node
			for _, m := range matches {
				next = append(next, matchRules(childRules(m), part)...)
			}
			matches = next
		}
		if len(matches) > 0 {
			return matches
		}
	}
	return nil
}

func childRules(n *node) []*node {
	var out []*node
	for _, c := range n.children {
		if c.kind == nodeRule {
			out = append(out, c)
		}
	}
	return out
}

func matchRules(rules []*node, name string) []*node {
	var out []*node
	for _, r := range rules {
		for _, sel := range r.selectors {
			if sel == name || strings.ReplaceAll(sel, " ", "") == name+"()" {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

func isMixinDefinition(n *node) bool {
	for _, sel := range n.selectors {
		if !mixinDefRe.MatchString(sel) {
			return false
		}
	}
	return len(n.selectors) > 0
}

// item is one block of generated CSS.
type item struct {
	comment   string
	stmt      string
	header    string
	selectors []string
	decls     []string
	children  []*item
}

// frame is the evaluation context of a block.
type frame struct {
	sc      *scope
	sels    []string
	media   string
	current *item
	out     *[]*item
	root    *[]*item
	depth   int
}

type evaluator struct{}

func (e *evaluator) evalBody(nodes []*node, f frame) error {
	for _, n := range nodes {
		switch n.kind {
		case nodeVar, nodeImport:
		case nodeComment:
			if f.current == nil {
				*f.out = append(*f.out, &item{comment: n.value})
			}
		case nodeDecl:
			if f.current == nil {
				return compileError(n.file, n.line, fmt.Sprintf("property %q must be inside a rule", n.name))
			}
			value, err := e.substitute(n, n.value, f.sc, 0)
			if err != nil {
				return err
			}
			f.current.decls = append(f.current.decls, n.name+": "+value)
		case nodeAtStmt:
			value, err := e.substitute(n, n.value, f.sc, 0)
			if err != nil {
				return err
			}
			stmt := n.name
			if value != "" {
				stmt += " " + value
			}
			*f.out = append(*f.out, &item{stmt: stmt + ";"})
		case nodeRule:
			if isMixinDefinition(n) {
				continue
			}
			sels, err := e.selectors(n, f.sc, f.sels)
			if err != nil {
				return err
			}
			child := &item{selectors: sels}
			*f.out = append(*f.out, child)
			sub := f
			sub.sc, sub.sels, sub.current = newScope(f.sc, n.children), sels, child
			if err := e.evalBody(n.children, sub); err != nil {
				return err
			}
		case nodeMixinCall:
			if err := e.callMixin(n, f); err != nil {
				return err
			}
		case nodeAtBlock:
			if err := e.evalAtBlock(n, f); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *evaluator) callMixin(n *node, f frame) error {
	if f.current == nil {
		return compileError(n.file, n.line, "mixin call "+n.name+" must be inside a rule")
	}
	if f.depth >= maxDepth {
		return compileError(n.file, n.line, "mixin "+n.name+" recurses too deeply")
	}
	matches := f.sc.findMixin(n.name)
	if len(matches) == 0 {
		return compileError(n.file, n.line, n.name+" is undefined")
	}
	for _, m := range matches {
		before := len(f.current.decls)
		sub := f
		sub.sc, sub.depth = newScope(f.sc, m.children), f.depth+1
		if err := e.evalBody(m.children, sub); err != nil {
			return err
		}
		if n.value != "" {
			for i := before; i < len(f.current.decls); i++ {
				f.current.decls[i] += " " + n.value
			}
		}
	}
	return nil
}

func (e *evaluator) evalAtBlock(n *node, f frame) error {
	prelude, err := e.substitute(n, n.value, f.sc, 0)
	if err != nil {
		return err
	}
	header := n.name
	if prelude != "" {
		header += " " + prelude
	}
	target := f.out
	if f.sels != nil {
		target = f.root
	}

	switch n.name {
	case "@media", "@supports":
		media := ""
		if n.name == "@media" {
			media = prelude
			if f.media != "" {
				media = f.media + " and " + prelude
				target = f.root
			}
			header = "@media " + media
		}
		block := &item{header: header}
		*target = append(*target, block)

		sub := frame{sc: newScope(f.sc, n.children), sels: f.sels, media: media, out: &block.children, root: f.root, depth: f.depth}
		if f.sels != nil {
			// Declarations directly inside a nested @media apply to the enclosing selectors.
			inner := &item{selectors: f.sels}
			block.children = append(block.children, inner)
			sub.current = inner
		}
		return e.evalBody(n.children, sub)
	}

	if onlyDeclarations(n.children) {
		block := &item{selectors: []string{header}}
		*target = append(*target, block)
		return e.evalBody(n.children, frame{sc: newScope(f.sc, n.children), current: block, out: target, root: f.root, depth: f.depth})
	}
	block := &item{header: header}
	*target = append(*target, block)
	return e.evalBody(n.children, frame{sc: newScope(f.sc, n.children), out: &block.children, root: f.root, depth: f.depth})
}

func onlyDeclarations(nodes []*node) bool {
	for _, n := range nodes {
		switch n.kind {
		case nodeDecl, nodeVar, nodeComment, nodeMixinCall:
		default:
			return false
		}
	}
	return true
}

// selectors interpolates the rule's selectors and joins them with the parent selectors.
func (e *evaluator) selectors(n *node, sc *scope, parents []string) ([]string, error) {
	children := make([]string, 0, len(n.selectors))
	for _, sel := range n.selectors {
		v, err := e.interpolate(n, sel, sc, 0)
		if err != nil {
			return nil, err
		}
		children = append(children, v)
	}
	if parents == nil {
		out := make([]string, 0, len(children))
		for _, c := range children {
			out = append(out, strings.TrimSpace(strings.ReplaceAll(c, "&", "")))
		}
		return out, nil
	}

	out := make([]string, 0, len(parents)*len(children))
	for _, p := range parents {
		for _, c := range children {
			if strings.Contains(c, "&") {
				out = append(out, strings.ReplaceAll(c, "&", p))
			} else {
				out = append(out, p+" "+c)
			}
		}
	}
	return out, nil
}

// substitute replaces variable references and escapes in a value.
func (e *evaluator) substitute(n *node, s string, sc *scope, depth int) (string, error) {
	if depth > maxDepth {
		return "", compileError(n.file, n.line, "recursive variable definition")
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '~' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\''):
			end, _ := quotedEnd(s, i+1)
			v, err := e.interpolate(n, unquote(s[i+1:end]), sc, depth)
			if err != nil {
				return "", err
			}
			b.WriteString(v)
			i = end
		case c == '"' || c == '\'':
			end, _ := quotedEnd(s, i)
			v, err := e.interpolate(n, s[i:end], sc, depth)
			if err != nil {
				return "", err
			}
			b.WriteString(v)
			i = end
		case c == '@' && i+1 < len(s) && s[i+1] == '{':
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				return "", compileError(n.file, n.line, "unterminated interpolation")
			}
			v, err := e.interpolate(n, s[i:i+end+1], sc, depth)
			if err != nil {
				return "", err
			}
			b.WriteString(v)
			i += end + 1
		case c == '@' && i+1 < len(s) && isIdentByte(s[i+1]):
			j := i + 1
			for j < len(s) && isIdentByte(s[j]) {
				j++
			}
			v, err := e.variable(n, s[i+1:j], sc, depth)
			if err != nil {
				return "", err
			}
			b.WriteString(v)
			i = j
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}

// interpolate replaces only @{name} references, inserting unquoted values.
func (e *evaluator) interpolate(n *node, s string, sc *scope, depth int) (string, error) {
	var b strings.Builder
	for {
		start := strings.Index(s, "@{")
		if start < 0 {
			b.WriteString(s)
			return b.String(), nil
		}
		end := strings.IndexByte(s[start:], '}')
		if end < 0 {
			return "", compileError(n.file, n.line, "unterminated interpolation")
		}
		v, err := e.variable(n, s[start+2:start+end], sc, depth)
		if err != nil {
			return "", err
		}
		b.WriteString(s[:start])
		b.WriteString(unquote(v))
		s = s[start+end+1:]
	}
}

func (e *evaluator) variable(n *node, name string, sc *scope, depth int) (string, error) {
	raw, ok := sc.lookup(name)
	if !ok {
		return "", compileError(n.file, n.line, "variable @"+name+" is undefined")
	}
	return e.substitute(n, raw, sc, depth+1)
}

func isIdentByte(c byte) bool {
	return c == '-' || c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func writeItems(b *bytes.Buffer, items []*item, indent int) {
	pad := strings.Repeat("  ", indent)
	for _, it := range items {
		switch {
		case it.comment != "":
			b.WriteString(pad + it.comment + "\n")
		case it.stmt != "":
			b.WriteString(pad + it.stmt + "\n")
		case it.header != "":
			if !hasContent(it.children) {
				continue
			}
			b.WriteString(pad + it.header + " {\n")
			writeItems(b, it.children, indent+1)
			b.WriteString(pad + "}\n")
		case len(it.decls) > 0:
			b.WriteString(pad + strings.Join(it.selectors, ",\n"+pad) + " {\n")
			for _, d := range it.decls {
				b.WriteString(pad + "  " + d + ";\n")
			}
			b.WriteString(pad + "}\n")
		}
	}
}

func hasContent(items []*item) bool {
	for _, it := range items {
		if it.comment != "" || it.stmt != "" || len(it.decls) > 0 || (it.header != "" && hasContent(it.children)) {
			return true
		}
	}
	return false
}
