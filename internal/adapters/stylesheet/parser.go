package stylesheet

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.trai.ch/swig/internal/core/domain"
	"go.trai.ch/zerr"
)

type nodeKind uint8

const (
	nodeDecl nodeKind = iota
	nodeRule
	nodeAtBlock
	nodeAtStmt
	nodeVar
	nodeMixinCall
	nodeImport
	nodeComment
)

// node is one statement or block of a stylesheet source.
type node struct {
	kind      nodeKind
	file      string
	line      int
	name      string
	value     string
	selectors []string
	children  []*node
}

var (
	varDefRe     = regexp.MustCompile(`(?s)^@([A-Za-z0-9_-]+)\s*:(.*)$`)
	mixinCallRe  = regexp.MustCompile(`^([.#][A-Za-z0-9_-]+(?:\s*>?\s*[.#][A-Za-z0-9_-]+)*)\s*(?:\(\s*\))?\s*(!important)?$`)
	mixinArgsRe  = regexp.MustCompile(`^[.#][A-Za-z0-9_-]+\s*\(\s*[^)\s][^)]*\)\s*(!important)?$`)
	mixinDefRe   = regexp.MustCompile(`^[.#][A-Za-z0-9_-]+\s*\(.*\)$`)
	mixinGuardRe = regexp.MustCompile(`\)\s*when\b`)
)

// token is one lexeme of a stylesheet source with its byte offset.
type token struct {
	tt   css.TokenType
	data string
	pos  int
}

// tokenize lexes src with the CSS lexer and folds in the two LESS extensions the CSS grammar lacks:
// `//` line comments are dropped and `@{name}` interpolations become a single identifier token.
func tokenize(file, src string) ([]token, error) {
	var toks []token
	l := css.NewLexer(parse.NewInputString(src))
	pos, depth := 0, 0
	restart := func(at int) {
		pos = at
		l = css.NewLexer(parse.NewInputString(src[at:]))
	}

	for {
		tt, data := l.Next()
		if tt == css.ErrorToken {
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, compileError(file, lineAt(src, pos), err.Error())
			}
			return toks, nil
		}
		t := token{tt: tt, data: string(data), pos: pos}
		pos += len(data)

		switch tt {
		case css.BadStringToken:
			return nil, compileError(file, lineAt(src, t.pos), "unterminated string")
		case css.StringToken:
			if len(t.data) < 2 || t.data[len(t.data)-1] != t.data[0] {
				return nil, compileError(file, lineAt(src, t.pos), "unterminated string")
			}
		case css.CommentToken:
			if len(t.data) < 4 || !strings.HasSuffix(t.data, "*/") {
				return nil, compileError(file, lineAt(src, t.pos), "unterminated comment")
			}
		case css.FunctionToken, css.LeftParenthesisToken:
			depth++
		case css.RightParenthesisToken:
			if depth > 0 {
				depth--
			}
		case css.DelimToken:
			rest := src[pos:]
			switch {
			case t.data == "/" && depth == 0 && strings.HasPrefix(rest, "/"):
				end := strings.IndexByte(rest, '\n')
				if end < 0 {
					end = len(rest)
				}
				restart(pos + end)
				t = token{tt: css.WhitespaceToken, data: " ", pos: t.pos}
			case t.data == "@" && strings.HasPrefix(rest, "{"):
				end := strings.IndexByte(rest, '}')
				if end < 0 {
					return nil, compileError(file, lineAt(src, t.pos), "unterminated interpolation")
				}
				restart(pos + end + 1)
				t = token{tt: css.IdentToken, data: src[t.pos:pos], pos: t.pos}
			}
		}
		toks = append(toks, t)
	}
}

type parser struct {
	src  string
	file string
	toks []token
	i    int
}

// parseSource splits src into a tree of statements and blocks.
func parseSource(file, src string) ([]*node, error) {
	toks, err := tokenize(file, src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, file: file, toks: toks}
	return p.parseBlock(true)
}

func compileError(file string, line int, msg string) error {
	err := zerr.With(zerr.Wrap(domain.ErrStylesheetCompile, msg), "file", file)
	return zerr.With(err, "line", line)
}

func (p *parser) errorf(pos int, format string, args ...any) error {
	return compileError(p.file, lineAt(p.src, pos), fmt.Sprintf(format, args...))
}

func lineAt(src string, pos int) int {
	return 1 + strings.Count(src[:pos], "\n")
}

// pos returns the offset of the current token, or the end of the source.
func (p *parser) pos() int {
	if p.i < len(p.toks) {
		return p.toks[p.i].pos
	}
	return len(p.src)
}

func (p *parser) parseBlock(top bool) ([]*node, error) {
	var nodes []*node
	for {
		for p.i < len(p.toks) && p.toks[p.i].tt == css.WhitespaceToken {
			p.i++
		}
		if p.i >= len(p.toks) {
			if !top {
				return nil, p.errorf(p.pos(), "missing closing `}`")
			}
			return nodes, nil
		}

		t := p.toks[p.i]
		switch t.tt {
		case css.RightBraceToken:
			if top {
				return nil, p.errorf(t.pos, "unexpected `}`")
			}
			p.i++
			return nodes, nil
		case css.CommentToken:
			nodes = append(nodes, &node{kind: nodeComment, file: p.file, line: lineAt(p.src, t.pos), value: t.data})
			p.i++
			continue
		}

		start := t.pos
		text, term := p.scanChunk()
		text = strings.TrimSpace(text)

		if term == css.LeftBraceToken {
			children, err := p.parseBlock(false)
			if err != nil {
				return nil, err
			}
			n, err := p.blockNode(start, text, children)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
			continue
		}

		if text != "" {
			n, err := p.statementNode(start, text)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		}
		if term == css.RightBraceToken {
			if top {
				return nil, p.errorf(p.pos(), "unexpected `}`")
			}
			p.i++
			return nodes, nil
		}
	}
}

// scanChunk reads tokens until a top-level `;` or `{` (consumed) or `}` (left in place).
// It returns ErrorToken as the terminator at the end of input.
func (p *parser) scanChunk() (string, css.TokenType) {
	var b strings.Builder
	depth := 0
	for ; p.i < len(p.toks); p.i++ {
		t := p.toks[p.i]
		switch t.tt {
		case css.CommentToken:
			b.WriteByte(' ')
			continue
		case css.FunctionToken, css.LeftParenthesisToken:
			depth++
		case css.RightParenthesisToken:
			if depth > 0 {
				depth--
			}
		case css.SemicolonToken, css.LeftBraceToken:
			if depth == 0 {
				p.i++
				return b.String(), t.tt
			}
		case css.RightBraceToken:
			return b.String(), t.tt
		}
		b.WriteString(t.data)
	}
	return b.String(), css.ErrorToken
}

func (p *parser) blockNode(start int, header string, children []*node) (*node, error) {
	line := lineAt(p.src, start)
	if strings.HasPrefix(header, "@") {
		name, prelude := splitAtRule(header)
		return &node{kind: nodeAtBlock, file: p.file, line: line, name: name, value: prelude, children: children}, nil
	}
	switch {
	case mixinGuardRe.MatchString(header):
		return nil, p.errorf(start, "mixin guards are not supported: %q", header)
	case mixinDefRe.MatchString(header) && !strings.HasSuffix(strings.ReplaceAll(header, " ", ""), "()"):
		return nil, p.errorf(start, "parametric mixins are not supported: %q", header)
	}
	return &node{kind: nodeRule, file: p.file, line: line, selectors: splitSelectors(header), children: children}, nil
}

func (p *parser) statementNode(start int, text string) (*node, error) {
	n := &node{file: p.file, line: lineAt(p.src, start)}
	switch {
	case strings.HasPrefix(text, "@import"):
		n.kind, n.value = nodeImport, strings.TrimSpace(text[len("@import"):])
	case varDefRe.MatchString(text):
		m := varDefRe.FindStringSubmatch(text)
		n.kind, n.name, n.value = nodeVar, m[1], strings.TrimSpace(m[2])
	case text[0] == '@':
		n.kind = nodeAtStmt
		n.name, n.value = splitAtRule(text)
	case mixinCallRe.MatchString(text):
		m := mixinCallRe.FindStringSubmatch(text)
		n.kind, n.name, n.value = nodeMixinCall, strings.Join(strings.Fields(m[1]), " "), m[2]
	case mixinArgsRe.MatchString(text):
		return nil, p.errorf(start, "mixin arguments are not supported: %q", text)
	case strings.Contains(text, ":"):
		idx := strings.IndexByte(text, ':')
		n.kind = nodeDecl
		n.name = strings.TrimSpace(text[:idx])
		n.value = collapseSpace(text[idx+1:])
		if n.name == "" {
			return nil, p.errorf(start, "missing property name")
		}
	default:
		return nil, p.errorf(start, "unrecognised statement %q", text)
	}
	return n, nil
}

// quotedEnd returns the index just after the string literal starting at start.
func quotedEnd(s string, start int) (int, bool) {
	quote := s[start]
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '\n':
			return i, false
		case quote:
			return i + 1, true
		}
	}
	return len(s), false
}

func splitAtRule(text string) (string, string) {
	end := strings.IndexAny(text, " \t\n\r(")
	if end < 0 {
		return text, ""
	}
	return text[:end], collapseSpace(text[end:])
}

// splitSelectors splits a selector list at top-level commas and collapses whitespace.
func splitSelectors(header string) []string {
	var out []string
	var cur strings.Builder
	depth := 0
	l := css.NewLexer(parse.NewInputString(header))
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			return append(out, collapseSpace(cur.String()))
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			depth--
		case css.CommaToken:
			if depth == 0 {
				out = append(out, collapseSpace(cur.String()))
				cur.Reset()
				continue
			}
		}
		cur.Write(data)
	}
}

// collapseSpace trims s and folds whitespace runs outside string literals into one space.
func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	l := css.NewLexer(parse.NewInputString(s))
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			return b.String()
		case css.WhitespaceToken:
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.Write(data)
	}
}
