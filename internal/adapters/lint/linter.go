// Package lint implements static checks for script sources on top of the tdewolff JS parser.
package lint

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
	"go.trai.ch/swig/internal/core/domain"
)

// Rule identifiers reported in findings.
const (
	RuleSyntax   = "syntax"
	RuleDebugger = "debug"
	RuleEqEqEq   = "eqeqeq"
)

var (
	ignoreStart = []byte("jshint ignore:start")
	ignoreEnd   = []byte("jshint ignore:end")
)

// Linter implements ports.Linter for JavaScript sources.
type Linter struct{}

// NewLinter creates a new Linter.
func NewLinter() *Linter {
	return &Linter{}
}

// Lint returns the findings for src. Non-script files yield no findings.
func (l *Linter) Lint(name string, src []byte) []domain.LintFinding {
	if filepath.Ext(name) != ".js" {
		return nil
	}

	s := scanner{file: name}
	s.scan(src)

	if _, err := js.Parse(parse.NewInputBytes(src), js.Options{}); err != nil {
		finding := domain.LintFinding{File: name, Rule: RuleSyntax, Message: err.Error()}
		var perr *parse.Error
		if errors.As(err, &perr) {
			finding.Line, finding.Column, finding.Message = perr.Line, perr.Column, perr.Message
		}
		if !s.ignored(finding.Line) {
			s.findings = append(s.findings, finding)
		}
	}
	return s.findings
}

type lineRange struct{ from, to int }

// scanner walks the token stream once, tracking positions and ignore regions.
type scanner struct {
	file     string
	findings []domain.LintFinding
	ignores  []lineRange

	line, col int
}

func (s *scanner) ignored(line int) bool {
	for _, r := range s.ignores {
		if line >= r.from && (r.to == 0 || line <= r.to) {
			return true
		}
	}
	return false
}

func (s *scanner) scan(src []byte) {
	lexer := js.NewLexer(parse.NewInputBytes(src))
	s.line, s.col = 1, 1
	ignoring := false
	prev := js.ErrorToken

	for {
		tt, data := lexer.Next()
		if tt == js.ErrorToken {
			if err := lexer.Err(); err != nil && !errors.Is(err, io.EOF) {
				// Reported by the parser with a precise position.
				return
			}
			break
		}
		if (tt == js.DivToken || tt == js.DivEqToken) && startsExpression(prev) {
			tt, data = lexer.RegExp()
			if tt == js.ErrorToken {
				return
			}
		}

		line, col := s.line, s.col
		s.advance(data)

		switch tt {
		case js.WhitespaceToken, js.LineTerminatorToken:
			continue
		case js.CommentToken, js.CommentLineTerminatorToken:
			switch {
			case bytes.Contains(data, ignoreStart) && !ignoring:
				ignoring = true
				s.ignores = append(s.ignores, lineRange{from: line})
			case bytes.Contains(data, ignoreEnd) && ignoring:
				ignoring = false
				s.ignores[len(s.ignores)-1].to = s.line
			}
			continue
		}
		prev = tt
		if ignoring {
			continue
		}

		switch tt {
		case js.DebuggerToken:
			s.report(line, col, RuleDebugger, "Forgotten 'debugger' statement?")
		case js.EqEqToken:
			s.report(line, col, RuleEqEqEq, "Expected '===' and instead saw '=='.")
		case js.NotEqToken:
			s.report(line, col, RuleEqEqEq, "Expected '!==' and instead saw '!='.")
		}
	}
}

func (s *scanner) report(line, col int, rule, msg string) {
	s.findings = append(s.findings, domain.LintFinding{
		File:    s.file,
		Line:    line,
		Column:  col,
		Rule:    rule,
		Message: msg,
	})
}

func (s *scanner) advance(data []byte) {
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '\r':
			if i+1 < len(data) && data[i+1] == '\n' {
				i++
			}
			s.line, s.col = s.line+1, 1
		case '\n':
			s.line, s.col = s.line+1, 1
		default:
			s.col++
		}
	}
}

// startsExpression reports whether a slash following prev begins a regular expression literal.
func startsExpression(prev js.TokenType) bool {
	switch prev {
	case js.ErrorToken, js.CloseBraceToken:
		return true
	case js.CloseParenToken, js.CloseBracketToken, js.IncrToken, js.DecrToken:
		return false
	case js.ReturnToken, js.TypeofToken, js.CaseToken, js.DoToken, js.ElseToken, js.InToken,
		js.InstanceofToken, js.NewToken, js.DeleteToken, js.VoidToken, js.ThrowToken,
		js.YieldToken, js.AwaitToken:
		return true
	}
	return js.IsPunctuator(prev) || js.IsOperator(prev)
}
