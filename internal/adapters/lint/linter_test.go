package lint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/swig/internal/adapters/lint"
	"go.trai.ch/swig/internal/core/domain"
)

func TestLint_Clean(t *testing.T) {
	src := "'use strict';\nvar a = 1;\nif (a === 1 && a !== 2) { a = a / 2; }\n"
	assert.Empty(t, lint.NewLinter().Lint("ok.js", []byte(src)))
}

func TestLint_Findings(t *testing.T) {
	src := "var a = 1;\nif (a == 1) {\n  debugger;\n}\nvar b = a != 2;\n"

	findings := lint.NewLinter().Lint("src/app.js", []byte(src))
	assert.Equal(t, []domain.LintFinding{
		{File: "src/app.js", Line: 2, Column: 7, Rule: lint.RuleEqEqEq, Message: "Expected '===' and instead saw '=='."},
		{File: "src/app.js", Line: 3, Column: 3, Rule: lint.RuleDebugger, Message: "Forgotten 'debugger' statement?"},
		{File: "src/app.js", Line: 5, Column: 11, Rule: lint.RuleEqEqEq, Message: "Expected '!==' and instead saw '!='."},
	}, findings)
}

func TestLint_IgnoreRegion(t *testing.T) {
	src := "/* jshint ignore:start */\nvar x = y == 1;\n/* jshint ignore:end */\nvar z = y == 2;\n"

	findings := lint.NewLinter().Lint("t.js", []byte(src))
	require.Len(t, findings, 1)
	assert.Equal(t, 4, findings[0].Line)
}

func TestLint_RegExpIsNotDivision(t *testing.T) {
	src := "var re = /a==b/g;\nvar half = (1) / 2;\n"
	assert.Empty(t, lint.NewLinter().Lint("re.js", []byte(src)))
}

func TestLint_SyntaxError(t *testing.T) {
	findings := lint.NewLinter().Lint("bad.js", []byte("var = ;\n"))
	require.Len(t, findings, 1)
	assert.Equal(t, lint.RuleSyntax, findings[0].Rule)
	assert.Equal(t, 1, findings[0].Line)
	assert.NotEmpty(t, findings[0].Message)
}

func TestLint_NonScript(t *testing.T) {
	assert.Nil(t, lint.NewLinter().Lint("style.css", []byte("a == b")))
}
