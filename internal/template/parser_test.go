package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTokenize(t *testing.T, src string) []Token {
	t.Helper()
	tokens, err := Tokenize(src)
	require.NoError(t, err)
	return tokens
}

func TestParseNodeMapping(t *testing.T) {
	prog, err := Parse(mustTokenize(t, "Hello, <%= name %>!<% greeted = true %>"))
	require.NoError(t, err)
	require.Len(t, prog, 4)

	text, ok := prog[0].(*TextNode)
	require.True(t, ok)
	assert.Equal(t, "Hello, ", text.Text)

	expr, ok := prog[1].(*ExprNode)
	require.True(t, ok)
	assert.Equal(t, "name", expr.Expr)

	stmt, ok := prog[3].(*StatementNode)
	require.True(t, ok)
	assert.Equal(t, StmtCode, stmt.Kind)
	assert.Equal(t, "greeted = true", stmt.Code)
}

func TestParseControlKeywords(t *testing.T) {
	tests := []struct {
		name string
		stmt string
		kind StmtKind
		cond string
	}{
		{name: "if with colon", stmt: "if ready:", kind: StmtIf, cond: "ready"},
		{name: "if without colon", stmt: "if ready", kind: StmtIf, cond: "ready"},
		{name: "elif", stmt: "elif x == 1:", kind: StmtElif, cond: "x == 1"},
		{name: "else with colon", stmt: "else:", kind: StmtElse},
		{name: "else bare", stmt: "else", kind: StmtElse},
		{name: "endif", stmt: "endif", kind: StmtEndif},
		{name: "keyword prefix is code", stmt: "iffy = 1", kind: StmtCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var src string
			switch tt.kind {
			case StmtIf:
				src = "<% " + tt.stmt + " %><% endif %>"
			case StmtEndif:
				src = "<% if a: %><% " + tt.stmt + " %>"
			case StmtCode:
				src = "<% " + tt.stmt + " %>"
			default:
				src = "<% if a: %><% " + tt.stmt + " %><% endif %>"
			}
			prog, err := Parse(mustTokenize(t, src))
			require.NoError(t, err)

			var found *StatementNode
			for _, n := range prog {
				if s, ok := n.(*StatementNode); ok && s.Kind == tt.kind {
					found = s
				}
			}
			require.NotNil(t, found, "expected a %v statement", tt.kind)
			assert.Equal(t, tt.cond, found.Cond)
		})
	}
}

func TestParseBalanceValidation(t *testing.T) {
	tests := []struct {
		name string
		src  string
		ok   bool
	}{
		{name: "balanced if endif", src: "<% if x: %>A<% endif %>", ok: true},
		{name: "balanced with elif and else", src: "<% if a: %>1<% elif b: %>2<% else: %>3<% endif %>", ok: true},
		{name: "nested blocks", src: "<% if a: %><% if b: %>x<% endif %><% endif %>", ok: true},
		{name: "endif without if", src: "text<% endif %>", ok: false},
		{name: "elif without if", src: "<% elif x: %>", ok: false},
		{name: "else without if", src: "<% else %>", ok: false},
		{name: "unclosed if", src: "<% if x: %>A", ok: false},
		{name: "unclosed nested if", src: "<% if a: %><% if b: %>x<% endif %>", ok: false},
		{name: "elif after else", src: "<% if a: %>1<% else: %>2<% elif b: %>3<% endif %>", ok: false},
		{name: "duplicate else", src: "<% if a: %>1<% else: %>2<% else: %>3<% endif %>", ok: false},
		{name: "if without condition", src: "<% if: %>x<% endif %>", ok: false},
		{name: "endif with trailing text", src: "<% if a: %>x<% endif now %>", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(mustTokenize(t, tt.src))
			if tt.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, IsKind(err, ErrMalformed), "want malformed template, got %v", err)
			}
		})
	}
}

func TestParseDropsEmptyTokens(t *testing.T) {
	prog, err := Parse(mustTokenize(t, "<%  %>a"))
	require.NoError(t, err)
	require.Len(t, prog, 1)
	_, ok := prog[0].(*TextNode)
	assert.True(t, ok)
}

func TestParseReportsLine(t *testing.T) {
	_, err := Parse(mustTokenize(t, "line one\nline two\n<% endif %>"))
	require.Error(t, err)
	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 3, te.Line)
}
