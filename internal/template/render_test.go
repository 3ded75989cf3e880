package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderSource(t *testing.T, src string, ctx Context) (string, error) {
	t.Helper()
	prog, err := Compile(src)
	require.NoError(t, err)
	return Render(prog, ctx)
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		src  string
		ctx  Context
		want string
	}{
		{
			name: "literal text round-trips unchanged",
			src:  "plain text\nwith lines\n",
			ctx:  Context{},
			want: "plain text\nwith lines\n",
		},
		{
			name: "expression output",
			src:  "Hello, <%= name %>!",
			ctx:  Context{"name": "world"},
			want: "Hello, world!",
		},
		{
			name: "expression output is html escaped",
			src:  "<%= v %>",
			ctx:  Context{"v": "<b>"},
			want: "&lt;b&gt;",
		},
		{
			name: "all five escape characters",
			src:  "<%= v %>",
			ctx:  Context{"v": `&<>"'`},
			want: "&amp;&lt;&gt;&#34;&#39;",
		},
		{
			name: "script injection stays inert",
			src:  "Hello, <%= name %>!",
			ctx:  Context{"name": "<script>"},
			want: "Hello, &lt;script&gt;!",
		},
		{
			name: "assignment visible to later nodes",
			src:  "<% x = 1 %><%= x %>",
			ctx:  Context{},
			want: "1",
		},
		{
			name: "assignment overwrites context value",
			src:  "<% x = x + 1 %><%= x %>",
			ctx:  Context{"x": int64(41)},
			want: "42",
		},
		{
			name: "true branch renders",
			src:  "<% if ok: %>A<% else: %>B<% endif %>",
			ctx:  Context{"ok": true},
			want: "A",
		},
		{
			name: "else branch is exclusive",
			src:  "<% if False %>A<% else %>B<% endif %>",
			ctx:  Context{},
			want: "B",
		},
		{
			name: "elif chain selects single branch",
			src:  "<% if n == 1: %>one<% elif n == 2: %>two<% elif n == 3: %>three<% else: %>many<% endif %>",
			ctx:  Context{"n": int64(2)},
			want: "two",
		},
		{
			name: "later elif skipped once a branch is taken",
			src:  "<% if true %>A<% elif true %>B<% endif %>",
			ctx:  Context{},
			want: "A",
		},
		{
			name: "nested blocks",
			src:  "<% if a: %><% if b: %>both<% else: %>only a<% endif %><% else: %>neither<% endif %>",
			ctx:  Context{"a": true, "b": false},
			want: "only a",
		},
		{
			name: "suppressed branch skips evaluation",
			src:  "<% if false %><%= missing %><% endif %>done",
			ctx:  Context{},
			want: "done",
		},
		{
			name: "suppressed branch skips assignment",
			src:  "<% if false %><% x = 1 %><% endif %><% if true %>ok<% endif %>",
			ctx:  Context{},
			want: "ok",
		},
		{
			name: "string comparison in condition",
			src:  `<% if mode == "dev": %>dev<% else: %>prod<% endif %>`,
			ctx:  Context{"mode": "prod"},
			want: "prod",
		},
		{
			name: "boolean operators",
			src:  "<% if a and not b or c: %>yes<% endif %>",
			ctx:  Context{"a": true, "b": true, "c": true},
			want: "yes",
		},
		{
			name: "string concatenation",
			src:  `<%= "a" + b %>`,
			ctx:  Context{"b": "c"},
			want: "ac",
		},
		{
			name: "none renders empty",
			src:  "[<%= v %>]",
			ctx:  Context{"v": nil},
			want: "[]",
		},
		{
			name: "float output",
			src:  "<%= 1.5 + 1 %>",
			ctx:  Context{},
			want: "2.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderSource(t, tt.src, tt.ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		ctx  Context
		kind ErrorKind
		line int
	}{
		{
			name: "undefined variable in expression",
			src:  "ok\n<%= missing %>",
			ctx:  Context{},
			kind: ErrUndefinedVar,
			line: 2,
		},
		{
			name: "undefined variable in condition",
			src:  "<% if missing: %>x<% endif %>",
			ctx:  Context{},
			kind: ErrUndefinedVar,
			line: 1,
		},
		{
			name: "type mismatch in statement",
			src:  `<% x = 1 + "a" %>`,
			ctx:  Context{},
			kind: ErrEval,
			line: 1,
		},
		{
			name: "bad expression syntax",
			src:  "<%= 1 ++ %>",
			ctx:  Context{},
			kind: ErrEval,
			line: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := renderSource(t, tt.src, tt.ctx)
			require.Error(t, err)
			assert.True(t, IsKind(err, tt.kind), "want %v, got %v", tt.kind, err)
			var te *Error
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.line, te.Line)
		})
	}
}

func TestRenderNoPartialOutputOnError(t *testing.T) {
	out, err := renderSource(t, "before <%= missing %> after", Context{})
	require.Error(t, err)
	assert.Empty(t, out)
}

func TestRenderContextMutationStaysPerCall(t *testing.T) {
	prog, err := Compile("<% x = 1 %><%= x %>")
	require.NoError(t, err)

	// Same program, two fresh contexts: neither render observes the other.
	first := Context{}
	out, err := Render(prog, first)
	require.NoError(t, err)
	assert.Equal(t, "1", out)
	assert.Equal(t, int64(1), first["x"])

	second := Context{}
	out, err = Render(prog, second)
	require.NoError(t, err)
	assert.Equal(t, "1", out)
}
