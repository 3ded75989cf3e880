// Package template implements the embedded templating language: a
// two-mode lexer over <% %> and <%= %> tags, a parser producing a flat
// node program with parse-time block validation, and a renderer that
// executes the program against a per-request context with HTML-escaped
// expression output.
package template

// Mode classifies what a lexed token contains.
type Mode int

const (
	// ModeText is literal template text, emitted verbatim.
	ModeText Mode = iota
	// ModeExpr is the payload of a <%= ... %> tag.
	ModeExpr
	// ModeStatement is the payload of a <% ... %> tag.
	ModeStatement
)

func (m Mode) String() string {
	switch m {
	case ModeText:
		return "text"
	case ModeExpr:
		return "expression"
	case ModeStatement:
		return "statement"
	default:
		return "unknown"
	}
}

// Token is one lexed region of template source. Tokens appear in source
// order; Line is the 1-based line the region starts on.
type Token struct {
	Mode Mode
	Text string
	Line int
}
