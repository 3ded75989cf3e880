package template

import "strings"

// Tag delimiters. The expression opener must be checked before the
// statement opener because it is a prefix match.
const (
	delimExpr = "<%="
	delimStmt = "<%"
	delimEnd  = "%>"
)

type lexer struct {
	src  string
	pos  int
	line int
}

// Tokenize splits template source into text, expression, and statement
// tokens. Text regions are emitted one physical line at a time so every
// token carries a usable line number. Tag payloads are whitespace-trimmed.
// The delimiters themselves never appear in the output.
//
// There is no escape for literal delimiter text inside a tag; a payload
// containing "%>" terminates at the first occurrence.
func Tokenize(src string) ([]Token, error) {
	l := &lexer{src: src, line: 1}
	var tokens []Token
	for l.pos < len(l.src) {
		switch {
		case strings.HasPrefix(l.src[l.pos:], delimExpr):
			tok, err := l.lexTag(ModeExpr, delimExpr)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		case strings.HasPrefix(l.src[l.pos:], delimStmt):
			tok, err := l.lexTag(ModeStatement, delimStmt)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		default:
			tokens = append(tokens, l.lexText())
		}
	}
	return tokens, nil
}

// lexText consumes literal text up to the next opening delimiter or the
// end of the current line, whichever comes first. A trailing newline
// stays attached to its line.
func (l *lexer) lexText() Token {
	start := l.pos
	startLine := l.line
	for l.pos < len(l.src) {
		if strings.HasPrefix(l.src[l.pos:], delimStmt) {
			break
		}
		c := l.src[l.pos]
		l.pos++
		if c == '\n' {
			l.line++
			break
		}
	}
	return Token{Mode: ModeText, Text: l.src[start:l.pos], Line: startLine}
}

// lexTag consumes an opening delimiter, the payload up to the matching
// end delimiter, and the end delimiter itself. An unterminated tag is a
// malformed-template error reported at the opening line.
func (l *lexer) lexTag(mode Mode, open string) (Token, error) {
	startLine := l.line
	l.pos += len(open)
	end := strings.Index(l.src[l.pos:], delimEnd)
	if end < 0 {
		return Token{}, newError(ErrMalformed, "unterminated %s tag", mode).withLine(startLine)
	}
	payload := l.src[l.pos : l.pos+end]
	l.line += strings.Count(payload, "\n")
	l.pos += end + len(delimEnd)
	return Token{Mode: mode, Text: strings.TrimSpace(payload), Line: startLine}, nil
}
