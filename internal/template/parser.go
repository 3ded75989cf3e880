package template

import "strings"

// openBlock tracks one if/elif/else chain on the parse stack.
type openBlock struct {
	line     int
	seenElse bool
}

// Parse maps tokens one-to-one onto nodes and validates control block
// balance with an explicit stack: push on if, require a matching open
// block on elif/else, pop on endif. An endif without an open if, an
// elif/else after the block's else, or an unclosed if at end of input is
// a malformed-template error.
//
// Conditions and statement bodies are not interpreted here; that is the
// renderer's job.
func Parse(tokens []Token) (Program, error) {
	var prog Program
	var stack []openBlock
	for _, tok := range tokens {
		switch tok.Mode {
		case ModeText:
			if tok.Text != "" {
				prog = append(prog, &TextNode{Text: tok.Text, Line: tok.Line})
			}
		case ModeExpr:
			prog = append(prog, &ExprNode{Expr: tok.Text, Line: tok.Line})
		case ModeStatement:
			if tok.Text == "" {
				continue
			}
			stmt, err := classify(tok)
			if err != nil {
				return nil, err
			}
			switch stmt.Kind {
			case StmtIf:
				stack = append(stack, openBlock{line: tok.Line})
			case StmtElif:
				if len(stack) == 0 {
					return nil, newError(ErrMalformed, "elif without matching if").withLine(tok.Line)
				}
				if stack[len(stack)-1].seenElse {
					return nil, newError(ErrMalformed, "elif after else").withLine(tok.Line)
				}
			case StmtElse:
				if len(stack) == 0 {
					return nil, newError(ErrMalformed, "else without matching if").withLine(tok.Line)
				}
				if stack[len(stack)-1].seenElse {
					return nil, newError(ErrMalformed, "duplicate else in if block").withLine(tok.Line)
				}
				stack[len(stack)-1].seenElse = true
			case StmtEndif:
				if len(stack) == 0 {
					return nil, newError(ErrMalformed, "endif without matching if").withLine(tok.Line)
				}
				stack = stack[:len(stack)-1]
			}
			prog = append(prog, stmt)
		}
	}
	if len(stack) > 0 {
		return nil, newError(ErrMalformed, "unclosed if block").withLine(stack[len(stack)-1].line)
	}
	return prog, nil
}

// classify recognizes the four control keywords by the leading word of
// the trimmed statement text. The keywords are case-sensitive; a
// trailing colon on if/elif/else is accepted and stripped. Anything
// else is an opaque code statement.
func classify(tok Token) (*StatementNode, error) {
	word, rest := splitKeyword(tok.Text)
	switch word {
	case "if", "elif":
		cond := strings.TrimSpace(strings.TrimSuffix(rest, ":"))
		if cond == "" {
			return nil, newError(ErrMalformed, "%s requires a condition", word).withLine(tok.Line)
		}
		kind := StmtIf
		if word == "elif" {
			kind = StmtElif
		}
		return &StatementNode{Kind: kind, Cond: cond, Line: tok.Line}, nil
	case "else":
		if rest != "" && rest != ":" {
			return nil, newError(ErrMalformed, "unexpected text after else: %q", rest).withLine(tok.Line)
		}
		return &StatementNode{Kind: StmtElse, Line: tok.Line}, nil
	case "endif":
		if rest != "" {
			return nil, newError(ErrMalformed, "unexpected text after endif: %q", rest).withLine(tok.Line)
		}
		return &StatementNode{Kind: StmtEndif, Line: tok.Line}, nil
	default:
		return &StatementNode{Kind: StmtCode, Code: tok.Text, Line: tok.Line}, nil
	}
}

// splitKeyword splits the leading word from a statement. The word ends
// at whitespace or a colon; the colon stays with the remainder so that
// "else:" and "else :" classify the same way.
func splitKeyword(s string) (word, rest string) {
	i := 0
	for i < len(s) && s[i] != ' ' && s[i] != '\t' && s[i] != ':' {
		i++
	}
	return s[:i], strings.TrimSpace(s[i:])
}
