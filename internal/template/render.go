package template

import (
	"html"
	"strings"
)

// Context is the mutable variable mapping a template renders against.
// Callers create a fresh Context per render call; assignments inside the
// template mutate it in place. The engine never retains a Context across
// calls.
type Context map[string]any

// frame tracks one if/elif/else chain during rendering.
type frame struct {
	active bool // parent region was being rendered when the chain opened
	render bool // current branch is selected
	taken  bool // some earlier branch already rendered
}

// Render walks the program in order against ctx and returns the output.
// Exactly one branch of each if/elif*/else chain renders; expression
// results are HTML-escaped; code statements execute as assignments or
// effect-free expressions. Conditions and statements inside a suppressed
// branch are not evaluated.
func Render(prog Program, ctx Context) (string, error) {
	var out strings.Builder
	var stack []frame
	active := func() bool {
		return len(stack) == 0 || stack[len(stack)-1].render
	}
	for _, node := range prog {
		switch n := node.(type) {
		case *TextNode:
			if active() {
				out.WriteString(n.Text)
			}
		case *ExprNode:
			if !active() {
				continue
			}
			v, err := evalString(n.Expr, ctx)
			if err != nil {
				return "", renderError(err, n.Line)
			}
			out.WriteString(html.EscapeString(stringify(v)))
		case *StatementNode:
			if err := execStatement(n, ctx, &stack, active); err != nil {
				return "", renderError(err, n.Line)
			}
		}
	}
	if len(stack) > 0 {
		return "", newError(ErrMalformed, "unclosed if block at end of render")
	}
	return out.String(), nil
}

func execStatement(n *StatementNode, ctx Context, stack *[]frame, active func() bool) error {
	switch n.Kind {
	case StmtIf:
		f := frame{active: active()}
		if f.active {
			cond, err := evalBool(n.Cond, ctx)
			if err != nil {
				return err
			}
			f.render = cond
			f.taken = cond
		}
		*stack = append(*stack, f)
	case StmtElif:
		if len(*stack) == 0 {
			return newError(ErrMalformed, "elif without matching if")
		}
		f := &(*stack)[len(*stack)-1]
		f.render = false
		if f.active && !f.taken {
			cond, err := evalBool(n.Cond, ctx)
			if err != nil {
				return err
			}
			f.render = cond
			f.taken = cond
		}
	case StmtElse:
		if len(*stack) == 0 {
			return newError(ErrMalformed, "else without matching if")
		}
		f := &(*stack)[len(*stack)-1]
		f.render = f.active && !f.taken
		f.taken = true
	case StmtEndif:
		if len(*stack) == 0 {
			return newError(ErrMalformed, "endif without matching if")
		}
		*stack = (*stack)[:len(*stack)-1]
	case StmtCode:
		if !active() {
			return nil
		}
		return execCode(n.Code, ctx)
	}
	return nil
}

// execCode interprets one code statement: an assignment "name = expr",
// or a bare expression evaluated and discarded.
func execCode(code string, ctx Context) error {
	if name, expr, ok := splitAssignment(code); ok {
		v, err := evalString(expr, ctx)
		if err != nil {
			return err
		}
		ctx[name] = v
		return nil
	}
	_, err := evalString(code, ctx)
	return err
}

// splitAssignment detects "name = expr" where = is not part of a
// comparison operator and name is a plain identifier.
func splitAssignment(code string) (name, expr string, ok bool) {
	i := strings.IndexByte(code, '=')
	if i <= 0 || i+1 >= len(code) {
		return "", "", false
	}
	if code[i+1] == '=' || code[i-1] == '!' || code[i-1] == '<' || code[i-1] == '>' {
		return "", "", false
	}
	name = strings.TrimSpace(code[:i])
	if !isIdent(name) {
		return "", "", false
	}
	return name, strings.TrimSpace(code[i+1:]), true
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isNameByte(c) || (i > 0 && c >= '0' && c <= '9') {
			continue
		}
		return false
	}
	return true
}

func evalString(expr string, ctx Context) (any, error) {
	node, err := parseExpr(expr)
	if err != nil {
		return nil, err
	}
	return evalExpr(node, ctx)
}

func evalBool(expr string, ctx Context) (bool, error) {
	v, err := evalString(expr, ctx)
	if err != nil {
		return false, err
	}
	return truthy(v), nil
}

// renderError attaches the failing node's line to an engine error, or
// wraps a foreign error so callers always see a template Error.
func renderError(err error, line int) error {
	if te, ok := err.(*Error); ok {
		return te.withLine(line)
	}
	return &Error{Kind: ErrEval, Message: "render failed", Line: line, Cause: err}
}
