package template

import (
	"fmt"
	"strconv"
	"strings"
)

// The expression language is a closed interpreter over a small grammar:
//
//	or-expr    := and-expr ("or" and-expr)*
//	and-expr   := not-expr ("and" not-expr)*
//	not-expr   := "not" not-expr | comparison
//	comparison := additive (("==" | "!=" | "<" | "<=" | ">" | ">=") additive)?
//	additive   := unary (("+" | "-") unary)*
//	unary      := "-" unary | atom
//	atom       := string | number | bool | none | name | "(" or-expr ")"
//
// Names resolve only against the render context; there are no implicit
// globals, functions, or attribute access.

type exprTokenKind int

const (
	exprTokEOF exprTokenKind = iota
	exprTokName
	exprTokNumber
	exprTokString
	exprTokOp
)

type exprToken struct {
	kind exprTokenKind
	text string
}

type exprNode interface{ exprNode() }

type litNode struct{ val any }
type varNode struct{ name string }
type unaryNode struct {
	op      string
	operand exprNode
}
type binaryNode struct {
	op          string
	left, right exprNode
}

func (*litNode) exprNode()    {}
func (*varNode) exprNode()    {}
func (*unaryNode) exprNode()  {}
func (*binaryNode) exprNode() {}

// parseExpr parses an expression into its AST. Used by the renderer for
// expression tags, conditions, and assignment right-hand sides.
func parseExpr(src string) (exprNode, error) {
	toks, err := scanExpr(src)
	if err != nil {
		return nil, err
	}
	p := &exprParser{toks: toks}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != exprTokEOF {
		return nil, newError(ErrEval, "unexpected %q in expression", p.peek().text)
	}
	return node, nil
}

func scanExpr(src string) ([]exprToken, error) {
	var toks []exprToken
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '\'' || c == '"':
			end := strings.IndexByte(src[i+1:], c)
			if end < 0 {
				return nil, newError(ErrEval, "unterminated string literal")
			}
			toks = append(toks, exprToken{exprTokString, src[i+1 : i+1+end]})
			i += end + 2
		case c >= '0' && c <= '9':
			j := i
			for j < len(src) && (src[j] >= '0' && src[j] <= '9' || src[j] == '.') {
				j++
			}
			toks = append(toks, exprToken{exprTokNumber, src[i:j]})
			i = j
		case isNameByte(c):
			j := i
			for j < len(src) && (isNameByte(src[j]) || src[j] >= '0' && src[j] <= '9') {
				j++
			}
			toks = append(toks, exprToken{exprTokName, src[i:j]})
			i = j
		case strings.HasPrefix(src[i:], "==") || strings.HasPrefix(src[i:], "!=") ||
			strings.HasPrefix(src[i:], "<=") || strings.HasPrefix(src[i:], ">="):
			toks = append(toks, exprToken{exprTokOp, src[i : i+2]})
			i += 2
		case strings.IndexByte("<>+-()", c) >= 0:
			toks = append(toks, exprToken{exprTokOp, string(c)})
			i++
		default:
			return nil, newError(ErrEval, "unexpected character %q in expression", string(c))
		}
	}
	toks = append(toks, exprToken{kind: exprTokEOF})
	return toks, nil
}

func isNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

type exprParser struct {
	toks []exprToken
	pos  int
}

func (p *exprParser) peek() exprToken { return p.toks[p.pos] }

func (p *exprParser) next() exprToken {
	t := p.toks[p.pos]
	if t.kind != exprTokEOF {
		p.pos++
	}
	return t
}

func (p *exprParser) acceptOp(ops ...string) (string, bool) {
	t := p.peek()
	if t.kind != exprTokOp && t.kind != exprTokName {
		return "", false
	}
	for _, op := range ops {
		if t.text == op {
			p.next()
			return op, true
		}
	}
	return "", false
}

func (p *exprParser) parseOr() (exprNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.acceptOp("or"); !ok {
			return left, nil
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: "or", left: left, right: right}
	}
}

func (p *exprParser) parseAnd() (exprNode, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.acceptOp("and"); !ok {
			return left, nil
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: "and", left: left, right: right}
	}
}

func (p *exprParser) parseNot() (exprNode, error) {
	if _, ok := p.acceptOp("not"); ok {
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: "not", operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *exprParser) parseComparison() (exprNode, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	op, ok := p.acceptOp("==", "!=", "<", "<=", ">", ">=")
	if !ok {
		return left, nil
	}
	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return &binaryNode{op: op, left: left, right: right}, nil
}

func (p *exprParser) parseAdditive() (exprNode, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp("+", "-")
		if !ok {
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *exprParser) parseUnary() (exprNode, error) {
	if _, ok := p.acceptOp("-"); ok {
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: "-", operand: operand}, nil
	}
	return p.parseAtom()
}

func (p *exprParser) parseAtom() (exprNode, error) {
	t := p.next()
	switch t.kind {
	case exprTokString:
		return &litNode{val: t.text}, nil
	case exprTokNumber:
		if strings.ContainsRune(t.text, '.') {
			f, err := strconv.ParseFloat(t.text, 64)
			if err != nil {
				return nil, newError(ErrEval, "bad number literal %q", t.text)
			}
			return &litNode{val: f}, nil
		}
		n, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return nil, newError(ErrEval, "bad number literal %q", t.text)
		}
		return &litNode{val: n}, nil
	case exprTokName:
		switch t.text {
		case "true", "True":
			return &litNode{val: true}, nil
		case "false", "False":
			return &litNode{val: false}, nil
		case "none", "None", "null":
			return &litNode{val: nil}, nil
		default:
			return &varNode{name: t.text}, nil
		}
	case exprTokOp:
		if t.text == "(" {
			inner, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if _, ok := p.acceptOp(")"); !ok {
				return nil, newError(ErrEval, "missing closing parenthesis")
			}
			return inner, nil
		}
	}
	if t.kind == exprTokEOF {
		return nil, newError(ErrEval, "unexpected end of expression")
	}
	return nil, newError(ErrEval, "unexpected %q in expression", t.text)
}

// evalExpr evaluates a parsed expression against the context. and/or
// short-circuit, so names on the untaken side are never resolved.
func evalExpr(node exprNode, ctx Context) (any, error) {
	switch n := node.(type) {
	case *litNode:
		return n.val, nil
	case *varNode:
		v, ok := ctx[n.name]
		if !ok {
			return nil, newError(ErrUndefinedVar, "name %q is not defined", n.name)
		}
		return v, nil
	case *unaryNode:
		v, err := evalExpr(n.operand, ctx)
		if err != nil {
			return nil, err
		}
		if n.op == "not" {
			return !truthy(v), nil
		}
		return negate(v)
	case *binaryNode:
		return evalBinary(n, ctx)
	default:
		return nil, newError(ErrEval, "unknown expression node %T", node)
	}
}

func evalBinary(n *binaryNode, ctx Context) (any, error) {
	left, err := evalExpr(n.left, ctx)
	if err != nil {
		return nil, err
	}
	switch n.op {
	case "and":
		if !truthy(left) {
			return left, nil
		}
		return evalExpr(n.right, ctx)
	case "or":
		if truthy(left) {
			return left, nil
		}
		return evalExpr(n.right, ctx)
	}
	right, err := evalExpr(n.right, ctx)
	if err != nil {
		return nil, err
	}
	switch n.op {
	case "==":
		return equal(left, right), nil
	case "!=":
		return !equal(left, right), nil
	case "<", "<=", ">", ">=":
		return compare(n.op, left, right)
	case "+":
		return add(left, right)
	case "-":
		return subtract(left, right)
	default:
		return nil, newError(ErrEval, "unknown operator %q", n.op)
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case int64:
		return t != 0
	case int:
		return t != 0
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}

func equal(a, b any) bool {
	af, aNum := asFloat(a)
	bf, bNum := asFloat(b)
	if aNum && bNum {
		return af == bf
	}
	return a == b
}

func compare(op string, a, b any) (any, error) {
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		if !ok {
			return nil, newError(ErrEval, "cannot compare string with %T", b)
		}
		return orderResult(op, strings.Compare(as, bs)), nil
	}
	af, aNum := asFloat(a)
	bf, bNum := asFloat(b)
	if !aNum || !bNum {
		return nil, newError(ErrEval, "cannot compare %T with %T", a, b)
	}
	switch {
	case af < bf:
		return orderResult(op, -1), nil
	case af > bf:
		return orderResult(op, 1), nil
	default:
		return orderResult(op, 0), nil
	}
}

func orderResult(op string, cmp int) bool {
	switch op {
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	default:
		return cmp >= 0
	}
}

func add(a, b any) (any, error) {
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		if !ok {
			return nil, newError(ErrEval, "cannot concatenate string with %T", b)
		}
		return as + bs, nil
	}
	return arith(a, b, func(x, y int64) int64 { return x + y }, func(x, y float64) float64 { return x + y })
}

func subtract(a, b any) (any, error) {
	return arith(a, b, func(x, y int64) int64 { return x - y }, func(x, y float64) float64 { return x - y })
}

func arith(a, b any, ints func(int64, int64) int64, floats func(float64, float64) float64) (any, error) {
	ai, aInt := asInt(a)
	bi, bInt := asInt(b)
	if aInt && bInt {
		return ints(ai, bi), nil
	}
	af, aNum := asFloat(a)
	bf, bNum := asFloat(b)
	if !aNum || !bNum {
		return nil, newError(ErrEval, "unsupported operand types %T and %T", a, b)
	}
	return floats(af, bf), nil
}

func negate(v any) (any, error) {
	if i, ok := asInt(v); ok {
		return -i, nil
	}
	if f, ok := asFloat(v); ok {
		return -f, nil
	}
	return nil, newError(ErrEval, "cannot negate %T", v)
}

func asInt(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int64:
		return t, true
	case int32:
		return int64(t), true
	default:
		return 0, false
	}
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	default:
		if i, ok := asInt(v); ok {
			return float64(i), true
		}
		return 0, false
	}
}

// stringify converts an evaluated value to its output form. nil renders
// as the empty string.
func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
