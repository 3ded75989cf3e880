package template

// Node is one parsed unit of a template.
type Node interface {
	node()
	// Pos returns the 1-based source line the node starts on.
	Pos() int
}

// Program is an ordered, immutable node sequence. It carries no
// per-render state and may be shared across concurrent renders.
type Program []Node

// TextNode is literal output.
type TextNode struct {
	Text string
	Line int
}

func (*TextNode) node()      {}
func (n *TextNode) Pos() int { return n.Line }

// ExprNode is a single expression evaluated and HTML-escaped at render
// time.
type ExprNode struct {
	Expr string
	Line int
}

func (*ExprNode) node()      {}
func (n *ExprNode) Pos() int { return n.Line }

// StmtKind classifies a statement node structurally. The parser
// recognizes the four control keywords; everything else is StmtCode and
// is interpreted by the renderer.
type StmtKind int

const (
	StmtCode StmtKind = iota
	StmtIf
	StmtElif
	StmtElse
	StmtEndif
)

func (k StmtKind) String() string {
	switch k {
	case StmtIf:
		return "if"
	case StmtElif:
		return "elif"
	case StmtElse:
		return "else"
	case StmtEndif:
		return "endif"
	default:
		return "code"
	}
}

// StatementNode is one line of control-flow or assignment code. For
// StmtIf and StmtElif, Cond holds the condition expression. For
// StmtCode, Code holds the raw statement text; the parser does not
// interpret it.
type StatementNode struct {
	Kind StmtKind
	Cond string
	Code string
	Line int
}

func (*StatementNode) node()      {}
func (n *StatementNode) Pos() int { return n.Line }
