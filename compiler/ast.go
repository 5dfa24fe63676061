package compiler

// ---------------------------------------------------------------------------
// AST: Abstract Syntax Tree for nom
// ---------------------------------------------------------------------------

// Span is a half-open range of rune offsets in the source.
type Span struct {
	Start int
	End   int
}

// Node is the interface implemented by all AST nodes.
//
// Nodes carry no positions; equality is structural. Spans for the nodes
// that editors care about live in Program's side table.
type Node interface {
	node() // marker method
}

// ---------------------------------------------------------------------------
// Expression nodes
// ---------------------------------------------------------------------------

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	expr() // marker method
}

// StringLit is a string literal with its escapes already decoded.
type StringLit struct {
	Value string
}

func (*StringLit) node() {}
func (*StringLit) expr() {}

// NumberLit holds the exact source text of a numeral. Converting it to a
// number is left to the evaluator.
type NumberLit struct {
	Text string
}

func (*NumberLit) node() {}
func (*NumberLit) expr() {}

// Identifier is a classified name.
type Identifier struct {
	Kind IdentKind
	Name string
}

func (*Identifier) node() {}
func (*Identifier) expr() {}

// Path is a dotted chain a.b.c. Every segment is a variable identifier.
type Path struct {
	Segments []*Identifier
}

func (*Path) node() {}
func (*Path) expr() {}

// Call invokes Callee, which is an *Identifier or a *Path. Args is nil
// when no arguments were written.
type Call struct {
	Callee Expr
	Args   []*ExprStmt
}

func (*Call) node() {}
func (*Call) expr() {}

// Operator is a binary operator symbol.
type Operator string

const (
	OpAdd Operator = "+"
	OpSub Operator = "-"
	OpMul Operator = "*"
	OpDiv Operator = "/"
	OpPow Operator = "^"
)

// IsValid reports whether o is one of the five binary operators.
func (o Operator) IsValid() bool {
	switch o {
	case OpAdd, OpSub, OpMul, OpDiv, OpPow:
		return true
	}
	return false
}

// BinaryOp is a binary operation. Unary minus is represented as
// BinaryOp{OpSub, NumberLit{"0"}, operand}.
type BinaryOp struct {
	Op    Operator
	Left  Expr
	Right Expr
}

func (*BinaryOp) node() {}
func (*BinaryOp) expr() {}

// Block is a brace-delimited statement list. Statements is nil for {}.
type Block struct {
	Statements []Stmt
}

func (*Block) node() {}
func (*Block) expr() {}

// ---------------------------------------------------------------------------
// Statement nodes
// ---------------------------------------------------------------------------

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmt() // marker method
}

// ExprStmt is an expression used as a statement. Call arguments use the
// same wrapper.
type ExprStmt struct {
	Expr Expr
}

func (*ExprStmt) node() {}
func (*ExprStmt) stmt() {}

// MethodDef is a named method definition: name (a, b) { ... }.
type MethodDef struct {
	Name   *Identifier
	Params []*Identifier
	Body   *Block
}

func (*MethodDef) node() {}
func (*MethodDef) stmt() {}

// ---------------------------------------------------------------------------
// Helper functions
// ---------------------------------------------------------------------------

// NewVariable returns a variable identifier.
func NewVariable(name string) *Identifier {
	return &Identifier{Kind: Variable, Name: name}
}

// NewIdentifier returns an identifier classified by its spelling.
func NewIdentifier(name string) *Identifier {
	return &Identifier{Kind: Classify(name), Name: name}
}

// Walk visits node and its descendants depth-first, parents before
// children. If fn returns false the children of that node are skipped.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	switch n := node.(type) {
	case *Path:
		for _, seg := range n.Segments {
			Walk(seg, fn)
		}
	case *Call:
		Walk(n.Callee, fn)
		for _, arg := range n.Args {
			Walk(arg, fn)
		}
	case *BinaryOp:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Block:
		for _, s := range n.Statements {
			Walk(s, fn)
		}
	case *ExprStmt:
		Walk(n.Expr, fn)
	case *MethodDef:
		Walk(n.Name, fn)
		for _, p := range n.Params {
			Walk(p, fn)
		}
		Walk(n.Body, fn)
	}
}
