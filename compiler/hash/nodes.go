package hash

// ---------------------------------------------------------------------------
// Frozen hashing AST types.
//
// These are stripped-down parallels of compiler/ast.go with de Bruijn
// indices instead of parameter names. Two methods with the same body,
// ignoring parameter names, produce identical hashing ASTs.
// ---------------------------------------------------------------------------

// HNode is the interface implemented by all hashing AST nodes.
type HNode interface {
	hnode() // marker method
}

// ---------------------------------------------------------------------------
// Literal nodes
// ---------------------------------------------------------------------------

type HString struct{ Value string }

// HNum keeps the numeral text; 2 and 2.0 hash differently.
type HNum struct{ Text string }

func (*HString) hnode() {}
func (*HNum) hnode()    {}

// ---------------------------------------------------------------------------
// Name nodes
// ---------------------------------------------------------------------------

// HName is a name not bound by any enclosing method.
type HName struct {
	Kind byte // compiler.IdentKind
	Name string
}

// HParamRef references a method parameter by de Bruijn indices.
// ScopeDepth 0 = innermost method, 1 = the method enclosing it, etc.
// SlotIndex is the position within that method's parameter list.
type HParamRef struct {
	ScopeDepth uint16
	SlotIndex  uint16
}

// HPath is a dotted path. Root is an HName or HParamRef; the remaining
// segments are member names and are never renamed.
type HPath struct {
	Root     HNode
	Segments []string
}

func (*HName) hnode()     {}
func (*HParamRef) hnode() {}
func (*HPath) hnode()     {}

// ---------------------------------------------------------------------------
// Operation nodes
// ---------------------------------------------------------------------------

type HCall struct {
	Callee HNode
	Args   []HNode
}

type HBinaryOp struct {
	Op    string
	Left  HNode
	Right HNode
}

func (*HCall) hnode()     {}
func (*HBinaryOp) hnode() {}

// ---------------------------------------------------------------------------
// Statement / structure nodes
// ---------------------------------------------------------------------------

type HExprStmt struct {
	Expr HNode
}

type HBlock struct {
	Statements []HNode
}

// HMethodDef is a method stripped of parameter names.
type HMethodDef struct {
	Name  string
	Arity int
	Body  *HBlock
}

// HProgram is the top-level node for a whole source file.
type HProgram struct {
	Statements []HNode
}

func (*HExprStmt) hnode()  {}
func (*HBlock) hnode()     {}
func (*HMethodDef) hnode() {}
func (*HProgram) hnode()   {}
