package hash

import (
	"github.com/nanalan/nom/compiler"
)

// ---------------------------------------------------------------------------
// AST Normalization: compiler AST → frozen hashing AST
//
// Walks the compiler's AST and produces the frozen hashing AST with de
// Bruijn indices for method parameters. Everything else keeps its name.
// ---------------------------------------------------------------------------

// scope tracks the parameters of one method.
type scope struct {
	vars map[string]uint16 // parameter name → slot index
}

// normalizer holds state for the normalization walk.
type normalizer struct {
	scopes []scope // [0]=outermost method
}

// NormalizeProgram transforms parsed statements into an HProgram.
func NormalizeProgram(stmts []compiler.Stmt) *HProgram {
	n := &normalizer{}
	return &HProgram{Statements: n.normalizeStmts(stmts)}
}

// NormalizeMethod transforms a compiler MethodDef into a frozen HMethodDef.
func NormalizeMethod(method *compiler.MethodDef) *HMethodDef {
	n := &normalizer{}
	return n.normalizeMethod(method)
}

func (n *normalizer) normalizeMethod(method *compiler.MethodDef) *HMethodDef {
	vars := make(map[string]uint16, len(method.Params))
	for i, p := range method.Params {
		// A repeated name binds to its last slot.
		vars[p.Name] = uint16(i)
	}
	n.scopes = append(n.scopes, scope{vars: vars})
	body := n.normalizeBlock(method.Body)
	n.scopes = n.scopes[:len(n.scopes)-1]

	return &HMethodDef{
		Name:  method.Name.Name,
		Arity: len(method.Params),
		Body:  body,
	}
}

// ---------------------------------------------------------------------------
// Statement normalization
// ---------------------------------------------------------------------------

func (n *normalizer) normalizeStmts(stmts []compiler.Stmt) []HNode {
	out := make([]HNode, len(stmts))
	for i, s := range stmts {
		out[i] = n.normalizeStmt(s)
	}
	return out
}

func (n *normalizer) normalizeStmt(stmt compiler.Stmt) HNode {
	switch s := stmt.(type) {
	case *compiler.ExprStmt:
		return &HExprStmt{Expr: n.normalizeExpr(s.Expr)}
	case *compiler.MethodDef:
		return n.normalizeMethod(s)
	}
	panic("hash: unknown statement type")
}

func (n *normalizer) normalizeBlock(block *compiler.Block) *HBlock {
	if block == nil {
		return &HBlock{}
	}
	return &HBlock{Statements: n.normalizeStmts(block.Statements)}
}

// ---------------------------------------------------------------------------
// Expression normalization
// ---------------------------------------------------------------------------

func (n *normalizer) normalizeExpr(expr compiler.Expr) HNode {
	switch e := expr.(type) {
	case *compiler.StringLit:
		return &HString{Value: e.Value}
	case *compiler.NumberLit:
		return &HNum{Text: e.Text}
	case *compiler.Identifier:
		return n.resolveName(e)
	case *compiler.Path:
		segs := make([]string, 0, len(e.Segments))
		for _, s := range e.Segments[1:] {
			segs = append(segs, s.Name)
		}
		return &HPath{Root: n.resolveName(e.Segments[0]), Segments: segs}
	case *compiler.Call:
		args := make([]HNode, len(e.Args))
		for i, a := range e.Args {
			args[i] = n.normalizeExpr(a.Expr)
		}
		return &HCall{Callee: n.normalizeExpr(e.Callee), Args: args}
	case *compiler.BinaryOp:
		return &HBinaryOp{
			Op:    string(e.Op),
			Left:  n.normalizeExpr(e.Left),
			Right: n.normalizeExpr(e.Right),
		}
	case *compiler.Block:
		return n.normalizeBlock(e)
	}
	panic("hash: unknown expression type")
}

// resolveName resolves a name to HParamRef when an enclosing method binds
// it, and to HName otherwise.
func (n *normalizer) resolveName(id *compiler.Identifier) HNode {
	if id.Kind == compiler.Variable {
		for depth := len(n.scopes) - 1; depth >= 0; depth-- {
			if slot, ok := n.scopes[depth].vars[id.Name]; ok {
				return &HParamRef{
					ScopeDepth: uint16(len(n.scopes) - 1 - depth),
					SlotIndex:  slot,
				}
			}
		}
	}
	return &HName{Kind: byte(id.Kind), Name: id.Name}
}
