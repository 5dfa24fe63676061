// Package wire converts parsed nom programs to and from the nested-array
// shape consumed by evaluators and test fixtures:
//
//	["expr", e]
//	["methodDef", ["variable", name], [params...], ["block", [stmts...]]]
//	["string", value]  ["num", text]
//	["variable" | "class" | "constant", name]
//	[["variable", a], ["variable", b], ...]   (path, no tag)
//	["call", callee, [args...]]
//	[op, left, right]
//	["block", [stmts...]]
//
// The same shape is available as JSON and as canonical CBOR.
package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	json "github.com/goccy/go-json"

	"github.com/nanalan/nom/compiler"
)

// Node tags.
const (
	TagExpr      = "expr"
	TagMethodDef = "methodDef"
	TagString    = "string"
	TagNum       = "num"
	TagCall      = "call"
	TagBlock     = "block"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

// Encode returns the wire form of stmts. Lists are never nil, so the JSON
// form of an empty list is [].
func Encode(stmts []compiler.Stmt) []any {
	out := make([]any, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, EncodeNode(s))
	}
	return out
}

// EncodeNode returns the wire form of a single node.
func EncodeNode(n compiler.Node) any {
	switch n := n.(type) {
	case *compiler.ExprStmt:
		return []any{TagExpr, EncodeNode(n.Expr)}
	case *compiler.MethodDef:
		params := make([]any, 0, len(n.Params))
		for _, p := range n.Params {
			params = append(params, EncodeNode(p))
		}
		return []any{TagMethodDef, EncodeNode(n.Name), params, EncodeNode(n.Body)}
	case *compiler.StringLit:
		return []any{TagString, n.Value}
	case *compiler.NumberLit:
		return []any{TagNum, n.Text}
	case *compiler.Identifier:
		return []any{n.Kind.String(), n.Name}
	case *compiler.Path:
		segs := make([]any, 0, len(n.Segments))
		for _, s := range n.Segments {
			segs = append(segs, EncodeNode(s))
		}
		return segs
	case *compiler.Call:
		args := make([]any, 0, len(n.Args))
		for _, a := range n.Args {
			args = append(args, EncodeNode(a))
		}
		return []any{TagCall, EncodeNode(n.Callee), args}
	case *compiler.BinaryOp:
		return []any{string(n.Op), EncodeNode(n.Left), EncodeNode(n.Right)}
	case *compiler.Block:
		return []any{TagBlock, Encode(n.Statements)}
	}
	panic(fmt.Sprintf("wire: unknown node type %T", n))
}

// MarshalJSON renders stmts in wire shape as JSON.
func MarshalJSON(stmts []compiler.Stmt) ([]byte, error) {
	return json.Marshal(Encode(stmts))
}

// MarshalIndentJSON is MarshalJSON with indentation.
func MarshalIndentJSON(stmts []compiler.Stmt, indent string) ([]byte, error) {
	return json.MarshalIndent(Encode(stmts), "", indent)
}

// MarshalCBOR renders stmts in wire shape as canonical CBOR.
func MarshalCBOR(stmts []compiler.Stmt) ([]byte, error) {
	return cborEncMode.Marshal(Encode(stmts))
}

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

// UnmarshalJSON parses JSON in wire shape.
func UnmarshalJSON(data []byte) ([]compiler.Stmt, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("wire: unmarshal json: %w", err)
	}
	return Decode(v)
}

// UnmarshalCBOR parses CBOR in wire shape.
func UnmarshalCBOR(data []byte) ([]compiler.Stmt, error) {
	var v any
	if err := cbor.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("wire: unmarshal cbor: %w", err)
	}
	return Decode(v)
}

// Decode rebuilds statements from their wire form. Malformed input is
// reported as a *compiler.StructuralError of type "WIRE ERROR".
func Decode(v any) ([]compiler.Stmt, error) {
	return statements(v, "program")
}

func wireError(format string, args ...any) error {
	return &compiler.StructuralError{
		Type:    "WIRE ERROR",
		Message: fmt.Sprintf(format, args...),
		Help:    "The tree was not produced by wire.Encode, or it was modified.",
	}
}

func list(v any, what string) ([]any, error) {
	l, ok := v.([]any)
	if !ok {
		return nil, wireError("%s: expected list, got %T", what, v)
	}
	return l, nil
}

func str(v any, what string) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", wireError("%s: expected string, got %T", what, v)
	}
	return s, nil
}

// tagged splits ["tag", payload...] and checks the payload length.
func tagged(v any, what string, payload int) (string, []any, error) {
	l, err := list(v, what)
	if err != nil {
		return "", nil, err
	}
	if len(l) == 0 {
		return "", nil, wireError("%s: empty node", what)
	}
	tag, err := str(l[0], what+" tag")
	if err != nil {
		return "", nil, err
	}
	if payload >= 0 && len(l)-1 != payload {
		return "", nil, wireError("%s: %q node has %d fields, want %d", what, tag, len(l)-1, payload)
	}
	return tag, l[1:], nil
}

func statements(v any, what string) ([]compiler.Stmt, error) {
	l, err := list(v, what)
	if err != nil {
		return nil, err
	}
	var stmts []compiler.Stmt
	for i, item := range l {
		s, err := statement(item, fmt.Sprintf("%s[%d]", what, i))
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

func statement(v any, what string) (compiler.Stmt, error) {
	tag, _, err := tagged(v, what, -1)
	if err != nil {
		return nil, err
	}
	switch tag {
	case TagExpr:
		return exprStmt(v, what)
	case TagMethodDef:
		return methodDef(v, what)
	}
	return nil, wireError("%s: %q is not a statement", what, tag)
}

func exprStmt(v any, what string) (*compiler.ExprStmt, error) {
	tag, payload, err := tagged(v, what, 1)
	if err != nil {
		return nil, err
	}
	if tag != TagExpr {
		return nil, wireError("%s: expected %q, got %q", what, TagExpr, tag)
	}
	e, err := expr(payload[0], what+".expr")
	if err != nil {
		return nil, err
	}
	return &compiler.ExprStmt{Expr: e}, nil
}

func methodDef(v any, what string) (*compiler.MethodDef, error) {
	_, payload, err := tagged(v, what, 3)
	if err != nil {
		return nil, err
	}
	name, err := identifier(payload[0], what+".name")
	if err != nil {
		return nil, err
	}
	if name.Kind != compiler.Variable {
		return nil, wireError("%s.name: method name must be a variable", what)
	}

	rawParams, err := list(payload[1], what+".params")
	if err != nil {
		return nil, err
	}
	var params []*compiler.Identifier
	for i, rp := range rawParams {
		p, err := identifier(rp, fmt.Sprintf("%s.params[%d]", what, i))
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}

	body, err := block(payload[2], what+".body")
	if err != nil {
		return nil, err
	}
	return &compiler.MethodDef{Name: name, Params: params, Body: body}, nil
}

func identifier(v any, what string) (*compiler.Identifier, error) {
	tag, payload, err := tagged(v, what, 1)
	if err != nil {
		return nil, err
	}
	kind, ok := compiler.ParseIdentKind(tag)
	if !ok {
		return nil, wireError("%s: %q is not an identifier", what, tag)
	}
	name, err := str(payload[0], what)
	if err != nil {
		return nil, err
	}
	return &compiler.Identifier{Kind: kind, Name: name}, nil
}

func block(v any, what string) (*compiler.Block, error) {
	tag, payload, err := tagged(v, what, 1)
	if err != nil {
		return nil, err
	}
	if tag != TagBlock {
		return nil, wireError("%s: expected %q, got %q", what, TagBlock, tag)
	}
	stmts, err := statements(payload[0], what)
	if err != nil {
		return nil, err
	}
	return &compiler.Block{Statements: stmts}, nil
}

func expr(v any, what string) (compiler.Expr, error) {
	l, err := list(v, what)
	if err != nil {
		return nil, err
	}
	if len(l) > 0 {
		if _, isList := l[0].([]any); isList {
			return path(l, what)
		}
	}

	tag, payload, err := tagged(v, what, -1)
	if err != nil {
		return nil, err
	}
	switch tag {
	case TagString, TagNum:
		if len(payload) != 1 {
			return nil, wireError("%s: %q node has %d fields, want 1", what, tag, len(payload))
		}
		s, err := str(payload[0], what)
		if err != nil {
			return nil, err
		}
		if tag == TagString {
			return &compiler.StringLit{Value: s}, nil
		}
		return &compiler.NumberLit{Text: s}, nil

	case TagCall:
		return call(v, what)

	case TagBlock:
		return block(v, what)
	}

	if _, ok := compiler.ParseIdentKind(tag); ok {
		return identifier(v, what)
	}
	if op := compiler.Operator(tag); op.IsValid() {
		if len(payload) != 2 {
			return nil, wireError("%s: %q node has %d fields, want 2", what, tag, len(payload))
		}
		left, err := expr(payload[0], what+".left")
		if err != nil {
			return nil, err
		}
		right, err := expr(payload[1], what+".right")
		if err != nil {
			return nil, err
		}
		return &compiler.BinaryOp{Op: op, Left: left, Right: right}, nil
	}
	return nil, wireError("%s: unknown node tag %q", what, tag)
}

func path(l []any, what string) (*compiler.Path, error) {
	path := &compiler.Path{}
	for i, item := range l {
		seg, err := identifier(item, fmt.Sprintf("%s[%d]", what, i))
		if err != nil {
			return nil, err
		}
		if seg.Kind != compiler.Variable {
			return nil, wireError("%s[%d]: path segment must be a variable", what, i)
		}
		path.Segments = append(path.Segments, seg)
	}
	return path, nil
}

func call(v any, what string) (*compiler.Call, error) {
	_, payload, err := tagged(v, what, 2)
	if err != nil {
		return nil, err
	}
	callee, err := expr(payload[0], what+".callee")
	if err != nil {
		return nil, err
	}
	switch callee.(type) {
	case *compiler.Identifier, *compiler.Path:
	default:
		return nil, wireError("%s.callee: expected identifier or path, got %T", what, callee)
	}

	rawArgs, err := list(payload[1], what+".args")
	if err != nil {
		return nil, err
	}
	var args []*compiler.ExprStmt
	for i, ra := range rawArgs {
		a, err := exprStmt(ra, fmt.Sprintf("%s.args[%d]", what, i))
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	return &compiler.Call{Callee: callee, Args: args}, nil
}
