package hash

import (
	"encoding/binary"
)

// ---------------------------------------------------------------------------
// Deterministic binary serialization of the frozen hashing AST.
//
// Encoding conventions:
//   - First byte: HashVersion (0x01)
//   - Integers: big-endian fixed-width (int64=8B, uint16=2B, counts uint32)
//   - Strings: uint32 big-endian length + UTF-8 bytes
//   - Child nodes: serialized inline (flat)
// ---------------------------------------------------------------------------

// Serialize produces a deterministic byte serialization of an HNode tree.
// The returned bytes are suitable for hashing with SHA-256.
func Serialize(node HNode) []byte {
	s := &serializer{buf: make([]byte, 0, 256)}
	s.writeByte(HashVersion)
	s.serializeNode(node)
	return s.buf
}

type serializer struct {
	buf []byte
}

func (s *serializer) writeByte(b byte) {
	s.buf = append(s.buf, b)
}

func (s *serializer) writeUint16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeInt64(v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeString(v string) {
	s.writeUint32(uint32(len(v)))
	s.buf = append(s.buf, v...)
}

func (s *serializer) writeInt(v int) {
	s.writeInt64(int64(v))
}

func (s *serializer) writeNodes(nodes []HNode) {
	s.writeUint32(uint32(len(nodes)))
	for _, n := range nodes {
		s.serializeNode(n)
	}
}

func (s *serializer) serializeNode(node HNode) {
	switch n := node.(type) {
	case *HString:
		s.writeByte(TagString)
		s.writeString(n.Value)

	case *HNum:
		s.writeByte(TagNum)
		s.writeString(n.Text)

	case *HName:
		s.writeByte(TagName)
		s.writeByte(n.Kind)
		s.writeString(n.Name)

	case *HParamRef:
		s.writeByte(TagParamRef)
		s.writeUint16(n.ScopeDepth)
		s.writeUint16(n.SlotIndex)

	case *HPath:
		s.writeByte(TagPath)
		s.serializeNode(n.Root)
		s.writeUint32(uint32(len(n.Segments)))
		for _, seg := range n.Segments {
			s.writeString(seg)
		}

	case *HCall:
		s.writeByte(TagCall)
		s.serializeNode(n.Callee)
		s.writeNodes(n.Args)

	case *HBinaryOp:
		s.writeByte(TagBinaryOp)
		s.writeString(n.Op)
		s.serializeNode(n.Left)
		s.serializeNode(n.Right)

	case *HExprStmt:
		s.writeByte(TagExprStmt)
		s.serializeNode(n.Expr)

	case *HBlock:
		s.writeByte(TagBlock)
		s.writeNodes(n.Statements)

	case *HMethodDef:
		s.writeByte(TagMethodDef)
		s.writeString(n.Name)
		s.writeInt(n.Arity)
		s.serializeNode(n.Body)

	case *HProgram:
		s.writeByte(TagProgram)
		s.writeNodes(n.Statements)
	}
}
