package hash

// ---------------------------------------------------------------------------
// Frozen tag bytes for the hashing AST serialization format.
//
// IMPORTANT: These tags are FROZEN. Once assigned, a tag byte must never
// change meaning. Adding new tags is fine; changing existing ones breaks
// all previously computed content hashes.
// ---------------------------------------------------------------------------

// HashVersion is the version prefix for the serialization format.
// Bumping this invalidates all existing content hashes.
const HashVersion byte = 1

// AST node type tags. Each tag uniquely identifies a node kind in the
// serialized byte stream.
const (
	TagReservedZero byte = 0x00 // version prefix / reserved

	// Literal values
	TagString byte = 0x01
	TagNum    byte = 0x02

	// Names
	TagName     byte = 0x03 // unbound name, by kind and spelling
	TagParamRef byte = 0x04 // method parameter, de Bruijn indexed
	TagPath     byte = 0x05

	// Reserved 0x06-0x0F

	// Operations
	TagCall     byte = 0x10
	TagBinaryOp byte = 0x11

	// Statements / structure
	TagBlock     byte = 0x16
	TagMethodDef byte = 0x17
	TagExprStmt  byte = 0x1C
	TagProgram   byte = 0x1E

	// Reserved 0xFE-0xFF
)

// allTags lists every defined tag for uniqueness verification in tests.
var allTags = []byte{
	TagReservedZero,
	TagString, TagNum,
	TagName, TagParamRef, TagPath,
	TagCall, TagBinaryOp,
	TagBlock, TagMethodDef, TagExprStmt, TagProgram,
}
