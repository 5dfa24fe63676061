package hash

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/nanalan/nom/compiler"
)

// HashMethod computes the SHA-256 content hash of a method definition.
//
// The hash is computed over a deterministic serialization of the method's
// normalized AST with de Bruijn parameter indexing. Two methods with the
// same body, ignoring parameter names, produce the same hash. The method
// name is part of the hash.
func HashMethod(method *compiler.MethodDef) [32]byte {
	return sha256.Sum256(Serialize(NormalizeMethod(method)))
}

// HashProgram computes the SHA-256 content hash of a parsed program.
func HashProgram(stmts []compiler.Stmt) [32]byte {
	return sha256.Sum256(Serialize(NormalizeProgram(stmts)))
}

// Hex renders a hash as lower-case hex.
func Hex(h [32]byte) string {
	return hex.EncodeToString(h[:])
}
