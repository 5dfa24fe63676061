package hash_test

import (
	"testing"

	"github.com/nanalan/nom/compiler"
	"github.com/nanalan/nom/compiler/hash"
)

func mustMethod(t *testing.T, src string) *compiler.MethodDef {
	t.Helper()
	stmts, err := compiler.ParseStatements(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(stmts) == 0 {
		t.Fatal("expected at least one statement")
	}
	md, ok := stmts[0].(*compiler.MethodDef)
	if !ok {
		t.Fatalf("got %T, want *compiler.MethodDef", stmts[0])
	}
	return md
}

func TestHashMethod_EndToEnd_NonZero(t *testing.T) {
	h := hash.HashMethod(mustMethod(t, "add (x, y) { x + y }"))

	var zero [32]byte
	if h == zero {
		t.Error("hash should be non-zero for a valid method")
	}
}

func TestHashMethod_EndToEnd_Deterministic(t *testing.T) {
	src := "add (x, y) { x + y }"
	h1 := hash.HashMethod(mustMethod(t, src))
	h2 := hash.HashMethod(mustMethod(t, src))

	if h1 != h2 {
		t.Error("same source should produce identical hashes")
	}
}

func TestHashMethod_EndToEnd_RenamedParamsSameHash(t *testing.T) {
	h1 := hash.HashMethod(mustMethod(t, "add (x, y) { x + y }"))
	h2 := hash.HashMethod(mustMethod(t, "add (left, right) {\n  left + right\n}"))

	if h1 != h2 {
		t.Error("renaming parameters should not change the hash")
	}
}

func TestHashMethod_EndToEnd_SwappedParamsDifferentHash(t *testing.T) {
	h1 := hash.HashMethod(mustMethod(t, "sub (x, y) { x - y }"))
	h2 := hash.HashMethod(mustMethod(t, "sub (x, y) { y - x }"))

	if h1 == h2 {
		t.Error("different parameter order in the body should change the hash")
	}
}

func TestHashMethod_EndToEnd_DifferentBodyDifferentHash(t *testing.T) {
	h1 := hash.HashMethod(mustMethod(t, "f (x) { x + 1 }"))
	h2 := hash.HashMethod(mustMethod(t, "f (x) { x + 2 }"))

	if h1 == h2 {
		t.Error("different bodies should produce different hashes")
	}
}

func TestHashMethod_EndToEnd_FreeNameRenameDifferentHash(t *testing.T) {
	h1 := hash.HashMethod(mustMethod(t, "f (x) { print x }"))
	h2 := hash.HashMethod(mustMethod(t, "f (x) { log x }"))

	if h1 == h2 {
		t.Error("renaming a free name should change the hash")
	}
}

func TestHashProgram_FormattingIgnored(t *testing.T) {
	a, err := compiler.ParseStatements("foo(1, 2)\n\n{\n  bar\n}")
	if err != nil {
		t.Fatal(err)
	}
	b, err := compiler.ParseStatements("foo 1, 2\n{ bar }")
	if err != nil {
		t.Fatal(err)
	}

	if hash.HashProgram(a) != hash.HashProgram(b) {
		t.Error("layout differences should not change the program hash")
	}
	if len(hash.Hex(hash.HashProgram(a))) != 64 {
		t.Error("hex hash should be 64 characters")
	}
}
