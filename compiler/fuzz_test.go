package compiler

import (
	"errors"
	"testing"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// FuzzLexer: the lexer never panics and always terminates.
// ---------------------------------------------------------------------------

func FuzzLexer(f *testing.F) {
	seeds := []string{
		// Punctuation and operators
		`( ) { } , . + - * / ^`,
		// Numbers
		`42`, `0`, `3.14`, `3.`, `.5`, `007`,
		// Strings
		`"hello"`, `'hello'`, `""`, `"a\"b"`, `'it\'s'`, `"\n\t\0"`,
		// Identifiers
		`foo`, `FooBar`, `FOO_BAR`, `_x`, `café`,
		// Lines
		"a\nb\n\n  c", "\r\n",
		// Edge cases
		`"unterminated`, `"\`, `@`, `#`, `=`, `;`,
		``, `   `,
		// Unicode
		`"こんにちは"`, `ñame`,
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, data string) {
		l := NewLexer(data)
		limit := utf8.RuneCountInString(data) + 2
		for i := 0; ; i++ {
			if i > limit {
				t.Fatalf("lexer did not reach EOF on %q", data)
			}
			tok, err := l.NextToken()
			if err != nil {
				var lexErr *LexError
				if !errors.As(err, &lexErr) {
					t.Fatalf("lexer returned %T on %q", err, data)
				}
				break
			}
			if tok.Type == TokenEOF {
				break
			}
		}
	})
}

// ---------------------------------------------------------------------------
// FuzzParser: Parse either succeeds or returns a diagnostic whose offset
// lies within the source. Panics are failures.
// ---------------------------------------------------------------------------

func FuzzParser(f *testing.F) {
	seeds := []string{
		// Literals
		`42`, `-5`, `3.14`, `"hello"`,
		// Names and paths
		`foo`, `Foo`, `FOO`, `a.b.c`,
		// Calls
		`foo 1`, `foo 1, 2`, `foo(1, 2)`, `bar 6 ^2`, `print sqrt 4`,
		// Maths
		`(18 + 2) * 4 / 6.2`, `2(4 + 8)`, `2^3^2`, `-2^2`,
		// Blocks and methods
		`{}`, "{\n  a\n  b\n}", `method (a, b) {}`, "square (x) {\n  x * x\n}",
		// Edge cases
		``, `(`, `)`, `{`, `}`, `,`, `.`, `-`, `^`,
		`foo (`, `a.`, `method (a b) {}`, `1 2`,
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, data string) {
		prog, err := Parse(data)
		if err == nil {
			if prog == nil {
				t.Fatalf("Parse(%q) returned nil program and nil error", data)
			}
			return
		}

		var diag Diagnostic
		if !errors.As(err, &diag) {
			t.Fatalf("Parse(%q) returned non-diagnostic %T: %v", data, err, err)
		}
		if offset, ok := Offset(err); ok {
			if offset < 0 || offset > utf8.RuneCountInString(data) {
				t.Fatalf("Parse(%q): offset %d out of range", data, offset)
			}
		}
	})
}
