package compiler

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineCol(t *testing.T) {
	src := "ab\ncd\n\néf"
	tests := []struct {
		offset int
		line   int
		col    int
	}{
		{0, 1, 0},
		{1, 1, 1},
		{2, 1, 2}, // the newline itself
		{3, 2, 0},
		{5, 2, 2},
		{6, 3, 0},
		{7, 4, 0},
		{8, 4, 1},
		{9, 4, 2},  // end of input
		{99, 4, 2}, // clamped
	}

	for _, tc := range tests {
		line, col := LineCol(src, tc.offset)
		if line != tc.line || col != tc.col {
			t.Errorf("LineCol(%d) = %d:%d, want %d:%d", tc.offset, line, col, tc.line, tc.col)
		}
	}
}

func TestCharAt(t *testing.T) {
	src := "añb\n"
	tests := []struct {
		offset int
		want   string
	}{
		{0, "a"},
		{1, "ñ"},
		{2, "b"},
		{3, "\n"},
		{4, ""},
		{-1, ""},
	}
	for _, tc := range tests {
		if got := CharAt(src, tc.offset); got != tc.want {
			t.Errorf("CharAt(%d) = %q, want %q", tc.offset, got, tc.want)
		}
	}
}

func TestDiagnosticMessages(t *testing.T) {
	synErr := &SyntaxError{Offset: 4, Char: "}", Msg: "expected name"}
	if got := synErr.Error(); got != `syntax error at offset 4: expected name "}"` {
		t.Errorf("SyntaxError.Error() = %q", got)
	}

	lexErr := &LexError{Offset: 6, Msg: "unterminated string"}
	if got := lexErr.Error(); got != "lex error at offset 6: unterminated string (end of input)" {
		t.Errorf("LexError.Error() = %q", got)
	}

	structErr := &StructuralError{Type: "WIRE ERROR", Message: "bad node", Help: "Re-encode the tree."}
	if got := structErr.Error(); got != "wire error: bad node (Re-encode the tree.)" {
		t.Errorf("StructuralError.Error() = %q", got)
	}
	if got := (&StructuralError{Type: "X", Message: "m"}).Error(); got != "x: m" {
		t.Errorf("StructuralError.Error() without help = %q", got)
	}
}

func TestDiagnosticMessagesNameTokenOnce(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{
			&SyntaxError{Offset: 8, Char: "(", Msg: `unexpected "(" after statement`},
			`syntax error at offset 8: unexpected "(" after statement`,
		},
		{
			&SyntaxError{Offset: 3, Char: "", Msg: "expected ), got end of input"},
			"syntax error at offset 3: expected ), got end of input",
		},
		{
			&SyntaxError{Offset: 5, Char: "\n", Msg: "expected expression, got newline"},
			"syntax error at offset 5: expected expression, got newline",
		},
		{
			&LexError{Offset: 2, Char: "@", Msg: `invalid character "@"`},
			`lex error at offset 2: invalid character "@"`,
		},
		{
			&LexError{Offset: 2, Char: "@", Msg: "invalid character"},
			`lex error at offset 2: invalid character "@"`,
		},
	}
	for _, tc := range tests {
		if got := tc.err.Error(); got != tc.want {
			t.Errorf("Error() = %q, want %q", got, tc.want)
		}
	}
}

func TestParseErrorNamesOffendingTokenOnce(t *testing.T) {
	_, err := Parse(`"hi" (1)`)
	require.Error(t, err)
	require.Equal(t, `syntax error at offset 5: unexpected "(" after statement`, err.Error())
}

func TestOffsetAndMessageUnwrap(t *testing.T) {
	base := &SyntaxError{Offset: 12, Char: "x", Msg: "boom"}
	wrapped := fmt.Errorf("parse main.nom: %w", base)

	offset, ok := Offset(wrapped)
	if !ok || offset != 12 {
		t.Errorf("Offset(wrapped) = %d, %v; want 12, true", offset, ok)
	}
	if got := Message(wrapped); got != "boom" {
		t.Errorf("Message(wrapped) = %q, want %q", got, "boom")
	}

	structErr := fmt.Errorf("decode: %w", &StructuralError{Type: "WIRE ERROR", Message: "bad"})
	if _, ok := Offset(structErr); ok {
		t.Error("Offset should not find a position in a StructuralError")
	}
	if got := Message(structErr); got != "bad" {
		t.Errorf("Message(structErr) = %q, want %q", got, "bad")
	}

	plain := errors.New("plain")
	if got := Message(plain); got != "plain" {
		t.Errorf("Message(plain) = %q", got)
	}
}

func TestDiagnosticsFromParseMatchSource(t *testing.T) {
	src := "foo 1\nbar (a b) {}"
	_, err := Parse(src)
	var synErr *SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("Parse error = %v, want *SyntaxError", err)
	}

	line, col := LineCol(src, synErr.Offset)
	if line != 2 || col != 7 {
		t.Errorf("position = %d:%d, want 2:7", line, col)
	}
	if synErr.Char != "b" {
		t.Errorf("Char = %q, want %q", synErr.Char, "b")
	}
	if !strings.Contains(synErr.Msg, "parameter list") {
		t.Errorf("Msg = %q, want mention of parameter list", synErr.Msg)
	}
}
