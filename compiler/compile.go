package compiler

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"
)

// Program is the result of parsing one source text.
type Program struct {
	Statements []Stmt

	spans map[Node]Span
}

// SpanOf returns the source span recorded for n. Spans are recorded for
// statements, call arguments, method definitions, paths and identifiers.
func (p *Program) SpanOf(n Node) (Span, bool) {
	if p == nil || p.spans == nil {
		return Span{}, false
	}
	s, ok := p.spans[n]
	return s, ok
}

// Parse scans and parses source. Line endings must already be normalized
// to "\n". On failure the error is a *LexError, *SyntaxError or
// *StructuralError and no partial program is returned.
func Parse(source string) (*Program, error) {
	if !utf8.ValidString(source) {
		return nil, &StructuralError{
			Type:    "ENCODING ERROR",
			Message: "source is not valid UTF-8",
			Help:    "Save the file with UTF-8 encoding.",
		}
	}

	tokens, err := Tokenize(source)
	if err != nil {
		return nil, fixChar(err, source)
	}

	p := NewParser(tokens)
	stmts, err := p.ParseProgram()
	if err != nil {
		return nil, fixChar(err, source)
	}
	return &Program{Statements: stmts, spans: p.Spans()}, nil
}

// NormalizeNewlines converts "\r\n" and lone "\r" line endings to "\n".
func NormalizeNewlines(source string) string {
	if !strings.ContainsRune(source, '\r') {
		return source
	}
	source = strings.ReplaceAll(source, "\r\n", "\n")
	return strings.ReplaceAll(source, "\r", "\n")
}

// ParseStatements is Parse without the span table.
func ParseStatements(source string) ([]Stmt, error) {
	prog, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return prog.Statements, nil
}

// fixChar fills in the exact offending character from the source.
func fixChar(err error, source string) error {
	var synErr *SyntaxError
	if errors.As(err, &synErr) {
		synErr.Char = CharAt(source, synErr.Offset)
	}
	var lexErr *LexError
	if errors.As(err, &lexErr) {
		lexErr.Char = CharAt(source, lexErr.Offset)
	}
	return err
}

// Result is delivered by ParseAsync.
type Result struct {
	Program *Program
	Err     error
}

// ParseAsync parses source on its own goroutine and delivers exactly one
// Result. If ctx is done first, the Result carries ctx.Err(); the parse
// itself is not interrupted.
func ParseAsync(ctx context.Context, source string) <-chan Result {
	out := make(chan Result, 1)
	done := make(chan Result, 1)
	go func() {
		prog, err := Parse(source)
		done <- Result{Program: prog, Err: err}
	}()
	go func() {
		select {
		case r := <-done:
			out <- r
		case <-ctx.Done():
			out <- Result{Err: ctx.Err()}
		}
	}()
	return out
}
