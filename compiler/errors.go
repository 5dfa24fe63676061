package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Diagnostics
//
// The lexer and parser stop at the first failure and return one of the
// types below. Positional diagnostics carry the rune offset of the first
// character that could not be consumed; rendering a snippet from it is
// the caller's job.
// ---------------------------------------------------------------------------

// Diagnostic is implemented by every error the front end returns.
type Diagnostic interface {
	error
	diagnostic() // marker method
}

// LexError reports a character no token can start from, or a token that
// never ends (an unterminated string).
type LexError struct {
	Offset int
	Char   string // character at Offset, empty at end of input
	Msg    string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at offset %d: %s%s", e.Offset, e.Msg, describeChar(e.Msg, e.Char))
}

func (*LexError) diagnostic() {}

// SyntaxError reports a token the current grammar rule cannot accept.
type SyntaxError struct {
	Offset int
	Char   string // character at Offset, empty at end of input
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s%s", e.Offset, e.Msg, describeChar(e.Msg, e.Char))
}

func (*SyntaxError) diagnostic() {}

// StructuralError is a failure that cannot be pinned to one offset.
type StructuralError struct {
	Type    string // short upper-case title, e.g. "WIRE ERROR"
	Message string
	Help    string // optional
}

func (e *StructuralError) Error() string {
	if e.Help != "" {
		return fmt.Sprintf("%s: %s (%s)", strings.ToLower(e.Type), e.Message, e.Help)
	}
	return fmt.Sprintf("%s: %s", strings.ToLower(e.Type), e.Message)
}

func (*StructuralError) diagnostic() {}

// describeChar names the offending character for an error message, or
// returns "" when msg already names it.
func describeChar(msg, c string) string {
	var label, suffix string
	switch c {
	case "":
		label = "end of input"
		suffix = " (" + label + ")"
	case "\n":
		label = "newline"
		suffix = " (" + label + ")"
	default:
		label = fmt.Sprintf("%q", c)
		suffix = " " + label
	}
	if strings.Contains(msg, label) {
		return ""
	}
	return suffix
}

// Offset returns the source offset carried by err, if err is or wraps a
// positional diagnostic.
func Offset(err error) (int, bool) {
	var lexErr *LexError
	if errors.As(err, &lexErr) {
		return lexErr.Offset, true
	}
	var synErr *SyntaxError
	if errors.As(err, &synErr) {
		return synErr.Offset, true
	}
	return 0, false
}

// Message returns the diagnostic text without the position prefix.
func Message(err error) string {
	var lexErr *LexError
	if errors.As(err, &lexErr) {
		return lexErr.Msg
	}
	var synErr *SyntaxError
	if errors.As(err, &synErr) {
		return synErr.Msg
	}
	var structErr *StructuralError
	if errors.As(err, &structErr) {
		return structErr.Message
	}
	return err.Error()
}

// LineCol converts a rune offset in src to a 1-based line and a 0-based
// column (in runes). Offsets past the end clamp to the end of src.
func LineCol(src string, offset int) (line, col int) {
	line = 1
	i := 0
	for _, r := range src {
		if i >= offset {
			break
		}
		if r == '\n' {
			line++
			col = 0
		} else {
			col++
		}
		i++
	}
	return line, col
}

// CharAt returns the character at rune offset in src, or "" past the end.
func CharAt(src string, offset int) string {
	i := 0
	for _, r := range src {
		if i == offset {
			return string(r)
		}
		i++
	}
	return ""
}
