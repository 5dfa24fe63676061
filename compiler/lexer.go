package compiler

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: Tokenizer for nom source
// ---------------------------------------------------------------------------

// Lexer tokenizes nom source code. Offsets are counted in runes so that
// they index the source the same way the diagnostic renderer does.
type Lexer struct {
	input   string
	pos     int  // byte position of ch
	readPos int  // byte position after ch
	ch      rune // current character, 0 at EOF
	offset  int  // rune offset of ch
	atEOF   bool
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input, offset: -1}
	l.readChar()
	return l
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		if !l.atEOF {
			l.offset++
		}
		l.atEOF = true
		l.ch = 0
		l.pos = len(l.input)
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
	l.offset++
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// NextToken returns the next token, or a *LexError at the first character
// that cannot start or finish a token.
func (l *Lexer) NextToken() (Token, error) {
	spaced := l.skipWhitespace()
	offset := l.offset

	switch {
	case l.atEOF:
		return l.emit(TokenEOF, "", offset, spaced), nil

	case l.ch == '\n':
		l.readChar()
		return l.emit(TokenNewline, "\n", offset, spaced), nil

	case l.ch == '"' || l.ch == '\'':
		return l.readString(offset, spaced)

	case isDigit(l.ch):
		return l.readNumber(offset, spaced), nil

	case isLetter(l.ch) || l.ch == '_':
		return l.readIdentifier(offset, spaced), nil
	}

	if typ, ok := punctuation[l.ch]; ok {
		lit := string(l.ch)
		l.readChar()
		return l.emit(typ, lit, offset, spaced), nil
	}

	return Token{}, &LexError{Offset: offset, Char: string(l.ch), Msg: "unexpected character"}
}

// emit builds a token that ends at the current position.
func (l *Lexer) emit(typ TokenType, lit string, offset int, spaced bool) Token {
	return Token{Type: typ, Literal: lit, Offset: offset, End: l.offset, SpaceBefore: spaced}
}

// skipWhitespace skips blanks (not newlines) and reports whether any
// were skipped.
func (l *Lexer) skipWhitespace() bool {
	skipped := false
	for !l.atEOF && (l.ch == ' ' || l.ch == '\t' || l.ch == '\r') {
		l.readChar()
		skipped = true
	}
	return skipped
}

// readString reads a single- or double-quoted string and decodes its
// escapes.
func (l *Lexer) readString(offset int, spaced bool) (Token, error) {
	quote := l.ch
	l.readChar() // consume opening quote

	var sb strings.Builder
	for {
		if l.atEOF {
			return Token{}, &LexError{Offset: l.offset, Msg: "unterminated string"}
		}
		if l.ch == quote {
			l.readChar() // consume closing quote
			break
		}
		if l.ch == '\\' {
			l.readChar()
			if l.atEOF {
				return Token{}, &LexError{Offset: l.offset, Msg: "unterminated string"}
			}
			sb.WriteRune(unescape(l.ch))
			l.readChar()
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}

	return l.emit(TokenString, sb.String(), offset, spaced), nil
}

// unescape maps the character after a backslash to the character it
// stands for. Unknown escapes stand for themselves.
func unescape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	}
	return r
}

// QuoteString renders value as a string literal that lexes back to value.
// Double quotes delimit it unless value holds a double quote and no
// single quote.
func QuoteString(value string) string {
	quote := '"'
	if strings.ContainsRune(value, '"') && !strings.ContainsRune(value, '\'') {
		quote = '\''
	}

	var sb strings.Builder
	sb.WriteRune(quote)
	for _, r := range value {
		switch r {
		case '\\', quote:
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case 0:
			sb.WriteString(`\0`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteRune(quote)
	return sb.String()
}

// readNumber reads an integer or decimal literal, keeping its exact text.
func (l *Lexer) readNumber(offset int, spaced bool) Token {
	start := l.pos

	for isDigit(l.ch) {
		l.readChar()
	}

	// A single decimal point counts only when digits follow it.
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // consume .
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.emit(TokenNumber, l.input[start:l.pos], offset, spaced)
}

// readIdentifier reads an identifier.
func (l *Lexer) readIdentifier(offset int, spaced bool) Token {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.emit(TokenIdentifier, l.input[start:l.pos], offset, spaced)
}

// Helper functions

func isLetter(r rune) bool {
	return unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// Tokenize returns all tokens from the input, ending with TokenEOF.
func Tokenize(input string) ([]Token, error) {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}
