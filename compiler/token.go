package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Token types for the nom lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenNewline

	// Literals
	TokenNumber     // 25, 3.14
	TokenString     // "hello", 'hello'
	TokenIdentifier // foo, Bar, BAZ_QUX

	// Operators
	TokenPlus  // +
	TokenMinus // -
	TokenStar  // *
	TokenSlash // /
	TokenCaret // ^

	// Punctuation
	TokenLParen // (
	TokenRParen // )
	TokenLBrace // {
	TokenRBrace // }
	TokenComma  // ,
	TokenPeriod // .
)

var tokenNames = map[TokenType]string{
	TokenEOF:        "EOF",
	TokenNewline:    "NEWLINE",
	TokenNumber:     "NUMBER",
	TokenString:     "STRING",
	TokenIdentifier: "IDENTIFIER",
	TokenPlus:       "+",
	TokenMinus:      "-",
	TokenStar:       "*",
	TokenSlash:      "/",
	TokenCaret:      "^",
	TokenLParen:     "(",
	TokenRParen:     ")",
	TokenLBrace:     "{",
	TokenRBrace:     "}",
	TokenComma:      ",",
	TokenPeriod:     ".",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// IsOperator reports whether t is one of the binary operator tokens.
func (t TokenType) IsOperator() bool {
	switch t {
	case TokenPlus, TokenMinus, TokenStar, TokenSlash, TokenCaret:
		return true
	}
	return false
}

// Token represents a lexical token.
type Token struct {
	Type TokenType
	// Literal is the token text. For strings it holds the decoded value,
	// for numbers the exact source digits.
	Literal string
	// Offset is the zero-based rune offset of the token's first character.
	Offset int
	// End is the rune offset just past the token.
	End int
	// SpaceBefore is set when whitespace separates this token from the
	// previous one on the same line.
	SpaceBefore bool
}

func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return "EOF"
	case TokenNewline:
		return "NEWLINE"
	}
	if runes := []rune(t.Literal); len(runes) > 20 {
		return fmt.Sprintf("%s(%q...)", t.Type, string(runes[:20]))
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}

// punctuation maps single-character tokens to their types.
var punctuation = map[rune]TokenType{
	'+': TokenPlus,
	'-': TokenMinus,
	'*': TokenStar,
	'/': TokenSlash,
	'^': TokenCaret,
	'(': TokenLParen,
	')': TokenRParen,
	'{': TokenLBrace,
	'}': TokenRBrace,
	',': TokenComma,
	'.': TokenPeriod,
}
