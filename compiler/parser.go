package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Parser: recursive descent with precedence climbing for nom
// ---------------------------------------------------------------------------

// MaxDepth bounds the nesting of operands and operator chains.
const MaxDepth = 512

// Binding powers, lowest first. Unary minus sits between multiplicative
// operators and exponentiation.
const (
	precAdditive       = 1
	precMultiplicative = 2
	precPower          = 4
)

// binaryPrecedence returns the binding power of a binary operator token.
func binaryPrecedence(t TokenType) (prec int, rightAssoc bool, ok bool) {
	switch t {
	case TokenPlus, TokenMinus:
		return precAdditive, false, true
	case TokenStar, TokenSlash:
		return precMultiplicative, false, true
	case TokenCaret:
		return precPower, true, true
	}
	return 0, false, false
}

// Parser turns a token slice into statements. It stops at the first
// token it cannot accept.
type Parser struct {
	tokens []Token
	pos    int
	depth  int
	spans  map[Node]Span
}

// NewParser creates a parser over tokens. The slice must end with a
// TokenEOF, as returned by Tokenize.
func NewParser(tokens []Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != TokenEOF {
		end := 0
		if len(tokens) > 0 {
			end = tokens[len(tokens)-1].End
		}
		tokens = append(tokens[:len(tokens):len(tokens)], Token{Type: TokenEOF, Offset: end, End: end})
	}
	return &Parser{
		tokens: tokens,
		spans:  make(map[Node]Span),
	}
}

// curToken returns the current token.
func (p *Parser) curToken() Token {
	return p.tokens[p.pos]
}

// peekAt returns the token n positions ahead, clamped to EOF.
func (p *Parser) peekAt(n int) Token {
	i := p.pos + n
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

// nextToken advances to the next token. It never moves past EOF.
func (p *Parser) nextToken() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

// curTokenIs checks if the current token is of the given type.
func (p *Parser) curTokenIs(t TokenType) bool {
	return p.tokens[p.pos].Type == t
}

// prevEnd is the end offset of the last consumed token.
func (p *Parser) prevEnd() int {
	if p.pos == 0 {
		return 0
	}
	return p.tokens[p.pos-1].End
}

func (p *Parser) skipNewlines() {
	for p.curTokenIs(TokenNewline) {
		p.nextToken()
	}
}

// expect consumes the current token if it matches.
func (p *Parser) expect(t TokenType) error {
	if p.curTokenIs(t) {
		p.nextToken()
		return nil
	}
	return p.errorf("expected %s, got %s", t, describe(p.curToken()))
}

// errorf builds a syntax error at the current token.
func (p *Parser) errorf(format string, args ...interface{}) error {
	return errorAt(p.curToken(), format, args...)
}

func errorAt(tok Token, format string, args ...interface{}) error {
	return &SyntaxError{Offset: tok.Offset, Char: tokenChar(tok), Msg: fmt.Sprintf(format, args...)}
}

// tokenChar approximates the first source character of tok. Parse
// replaces it with the exact character from the source text.
func tokenChar(tok Token) string {
	switch tok.Type {
	case TokenEOF:
		return ""
	case TokenString:
		return `"`
	}
	for _, r := range tok.Literal {
		return string(r)
	}
	return ""
}

func describe(tok Token) string {
	switch tok.Type {
	case TokenEOF:
		return "end of input"
	case TokenNewline:
		return "newline"
	case TokenNumber, TokenString, TokenIdentifier:
		return tok.String()
	}
	return fmt.Sprintf("%q", tok.Literal)
}

// mark records the source span of n from start to the last consumed token.
func (p *Parser) mark(n Node, start int) {
	p.spans[n] = Span{Start: start, End: p.prevEnd()}
}

// Spans returns the span side table filled during parsing.
func (p *Parser) Spans() map[Node]Span {
	return p.spans
}

// enter guards recursion depth.
func (p *Parser) enter() error {
	p.depth++
	if p.depth > MaxDepth {
		return p.errorf("nesting deeper than %d levels", MaxDepth)
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// ParseProgram parses the whole token stream.
func (p *Parser) ParseProgram() ([]Stmt, error) {
	return p.parseStatements(TokenEOF)
}

// parseStatements parses newline-separated statements up to (not
// including) the closing token.
func (p *Parser) parseStatements(closing TokenType) ([]Stmt, error) {
	var stmts []Stmt
	for {
		p.skipNewlines()
		if p.curTokenIs(closing) {
			return stmts, nil
		}
		if p.curTokenIs(TokenEOF) {
			return nil, p.errorf("expected %s, got end of input", closing)
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)

		if !p.curTokenIs(TokenNewline) && !p.curTokenIs(closing) {
			return nil, p.errorf("unexpected %s after statement", describe(p.curToken()))
		}
	}
}

// parseStatement parses a method definition or an expression statement.
func (p *Parser) parseStatement() (Stmt, error) {
	if p.atMethodDef() {
		return p.parseMethodDef()
	}

	start := p.curToken().Offset
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	stmt := &ExprStmt{Expr: expr}
	p.mark(stmt, start)
	return stmt, nil
}

// atMethodDef looks ahead for name ( ... ) { without consuming anything.
// The scan stops at the parenthesis matching the first one, and the brace
// must follow it on the same line.
func (p *Parser) atMethodDef() bool {
	if !p.curTokenIs(TokenIdentifier) || p.peekAt(1).Type != TokenLParen {
		return false
	}
	depth := 0
	for i := 1; ; i++ {
		switch p.peekAt(i).Type {
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
			if depth == 0 {
				return p.peekAt(i+1).Type == TokenLBrace
			}
		case TokenLBrace, TokenRBrace, TokenEOF:
			return false
		}
	}
}

// parseMethodDef parses name (param, ...) { body }.
func (p *Parser) parseMethodDef() (*MethodDef, error) {
	nameTok := p.curToken()
	if Classify(nameTok.Literal) != Variable {
		return nil, p.errorf("method name %q must start with a lower-case letter", nameTok.Literal)
	}
	name := NewVariable(nameTok.Literal)
	p.nextToken()
	p.mark(name, nameTok.Offset)
	p.nextToken() // consume (

	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	def := &MethodDef{Name: name, Params: params, Body: body}
	p.mark(def, nameTok.Offset)
	return def, nil
}

// parseParams parses a comma-separated parameter list and the closing ).
func (p *Parser) parseParams() ([]*Identifier, error) {
	var params []*Identifier

	p.skipNewlines()
	if p.curTokenIs(TokenRParen) {
		p.nextToken()
		return params, nil
	}

	for {
		p.skipNewlines()
		tok := p.curToken()
		if tok.Type != TokenIdentifier {
			return nil, p.errorf("expected parameter name, got %s", describe(tok))
		}
		if Classify(tok.Literal) != Variable {
			return nil, p.errorf("parameter %q must start with a lower-case letter", tok.Literal)
		}
		param := NewVariable(tok.Literal)
		p.nextToken()
		p.mark(param, tok.Offset)
		params = append(params, param)

		p.skipNewlines()
		switch {
		case p.curTokenIs(TokenComma):
			p.nextToken()
		case p.curTokenIs(TokenRParen):
			p.nextToken()
			return params, nil
		default:
			return nil, p.errorf("expected , or ) in parameter list, got %s", describe(p.curToken()))
		}
	}
}

// parseBlock parses { statements }.
func (p *Parser) parseBlock() (*Block, error) {
	if !p.curTokenIs(TokenLBrace) {
		return nil, p.errorf("expected {, got %s", describe(p.curToken()))
	}

	p.nextToken() // consume {
	stmts, err := p.parseStatements(TokenRBrace)
	if err != nil {
		return nil, err
	}
	p.nextToken() // consume }
	return &Block{Statements: stmts}, nil
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// ParseExpression parses a single expression from the current token.
func (p *Parser) ParseExpression() (Expr, error) {
	return p.parseExpression()
}

func (p *Parser) parseExpression() (Expr, error) {
	expr, _, err := p.parseBinary(precAdditive)
	return expr, err
}

// parseBinary is the precedence-climbing loop. The boolean result reports
// whether the expression may be the left factor of an implied
// multiplication: it ends in a number literal or a parenthesized group.
// Implied products sit at the multiplicative level, so 3 * 2(4) is
// (3 * 2) * 4 and 2^2(3) is (2^2) * 3.
func (p *Parser) parseBinary(minPrec int) (Expr, bool, error) {
	if err := p.enter(); err != nil {
		return nil, false, err
	}
	defer p.leave()

	left, implicit, err := p.parseUnary()
	if err != nil {
		return nil, false, err
	}

	for {
		tok := p.curToken()
		prec, rightAssoc, ok := binaryPrecedence(tok.Type)
		if !ok {
			if implicit && minPrec <= precMultiplicative && p.startsImpliedFactor() {
				right, rightImplicit, err := p.parseBinary(precMultiplicative + 1)
				if err != nil {
					return nil, false, err
				}
				left = &BinaryOp{Op: OpMul, Left: left, Right: right}
				implicit = rightImplicit
				continue
			}
			return left, implicit, nil
		}
		if prec < minPrec {
			return left, implicit, nil
		}

		p.nextToken()
		p.skipNewlines()

		next := prec + 1
		if rightAssoc {
			next = prec
		}
		right, rightImplicit, err := p.parseBinary(next)
		if err != nil {
			return nil, false, err
		}
		left = &BinaryOp{Op: Operator(tok.Literal), Left: left, Right: right}
		implicit = rightImplicit
	}
}

// startsImpliedFactor reports whether the current token can begin the
// right factor of an implied multiplication: 2(4 + 8), 2x.
func (p *Parser) startsImpliedFactor() bool {
	return p.curTokenIs(TokenLParen) || p.curTokenIs(TokenIdentifier)
}

// parseUnary handles prefix minus, which desugars to 0 - operand. The
// operand binds at exponent level, so -2^2 is 0 - (2^2) and -2(3) is
// (0 - 2) * 3.
func (p *Parser) parseUnary() (Expr, bool, error) {
	if !p.curTokenIs(TokenMinus) {
		return p.parseOperand()
	}

	p.nextToken() // consume -
	operand, implicit, err := p.parseBinary(precPower)
	if err != nil {
		return nil, false, err
	}
	return &BinaryOp{Op: OpSub, Left: &NumberLit{Text: "0"}, Right: operand}, implicit, nil
}

// parseOperand parses a primary expression.
func (p *Parser) parseOperand() (Expr, bool, error) {
	if err := p.enter(); err != nil {
		return nil, false, err
	}
	defer p.leave()

	tok := p.curToken()
	switch tok.Type {
	case TokenNumber:
		p.nextToken()
		return &NumberLit{Text: tok.Literal}, true, nil

	case TokenString:
		p.nextToken()
		return &StringLit{Value: tok.Literal}, false, nil

	case TokenLParen:
		expr, err := p.parseGroup()
		return expr, true, err

	case TokenLBrace:
		block, err := p.parseBlock()
		if err != nil {
			return nil, false, err
		}
		return block, false, nil

	case TokenIdentifier:
		call, err := p.parseCall()
		if err != nil {
			return nil, false, err
		}
		return call, false, nil

	case TokenEOF:
		return nil, false, p.errorf("unexpected end of input")
	}
	return nil, false, p.errorf("unexpected %s", describe(tok))
}

// parseGroup parses ( expression ). Newlines inside are insignificant.
func (p *Parser) parseGroup() (Expr, error) {
	p.nextToken() // consume (
	p.skipNewlines()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	if err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return expr, nil
}

// ---------------------------------------------------------------------------
// Calls
//
// A name always means invoking it. After the callee:
//
//	foo(a, b)   parenthesized arguments
//	foo (a, b)  also parenthesized: the group holds a top-level comma
//	foo ()      also parenthesized, with no arguments
//	foo a, b    comma list: each argument is a full expression
//	foo a ^ 2   single argument: a primary, so this is (foo a) ^ 2
//	foo         no arguments
//
// The comma list and the single argument are told apart by scanning the
// rest of the current line at the current nesting depth for a comma.
// A spaced group with a single expression, foo (a), is a single argument.
// ---------------------------------------------------------------------------

func (p *Parser) parseCall() (*Call, error) {
	callee, err := p.parseCallee()
	if err != nil {
		return nil, err
	}
	call := &Call{Callee: callee}

	switch {
	case p.curTokenIs(TokenLParen) && (!p.curToken().SpaceBefore || p.argListAhead()):
		call.Args, err = p.parseParenArgs()
	case p.startsArgument():
		if p.commaAhead() {
			call.Args, err = p.parseCommaArgs()
		} else {
			var arg Expr
			arg, _, err = p.parseOperand()
			if err == nil {
				call.Args = []*ExprStmt{{Expr: arg}}
			}
		}
	}
	if err != nil {
		return nil, err
	}
	return call, nil
}

// parseCallee parses a name or a dotted path of variable names.
func (p *Parser) parseCallee() (Expr, error) {
	tok := p.curToken()
	first := NewIdentifier(tok.Literal)
	p.nextToken()
	p.mark(first, tok.Offset)

	if !p.curTokenIs(TokenPeriod) {
		return first, nil
	}
	if first.Kind != Variable {
		return nil, errorAt(tok, "path segment %q must start with a lower-case letter", tok.Literal)
	}

	path := &Path{Segments: []*Identifier{first}}
	for p.curTokenIs(TokenPeriod) {
		p.nextToken() // consume .
		seg := p.curToken()
		if seg.Type != TokenIdentifier {
			return nil, p.errorf("expected name after '.', got %s", describe(seg))
		}
		if Classify(seg.Literal) != Variable {
			return nil, p.errorf("path segment %q must start with a lower-case letter", seg.Literal)
		}
		ident := NewVariable(seg.Literal)
		p.nextToken()
		p.mark(ident, seg.Offset)
		path.Segments = append(path.Segments, ident)
	}
	p.mark(path, tok.Offset)
	return path, nil
}

// startsArgument reports whether the current token can begin a
// juxtaposed argument.
func (p *Parser) startsArgument() bool {
	switch p.curToken().Type {
	case TokenNumber, TokenString, TokenIdentifier, TokenLParen, TokenLBrace:
		return true
	}
	return false
}

// commaAhead scans forward from the current token to the end of the line
// or enclosing group and reports whether a comma occurs at this depth.
func (p *Parser) commaAhead() bool {
	depth := 0
	for i := p.pos; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case TokenLParen, TokenLBrace:
			depth++
		case TokenRParen, TokenRBrace:
			if depth == 0 {
				return false
			}
			depth--
		case TokenComma:
			if depth == 0 {
				return true
			}
		case TokenNewline:
			if depth == 0 {
				return false
			}
		case TokenEOF:
			return false
		}
	}
	return false
}

// argListAhead reports whether the group opened by the current ( is empty
// or holds a comma directly inside it.
func (p *Parser) argListAhead() bool {
	depth := 0
	for i := p.pos; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case TokenLParen, TokenLBrace:
			depth++
		case TokenRParen, TokenRBrace:
			depth--
			if depth == 0 {
				return p.onlyNewlinesBetween(p.pos, i)
			}
		case TokenComma:
			if depth == 1 {
				return true
			}
		case TokenEOF:
			return false
		}
	}
	return false
}

func (p *Parser) onlyNewlinesBetween(from, to int) bool {
	for i := from + 1; i < to; i++ {
		if p.tokens[i].Type != TokenNewline {
			return false
		}
	}
	return true
}

// parseParenArgs parses ( expr, expr, ... ).
func (p *Parser) parseParenArgs() ([]*ExprStmt, error) {
	p.nextToken() // consume (
	p.skipNewlines()
	if p.curTokenIs(TokenRParen) {
		p.nextToken()
		return nil, nil
	}

	var args []*ExprStmt
	for {
		p.skipNewlines()
		arg, err := p.parseArgument()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		p.skipNewlines()
		switch {
		case p.curTokenIs(TokenComma):
			p.nextToken()
		case p.curTokenIs(TokenRParen):
			p.nextToken()
			return args, nil
		default:
			return nil, p.errorf("expected , or ) in argument list, got %s", describe(p.curToken()))
		}
	}
}

// parseCommaArgs parses expr, expr, ... without parentheses.
func (p *Parser) parseCommaArgs() ([]*ExprStmt, error) {
	var args []*ExprStmt
	for {
		arg, err := p.parseArgument()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		if !p.curTokenIs(TokenComma) {
			return args, nil
		}
		p.nextToken()
		p.skipNewlines()
	}
}

func (p *Parser) parseArgument() (*ExprStmt, error) {
	start := p.curToken().Offset
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	arg := &ExprStmt{Expr: expr}
	p.mark(arg, start)
	return arg, nil
}
