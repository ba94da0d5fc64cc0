// Package parser implements the lavue recursive descent parser. Binary
// expressions are parsed by precedence climbing over a configurable
// operator table.
package parser

import (
	"github.com/lemonberrylabs/lavue/pkg/ast"
	"github.com/lemonberrylabs/lavue/pkg/lexer"
)

// DefaultMaxDepth is the default nesting limit for parenthesized
// expressions and call arguments.
const DefaultMaxDepth = 256

// Options configures a Parser. The zero value selects the defaults.
type Options struct {
	Precedence *Precedence // nil means DefaultPrecedence
	MaxDepth   int         // <= 0 means DefaultMaxDepth
}

// Parser holds one token of look-ahead over a lexer.
type Parser struct {
	lex      *lexer.Lexer
	tok      lexer.Token
	prec     *Precedence
	maxDepth int
	depth    int
	consumed int
}

// New creates a parser over lex. No token is fetched until Next is called.
// The precedence table is copied and never modified afterwards.
func New(lex *lexer.Lexer, opts Options) *Parser {
	prec := opts.Precedence
	if prec == nil {
		prec = DefaultPrecedence()
	}
	return &Parser{lex: lex, prec: prec.Clone(), maxDepth: opts.Depth()}
}

// Depth returns the nesting limit a parser built from o enforces.
func (o Options) Depth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// ParseExpr parses src as exactly one expression.
func ParseExpr(src string, opts Options) (ast.Expr, error) {
	p := New(lexer.NewString(src), opts)
	p.Next()
	e, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if p.tok.Kind != lexer.KindEOF {
		return nil, p.errorf("unexpected %s after expression", p.tok)
	}
	return e, nil
}

// Current returns the look-ahead token.
func (p *Parser) Current() lexer.Token {
	return p.tok
}

// Next advances to the next token and returns it.
func (p *Parser) Next() lexer.Token {
	p.tok = p.lex.Next()
	p.consumed++
	return p.tok
}

// Consumed returns how many tokens have been fetched so far. The driver
// compares it before and after a production to see whether it made progress.
func (p *Parser) Consumed() int {
	return p.consumed
}

// ParseExpression parses a primary followed by any binary operator chain.
func (p *Parser) ParseExpression() (ast.Expr, error) {
	if p.depth >= p.maxDepth {
		return nil, p.errorf("expression nested too deeply (max %d)", p.maxDepth)
	}
	p.depth++
	defer func() { p.depth-- }()

	lhs, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parseBinOpRHS(0, lhs)
}

// parseBinOpRHS absorbs operators binding at least as tight as minPrec onto lhs.
func (p *Parser) parseBinOpRHS(minPrec int, lhs ast.Expr) (ast.Expr, error) {
	for {
		tokPrec := p.prec.Lookup(p.tok)
		if tokPrec < minPrec {
			return lhs, nil
		}

		opTok := p.tok
		p.Next()

		rhs, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}

		// A tighter operator after rhs takes rhs as its own left operand.
		if tokPrec < p.prec.Lookup(p.tok) {
			rhs, err = p.parseBinOpRHS(tokPrec+1, rhs)
			if err != nil {
				return nil, err
			}
		}

		lhs = &ast.BinaryExpr{Pos: opTok.Pos, Op: opTok.Char, LHS: lhs, RHS: rhs}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	switch {
	case p.tok.Kind == lexer.KindNumber:
		n := &ast.NumberExpr{Pos: p.tok.Pos, Value: p.tok.Num}
		p.Next()
		return n, nil
	case p.tok.Kind == lexer.KindIdent:
		return p.parseIdentifier()
	case p.tok.Is('('):
		return p.parseParen()
	case p.tok.Kind == lexer.KindIllegal:
		return nil, p.errorf("invalid number literal %q", p.tok.Text)
	default:
		return nil, p.errorf("unknown token when expecting an expression")
	}
}

// parseParen parses ( expression ).
func (p *Parser) parseParen() (ast.Expr, error) {
	p.Next() // consume (
	e, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if !p.tok.Is(')') {
		return nil, p.errorf("expect ')'")
	}
	p.Next()
	return e, nil
}

// parseIdentifier parses a variable reference or a call foo(a, b).
func (p *Parser) parseIdentifier() (ast.Expr, error) {
	nameTok := p.tok
	p.Next()

	if !p.tok.Is('(') {
		return &ast.VariableExpr{Pos: nameTok.Pos, Name: nameTok.Text}, nil
	}
	p.Next() // consume (

	var args []ast.Expr
	if !p.tok.Is(')') {
		for {
			arg, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if p.tok.Is(')') {
				break
			}
			if !p.tok.Is(',') {
				return nil, p.errorf("expect ')' or ',' in argument list")
			}
			p.Next()
		}
	}
	p.Next() // consume )

	return &ast.CallExpr{Pos: nameTok.Pos, Callee: nameTok.Text, Args: args}, nil
}

// parsePrototype parses name ( param param ... ).
func (p *Parser) parsePrototype() (*ast.Prototype, error) {
	if p.tok.Kind != lexer.KindIdent {
		return nil, p.errorf("expect function name in prototype")
	}
	proto := &ast.Prototype{Pos: p.tok.Pos, Name: p.tok.Text}
	p.Next()

	if !p.tok.Is('(') {
		return nil, p.errorf("expect '(' in prototype")
	}
	p.Next()

	for p.tok.Kind == lexer.KindIdent {
		proto.Params = append(proto.Params, p.tok.Text)
		p.Next()
	}

	if !p.tok.Is(')') {
		return nil, p.errorf("expect ')' in prototype")
	}
	p.Next()

	return proto, nil
}

// ParseDefinition parses def prototype expression.
func (p *Parser) ParseDefinition() (*ast.Function, error) {
	defTok := p.tok
	p.Next() // consume def

	proto, err := p.parsePrototype()
	if err != nil {
		return nil, err
	}
	body, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.Function{Pos: defTok.Pos, Proto: proto, Body: body}, nil
}

// ParseExtern parses extern prototype.
func (p *Parser) ParseExtern() (*ast.Prototype, error) {
	p.Next() // consume extern
	return p.parsePrototype()
}

// ParseTopLevelExpr parses a bare expression and wraps it in an anonymous
// zero-parameter function.
func (p *Parser) ParseTopLevelExpr() (*ast.Function, error) {
	body, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	return ast.Anonymous(body), nil
}
