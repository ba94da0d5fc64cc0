// Package ast defines the lavue syntax tree. The node set is closed: every
// node is one of the six types below, and traversals switch over them
// exhaustively (see Walk).
package ast

import "github.com/lemonberrylabs/lavue/pkg/lexer"

// AnonName is the reserved function name given to bare top-level expressions.
const AnonName = "__anon_expr"

// Node is the interface for all AST nodes.
type Node interface {
	Position() lexer.Pos
	node()
}

// Expr is a node that can appear as an expression operand.
type Expr interface {
	Node
	expr()
}

// Unit is a top-level unit handed to a backend: a *Prototype (from an extern
// declaration) or a *Function (from a definition or a bare expression).
type Unit interface {
	Node
	unit()
}

// NumberExpr is a numeric literal.
type NumberExpr struct {
	Pos   lexer.Pos
	Value float64
}

// VariableExpr references a function parameter by name.
type VariableExpr struct {
	Pos  lexer.Pos
	Name string
}

// BinaryExpr is a binary operation such as a+b.
type BinaryExpr struct {
	Pos lexer.Pos
	Op  rune
	LHS Expr
	RHS Expr
}

// CallExpr is a function call such as foo(1, x).
type CallExpr struct {
	Pos    lexer.Pos
	Callee string
	Args   []Expr
}

// Prototype is a function signature: its name and parameter names.
type Prototype struct {
	Pos    lexer.Pos
	Name   string
	Params []string
}

// Function is a definition: a prototype plus a single expression body.
type Function struct {
	Pos   lexer.Pos
	Proto *Prototype
	Body  Expr
}

// Anonymous wraps body in a zero-parameter function named AnonName.
func Anonymous(body Expr) *Function {
	pos := body.Position()
	return &Function{
		Pos:   pos,
		Proto: &Prototype{Pos: pos, Name: AnonName},
		Body:  body,
	}
}

// IsAnonymous reports whether f was synthesized from a bare expression.
func (f *Function) IsAnonymous() bool {
	return f.Proto != nil && f.Proto.Name == AnonName
}

func (n *NumberExpr) Position() lexer.Pos   { return n.Pos }
func (n *VariableExpr) Position() lexer.Pos { return n.Pos }
func (n *BinaryExpr) Position() lexer.Pos   { return n.Pos }
func (n *CallExpr) Position() lexer.Pos     { return n.Pos }
func (n *Prototype) Position() lexer.Pos    { return n.Pos }
func (n *Function) Position() lexer.Pos     { return n.Pos }

func (*NumberExpr) node()   {}
func (*VariableExpr) node() {}
func (*BinaryExpr) node()   {}
func (*CallExpr) node()     {}
func (*Prototype) node()    {}
func (*Function) node()     {}

func (*NumberExpr) expr()   {}
func (*VariableExpr) expr() {}
func (*BinaryExpr) expr()   {}
func (*CallExpr) expr()     {}

func (*Prototype) unit() {}
func (*Function) unit()  {}
