package ast

import "fmt"

// Visitor is implemented by backends that need one hook per node kind.
// Walk dispatches a node to the matching method; visitors recurse into
// children themselves, by calling Walk again, when they need to.
type Visitor interface {
	VisitNumber(n *NumberExpr) error
	VisitVariable(n *VariableExpr) error
	VisitBinary(n *BinaryExpr) error
	VisitCall(n *CallExpr) error
	VisitPrototype(n *Prototype) error
	VisitFunction(n *Function) error
}

// Walk dispatches n to the Visitor method for its kind.
func Walk(v Visitor, n Node) error {
	switch n := n.(type) {
	case *NumberExpr:
		return v.VisitNumber(n)
	case *VariableExpr:
		return v.VisitVariable(n)
	case *BinaryExpr:
		return v.VisitBinary(n)
	case *CallExpr:
		return v.VisitCall(n)
	case *Prototype:
		return v.VisitPrototype(n)
	case *Function:
		return v.VisitFunction(n)
	default:
		return fmt.Errorf("unsupported AST node type: %T", n)
	}
}

// Inspect traverses the tree rooted at n in pre-order, calling f for each
// node. If f returns false the children of that node are skipped.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	switch n := n.(type) {
	case *BinaryExpr:
		Inspect(n.LHS, f)
		Inspect(n.RHS, f)
	case *CallExpr:
		for _, arg := range n.Args {
			Inspect(arg, f)
		}
	case *Function:
		if n.Proto != nil {
			Inspect(n.Proto, f)
		}
		Inspect(n.Body, f)
	}
}
