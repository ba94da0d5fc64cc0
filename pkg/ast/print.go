package ast

import (
	"strconv"
	"strings"
)

// String renders n as an S-expression, e.g. (+ 1 (* 2 3)).
func String(n Node) string {
	p := &printer{}
	if err := Walk(p, n); err != nil {
		return "<" + err.Error() + ">"
	}
	return p.sb.String()
}

type printer struct {
	sb strings.Builder
}

func (p *printer) VisitNumber(n *NumberExpr) error {
	p.sb.WriteString(strconv.FormatFloat(n.Value, 'g', -1, 64))
	return nil
}

func (p *printer) VisitVariable(n *VariableExpr) error {
	p.sb.WriteString(n.Name)
	return nil
}

func (p *printer) VisitBinary(n *BinaryExpr) error {
	p.sb.WriteByte('(')
	p.sb.WriteRune(n.Op)
	p.sb.WriteByte(' ')
	if err := Walk(p, n.LHS); err != nil {
		return err
	}
	p.sb.WriteByte(' ')
	if err := Walk(p, n.RHS); err != nil {
		return err
	}
	p.sb.WriteByte(')')
	return nil
}

func (p *printer) VisitCall(n *CallExpr) error {
	p.sb.WriteString("(call ")
	p.sb.WriteString(n.Callee)
	for _, arg := range n.Args {
		p.sb.WriteByte(' ')
		if err := Walk(p, arg); err != nil {
			return err
		}
	}
	p.sb.WriteByte(')')
	return nil
}

func (p *printer) VisitPrototype(n *Prototype) error {
	p.sb.WriteString("(proto ")
	p.sb.WriteString(n.Name)
	p.sb.WriteString(" (")
	p.sb.WriteString(strings.Join(n.Params, " "))
	p.sb.WriteString("))")
	return nil
}

func (p *printer) VisitFunction(n *Function) error {
	p.sb.WriteString("(def ")
	if err := Walk(p, n.Proto); err != nil {
		return err
	}
	p.sb.WriteByte(' ')
	if err := Walk(p, n.Body); err != nil {
		return err
	}
	p.sb.WriteByte(')')
	return nil
}
