package ast

import "github.com/lemonberrylabs/lavue/pkg/lexer"

// Doc is a serializable view of a node for the JSON and YAML printers.
type Doc struct {
	Kind   string    `json:"kind" yaml:"kind"`
	Pos    lexer.Pos `json:"pos" yaml:"pos"`
	Value  *float64  `json:"value,omitempty" yaml:"value,omitempty"`
	Name   string    `json:"name,omitempty" yaml:"name,omitempty"`
	Op     string    `json:"op,omitempty" yaml:"op,omitempty"`
	LHS    *Doc      `json:"lhs,omitempty" yaml:"lhs,omitempty"`
	RHS    *Doc      `json:"rhs,omitempty" yaml:"rhs,omitempty"`
	Args   []*Doc    `json:"args,omitempty" yaml:"args,omitempty"`
	Params []string  `json:"params,omitempty" yaml:"params,omitempty"`
	Proto  *Doc      `json:"proto,omitempty" yaml:"proto,omitempty"`
	Body   *Doc      `json:"body,omitempty" yaml:"body,omitempty"`
}

// ToDoc converts the tree rooted at n into its Doc form.
func ToDoc(n Node) *Doc {
	switch n := n.(type) {
	case *NumberExpr:
		v := n.Value
		return &Doc{Kind: "number", Pos: n.Pos, Value: &v}
	case *VariableExpr:
		return &Doc{Kind: "variable", Pos: n.Pos, Name: n.Name}
	case *BinaryExpr:
		return &Doc{Kind: "binary", Pos: n.Pos, Op: string(n.Op), LHS: ToDoc(n.LHS), RHS: ToDoc(n.RHS)}
	case *CallExpr:
		args := make([]*Doc, len(n.Args))
		for i, arg := range n.Args {
			args[i] = ToDoc(arg)
		}
		return &Doc{Kind: "call", Pos: n.Pos, Name: n.Callee, Args: args}
	case *Prototype:
		return &Doc{Kind: "prototype", Pos: n.Pos, Name: n.Name, Params: n.Params}
	case *Function:
		return &Doc{Kind: "function", Pos: n.Pos, Proto: ToDoc(n.Proto), Body: ToDoc(n.Body)}
	default:
		return nil
	}
}
