// Package backend provides the Backend implementations used by the lavue
// CLI and HTTP service: a symbol registry that resolves names and call
// arity, printers for the S-expression, YAML and JSON forms, and helpers to
// collect or chain units.
package backend

import (
	"fmt"
	"sort"
	"sync"

	"github.com/lemonberrylabs/lavue/pkg/ast"
	"github.com/lemonberrylabs/lavue/pkg/lexer"
)

// ResolveError is a name or arity error found by the Registry.
type ResolveError struct {
	Message string
	Pos     lexer.Pos
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve error at %s: %s", e.Pos, e.Message)
}

// SymbolKind says how a name entered the registry.
type SymbolKind string

const (
	SymbolExtern   SymbolKind = "extern"
	SymbolFunction SymbolKind = "function"
)

// Symbol is a registered function signature.
type Symbol struct {
	Name   string     `json:"name" yaml:"name"`
	Params []string   `json:"params" yaml:"params"`
	Kind   SymbolKind `json:"kind" yaml:"kind"`
}

// Registry is a thread-safe table of declared and defined functions. As a
// Backend it checks each unit against the table before recording it:
// variables must name a parameter, callees must be known with the right
// number of arguments, and a defined function cannot be defined again.
type Registry struct {
	mu      sync.RWMutex
	symbols map[string]*Symbol
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{symbols: make(map[string]*Symbol)}
}

// Accept implements driver.Backend.
func (r *Registry) Accept(unit ast.Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch u := unit.(type) {
	case *ast.Prototype:
		return r.declare(u, SymbolExtern)
	case *ast.Function:
		return r.define(u)
	default:
		return fmt.Errorf("unsupported unit type: %T", unit)
	}
}

// Lookup returns the symbol registered under name.
func (r *Registry) Lookup(name string) (Symbol, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sym, ok := r.symbols[name]
	if !ok {
		return Symbol{}, false
	}
	return *sym, true
}

// Symbols returns every registered symbol sorted by name.
func (r *Registry) Symbols() []Symbol {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Symbol, 0, len(r.symbols))
	for _, sym := range r.symbols {
		result = append(result, *sym)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// declare checks proto against any existing entry and records it.
func (r *Registry) declare(proto *ast.Prototype, kind SymbolKind) error {
	seen := make(map[string]bool, len(proto.Params))
	for _, p := range proto.Params {
		if seen[p] {
			return &ResolveError{
				Message: fmt.Sprintf("duplicate parameter '%s' in '%s'", p, proto.Name),
				Pos:     proto.Pos,
			}
		}
		seen[p] = true
	}

	if existing, ok := r.symbols[proto.Name]; ok {
		if existing.Kind == SymbolFunction && kind == SymbolFunction {
			return &ResolveError{
				Message: fmt.Sprintf("function '%s' cannot be redefined", proto.Name),
				Pos:     proto.Pos,
			}
		}
		if len(existing.Params) != len(proto.Params) {
			return &ResolveError{
				Message: fmt.Sprintf("redefinition of '%s' with different # args", proto.Name),
				Pos:     proto.Pos,
			}
		}
		if kind == SymbolExtern {
			return nil
		}
	}

	r.symbols[proto.Name] = &Symbol{
		Name:   proto.Name,
		Params: append([]string(nil), proto.Params...),
		Kind:   kind,
	}
	return nil
}

// define resolves fn's body and records it. Anonymous functions are checked
// but never recorded. The prototype is visible inside its own body so that
// recursive definitions resolve; a failed body removes it again.
func (r *Registry) define(fn *ast.Function) error {
	if fn.IsAnonymous() {
		return ast.Walk(&resolver{reg: r, params: map[string]bool{}}, fn.Body)
	}

	prev, hadPrev := r.symbols[fn.Proto.Name]
	var saved Symbol
	if hadPrev {
		saved = *prev
	}
	if err := r.declare(fn.Proto, SymbolFunction); err != nil {
		return err
	}

	params := make(map[string]bool, len(fn.Proto.Params))
	for _, p := range fn.Proto.Params {
		params[p] = true
	}
	if err := ast.Walk(&resolver{reg: r, params: params}, fn.Body); err != nil {
		if hadPrev {
			r.symbols[fn.Proto.Name] = &saved
		} else {
			delete(r.symbols, fn.Proto.Name)
		}
		return err
	}
	return nil
}

// resolver walks a function body. The registry lock is held by the caller.
type resolver struct {
	reg    *Registry
	params map[string]bool
}

func (v *resolver) VisitNumber(*ast.NumberExpr) error { return nil }

func (v *resolver) VisitVariable(n *ast.VariableExpr) error {
	if !v.params[n.Name] {
		return &ResolveError{Message: fmt.Sprintf("unknown variable name '%s'", n.Name), Pos: n.Pos}
	}
	return nil
}

func (v *resolver) VisitBinary(n *ast.BinaryExpr) error {
	if err := ast.Walk(v, n.LHS); err != nil {
		return err
	}
	return ast.Walk(v, n.RHS)
}

func (v *resolver) VisitCall(n *ast.CallExpr) error {
	sym, ok := v.reg.symbols[n.Callee]
	if !ok {
		return &ResolveError{Message: fmt.Sprintf("unknown function referenced '%s'", n.Callee), Pos: n.Pos}
	}
	if len(sym.Params) != len(n.Args) {
		return &ResolveError{
			Message: fmt.Sprintf("incorrect # arguments passed to '%s': want %d, got %d", n.Callee, len(sym.Params), len(n.Args)),
			Pos:     n.Pos,
		}
	}
	for _, arg := range n.Args {
		if err := ast.Walk(v, arg); err != nil {
			return err
		}
	}
	return nil
}

func (v *resolver) VisitPrototype(*ast.Prototype) error {
	return fmt.Errorf("prototype cannot appear inside an expression")
}

func (v *resolver) VisitFunction(*ast.Function) error {
	return fmt.Errorf("function cannot appear inside an expression")
}
