package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lemonberrylabs/lavue/pkg/lexer"
)

// NotAnOperator is the precedence reported for tokens that do not continue
// a binary expression.
const NotAnOperator = -1

// reserved characters cannot be declared as binary operators because the
// grammar already gives them a meaning.
const reserved = "(),;#."

// Precedence maps single-character binary operators to their binding power.
// Higher binds tighter.
type Precedence struct {
	table map[rune]int
}

// DefaultPrecedence returns the built-in table: < 10, + 20, - 20, * 40.
func DefaultPrecedence() *Precedence {
	return &Precedence{table: map[rune]int{
		'<': 10,
		'+': 20,
		'-': 20,
		'*': 40,
	}}
}

// Set installs or overrides the precedence of op.
func (p *Precedence) Set(op rune, prec int) error {
	if op < '!' || op > '~' {
		return fmt.Errorf("operator %q must be a printable ASCII character", op)
	}
	if isAlnum(op) || strings.ContainsRune(reserved, op) {
		return fmt.Errorf("operator %q is reserved", op)
	}
	if prec <= 0 {
		return fmt.Errorf("operator %q: precedence must be positive, got %d", op, prec)
	}
	if p.table == nil {
		p.table = make(map[rune]int)
	}
	p.table[op] = prec
	return nil
}

// SetAll installs a set of operators keyed by their one-character spelling.
func (p *Precedence) SetAll(ops map[string]int) error {
	keys := make([]string, 0, len(ops))
	for k := range ops {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		r := []rune(k)
		if len(r) != 1 {
			return fmt.Errorf("operator %q must be a single character", k)
		}
		if err := p.Set(r[0], ops[k]); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the precedence of tok, or NotAnOperator.
func (p *Precedence) Lookup(tok lexer.Token) int {
	if tok.Kind != lexer.KindChar || tok.Char > 0x7f {
		return NotAnOperator
	}
	prec, ok := p.table[tok.Char]
	if !ok || prec <= 0 {
		return NotAnOperator
	}
	return prec
}

// Clone returns an independent copy of the table.
func (p *Precedence) Clone() *Precedence {
	c := &Precedence{table: make(map[rune]int, len(p.table))}
	for op, prec := range p.table {
		c.table[op] = prec
	}
	return c
}

// Operators returns the table keyed by operator spelling.
func (p *Precedence) Operators() map[string]int {
	out := make(map[string]int, len(p.table))
	for op, prec := range p.table {
		out[string(op)] = prec
	}
	return out
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
