package backend

import (
	"github.com/lemonberrylabs/lavue/pkg/ast"
	"github.com/lemonberrylabs/lavue/pkg/driver"
)

// Chain passes each unit to every backend in order and stops at the first
// failure, so later stages only see units the earlier ones accepted.
type Chain []driver.Backend

// Accept implements driver.Backend.
func (c Chain) Accept(unit ast.Unit) error {
	for _, b := range c {
		if err := b.Accept(unit); err != nil {
			return err
		}
	}
	return nil
}

// Collector keeps every accepted unit in order.
type Collector struct {
	Units []ast.Unit
}

// Accept implements driver.Backend.
func (c *Collector) Accept(unit ast.Unit) error {
	c.Units = append(c.Units, unit)
	return nil
}
