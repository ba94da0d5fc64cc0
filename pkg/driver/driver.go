// Package driver runs the lavue top-level loop: it reads definitions, extern
// declarations and bare expressions one unit at a time, hands each parsed
// unit to a Backend, and recovers from failures by skipping input.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/lemonberrylabs/lavue/pkg/ast"
	"github.com/lemonberrylabs/lavue/pkg/lexer"
	"github.com/lemonberrylabs/lavue/pkg/parser"
)

// DefaultPrompt is written before each top-level unit.
const DefaultPrompt = "ready> "

// Status lines written after a unit parses.
const (
	MsgDefinition = "Parse a function definition"
	MsgExtern     = "Parse an extern"
	MsgTopLevel   = "Parse top-level expr"
)

// Backend receives each successfully parsed unit. A returned error is
// treated as a failure of that unit.
type Backend interface {
	Accept(unit ast.Unit) error
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(unit ast.Unit) error

// Accept calls f(unit).
func (f BackendFunc) Accept(unit ast.Unit) error { return f(unit) }

// Discard accepts every unit and does nothing with it.
var Discard Backend = BackendFunc(func(ast.Unit) error { return nil })

// Config configures a Driver.
type Config struct {
	Backend Backend   // nil means Discard
	Out     io.Writer // prompts and status lines; nil means io.Discard
	Prompt  string    // empty means DefaultPrompt
	Parser  parser.Options
}

// Summary counts what a run processed.
type Summary struct {
	Definitions int
	Externs     int
	Expressions int
	Errors      []error
}

// Driver owns one lexer/parser session over a single input stream.
type Driver struct {
	lex     *lexer.Lexer
	p       *parser.Parser
	backend Backend
	out     io.Writer
	prompt  string
	sum     Summary
}

// New creates a driver reading from r.
func New(r io.Reader, cfg Config) *Driver {
	if cfg.Backend == nil {
		cfg.Backend = Discard
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	lex := lexer.New(r)
	return &Driver{
		lex:     lex,
		p:       parser.New(lex, cfg.Parser),
		backend: cfg.Backend,
		out:     cfg.Out,
		prompt:  cfg.Prompt,
	}
}

// Run processes units until end of input. Unit failures are reported to the
// output and recorded in the summary; they never stop the loop. The returned
// error is non-nil only if ctx is done or the input could not be read.
func (d *Driver) Run(ctx context.Context) (*Summary, error) {
	fmt.Fprint(d.out, d.prompt)
	d.p.Next()

	for {
		if err := ctx.Err(); err != nil {
			return &d.sum, err
		}

		tok := d.p.Current()
		switch {
		case tok.Kind == lexer.KindEOF:
			if err := d.lex.Err(); err != nil {
				return &d.sum, fmt.Errorf("reading input: %w", err)
			}
			return &d.sum, nil
		case tok.Is(';'):
			d.p.Next()
		case tok.Kind == lexer.KindDef:
			d.handleDefinition()
		case tok.Kind == lexer.KindExtern:
			d.handleExtern()
		default:
			d.handleTopLevel()
		}

		fmt.Fprint(d.out, d.prompt)
	}
}

func (d *Driver) handleDefinition() {
	start := d.p.Consumed()
	fn, err := d.p.ParseDefinition()
	if err != nil {
		d.fail(err, start)
		return
	}
	fmt.Fprintln(d.out, MsgDefinition)
	if err := d.backend.Accept(fn); err != nil {
		d.report(err)
		return
	}
	d.sum.Definitions++
}

func (d *Driver) handleExtern() {
	start := d.p.Consumed()
	proto, err := d.p.ParseExtern()
	if err != nil {
		d.fail(err, start)
		return
	}
	fmt.Fprintln(d.out, MsgExtern)
	if err := d.backend.Accept(proto); err != nil {
		d.report(err)
		return
	}
	d.sum.Externs++
}

func (d *Driver) handleTopLevel() {
	start := d.p.Consumed()
	fn, err := d.p.ParseTopLevelExpr()
	if err != nil {
		d.fail(err, start)
		return
	}
	fmt.Fprintln(d.out, MsgTopLevel)
	if err := d.backend.Accept(fn); err != nil {
		d.report(err)
		return
	}
	d.sum.Expressions++
}

// report logs err and records it in the summary.
func (d *Driver) report(err error) {
	fmt.Fprintf(d.out, "LogError: %s\n", Message(err))
	d.sum.Errors = append(d.sum.Errors, err)
}

// fail reports a parse error and skips one token. The skip is left out when
// the failed attempt already consumed input and the look-ahead is def, extern
// or EOF, so a unit that follows a failure is not swallowed.
func (d *Driver) fail(err error, start int) {
	d.report(err)

	if d.p.Consumed() > start && startsUnit(d.p.Current()) {
		return
	}
	d.p.Next()
}

func startsUnit(tok lexer.Token) bool {
	switch tok.Kind {
	case lexer.KindEOF, lexer.KindDef, lexer.KindExtern:
		return true
	}
	return false
}

// Message returns the human-readable text of a unit failure, without the
// position prefix that parser errors carry.
func Message(err error) string {
	var perr *parser.Error
	if errors.As(err, &perr) {
		return perr.Message
	}
	return err.Error()
}
