package backend

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lemonberrylabs/lavue/pkg/ast"
	"gopkg.in/yaml.v3"
)

// Format selects how a Printer renders units.
type Format string

const (
	FormatNone  Format = "none"
	FormatSexpr Format = "sexpr"
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
)

// ParseFormat validates a format name. The empty string means FormatNone.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatNone, nil
	case FormatNone, FormatSexpr, FormatYAML, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown emit format %q (want none, sexpr, yaml or json)", s)
	}
}

// Printer writes every accepted unit to w. YAML units are separate
// documents; JSON units are one object per line.
type Printer struct {
	w      io.Writer
	format Format
}

// NewPrinter creates a printer for format.
func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{w: w, format: format}
}

// Accept implements driver.Backend.
func (p *Printer) Accept(unit ast.Unit) error {
	switch p.format {
	case FormatNone, "":
		return nil
	case FormatSexpr:
		_, err := fmt.Fprintln(p.w, ast.String(unit))
		return err
	case FormatYAML:
		data, err := yaml.Marshal(ast.ToDoc(unit))
		if err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		if _, err := io.WriteString(p.w, "---\n"); err != nil {
			return err
		}
		_, err = p.w.Write(data)
		return err
	case FormatJSON:
		data, err := json.Marshal(ast.ToDoc(unit))
		if err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		_, err = fmt.Fprintf(p.w, "%s\n", data)
		return err
	default:
		return fmt.Errorf("unknown emit format %q", p.format)
	}
}
