// Package lexer implements the lavue tokenizer. It reads a character stream
// lazily, one rune of look-ahead at a time, and produces one token per call.
package lexer

import (
	"fmt"
	"strconv"
)

// Kind represents the kind of a lexical token.
type Kind int

const (
	KindEOF    Kind = iota // end of input
	KindDef                // def
	KindExtern             // extern

	// Primary
	KindIdent  // identifier
	KindNumber // number literal

	// KindChar is any other single character: operators, parens, comma, semicolon.
	KindChar

	// KindIllegal is a number-shaped run that is not a valid literal, e.g. 1.2.3.
	KindIllegal
)

// String returns a debug-friendly name of the token kind.
func (k Kind) String() string {
	switch k {
	case KindEOF:
		return "EOF"
	case KindDef:
		return "DEF"
	case KindExtern:
		return "EXTERN"
	case KindIdent:
		return "IDENT"
	case KindNumber:
		return "NUMBER"
	case KindChar:
		return "CHAR"
	case KindIllegal:
		return "ILLEGAL"
	default:
		return "UNKNOWN"
	}
}

// Pos is a location in the source. Line and Column are 1-based,
// Offset is the byte offset from the start of the stream.
type Pos struct {
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
	Offset int `json:"offset" yaml:"offset"`
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a single lexical token.
type Token struct {
	Kind Kind
	Text string  // raw source text
	Num  float64 // parsed value (KindNumber)
	Char rune    // raw character (KindChar)
	Pos  Pos
}

// Is reports whether t is the single-character token c.
func (t Token) Is(c rune) bool {
	return t.Kind == KindChar && t.Char == c
}

// String renders the token for diagnostics and the tokens command.
func (t Token) String() string {
	switch t.Kind {
	case KindEOF:
		return "EOF"
	case KindIdent, KindIllegal:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Text)
	case KindNumber:
		return fmt.Sprintf("%s(%s)", t.Kind, strconv.FormatFloat(t.Num, 'g', -1, 64))
	case KindChar:
		return fmt.Sprintf("%s(%q)", t.Kind, t.Char)
	default:
		return t.Kind.String()
	}
}
