package parser

import (
	"fmt"

	"github.com/lemonberrylabs/lavue/pkg/lexer"
)

// Error is a syntax error raised by a parser production. Token is the
// look-ahead token the production failed on.
type Error struct {
	Message string
	Pos     lexer.Pos
	Token   lexer.Token
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse error at %s: %s", e.Pos, e.Message)
}

func (p *Parser) errorf(format string, args ...interface{}) *Error {
	return &Error{
		Message: fmt.Sprintf(format, args...),
		Pos:     p.tok.Pos,
		Token:   p.tok,
	}
}
