package lexer

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// eof is the look-ahead value once the reader is exhausted.
const eof rune = -1

// Lexer tokenizes a lavue character stream. Its only state between calls is
// the reader cursor and one rune of look-ahead.
type Lexer struct {
	r    *bufio.Reader
	last rune // current unconsumed character
	at   Pos  // position of last
	next Pos  // position of the rune after last
	err  error
}

// New creates a lexer reading from r. Nothing is read until the first call
// to Next.
func New(r io.Reader) *Lexer {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Lexer{
		r:    br,
		last: ' ',
		next: Pos{Line: 1, Column: 1},
	}
}

// NewString creates a lexer over an in-memory source.
func NewString(src string) *Lexer {
	return New(strings.NewReader(src))
}

// Tokenize scans the entire input and returns all tokens, ending with EOF.
func Tokenize(src string) []Token {
	l := NewString(src)
	var tokens []Token
	for {
		tok := l.Next()
		tokens = append(tokens, tok)
		if tok.Kind == KindEOF {
			return tokens
		}
	}
}

// Err returns the first non-EOF read error, if any. A read error ends the
// token stream the same way EOF does.
func (l *Lexer) Err() error {
	return l.err
}

// Next returns the next token. Once the stream is exhausted every call
// returns an EOF token.
func (l *Lexer) Next() Token {
	for {
		for l.last != eof && unicode.IsSpace(l.last) {
			l.advance()
		}

		switch {
		case isLetter(l.last):
			return l.readIdentifier()
		case isDigit(l.last) || l.last == '.':
			return l.readNumber()
		case l.last == '#':
			l.skipComment()
			continue
		case l.last == eof:
			return Token{Kind: KindEOF, Pos: l.at}
		}

		tok := Token{Kind: KindChar, Char: l.last, Text: string(l.last), Pos: l.at}
		l.advance()
		return tok
	}
}

// advance reads the next rune into the look-ahead slot.
func (l *Lexer) advance() {
	if l.last == eof {
		return
	}
	ch, size, err := l.r.ReadRune()
	l.at = l.next
	if err != nil {
		if !errors.Is(err, io.EOF) && l.err == nil {
			l.err = err
		}
		l.last = eof
		return
	}
	l.last = ch
	l.next.Offset += size
	if ch == '\n' {
		l.next.Line++
		l.next.Column = 1
	} else {
		l.next.Column++
	}
}

// readIdentifier reads an identifier or keyword.
func (l *Lexer) readIdentifier() Token {
	start := l.at
	var sb strings.Builder
	for isLetter(l.last) || isDigit(l.last) {
		sb.WriteRune(l.last)
		l.advance()
	}

	word := sb.String()
	switch word {
	case "def":
		return Token{Kind: KindDef, Text: word, Pos: start}
	case "extern":
		return Token{Kind: KindExtern, Text: word, Pos: start}
	default:
		return Token{Kind: KindIdent, Text: word, Pos: start}
	}
}

// readNumber reads the maximal run of digits and dots. Runs that do not form
// a valid finite float literal, such as "1.2.3" or ".", become KindIllegal.
func (l *Lexer) readNumber() Token {
	start := l.at
	var sb strings.Builder
	for isDigit(l.last) || l.last == '.' {
		sb.WriteRune(l.last)
		l.advance()
	}

	raw := sb.String()
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Token{Kind: KindIllegal, Text: raw, Pos: start}
	}
	return Token{Kind: KindNumber, Text: raw, Num: f, Pos: start}
}

// skipComment drops everything through the end of the line.
func (l *Lexer) skipComment() {
	for l.last != eof && l.last != '\n' && l.last != '\r' {
		l.advance()
	}
}

func isLetter(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}
