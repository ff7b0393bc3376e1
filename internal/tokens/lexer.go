package tokens

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrUnbalanced is returned when the input's delimiters do not nest.
var ErrUnbalanced = errors.New("unbalanced delimiters")

const punctChars = "+-*/%^!&|=<>@.,;:#$?~"

// frame is an open delimiter waiting for its closing counterpart.
type frame struct {
	delim  Delimiter
	open   Pos
	tokens []Token
}

// Lexer turns source text into a token tree. Comments and whitespace are
// dropped; adjacency of punctuation is kept in each token's Spacing.
type Lexer struct {
	input  string
	offset int
	line   int
	col    int
	stack  []frame
}

// NewLexer returns a Lexer positioned at the start of input.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input: input,
		line:  1,
		col:   1,
		stack: []frame{{}},
	}
}

// Lex performs lexical analysis on src and returns the top level token
// sequence.
func Lex(src string) ([]Token, error) {
	return NewLexer(src).Tokenize()
}

// Tokenize processes the entire input and produces the token tree.
func (l *Lexer) Tokenize() ([]Token, error) {
	for l.offset < len(l.input) {
		c := l.input[l.offset]
		start := l.pos()

		switch {
		case c == '\n' || c == ' ' || c == '\t' || c == '\r':
			l.advance(1)

		case c == '/' && l.peek(1) == '/':
			for l.offset < len(l.input) && l.input[l.offset] != '\n' {
				l.advance(1)
			}

		case c == '/' && l.peek(1) == '*':
			if err := l.skipBlockComment(start); err != nil {
				return nil, err
			}

		case c == '(' || c == '{' || c == '[':
			l.advance(1)
			l.stack = append(l.stack, frame{delim: delimiterFor(c), open: start})

		case c == ')' || c == '}' || c == ']':
			if err := l.closeGroup(c, start); err != nil {
				return nil, err
			}

		case c == '"':
			if err := l.lexString(start, 1); err != nil {
				return nil, err
			}

		case c == '\'':
			if err := l.lexQuote(start); err != nil {
				return nil, err
			}

		case isDigit(c):
			l.lexNumber(start)

		case c == 'r' && (l.peek(1) == '"' || (l.peek(1) == '#' && (l.peek(2) == '"' || l.peek(2) == '#'))):
			if err := l.lexRawString(start, 1); err != nil {
				return nil, err
			}

		case c == 'b' && l.peek(1) == 'r' && (l.peek(2) == '"' || l.peek(2) == '#'):
			if err := l.lexRawString(start, 2); err != nil {
				return nil, err
			}

		case c == 'b' && l.peek(1) == '"':
			if err := l.lexString(start, 2); err != nil {
				return nil, err
			}

		case c == 'b' && l.peek(1) == '\'':
			l.advance(1)
			if err := l.lexChar(start); err != nil {
				return nil, err
			}

		case c == 'r' && l.peek(1) == '#' && isIdentifierStartByte(l.peek(2)):
			l.advance(2)
			l.lexIdent(start)

		case strings.IndexByte(punctChars, c) >= 0:
			l.advance(1)
			spacing := Alone
			if l.offset < len(l.input) && (strings.IndexByte(punctChars, l.input[l.offset]) >= 0 || l.input[l.offset] == '\'') {
				spacing = Joint
			}
			l.emit(Token{Kind: Punct, Text: string(c), Spacing: spacing, Pos: start})

		default:
			r, _ := utf8.DecodeRuneInString(l.input[l.offset:])
			if !isIdentifierStart(r) {
				return nil, fmt.Errorf("line %d col %d: unexpected character %q", start.Line, start.Column, r)
			}
			l.lexIdent(start)
		}
	}

	if len(l.stack) > 1 {
		top := l.stack[len(l.stack)-1]
		return nil, fmt.Errorf("line %d col %d: unclosed %q: %w", top.open.Line, top.open.Column, top.delim.Open(), ErrUnbalanced)
	}
	return l.stack[0].tokens, nil
}

func (l *Lexer) closeGroup(c byte, start Pos) error {
	if len(l.stack) == 1 {
		return fmt.Errorf("line %d col %d: unexpected %q: %w", start.Line, start.Column, c, ErrUnbalanced)
	}
	top := l.stack[len(l.stack)-1]
	if top.delim.Close() != c {
		return fmt.Errorf("line %d col %d: expected %q to close %q opened at %s, found %q: %w",
			start.Line, start.Column, top.delim.Close(), top.delim.Open(), top.open, c, ErrUnbalanced)
	}
	l.advance(1)
	l.stack = l.stack[:len(l.stack)-1]
	l.emit(Token{
		Kind:  Group,
		Delim: top.delim,
		Inner: top.tokens,
		Pos:   top.open,
		End:   start,
	})
	return nil
}

func (l *Lexer) skipBlockComment(start Pos) error {
	depth := 0
	for l.offset < len(l.input) {
		switch {
		case l.input[l.offset] == '/' && l.peek(1) == '*':
			depth++
			l.advance(2)
		case l.input[l.offset] == '*' && l.peek(1) == '/':
			depth--
			l.advance(2)
			if depth == 0 {
				return nil
			}
		default:
			l.advance(1)
		}
	}
	return fmt.Errorf("line %d col %d: block comment is not terminated", start.Line, start.Column)
}

func (l *Lexer) lexIdent(start Pos) {
	for l.offset < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.offset:])
		if !isIdentifierChar(r) {
			break
		}
		l.advance(size)
	}
	l.emit(Token{Kind: Ident, Text: l.input[start.Offset:l.offset], Pos: start})
}

func (l *Lexer) lexNumber(start Pos) {
	hex := l.input[l.offset] == '0' && (l.peek(1) == 'x' || l.peek(1) == 'X')
	seenDot := false
	for l.offset < len(l.input) {
		c := l.input[l.offset]
		switch {
		case isDigit(c) || c == '_' || unicode.IsLetter(rune(c)):
			l.advance(1)
			if !hex && (c == 'e' || c == 'E') && (l.peek(0) == '+' || l.peek(0) == '-') && isDigit(l.peek(1)) {
				l.advance(1)
			}
		case c == '.' && !seenDot && !hex && isDigit(l.peek(1)):
			seenDot = true
			l.advance(1)
		default:
			l.emit(Token{Kind: Literal, Text: l.input[start.Offset:l.offset], Pos: start})
			return
		}
	}
	l.emit(Token{Kind: Literal, Text: l.input[start.Offset:l.offset], Pos: start})
}

// lexString scans a quoted string; prefix is the number of bytes before
// the opening quote (1 for "...", 2 for b"...").
func (l *Lexer) lexString(start Pos, prefix int) error {
	l.advance(prefix)
	for l.offset < len(l.input) {
		switch l.input[l.offset] {
		case '\\':
			if l.offset+1 >= len(l.input) {
				return fmt.Errorf("line %d col %d: '\\' escape is at the end of input", l.line, l.col)
			}
			l.advance(2)
		case '"':
			l.advance(1)
			l.lexSuffix()
			l.emit(Token{Kind: Literal, Text: l.input[start.Offset:l.offset], Pos: start})
			return nil
		default:
			l.advance(1)
		}
	}
	return fmt.Errorf("line %d col %d: string literal is not terminated", start.Line, start.Column)
}

// lexRawString scans r"..." and r#"..."# forms; prefix is the length of
// the leading r or br.
func (l *Lexer) lexRawString(start Pos, prefix int) error {
	l.advance(prefix)
	hashes := 0
	for l.peek(0) == '#' {
		hashes++
		l.advance(1)
	}
	if l.peek(0) != '"' {
		return fmt.Errorf("line %d col %d: raw string is missing its opening quote", start.Line, start.Column)
	}
	l.advance(1)
	terminator := "\"" + strings.Repeat("#", hashes)
	for l.offset < len(l.input) {
		if strings.HasPrefix(l.input[l.offset:], terminator) {
			l.advance(len(terminator))
			l.lexSuffix()
			l.emit(Token{Kind: Literal, Text: l.input[start.Offset:l.offset], Pos: start})
			return nil
		}
		l.advance(1)
	}
	return fmt.Errorf("line %d col %d: raw string literal is not terminated", start.Line, start.Column)
}

// lexQuote handles both character literals and lifetimes. A lifetime is
// emitted as a Joint '\'' followed by the identifier, matching the shape
// produced by the host front end.
func (l *Lexer) lexQuote(start Pos) error {
	if l.peek(1) == '\\' {
		return l.lexChar(start)
	}
	_, size := utf8.DecodeRuneInString(l.input[l.offset+1:])
	if l.offset+1+size < len(l.input) && l.input[l.offset+1+size] == '\'' {
		return l.lexChar(start)
	}
	l.advance(1)
	l.emit(Token{Kind: Punct, Text: "'", Spacing: Joint, Pos: start})
	return nil
}

func (l *Lexer) lexChar(start Pos) error {
	l.advance(1) // opening quote
	for l.offset < len(l.input) && l.input[l.offset] != '\n' {
		switch l.input[l.offset] {
		case '\\':
			l.advance(2)
		case '\'':
			l.advance(1)
			l.emit(Token{Kind: Literal, Text: l.input[start.Offset:l.offset], Pos: start})
			return nil
		default:
			l.advance(1)
		}
	}
	return fmt.Errorf("line %d col %d: character literal is not terminated", start.Line, start.Column)
}

// lexSuffix consumes a literal suffix such as the `u8` in "x"u8.
func (l *Lexer) lexSuffix() {
	for l.offset < len(l.input) && isIdentifierChar(rune(l.input[l.offset])) && l.input[l.offset] < utf8.RuneSelf {
		l.advance(1)
	}
}

func (l *Lexer) emit(t Token) {
	top := &l.stack[len(l.stack)-1]
	top.tokens = append(top.tokens, t)
}

func (l *Lexer) pos() Pos {
	return Pos{Offset: l.offset, Line: l.line, Column: l.col}
}

func (l *Lexer) peek(n int) byte {
	if l.offset+n < len(l.input) {
		return l.input[l.offset+n]
	}
	return 0
}

// advance moves n bytes forward keeping line and column up to date.
func (l *Lexer) advance(n int) {
	for i := 0; i < n && l.offset < len(l.input); i++ {
		if l.input[l.offset] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.offset++
	}
}

func delimiterFor(c byte) Delimiter {
	switch c {
	case '{':
		return Brace
	case '[':
		return Bracket
	default:
		return Paren
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentifierStartByte(c byte) bool {
	return c < utf8.RuneSelf && isIdentifierStart(rune(c))
}

func isIdentifierChar(r rune) bool {
	return isIdentifierStart(r) || unicode.IsDigit(r)
}

// IsIdentifier reports whether name is spelled like a single identifier.
func IsIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if i == 0 && !isIdentifierStart(r) {
			return false
		}
		if !isIdentifierChar(r) {
			return false
		}
	}
	return true
}
