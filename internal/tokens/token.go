// Package tokens implements the token tree the rewriter operates on, along
// with a lexer producing it from source text and a renderer printing it back.
package tokens

import (
	"fmt"
	"strings"
)

// Kind defines the variant of a token tree node.
type Kind int

const (
	Ident Kind = iota
	Literal
	Punct
	Group
)

func (k Kind) String() string {
	switch k {
	case Ident:
		return "Ident"
	case Literal:
		return "Literal"
	case Punct:
		return "Punct"
	case Group:
		return "Group"
	default:
		return "Unknown"
	}
}

// Spacing tells whether a punctuation character is immediately followed
// by another punctuation character (Joint) or not (Alone).
type Spacing int

const (
	Alone Spacing = iota
	Joint
)

func (s Spacing) String() string {
	if s == Joint {
		return "Joint"
	}
	return "Alone"
}

// Delimiter is the bracket pair enclosing a Group.
type Delimiter int

const (
	Paren   Delimiter = iota // ( )
	Brace                    // { }
	Bracket                  // [ ]
)

func (d Delimiter) String() string {
	switch d {
	case Paren:
		return "Paren"
	case Brace:
		return "Brace"
	case Bracket:
		return "Bracket"
	default:
		return "Unknown"
	}
}

// Open returns the opening character of the delimiter.
func (d Delimiter) Open() byte {
	switch d {
	case Brace:
		return '{'
	case Bracket:
		return '['
	default:
		return '('
	}
}

// Close returns the closing character of the delimiter.
func (d Delimiter) Close() byte {
	switch d {
	case Brace:
		return '}'
	case Bracket:
		return ']'
	default:
		return ')'
	}
}

// Pos is a position in the source text. Line and Column are 1-based,
// the zero value is an invalid (synthetic) position.
type Pos struct {
	Offset int
	Line   int
	Column int
}

func (p Pos) IsValid() bool { return p.Line > 0 }

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a single node of the token tree. Which fields are meaningful
// depends on Kind:
//
//   - Ident, Literal: Text
//   - Punct: Text (a single character) and Spacing
//   - Group: Delim and Inner; End holds the closing delimiter position
//
// Mark is non-zero only for identifiers introduced by a rewrite. Two
// identifiers with the same Text but different marks are different names.
type Token struct {
	Kind    Kind
	Text    string
	Spacing Spacing
	Delim   Delimiter
	Inner   []Token
	Mark    uint32
	Pos     Pos
	End     Pos
}

func NewIdent(name string) Token {
	return Token{Kind: Ident, Text: name}
}

func NewLiteral(text string) Token {
	return Token{Kind: Literal, Text: text}
}

func NewPunct(ch byte, spacing Spacing) Token {
	return Token{Kind: Punct, Text: string(ch), Spacing: spacing}
}

func NewGroup(delim Delimiter, inner []Token) Token {
	return Token{Kind: Group, Delim: delim, Inner: inner}
}

// IsPunct reports whether t is the punctuation character ch.
func (t Token) IsPunct(ch byte) bool {
	return t.Kind == Punct && len(t.Text) == 1 && t.Text[0] == ch
}

// IsIdent reports whether t is an identifier spelled name.
func (t Token) IsIdent(name string) bool {
	return t.Kind == Ident && t.Text == name
}

// IsGroup reports whether t is a group with the given delimiter.
func (t Token) IsGroup(delim Delimiter) bool {
	return t.Kind == Group && t.Delim == delim
}

// WithInner returns a copy of the group t holding inner instead of its
// current contents. Positions are preserved.
func (t Token) WithInner(inner []Token) Token {
	t.Inner = inner
	return t
}

// String returns a debugging representation of the token.
func (t Token) String() string {
	switch t.Kind {
	case Ident:
		if t.Mark != 0 {
			return fmt.Sprintf("Ident(%s#%d)", t.Text, t.Mark)
		}
		return fmt.Sprintf("Ident(%s)", t.Text)
	case Literal:
		return fmt.Sprintf("Literal(%s)", t.Text)
	case Punct:
		return fmt.Sprintf("Punct(%s, %s)", t.Text, t.Spacing)
	case Group:
		parts := make([]string, len(t.Inner))
		for i, inner := range t.Inner {
			parts[i] = inner.String()
		}
		return fmt.Sprintf("Group(%s)[%s]", t.Delim, strings.Join(parts, " "))
	default:
		return "Unknown"
	}
}

// Equal reports whether a and b are structurally identical token trees.
// Positions are ignored.
func Equal(a, b []Token) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.Kind != y.Kind || x.Text != y.Text || x.Mark != y.Mark {
			return false
		}
		switch x.Kind {
		case Punct:
			if x.Spacing != y.Spacing {
				return false
			}
		case Group:
			if x.Delim != y.Delim || !Equal(x.Inner, y.Inner) {
				return false
			}
		}
	}
	return true
}

// Dump writes an indented tree representation of ts, one token per line.
// Used by the `tokens` debugging command.
func Dump(ts []Token) string {
	var sb strings.Builder
	dump(&sb, ts, 0)
	return sb.String()
}

func dump(sb *strings.Builder, ts []Token, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, t := range ts {
		if t.Kind == Group {
			fmt.Fprintf(sb, "%s%s Group(%s)\n", indent, t.Pos, t.Delim)
			dump(sb, t.Inner, depth+1)
			continue
		}
		fmt.Fprintf(sb, "%s%s %s\n", indent, t.Pos, t)
	}
}
