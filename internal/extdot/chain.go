package extdot

import "github.com/gnoswap-labs/extdot/internal/tokens"

// continuesChain reports whether t extends the pending receiver expression
// whose last token is last (nil when nothing is pending).
//
// Generics and comparisons are not told apart: `<` and `>` always continue.
func continuesChain(last *tokens.Token, t tokens.Token) bool {
	switch t.Kind {
	case tokens.Group, tokens.Ident, tokens.Literal:
		return true
	case tokens.Punct:
		switch {
		case t.IsPunct('.'):
			return true
		case t.IsPunct(':') && t.Spacing == tokens.Joint:
			return true
		case t.IsPunct(':'):
			return last != nil && last.IsPunct(':') && last.Spacing == tokens.Joint
		case t.IsPunct('<'), t.IsPunct('>'), t.IsPunct('?'):
			return true
		}
	}
	return false
}
