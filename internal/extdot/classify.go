package extdot

import "github.com/gnoswap-labs/extdot/internal/tokens"

// classify rewrites one comma separated form of a sugar body:
//
//	(empty)        -> it
//	path::to::f    -> path::to::f(it)
//	method(x)      -> it.method(x)
//	anything else  -> the form, with `it` rebound to the block's binding
func (p *pass) classify(form []tokens.Token, mark uint32) []tokens.Token {
	switch {
	case len(form) == 0:
		return []tokens.Token{p.placeholder(mark)}

	case isPlainName(form):
		out := p.substitute(form, mark)
		arg := tokens.NewGroup(tokens.Paren, []tokens.Token{p.placeholder(mark)})
		return append(out, arg)

	case isCall(form) && !p.mentionsPlaceholder(form):
		return p.implicitReceiver(form, mark)

	default:
		return p.substitute(form, mark)
	}
}

// isPlainName reports whether form only holds identifiers and colons.
func isPlainName(form []tokens.Token) bool {
	for _, t := range form {
		if t.Kind != tokens.Ident && !t.IsPunct(':') {
			return false
		}
	}
	return true
}

// isCall reports whether form has an identifier directly followed by a
// parenthesised group at its top level.
func isCall(form []tokens.Token) bool {
	return firstCall(form) >= 0
}

func firstCall(form []tokens.Token) int {
	for i := 1; i < len(form); i++ {
		if form[i].IsGroup(tokens.Paren) && form[i-1].Kind == tokens.Ident {
			return i - 1
		}
	}
	return -1
}

// mentionsPlaceholder reports whether a user-written placeholder appears
// anywhere in ts, nested groups included.
func (p *pass) mentionsPlaceholder(ts []tokens.Token) bool {
	for _, t := range ts {
		switch {
		case t.Kind == tokens.Ident && t.Mark == 0 && t.Text == p.opts.Placeholder:
			return true
		case t.Kind == tokens.Group && p.mentionsPlaceholder(t.Inner):
			return true
		}
	}
	return false
}

// implicitReceiver prefixes the first call of form with `it.`.
func (p *pass) implicitReceiver(form []tokens.Token, mark uint32) []tokens.Token {
	at := firstCall(form)
	out := make([]tokens.Token, 0, len(form)+2)
	out = append(out, form[:at]...)
	out = append(out, p.placeholder(mark), tokens.NewPunct('.', tokens.Alone))
	return append(out, form[at:]...)
}
