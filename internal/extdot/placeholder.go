package extdot

import "github.com/gnoswap-labs/extdot/internal/tokens"

// placeholder returns a reference to the binding introduced by the block
// with the given mark.
func (p *pass) placeholder(mark uint32) tokens.Token {
	t := tokens.NewIdent(p.opts.Placeholder)
	t.Mark = mark
	return t
}

// substitute returns a copy of ts in which every user-written placeholder
// refers to the binding with the given mark. Placeholders already bound by
// a nested block carry that block's mark and are left alone.
func (p *pass) substitute(ts []tokens.Token, mark uint32) []tokens.Token {
	out := make([]tokens.Token, len(ts))
	for i, t := range ts {
		switch {
		case t.Kind == tokens.Ident && t.Mark == 0 && t.Text == p.opts.Placeholder:
			ref := p.placeholder(mark)
			ref.Pos = t.Pos
			out[i] = ref
		case t.Kind == tokens.Group:
			out[i] = t.WithInner(p.substitute(t.Inner, mark))
		default:
			out[i] = t
		}
	}
	return out
}
