package extdot

import "github.com/gnoswap-labs/extdot/internal/tokens"

type macroKind int

const (
	exprMacro macroKind = iota
	itemMacro
)

// invocationLen is the token count of `crate :: name ! {..}`.
const invocationLen = 6

// Invocations finds every `<crate>::expr!{..}` and `<crate>::item!{..}`
// site in ts and replaces it with its expansion: a brace group for expr!,
// the flat token sequence for item!. Sugar outside of those sites is left
// as written.
func (e *Expander) Invocations(ts []tokens.Token) ([]tokens.Token, []Warning, error) {
	p := e.newPass()
	out, err := p.invocations(ts)
	if err != nil {
		return nil, nil, err
	}
	return out, p.warnings, nil
}

func (p *pass) invocations(ts []tokens.Token) ([]tokens.Token, error) {
	out := make([]tokens.Token, 0, len(ts))
	for i := 0; i < len(ts); i++ {
		kind, ok := p.matchInvocation(ts[i:])
		if !ok || afterPathSegment(out) {
			t := ts[i]
			if t.Kind == tokens.Group {
				inner, err := p.invocations(t.Inner)
				if err != nil {
					return nil, err
				}
				t = t.WithInner(inner)
			}
			out = append(out, t)
			continue
		}

		out = trimPathRoot(out)
		body := ts[i+invocationLen-1]
		expanded, err := p.expand(body.Inner)
		if err != nil {
			return nil, err
		}
		// invocations nested in the body are plain tokens to expand, only
		// their wrappers remain
		expanded, err = p.invocations(expanded)
		if err != nil {
			return nil, err
		}

		if kind == exprMacro {
			block := tokens.NewGroup(tokens.Brace, expanded)
			block.Pos, block.End = ts[i].Pos, body.End
			out = append(out, block)
		} else {
			out = append(out, expanded...)
		}
		i += invocationLen - 1
	}
	return out, nil
}

func (p *pass) matchInvocation(ts []tokens.Token) (macroKind, bool) {
	if len(ts) < invocationLen {
		return 0, false
	}
	if !ts[0].IsIdent(p.opts.Crate) ||
		!ts[1].IsPunct(':') || ts[1].Spacing != tokens.Joint ||
		!ts[2].IsPunct(':') ||
		!ts[4].IsPunct('!') ||
		ts[5].Kind != tokens.Group {
		return 0, false
	}
	switch {
	case ts[3].IsIdent("expr"):
		return exprMacro, true
	case ts[3].IsIdent("item"):
		return itemMacro, true
	}
	return 0, false
}

// trimPathRoot drops a `::` path root emitted just before an invocation,
// as in `::extdot::expr!{..}`.
func trimPathRoot(out []tokens.Token) []tokens.Token {
	n := len(out)
	if n >= 2 && out[n-2].IsPunct(':') && out[n-2].Spacing == tokens.Joint && out[n-1].IsPunct(':') {
		return out[:n-2]
	}
	return out
}

// afterPathSegment reports whether out ends with `segment ::`, in which
// case the crate name is part of a longer path such as `other::extdot`.
func afterPathSegment(out []tokens.Token) bool {
	n := len(out)
	if n < 3 || !out[n-2].IsPunct(':') || out[n-2].Spacing != tokens.Joint || !out[n-1].IsPunct(':') {
		return false
	}
	return out[n-3].Kind == tokens.Ident || out[n-3].IsPunct('>')
}
