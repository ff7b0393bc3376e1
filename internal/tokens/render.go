package tokens

import (
	"fmt"
	"strings"
)

// RenderOptions controls how a token tree is turned back into text.
type RenderOptions struct {
	// Unhygienic prints marked identifiers with their plain spelling, so a
	// rewrite-introduced name may capture or be captured by a user name.
	Unhygienic bool
}

type hygienicName struct {
	text string
	mark uint32
}

type renderer struct {
	opts     RenderOptions
	used     map[string]bool
	resolved map[hygienicName]string
	sb       strings.Builder
}

// Render prints ts as source text. Marked identifiers are given a spelling
// that no user-written identifier in ts has.
func Render(ts []Token, opts RenderOptions) string {
	r := &renderer{
		opts:     opts,
		used:     make(map[string]bool),
		resolved: make(map[hygienicName]string),
	}
	collectNames(ts, r.used)
	r.write(ts)
	return r.sb.String()
}

func collectNames(ts []Token, used map[string]bool) {
	for _, t := range ts {
		switch {
		case t.Kind == Ident && t.Mark == 0:
			used[t.Text] = true
		case t.Kind == Group:
			collectNames(t.Inner, used)
		}
	}
}

func (r *renderer) write(ts []Token) {
	for i, t := range ts {
		if i > 0 && needsSpace(ts, i) {
			r.sb.WriteByte(' ')
		}
		switch t.Kind {
		case Ident:
			r.sb.WriteString(r.name(t))
		case Group:
			r.sb.WriteByte(t.Delim.Open())
			if len(t.Inner) > 0 {
				if t.Delim == Brace {
					r.sb.WriteByte(' ')
				}
				r.write(t.Inner)
				if t.Delim == Brace {
					r.sb.WriteByte(' ')
				}
			}
			r.sb.WriteByte(t.Delim.Close())
		default:
			r.sb.WriteString(t.Text)
		}
	}
}

func (r *renderer) name(t Token) string {
	if t.Mark == 0 || r.opts.Unhygienic {
		return t.Text
	}
	key := hygienicName{text: t.Text, mark: t.Mark}
	if name, ok := r.resolved[key]; ok {
		return name
	}
	name := fmt.Sprintf("%s_%d", t.Text, t.Mark)
	for r.used[name] {
		name += "_"
	}
	r.used[name] = true
	r.resolved[key] = name
	return name
}

// needsSpace decides whether a blank goes between ts[i-1] and ts[i].
func needsSpace(ts []Token, i int) bool {
	prev, next := ts[i-1], ts[i]

	switch {
	case prev.Kind == Punct && prev.Spacing == Joint:
		return false
	case prev.IsPunct('.') || next.IsPunct('.'):
		return false
	case next.IsPunct(',') || next.IsPunct(';') || next.IsPunct('?') || next.IsPunct(':'):
		return false
	case prev.IsPunct(':') && i >= 2 && ts[i-2].IsPunct(':') && ts[i-2].Spacing == Joint:
		// second half of a path separator
		return false
	case next.IsPunct('!') && next.Spacing == Alone && prev.Kind == Ident:
		// macro bang
		return false
	case next.Kind == Group && prev.IsPunct('!'):
		return false
	case next.Kind == Group && next.Delim != Brace:
		switch prev.Kind {
		case Ident, Literal, Group:
			return false
		}
	}
	return true
}
