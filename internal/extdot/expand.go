package extdot

import (
	"fmt"

	"github.com/gnoswap-labs/extdot/internal/tokens"
	tt "github.com/gnoswap-labs/extdot/internal/types"
)

// pass is the state of one expansion call. Nothing in it outlives the call.
type pass struct {
	*Expander
	marks    uint32
	warnings []Warning
}

func (e *Expander) newPass() *pass {
	return &pass{Expander: e}
}

// Expr expands ts and wraps the result in a single brace group, for use
// where exactly one expression is allowed.
func (e *Expander) Expr(ts []tokens.Token) (tokens.Token, []Warning, error) {
	p := e.newPass()
	out, err := p.expand(ts)
	if err != nil {
		return tokens.Token{}, nil, err
	}
	return tokens.NewGroup(tokens.Brace, out), p.warnings, nil
}

// Item expands ts and returns the flat result, for use where a sequence of
// declarations is expected.
func (e *Expander) Item(ts []tokens.Token) ([]tokens.Token, []Warning, error) {
	p := e.newPass()
	out, err := p.expand(ts)
	if err != nil {
		return nil, nil, err
	}
	return out, p.warnings, nil
}

// expand runs the chain scanner over ts. Groups that do not follow a
// chain-continuing dot are expanded recursively and rebuilt with the same
// delimiter; a group that does is handed to transliterate together with
// the pending receiver.
func (p *pass) expand(ts []tokens.Token) ([]tokens.Token, error) {
	out := make([]tokens.Token, 0, len(ts))
	var pending []tokens.Token

	for _, t := range ts {
		tok := t
		if t.Kind == tokens.Group {
			if n := len(pending); n > 0 && pending[n-1].IsPunct('.') {
				receiver := pending[:n-1]
				g, err := p.transliterate(receiver, t)
				if err != nil {
					return nil, err
				}
				pending = nil
				tok = g
			} else {
				inner, err := p.expand(t.Inner)
				if err != nil {
					return nil, err
				}
				tok = t.WithInner(inner)
			}
		}

		var last *tokens.Token
		if n := len(pending); n > 0 {
			last = &pending[n-1]
		}
		continues := continuesChain(last, tok)
		pending = append(pending, tok)
		if !continues {
			out = append(out, pending...)
			pending = nil
		}
	}

	return append(out, pending...), nil
}

// transliterate rewrites `receiver.[body]` into
//
//	{ <binding> it = receiver; form1; form2; ...; formN }
//
// leaving the last form without a terminator so it is the block's value.
func (p *pass) transliterate(receiver []tokens.Token, body tokens.Token) (tokens.Token, error) {
	if len(body.Inner) == 0 {
		if err := p.emptyBody(body); err != nil {
			return tokens.Token{}, err
		}
		empty := tokens.NewGroup(tokens.Brace, nil)
		empty.Pos, empty.End = body.Pos, body.End
		return empty, nil
	}

	// the mark is taken before the body is expanded, so outer blocks get
	// lower numbers than the blocks nested in them
	p.marks++
	mark := p.marks

	// nested sugar has to be gone before the body is split and classified
	inner, err := p.expand(body.Inner)
	if err != nil {
		return tokens.Token{}, err
	}

	out := make([]tokens.Token, 0, len(receiver)+len(inner)+8)
	out = append(out, p.binding...)
	out = append(out, p.placeholder(mark))
	out = append(out, p.assign...)
	out = append(out, receiver...)
	out = append(out, p.terminator...)

	for i, form := range splitForms(inner) {
		if i > 0 {
			out = append(out, p.terminator...)
		}
		out = append(out, p.classify(form, mark)...)
	}

	block := tokens.NewGroup(tokens.Brace, out)
	block.Pos, block.End = body.Pos, body.End
	return block, nil
}

func (p *pass) emptyBody(body tokens.Token) error {
	switch p.opts.EmptyBody {
	case tt.SeverityOff:
		return nil
	case tt.SeverityError:
		return fmt.Errorf("line %d col %d: %w", body.Pos.Line, body.Pos.Column, ErrEmptyBody)
	default:
		p.warnings = append(p.warnings, Warning{
			Rule:    RuleEmptyBody,
			Message: emptyBodyMessage,
			Pos:     body.Pos,
			End:     body.End,
		})
		return nil
	}
}

// splitForms splits ts on top level commas. A trailing comma yields a
// trailing empty form.
func splitForms(ts []tokens.Token) [][]tokens.Token {
	var forms [][]tokens.Token
	start := 0
	for i, t := range ts {
		if t.IsPunct(',') {
			forms = append(forms, ts[start:i])
			start = i + 1
		}
	}
	return append(forms, ts[start:])
}
