package extdot

import (
	"errors"
	"fmt"

	"github.com/gnoswap-labs/extdot/internal/tokens"
	tt "github.com/gnoswap-labs/extdot/internal/types"
)

// RuleEmptyBody names the only diagnostic the expansion can produce.
const RuleEmptyBody = "empty-extended-dot"

const emptyBodyMessage = "empty extended dot, consider removing it"

// ErrEmptyBody is returned for `x.[]` when the empty body rule is
// configured with error severity.
var ErrEmptyBody = errors.New("empty extended dot")

// Options describes the surface syntax recognised by an Expander and the
// shape of the statements it emits.
type Options struct {
	// Placeholder is the identifier that names the receiver inside a body.
	Placeholder string
	// Crate is the path prefix of the expr!/item! invocation sites.
	Crate string
	// Binding precedes the placeholder in the binding statement, e.g. "let mut".
	Binding string
	// Assign separates the placeholder from the receiver, e.g. "=".
	Assign string
	// Terminator ends every statement of the rewritten block, e.g. ";".
	Terminator string
	// EmptyBody is the severity of an empty sugar body. SeverityError
	// turns it into a hard failure.
	EmptyBody tt.Severity
}

func DefaultOptions() Options {
	return Options{
		Placeholder: "it",
		Crate:       "extdot",
		Binding:     "let mut",
		Assign:      "=",
		Terminator:  ";",
		EmptyBody:   tt.SeverityWarning,
	}
}

// Warning is an advisory diagnostic attached to a span of the input.
type Warning struct {
	Rule    string
	Message string
	Pos     tokens.Pos
	End     tokens.Pos
}

// Expander rewrites extended dot notation. It only holds immutable
// configuration; every call runs with its own state, so a single Expander
// can be shared freely.
type Expander struct {
	opts       Options
	binding    []tokens.Token
	assign     []tokens.Token
	terminator []tokens.Token
}

// New validates opts and prepares the statement fragments.
func New(opts Options) (*Expander, error) {
	if !tokens.IsIdentifier(opts.Placeholder) {
		return nil, fmt.Errorf("placeholder %q is not an identifier", opts.Placeholder)
	}
	if !tokens.IsIdentifier(opts.Crate) {
		return nil, fmt.Errorf("crate %q is not an identifier", opts.Crate)
	}

	binding, err := tokens.Lex(opts.Binding)
	if err != nil {
		return nil, fmt.Errorf("invalid binding %q: %w", opts.Binding, err)
	}
	assign, err := tokens.Lex(opts.Assign)
	if err != nil {
		return nil, fmt.Errorf("invalid assign %q: %w", opts.Assign, err)
	}
	if len(assign) == 0 {
		return nil, fmt.Errorf("assign must not be empty")
	}
	terminator, err := tokens.Lex(opts.Terminator)
	if err != nil {
		return nil, fmt.Errorf("invalid terminator %q: %w", opts.Terminator, err)
	}
	if len(terminator) == 0 {
		return nil, fmt.Errorf("terminator must not be empty")
	}

	return &Expander{
		opts:       opts,
		binding:    binding,
		assign:     assign,
		terminator: terminator,
	}, nil
}

// Options returns the configuration the Expander was built with.
func (e *Expander) Options() Options {
	return e.opts
}
