package extdot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnoswap-labs/extdot/internal/tokens"
	tt "github.com/gnoswap-labs/extdot/internal/types"
)

func newTestExpander(t *testing.T, opts Options) *Expander {
	t.Helper()
	e, err := New(opts)
	require.NoError(t, err)
	return e
}

func expandItem(t *testing.T, e *Expander, src string) (string, []Warning) {
	t.Helper()
	ts, err := tokens.Lex(src)
	require.NoError(t, err)
	out, warnings, err := e.Item(ts)
	require.NoError(t, err)
	return tokens.Render(out, tokens.RenderOptions{}), warnings
}

func TestItem(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "explicit placeholder method",
			input:    "v.[it.abs()]",
			expected: "{ let mut it_1 = v; it_1.abs() }",
		},
		{
			name:     "bare call",
			input:    "x.[f]",
			expected: "{ let mut it_1 = x; f(it_1) }",
		},
		{
			name:     "path qualified bare call",
			input:    "x.[std::mem::drop]",
			expected: "{ let mut it_1 = x; std::mem::drop(it_1) }",
		},
		{
			name:     "implicit method call",
			input:    "x.[method(1)]",
			expected: "{ let mut it_1 = x; it_1.method(1) }",
		},
		{
			name:     "implicit receiver only on first call",
			input:    "x.[foo(1) + bar(2)]",
			expected: "{ let mut it_1 = x; it_1.foo(1) + bar(2) }",
		},
		{
			name:     "call mentioning placeholder is kept",
			input:    "x.[foo(it)]",
			expected: "{ let mut it_1 = x; foo(it_1) }",
		},
		{
			name:     "sequencing",
			input:    "x.[a, b]",
			expected: "{ let mut it_1 = x; a(it_1); b(it_1) }",
		},
		{
			name:     "trailing comma yields receiver",
			input:    `m.[it.insert("k1", 1), it.insert("k2", 2),]`,
			expected: `{ let mut it_1 = m; it_1.insert("k1", 1); it_1.insert("k2", 2); it_1 }`,
		},
		{
			name:     "general expression",
			input:    "x.[it + 1]",
			expected: "{ let mut it_1 = x; it_1 + 1 }",
		},
		{
			name:     "negative literal receiver",
			input:    "let v = -5; let a = v.[it.abs()];",
			expected: "let v = - 5; let a = { let mut it_1 = v; it_1.abs() };",
		},
		{
			name:     "receiver stops at operator",
			input:    "a + b.[f]",
			expected: "a + { let mut it_1 = b; f(it_1) }",
		},
		{
			name:     "sugar inside ordinary group",
			input:    "foo(x.[f])",
			expected: "foo({ let mut it_1 = x; f(it_1) })",
		},
		{
			name:     "nested composition",
			input:    "r.[s.[g]]",
			expected: "{ let mut it_1 = r; { let mut it_2 = s; g(it_2) } }",
		},
		{
			name:     "inner receiver refers to outer placeholder",
			input:    "a.[it.[g]]",
			expected: "{ let mut it_1 = a; { let mut it_2 = it_1; g(it_2) } }",
		},
		{
			name:     "chained sugar",
			input:    `Path::new("p").[File::open]?.[dbg]`,
			expected: `{ let mut it_2 = { let mut it_1 = Path::new("p"); File::open(it_1) }?; dbg(it_2) }`,
		},
		{
			name:     "user identifier shadowing the placeholder",
			input:    "let it = 1; x.[it + 1]",
			expected: "let it = 1; { let mut it_1 = x; it_1 + 1 }",
		},
		{
			name:     "generated name avoids user names",
			input:    "let it_1 = 0; x.[f]",
			expected: "let it_1 = 0; { let mut it_1_ = x; f(it_1_) }",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := newTestExpander(t, DefaultOptions())
			got, warnings := expandItem(t, e, tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Empty(t, warnings)
		})
	}
}

func TestItemUnhygienic(t *testing.T) {
	t.Parallel()
	e := newTestExpander(t, DefaultOptions())

	ts, err := tokens.Lex("v.[it.abs()]")
	require.NoError(t, err)
	out, _, err := e.Item(ts)
	require.NoError(t, err)

	assert.Equal(t, "{ let mut it = v; it.abs() }", tokens.Render(out, tokens.RenderOptions{Unhygienic: true}))
}

func TestExpr(t *testing.T) {
	t.Parallel()
	e := newTestExpander(t, DefaultOptions())

	ts, err := tokens.Lex("x.[f]")
	require.NoError(t, err)
	block, warnings, err := e.Expr(ts)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.True(t, block.IsGroup(tokens.Brace))
	assert.Equal(t, "{ { let mut it_1 = x; f(it_1) } }", tokens.Render([]tokens.Token{block}, tokens.RenderOptions{}))
}

func TestNoSugarInvariance(t *testing.T) {
	t.Parallel()
	inputs := []string{
		"let a = foo(b.c[0], { d.e });",
		"x.y::<T>()?.z",
		"fn main() { let v: Vec<i32> = vec![1, 2]; v.iter().map(|x| x + 1).count() }",
		"a[0].b(c)[1]",
		"",
	}

	e := newTestExpander(t, DefaultOptions())
	for _, input := range inputs {
		ts, err := tokens.Lex(input)
		require.NoError(t, err)

		out, warnings, err := e.Item(ts)
		require.NoError(t, err)
		assert.Empty(t, warnings)
		assert.True(t, tokens.Equal(ts, out), "input %q was modified", input)
	}
}

func TestEmptyBody(t *testing.T) {
	t.Parallel()

	t.Run("warning", func(t *testing.T) {
		t.Parallel()
		e := newTestExpander(t, DefaultOptions())
		got, warnings := expandItem(t, e, "let y = x.[];")

		assert.Equal(t, "let y = {};", got)
		require.Len(t, warnings, 1)
		assert.Equal(t, RuleEmptyBody, warnings[0].Rule)
		assert.Equal(t, "empty extended dot, consider removing it", warnings[0].Message)
		assert.Equal(t, tokens.Pos{Offset: 10, Line: 1, Column: 11}, warnings[0].Pos)
		assert.Equal(t, tokens.Pos{Offset: 11, Line: 1, Column: 12}, warnings[0].End)
	})

	t.Run("off", func(t *testing.T) {
		t.Parallel()
		opts := DefaultOptions()
		opts.EmptyBody = tt.SeverityOff
		e := newTestExpander(t, opts)
		got, warnings := expandItem(t, e, "x.[]")

		assert.Equal(t, "{}", got)
		assert.Empty(t, warnings)
	})

	t.Run("error", func(t *testing.T) {
		t.Parallel()
		opts := DefaultOptions()
		opts.EmptyBody = tt.SeverityError
		e := newTestExpander(t, opts)

		ts, err := tokens.Lex("foo(\n  x.[])")
		require.NoError(t, err)
		_, _, err = e.Item(ts)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrEmptyBody))
		assert.Contains(t, err.Error(), "line 2 col 5")
	})
}

func TestCustomDialect(t *testing.T) {
	t.Parallel()
	opts := DefaultOptions()
	opts.Placeholder = "this"
	opts.Binding = "var"
	e := newTestExpander(t, opts)

	got, _ := expandItem(t, e, "x.[this.abs(), it]")
	assert.Equal(t, "{ var this_1 = x; this_1.abs(); it(this_1) }", got)
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"placeholder with punctuation", func(o *Options) { o.Placeholder = "it!" }},
		{"empty placeholder", func(o *Options) { o.Placeholder = "" }},
		{"crate is a path", func(o *Options) { o.Crate = "a::b" }},
		{"empty assign", func(o *Options) { o.Assign = "" }},
		{"empty terminator", func(o *Options) { o.Terminator = "" }},
		{"unbalanced binding", func(o *Options) { o.Binding = "let (" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts := DefaultOptions()
			tt.modify(&opts)
			_, err := New(opts)
			assert.Error(t, err)
		})
	}
}

func TestExpanderIsReentrant(t *testing.T) {
	t.Parallel()
	e := newTestExpander(t, DefaultOptions())

	first, _ := expandItem(t, e, "x.[f]")
	second, _ := expandItem(t, e, "x.[f]")
	assert.Equal(t, first, second)
}
