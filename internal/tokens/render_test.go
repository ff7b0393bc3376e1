package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderRoundTrip(t *testing.T) {
	t.Parallel()
	inputs := []string{
		"a::b",
		"f(x, 1)",
		"fn main() { let x = a.b(c)?; }",
		"v[0].len()",
		"dbg!(x)",
		"println!{}",
		"a != b",
		"x.[f]",
	}

	for _, input := range inputs {
		input := input
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			ts, err := Lex(input)
			require.NoError(t, err)
			assert.Equal(t, input, Render(ts, RenderOptions{}))
		})
	}
}

func TestRenderHygiene(t *testing.T) {
	t.Parallel()
	marked := NewIdent("it")
	marked.Mark = 1
	other := NewIdent("it")
	other.Mark = 2

	ts := []Token{
		NewIdent("it"),
		NewIdent("it_1"),
		marked,
		other,
		marked,
	}

	assert.Equal(t, "it it_1 it_1_ it_2 it_1_", Render(ts, RenderOptions{}))
	assert.Equal(t, "it it_1 it it it", Render(ts, RenderOptions{Unhygienic: true}))
}

func TestRenderNestedUserNames(t *testing.T) {
	t.Parallel()
	marked := NewIdent("it")
	marked.Mark = 1

	// user names deep inside groups are reserved as well
	ts := []Token{
		marked,
		NewGroup(Brace, []Token{NewGroup(Paren, []Token{NewIdent("it_1")})}),
	}
	assert.Equal(t, "it_1_ { (it_1) }", Render(ts, RenderOptions{}))
}

func TestEqual(t *testing.T) {
	t.Parallel()
	a, err := Lex("f(x, { y })")
	require.NoError(t, err)
	b, err := Lex("f(\n  x,\n  { y }\n)")
	require.NoError(t, err)
	c, err := Lex("f(x, [ y ])")
	require.NoError(t, err)

	assert.True(t, Equal(a, b), "positions are ignored")
	assert.False(t, Equal(a, c), "delimiters differ")

	marked := a[0]
	marked.Mark = 3
	assert.False(t, Equal(a, append([]Token{marked}, a[1:]...)))
}

func TestDump(t *testing.T) {
	t.Parallel()
	ts, err := Lex("f(x)")
	require.NoError(t, err)

	expected := "1:1 Ident(f)\n1:2 Group(Paren)\n  1:3 Ident(x)\n"
	assert.Equal(t, expected, Dump(ts))
}
