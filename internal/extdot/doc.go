/*
Package extdot expands the extended dot notation into plain token sequences.

# Overview

The extended dot applies a list of forms to a value:

	receiver.[ form, form, ... ]

The receiver is evaluated once, bound to a placeholder (`it` by default) and
every form is rewritten into a statement that uses it. The rewritten block
evaluates to the value of its last form:

	v.[it.abs()]            ->  { let mut it = v; it.abs() }
	path.[File::open]?      ->  { let mut it = path; File::open(it) }?
	map.[insert(1, 2), len] ->  { let mut it = map; it.insert(1, 2); len(it) }

# Receivers

The receiver is the longest run of tokens before the dot that keeps a
single expression chain going: identifiers, literals, groups, `.`, `::`,
`<`, `>` and `?`. Any other punctuation ends the chain, so in `a + b.[f]`
only `b` is the receiver.

# Forms

Each comma separated form is classified independently:

 1. Empty form: evaluates to the placeholder itself. A trailing comma
    therefore makes the block return the receiver.

 2. Plain name (identifiers and colons only): called with the placeholder
    as its single argument.

 3. Call without a placeholder: the placeholder becomes the receiver of the
    first call, `push(1)` turns into `it.push(1)`.

 4. Anything else is kept as written; placeholders in it are bound to the
    block.

Sugar nested in a body is expanded before the body is classified, and
sugar inside any ordinary group is expanded in place.

# Hygiene

The placeholder introduced by a block is marked with a number unique to the
expansion call. Only unmarked (user-written) placeholders are rebound, so a
nested block keeps its own binding, and the renderer in package tokens picks
spellings that cannot collide with identifiers written by the user.

# Empty bodies

`x.[]` is replaced by an empty block and reported as a warning. Whether that
silently dropped evaluation of the receiver is acceptable is a matter of
configuration: with the rule set to error, expansion fails with ErrEmptyBody.
*/
package extdot
