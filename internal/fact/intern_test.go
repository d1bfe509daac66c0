package fact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternerBijection(t *testing.T) {
	in := NewInterner()

	a := in.Intern("alpha")
	b := in.Intern("beta")
	assert.Equal(t, SymbolID(1), a)
	assert.Equal(t, SymbolID(2), b)

	// Interning again never reallocates.
	assert.Equal(t, a, in.Intern("alpha"))
	assert.Equal(t, b, in.Intern("beta"))
	assert.Equal(t, 2, in.Len())

	s, ok := in.Lookup(a)
	require.True(t, ok)
	assert.Equal(t, "alpha", s)

	id, ok := in.Symbol("beta")
	require.True(t, ok)
	assert.Equal(t, b, id)

	_, ok = in.Symbol("gamma")
	assert.False(t, ok)
	_, ok = in.Lookup(99)
	assert.False(t, ok)
}

func TestInternerEachOrdered(t *testing.T) {
	in := NewInterner()
	in.Intern("x")
	in.Intern("y")
	in.Intern("z")

	var ids []SymbolID
	var strs []string
	in.Each(func(id SymbolID, s string) {
		ids = append(ids, id)
		strs = append(strs, s)
	})
	assert.Equal(t, []SymbolID{1, 2, 3}, ids)
	assert.Equal(t, []string{"x", "y", "z"}, strs)
}
