package backend

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/edb/internal/fact"
)

func TestVectorKindSymbolsStable(t *testing.T) {
	a := NewVector()
	b := NewVector()

	// Kind names are interned up front, so two sessions agree on their ids
	// before any fact is added.
	assert.Equal(t, len(fact.Kinds()), a.Symbols.Len())
	for _, k := range fact.Kinds() {
		ida, ok := a.Symbols.Symbol(k.String())
		require.True(t, ok)
		idb, ok := b.Symbols.Symbol(k.String())
		require.True(t, ok)
		assert.Equal(t, ida, idb)
	}
}

func TestVectorStringInterning(t *testing.T) {
	b := NewVector()
	require.NoError(t, b.AddString(1, "hello"))
	require.NoError(t, b.AddString(2, "hello"))
	require.NoError(t, b.AddString(3, "world"))

	require.Len(t, b.Strings, 3)
	assert.Equal(t, b.Strings[0].Value, b.Strings[1].Value)
	assert.NotEqual(t, b.Strings[0].Value, b.Strings[2].Value)

	sym, ok := b.StringPayload(2)
	require.True(t, ok)
	assert.Equal(t, b.Strings[0].Value, sym)
	_, ok = b.StringPayload(99)
	assert.False(t, ok)
}

func TestVectorRejectsUnsupportedKinds(t *testing.T) {
	b := NewVector()
	for _, k := range []fact.Kind{fact.KindF32, fact.KindF64, fact.KindBytes} {
		err := b.AddElem(1, k)
		var unsupported *fact.UnsupportedError
		require.ErrorAs(t, err, &unsupported)
		assert.Equal(t, k, unsupported.Kind)
	}
	assert.Empty(t, b.Types)

	var unsupported *fact.UnsupportedError
	require.ErrorAs(t, b.AddFloat(1, 2.5), &unsupported)
	require.ErrorAs(t, b.AddBytes(1, []byte{1}), &unsupported)
}

func TestVectorStructFieldsOncePerType(t *testing.T) {
	b := NewVector()
	require.NoError(t, b.AddStructType(1, "Point", []string{"x", "y"}))
	require.NoError(t, b.AddStructType(2, "Point", []string{"x", "y"}))
	require.NoError(t, b.AddStructType(3, "Size", []string{"w", "h"}))

	assert.Len(t, b.StructTypes, 3)
	require.Len(t, b.StructFields, 4)
	point, _ := b.Symbols.Symbol("Point")
	size, _ := b.Symbols.Symbol("Size")
	assert.Equal(t, point, b.StructFields[0].Type)
	assert.Equal(t, point, b.StructFields[1].Type)
	assert.Equal(t, size, b.StructFields[2].Type)
	assert.Equal(t, size, b.StructFields[3].Type)
}

func TestVectorDump(t *testing.T) {
	b := NewVector()
	require.NoError(t, b.AddElem(1, fact.KindSeq))
	require.NoError(t, b.AddElem(2, fact.KindI64))
	require.NoError(t, b.AddNumber(2, 42))
	require.NoError(t, b.AddSeqEntry(1, 0, 2))
	require.NoError(t, b.AddRoot(0, 1))

	var buf bytes.Buffer
	require.NoError(t, b.Dump(&buf))
	out := buf.String()

	assert.Contains(t, out, "type")
	assert.Contains(t, out, "Seq")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "rootElem")
	// Empty tables stay out of the dump.
	assert.NotContains(t, out, "variantType")
}
