// Package backend provides the two shipped fact.Backend implementations:
// an in-memory vector backend and a Souffle-compatible SQLite backend.
package backend

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/agentic-research/edb/internal/fact"
)

// Row types, one per fact family. Slices keep insertion order, which is the
// extractor's traversal pre-order.
type (
	TypeRow struct {
		Elem fact.ElemID
		Kind fact.SymbolID // interned kind name
	}
	BoolRow struct {
		Elem  fact.ElemID
		Value bool
	}
	NumberRow struct {
		Elem  fact.ElemID
		Value int64
	}
	StringRow struct {
		Elem  fact.ElemID
		Value fact.SymbolID
	}
	SeqRow struct {
		Elem  fact.ElemID
		Pos   int
		Child fact.ElemID
	}
	TupleRow struct {
		Elem  fact.ElemID
		Pos   int
		Child fact.ElemID
	}
	StructRow struct {
		Elem  fact.ElemID
		Field fact.SymbolID
		Child fact.ElemID
	}
	MapRow struct {
		Elem  fact.ElemID
		Key   fact.ElemID
		Child fact.ElemID
	}
	StructTypeRow struct {
		Elem fact.ElemID
		Type fact.SymbolID
	}
	StructFieldRow struct {
		Type  fact.SymbolID
		Pos   int
		Field fact.SymbolID
	}
	VariantTypeRow struct {
		Elem    fact.ElemID
		Type    fact.SymbolID
		Variant fact.SymbolID
		Index   int
	}
	RootRow struct {
		Source int
		Elem   fact.ElemID
	}
)

// Vector materializes facts as ordered in-memory tables. Strings (kind
// names, type names, field names, string payloads) are interned through one
// shared symbol table, so rows store SymbolIDs. Tables are safe to inspect
// once the extract calls that fed them have returned.
//
// Floating point and byte-string values are not representable in the fact
// schema and are rejected.
type Vector struct {
	Symbols *fact.Interner

	Types        []TypeRow
	Bools        []BoolRow
	Numbers      []NumberRow
	Strings      []StringRow
	Seqs         []SeqRow
	Tuples       []TupleRow
	Structs      []StructRow
	Maps         []MapRow
	StructTypes  []StructTypeRow
	StructFields []StructFieldRow
	VariantTypes []VariantTypeRow
	Roots        []RootRow

	stringOf  map[fact.ElemID]fact.SymbolID // string payload by element
	seenTypes map[fact.SymbolID]bool        // struct type names with recorded fields
}

// NewVector returns an empty vector backend. The kind names are interned
// first so their symbol ids are identical in every session.
func NewVector() *Vector {
	b := &Vector{
		Symbols:   fact.NewInterner(),
		stringOf:  make(map[fact.ElemID]fact.SymbolID),
		seenTypes: make(map[fact.SymbolID]bool),
	}
	for _, k := range fact.Kinds() {
		b.Symbols.Intern(k.String())
	}
	return b
}

func (b *Vector) AddRoot(source int, elem fact.ElemID) error {
	b.Roots = append(b.Roots, RootRow{Source: source, Elem: elem})
	return nil
}

func (b *Vector) AddElem(elem fact.ElemID, kind fact.Kind) error {
	switch kind {
	case fact.KindF32, fact.KindF64, fact.KindBytes:
		return &fact.UnsupportedError{Elem: elem, Kind: kind}
	}
	b.Types = append(b.Types, TypeRow{Elem: elem, Kind: b.Symbols.Intern(kind.String())})
	return nil
}

func (b *Vector) AddBool(elem fact.ElemID, v bool) error {
	b.Bools = append(b.Bools, BoolRow{Elem: elem, Value: v})
	return nil
}

func (b *Vector) AddNumber(elem fact.ElemID, v int64) error {
	b.Numbers = append(b.Numbers, NumberRow{Elem: elem, Value: v})
	return nil
}

func (b *Vector) AddFloat(elem fact.ElemID, _ float64) error {
	return &fact.UnsupportedError{Elem: elem, Kind: fact.KindF64}
}

func (b *Vector) AddString(elem fact.ElemID, v string) error {
	sym := b.Symbols.Intern(v)
	b.Strings = append(b.Strings, StringRow{Elem: elem, Value: sym})
	b.stringOf[elem] = sym
	return nil
}

func (b *Vector) AddBytes(elem fact.ElemID, _ []byte) error {
	return &fact.UnsupportedError{Elem: elem, Kind: fact.KindBytes}
}

func (b *Vector) AddSeqEntry(elem fact.ElemID, pos int, child fact.ElemID) error {
	b.Seqs = append(b.Seqs, SeqRow{Elem: elem, Pos: pos, Child: child})
	return nil
}

func (b *Vector) AddTupleEntry(elem fact.ElemID, pos int, child fact.ElemID) error {
	b.Tuples = append(b.Tuples, TupleRow{Elem: elem, Pos: pos, Child: child})
	return nil
}

func (b *Vector) AddStructEntry(elem fact.ElemID, field string, child fact.ElemID) error {
	b.Structs = append(b.Structs, StructRow{Elem: elem, Field: b.Symbols.Intern(field), Child: child})
	return nil
}

func (b *Vector) AddMapEntry(elem fact.ElemID, key, value fact.ElemID) error {
	b.Maps = append(b.Maps, MapRow{Elem: elem, Key: key, Child: value})
	return nil
}

// AddStructType records (elem, type name) and, the first time a type name is
// seen with named fields, the field list of that type.
func (b *Vector) AddStructType(elem fact.ElemID, name string, fields []string) error {
	sym := b.Symbols.Intern(name)
	b.StructTypes = append(b.StructTypes, StructTypeRow{Elem: elem, Type: sym})
	if len(fields) > 0 && !b.seenTypes[sym] {
		b.seenTypes[sym] = true
		for pos, f := range fields {
			b.StructFields = append(b.StructFields, StructFieldRow{Type: sym, Pos: pos, Field: b.Symbols.Intern(f)})
		}
	}
	return nil
}

func (b *Vector) AddVariantType(elem fact.ElemID, name, variant string, idx int) error {
	b.VariantTypes = append(b.VariantTypes, VariantTypeRow{
		Elem:    elem,
		Type:    b.Symbols.Intern(name),
		Variant: b.Symbols.Intern(variant),
		Index:   idx,
	})
	return nil
}

// StringPayload reports the interned string payload of elem, if elem is a
// string element. The SQLite backend uses it to inline map keys in
// string-key mode.
func (b *Vector) StringPayload(elem fact.ElemID) (fact.SymbolID, bool) {
	sym, ok := b.stringOf[elem]
	return sym, ok
}

// Dump writes the non-empty fact tables to w in a human-readable layout.
func (b *Vector) Dump(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	if b.Symbols.Len() > 0 {
		fmt.Fprintln(tw, "symbol\tid")
		syms := make([]string, 0, b.Symbols.Len())
		b.Symbols.Each(func(_ fact.SymbolID, s string) { syms = append(syms, s) })
		sort.Strings(syms)
		for _, s := range syms {
			id, _ := b.Symbols.Symbol(s)
			fmt.Fprintf(tw, "%s\t%d\n", s, id)
		}
		fmt.Fprintln(tw)
	}

	dumpTable(tw, "type", "elem\tkind", len(b.Types), func(i int) {
		r := b.Types[i]
		fmt.Fprintf(tw, "%d\t%s\n", r.Elem, b.symbol(r.Kind))
	})
	dumpTable(tw, "bool", "elem\tvalue", len(b.Bools), func(i int) {
		r := b.Bools[i]
		fmt.Fprintf(tw, "%d\t%t\n", r.Elem, r.Value)
	})
	dumpTable(tw, "number", "elem\tvalue", len(b.Numbers), func(i int) {
		r := b.Numbers[i]
		fmt.Fprintf(tw, "%d\t%d\n", r.Elem, r.Value)
	})
	dumpTable(tw, "string", "elem\tvalue", len(b.Strings), func(i int) {
		r := b.Strings[i]
		fmt.Fprintf(tw, "%d\t%s\n", r.Elem, b.symbol(r.Value))
	})
	dumpTable(tw, "seq", "elem\tpos\tchild", len(b.Seqs), func(i int) {
		r := b.Seqs[i]
		fmt.Fprintf(tw, "%d\t%d\t%d\n", r.Elem, r.Pos, r.Child)
	})
	dumpTable(tw, "tuple", "elem\tpos\tchild", len(b.Tuples), func(i int) {
		r := b.Tuples[i]
		fmt.Fprintf(tw, "%d\t%d\t%d\n", r.Elem, r.Pos, r.Child)
	})
	dumpTable(tw, "struct", "elem\tfield\tchild", len(b.Structs), func(i int) {
		r := b.Structs[i]
		fmt.Fprintf(tw, "%d\t%s\t%d\n", r.Elem, b.symbol(r.Field), r.Child)
	})
	dumpTable(tw, "map", "elem\tkey\tchild", len(b.Maps), func(i int) {
		r := b.Maps[i]
		fmt.Fprintf(tw, "%d\t%d\t%d\n", r.Elem, r.Key, r.Child)
	})
	dumpTable(tw, "structType", "elem\ttype", len(b.StructTypes), func(i int) {
		r := b.StructTypes[i]
		fmt.Fprintf(tw, "%d\t%s\n", r.Elem, b.symbol(r.Type))
	})
	dumpTable(tw, "structField", "type\tpos\tfield", len(b.StructFields), func(i int) {
		r := b.StructFields[i]
		fmt.Fprintf(tw, "%s\t%d\t%s\n", b.symbol(r.Type), r.Pos, b.symbol(r.Field))
	})
	dumpTable(tw, "variantType", "elem\ttype\tvariant\tidx", len(b.VariantTypes), func(i int) {
		r := b.VariantTypes[i]
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", r.Elem, b.symbol(r.Type), b.symbol(r.Variant), r.Index)
	})
	dumpTable(tw, "rootElem", "source\telem", len(b.Roots), func(i int) {
		r := b.Roots[i]
		fmt.Fprintf(tw, "%d\t%d\n", r.Source, r.Elem)
	})

	return tw.Flush()
}

func (b *Vector) symbol(id fact.SymbolID) string {
	s, ok := b.Symbols.Lookup(id)
	if !ok {
		return fmt.Sprintf("?%d", id)
	}
	return s
}

func dumpTable(w io.Writer, name, header string, n int, row func(int)) {
	if n == 0 {
		return
	}
	fmt.Fprintf(w, "%s\n%s\n", name, header)
	for i := 0; i < n; i++ {
		row(i)
	}
	fmt.Fprintln(w)
}

var _ fact.Backend = (*Vector)(nil)
