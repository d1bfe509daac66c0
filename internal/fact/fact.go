// Package fact defines the flat fact model produced by extraction: element
// identifiers, element kinds, the backend contract that materializes facts,
// and the symbol interner shared by backends.
package fact

// ElemID identifies one element (scalar or composite) encountered during a
// traversal. IDs are assigned by the extractor in strictly increasing order
// within a session and are never reused.
type ElemID int64

// SymbolID is the compact surrogate for an interned string.
type SymbolID int64

// Kind classifies how a value was produced by the visitor protocol.
// Every element has exactly one kind, fixed at creation.
type Kind int

const (
	KindBool Kind = iota
	KindI8
	KindI16
	KindI32
	KindI64
	KindU8
	KindU16
	KindU32
	KindU64
	KindF32
	KindF64
	KindChar
	KindStr
	KindBytes
	KindUnit
	KindUnitStruct
	KindNewtypeStruct
	KindTupleStruct
	KindStruct
	KindSeq
	KindTuple
	KindMap
	KindUnitVariant
	KindNewtypeVariant
	KindTupleVariant
	KindStructVariant

	kindCount
)

var kindNames = [kindCount]string{
	KindBool:           "Bool",
	KindI8:             "I8",
	KindI16:            "I16",
	KindI32:            "I32",
	KindI64:            "I64",
	KindU8:             "U8",
	KindU16:            "U16",
	KindU32:            "U32",
	KindU64:            "U64",
	KindF32:            "F32",
	KindF64:            "F64",
	KindChar:           "Char",
	KindStr:            "Str",
	KindBytes:          "Bytes",
	KindUnit:           "Unit",
	KindUnitStruct:     "UnitStruct",
	KindNewtypeStruct:  "NewtypeStruct",
	KindTupleStruct:    "TupleStruct",
	KindStruct:         "Struct",
	KindSeq:            "Seq",
	KindTuple:          "Tuple",
	KindMap:            "Map",
	KindUnitVariant:    "UnitVariant",
	KindNewtypeVariant: "NewtypeVariant",
	KindTupleVariant:   "TupleVariant",
	KindStructVariant:  "StructVariant",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "Unknown"
	}
	return kindNames[k]
}

// Kinds returns every kind in declaration order. Backends use it to
// pre-intern the kind names so their symbol ids are stable across runs.
func Kinds() []Kind {
	ks := make([]Kind, kindCount)
	for i := range ks {
		ks[i] = Kind(i)
	}
	return ks
}

// Backend materializes facts emitted by the extractor. Implementations choose
// the representation (in-memory tables, a SQLite file, ...). Methods are
// invoked in traversal order by a single goroutine; any returned error is
// fatal to the session and already-written facts are not rolled back.
type Backend interface {
	// AddRoot marks elem as the root element of the input with the given
	// source index.
	AddRoot(source int, elem ElemID) error

	// AddElem registers the kind of a freshly allocated element. It is
	// called exactly once per element, before any other fact mentioning it.
	AddElem(elem ElemID, kind Kind) error

	// Scalar payloads. Defined only after AddElem for the same element.
	AddBool(elem ElemID, value bool) error
	AddNumber(elem ElemID, value int64) error
	AddFloat(elem ElemID, value float64) error
	AddString(elem ElemID, value string) error
	AddBytes(elem ElemID, value []byte) error

	// Structural links from a composite element to one of its children.
	AddSeqEntry(elem ElemID, pos int, child ElemID) error
	AddTupleEntry(elem ElemID, pos int, child ElemID) error
	AddStructEntry(elem ElemID, field string, child ElemID) error
	AddMapEntry(elem ElemID, key ElemID, value ElemID) error

	// Type metadata. AddStructType records the struct type name of elem and,
	// for named-field structs, the field-name list of that type. AddVariantType
	// records the enum type, variant name, and declaration index of a variant
	// element.
	AddStructType(elem ElemID, name string, fields []string) error
	AddVariantType(elem ElemID, name string, variant string, idx int) error
}
