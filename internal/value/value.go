// Package value models the generic tree of values that extraction walks:
// scalars, sequences, tuples, maps, structs, and enum variants. Format
// decoders build values; the extractor consumes them through the Visitor
// protocol, one callback per shape.
package value

// Value is one node of an input document.
type Value interface {
	// Accept dispatches to the Visitor method for this value's shape.
	Accept(v Visitor) error
}

// Field is one named field of a struct or struct variant.
type Field struct {
	Name  string
	Value Value
}

// MapEntry is one key/value pair of a map. Keys are arbitrary values; whether
// non-string keys are representable depends on the backend's schema variant.
type MapEntry struct {
	Key   Value
	Value Value
}

// Visitor receives one callback per value shape. Composite callbacks receive
// the children as values and are responsible for walking them.
type Visitor interface {
	VisitBool(v bool) error
	VisitInt8(v int8) error
	VisitInt16(v int16) error
	VisitInt32(v int32) error
	VisitInt64(v int64) error
	VisitUint8(v uint8) error
	VisitUint16(v uint16) error
	VisitUint32(v uint32) error
	VisitUint64(v uint64) error
	VisitFloat32(v float32) error
	VisitFloat64(v float64) error
	VisitChar(v rune) error
	VisitString(v string) error
	VisitBytes(v []byte) error
	VisitUnit() error
	VisitNone() error
	VisitSome(v Value) error
	VisitUnitStruct(name string) error
	VisitNewtypeStruct(name string, v Value) error
	VisitTupleStruct(name string, items []Value) error
	VisitStruct(name string, fields []Field) error
	VisitSeq(items []Value) error
	VisitTuple(items []Value) error
	VisitMap(entries []MapEntry) error
	VisitUnitVariant(name, variant string, idx int) error
	VisitNewtypeVariant(name, variant string, idx int, v Value) error
	VisitTupleVariant(name, variant string, idx int, items []Value) error
	VisitStructVariant(name, variant string, idx int, fields []Field) error
}

type (
	Bool    bool
	Int8    int8
	Int16   int16
	Int32   int32
	Int64   int64
	Uint8   uint8
	Uint16  uint16
	Uint32  uint32
	Uint64  uint64
	Float32 float32
	Float64 float64
	Char    rune
	String  string
	Bytes   []byte

	// Unit is the empty value (e.g. JSON null).
	Unit struct{}

	// None and Some are the two option shapes. The extractor lowers them to
	// enum variants of type "Option", so decoders never spell that out.
	None struct{}
	Some struct{ Value Value }

	UnitStruct    struct{ Name string }
	NewtypeStruct struct {
		Name  string
		Value Value
	}
	TupleStruct struct {
		Name  string
		Items []Value
	}
	Struct struct {
		Name   string
		Fields []Field
	}

	Seq   []Value
	Tuple []Value
	Map   []MapEntry

	UnitVariant struct {
		Type    string
		Variant string
		Index   int
	}
	NewtypeVariant struct {
		Type    string
		Variant string
		Index   int
		Value   Value
	}
	TupleVariant struct {
		Type    string
		Variant string
		Index   int
		Items   []Value
	}
	StructVariant struct {
		Type    string
		Variant string
		Index   int
		Fields  []Field
	}
)

func (b Bool) Accept(v Visitor) error    { return v.VisitBool(bool(b)) }
func (i Int8) Accept(v Visitor) error    { return v.VisitInt8(int8(i)) }
func (i Int16) Accept(v Visitor) error   { return v.VisitInt16(int16(i)) }
func (i Int32) Accept(v Visitor) error   { return v.VisitInt32(int32(i)) }
func (i Int64) Accept(v Visitor) error   { return v.VisitInt64(int64(i)) }
func (u Uint8) Accept(v Visitor) error   { return v.VisitUint8(uint8(u)) }
func (u Uint16) Accept(v Visitor) error  { return v.VisitUint16(uint16(u)) }
func (u Uint32) Accept(v Visitor) error  { return v.VisitUint32(uint32(u)) }
func (u Uint64) Accept(v Visitor) error  { return v.VisitUint64(uint64(u)) }
func (f Float32) Accept(v Visitor) error { return v.VisitFloat32(float32(f)) }
func (f Float64) Accept(v Visitor) error { return v.VisitFloat64(float64(f)) }
func (c Char) Accept(v Visitor) error    { return v.VisitChar(rune(c)) }
func (s String) Accept(v Visitor) error  { return v.VisitString(string(s)) }
func (b Bytes) Accept(v Visitor) error   { return v.VisitBytes([]byte(b)) }
func (Unit) Accept(v Visitor) error      { return v.VisitUnit() }
func (None) Accept(v Visitor) error      { return v.VisitNone() }
func (s Some) Accept(v Visitor) error    { return v.VisitSome(s.Value) }

func (s UnitStruct) Accept(v Visitor) error { return v.VisitUnitStruct(s.Name) }

func (s NewtypeStruct) Accept(v Visitor) error { return v.VisitNewtypeStruct(s.Name, s.Value) }

func (s TupleStruct) Accept(v Visitor) error { return v.VisitTupleStruct(s.Name, s.Items) }

func (s Struct) Accept(v Visitor) error { return v.VisitStruct(s.Name, s.Fields) }

func (s Seq) Accept(v Visitor) error { return v.VisitSeq(s) }

func (t Tuple) Accept(v Visitor) error { return v.VisitTuple(t) }

func (m Map) Accept(v Visitor) error { return v.VisitMap(m) }

func (u UnitVariant) Accept(v Visitor) error {
	return v.VisitUnitVariant(u.Type, u.Variant, u.Index)
}

func (n NewtypeVariant) Accept(v Visitor) error {
	return v.VisitNewtypeVariant(n.Type, n.Variant, n.Index, n.Value)
}

func (t TupleVariant) Accept(v Visitor) error {
	return v.VisitTupleVariant(t.Type, t.Variant, t.Index, t.Items)
}

func (s StructVariant) Accept(v Visitor) error {
	return v.VisitStructVariant(s.Type, s.Variant, s.Index, s.Fields)
}
